package server

import (
	"context"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/mrsingh-rishi/transcribe-widget/config"
	"github.com/mrsingh-rishi/transcribe-widget/model"
	"github.com/mrsingh-rishi/transcribe-widget/staging"
	"github.com/mrsingh-rishi/transcribe-widget/stt"
	"github.com/mrsingh-rishi/transcribe-widget/web"
)

// Server wires the transcription endpoint into a Fiber app.
type Server struct {
	cfg         config.Config
	transcriber stt.Transcriber
	stager      *staging.Stager
	log         zerolog.Logger
	app         *fiber.App
}

func New(cfg config.Config, transcriber stt.Transcriber, log zerolog.Logger) *Server {
	s := &Server{
		cfg:         cfg,
		transcriber: transcriber,
		stager:      staging.NewStager(cfg.StagingDir, cfg.AudioFormat),
		log:         log,
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "transcribe-widget",
		BodyLimit:             cfg.BodyLimit(),
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(s.requestLogger)
	s.app.Use(recover.New())

	if len(cfg.AllowedHosts) > 0 {
		s.app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.AllowedOrigins(), ","),
			AllowMethods: "GET,POST,OPTIONS",
		}))
	}

	s.app.Get("/", s.index)
	s.app.Get("/health", s.health)
	s.app.Post("/transcribe", s.hostGuard, s.transcribe)
	s.app.Post("/speak", s.hostGuard, s.transcribe)

	return s
}

// App exposes the underlying Fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Listen() error {
	addr := ":" + s.cfg.Port
	s.log.Info().Str("addr", addr).Str("provider", s.cfg.Provider).Strs("allowed_hosts", s.cfg.AllowedHosts).Msg("server listening")
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	if deadline, ok := ctx.Deadline(); ok {
		return s.app.ShutdownWithTimeout(time.Until(deadline))
	}
	return s.app.Shutdown()
}

func (s *Server) index(c *fiber.Ctx) error {
	c.Type("html")
	return c.Send(web.IndexHTML)
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(model.HealthResponse{Status: "ok", Provider: s.cfg.Provider})
}

// hostGuard rejects callers outside the allow-list before any file I/O.
func (s *Server) hostGuard(c *fiber.Ctx) error {
	caller := c.Get(fiber.HeaderOrigin)
	if caller == "" {
		caller = c.Hostname()
	}
	if !s.cfg.HostAllowed(caller) {
		s.log.Warn().Str("caller", caller).Str("path", c.Path()).Msg("caller not allowed")
		return c.Status(fiber.StatusForbidden).SendString(caller + " not allowed")
	}
	return c.Next()
}

func (s *Server) transcribe(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, `missing audio upload in form field "file"`)
	}
	if fh.Size == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "empty audio upload")
	}

	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "open upload")
	}
	defer src.Close()

	artifact, err := s.stager.Stage(src)
	if err != nil {
		return errors.Wrap(err, "stage upload")
	}
	defer func() {
		if err := artifact.Release(); err != nil {
			s.log.Error().Err(err).Str("artifact", artifact.ID).Msg("failed to release staged audio")
		}
	}()

	log := s.log.With().Str("artifact", artifact.ID).Logger()
	log.Debug().Int64("bytes", artifact.Size).Msg("staged upload")

	text, err := s.transcriber.Transcribe(c.UserContext(), stt.Request{
		AudioPath: artifact.Path,
		Format:    artifact.Format,
		Model:     s.cfg.Model,
		Language:  s.cfg.Language,
	})
	if err != nil {
		log.Error().Err(err).Msg("transcription failed")
		c.Status(fiber.StatusInternalServerError)
		return nil
	}
	if text == "" {
		log.Warn().Msg("transcription returned no text")
		c.Status(fiber.StatusInternalServerError)
		return nil
	}

	return c.JSON(model.TranscriptionResponse{Text: text})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		s.log.Error().Err(err).Str("path", c.Path()).Msg("request failed")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	return c.Status(code).SendString(message)
}

// requestLogger logs one line per request after the error handler has
// settled the final status.
func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := time.Now()

	if chainErr := c.Next(); chainErr != nil {
		if err := c.App().ErrorHandler(c, chainErr); err != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	s.log.Info().
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", c.Response().StatusCode()).
		Dur("latency", time.Since(start)).
		Msg("request")
	return nil
}
