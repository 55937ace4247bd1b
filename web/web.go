// Package web holds the browser recording widget served at "/".
package web

import _ "embed"

//go:embed index.html
var IndexHTML []byte
