/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

func newLogger(verbose bool, w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	out := zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    true,
		TimeFormat: logDate,
	}

	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// newDebugLogger is used by the terminal UI, which owns stdout and stderr.
// With verbose set, output goes to $XDG_CONFIG_HOME/simonsays/debug.log.
func newDebugLogger(verbose bool) (zerolog.Logger, func(), error) {
	if !verbose {
		return zerolog.Nop(), func() {}, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	dir = filepath.Join(dir, "simonsays")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return zerolog.Nop(), nil, err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return zerolog.Nop(), nil, err
	}

	return newLogger(true, f), func() { _ = f.Close() }, nil
}

func newPage(prefix, title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(getFavicon(prefix))
	htmlBody.WriteString(fmt.Sprintf(`<link rel="stylesheet" href="%s/assets/simon/app.css">`, prefix))
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body class=\"page\">%s</body></html>", body))

	return htmlBody.String()
}
