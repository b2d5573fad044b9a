// Package web carries the embedded UI: the server-rendered templates and
// the static assets they reference.
package web

import "embed"

// TemplatesFS embeds the HTML templates (full page and htmx partials).
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// StaticFS embeds static assets (css/js).
//
//go:embed static/*
var StaticFS embed.FS
