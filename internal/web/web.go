// Package web embeds the dashboard shell, static assets and the static
// fragment files served to the fragment fetcher.
package web

import (
	"embed"
	"io/fs"
)

//go:embed shell.html
var shellHTML string

//go:embed fragments/*.html
var fragmentFiles embed.FS

//go:embed static
var staticFiles embed.FS

// Shell returns the dashboard page every session starts from.
func Shell() string { return shellHTML }

// Fragments returns the static fragment tree rooted at fragments/.
func Fragments() fs.FS {
	sub, err := fs.Sub(fragmentFiles, "fragments")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static returns the browser assets rooted at static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
