package site

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"
)

//go:embed static/*
var staticFS embed.FS

func root() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return staticFS
	}
	return sub
}

// FS returns an http.FileSystem for the embedded site.
func FS() http.FileSystem {
	return http.FS(root())
}

// assetExists reports whether urlPath names a regular embedded file.
func assetExists(urlPath string) bool {
	info, err := fs.Stat(root(), strings.TrimPrefix(urlPath, "/"))
	return err == nil && !info.IsDir()
}
