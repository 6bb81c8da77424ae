package webui

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
)

//go:embed web/*
var content embed.FS

// Handler returns an http.Handler that serves the browser console.
//
// When dir is non-empty and the directory exists, assets are served from
// the filesystem (dev mode, no recompile after editing). When dir is
// empty, assets come from the embedded go:embed FS (production).
//
// Unknown paths fall back to index.html with status 200, so the console
// can use client-side routing. Panics if the embedded assets cannot be
// loaded (build error).
func Handler(dir string) http.Handler {
	var fileSystem http.FileSystem

	if dir != "" {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			fileSystem = http.Dir(dir)
		}
	}

	if fileSystem == nil {
		webFS, err := fs.Sub(content, "web")
		if err != nil {
			panic(fmt.Sprintf("webui: failed to load embedded assets: %v", err))
		}
		fileSystem = http.FS(webFS)
	}

	fileServer := http.FileServer(fileSystem)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Occupancy data goes stale in seconds; never let the browser
		// cache the console shell either.
		w.Header().Set("Cache-Control", "no-cache, must-revalidate")

		upath := path.Clean(r.URL.Path)
		if upath == "." {
			upath = "/"
		}

		if upath == "/" {
			fileServer.ServeHTTP(w, r)
			return
		}

		f, err := fileSystem.Open(upath[1:])
		if err != nil {
			// Not a real file: serve the console shell.
			r.URL.Path = "/"
			fileServer.ServeHTTP(w, r)
			return
		}
		f.Close() //nolint:errcheck // read-only probe

		fileServer.ServeHTTP(w, r)
	})
}
