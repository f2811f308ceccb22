// Package web embeds the browser side of the recorder: the script that
// drives MediaRecorder, uploads the blob, and wires the reaction
// buttons, plus its stylesheet.
package web

import (
	"embed"
	"io/fs"
	"net/http"
)

//go:embed assets
var assets embed.FS

// Handler serves the embedded assets. Mount it under /assets/.
func Handler() http.Handler {
	sub, err := fs.Sub(assets, "assets")
	if err != nil {
		// The subtree is embedded at build time; this cannot fail.
		panic(err)
	}
	return http.StripPrefix("/assets/", http.FileServer(http.FS(sub)))
}
