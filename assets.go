package formguard

import (
	"embed"
	"io/fs"
)

//go:embed assets/*.css
var embeddedAssets embed.FS

// Stylesheet is the asset path of the annotation and adaptation styles.
const Stylesheet = "formguard.css"

// AssetsFS exposes the stylesheet for the classes the gate, presenter and
// environment adapter write into pages.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(formguard.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	sub, err := fs.Sub(embeddedAssets, "assets")
	if err != nil {
		return embeddedAssets
	}
	return sub
}
