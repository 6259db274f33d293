// Package extension describes the on-disk layout of the Kabir Doha new-tab
// extension and decodes the JSON files it ships with.
package extension

import (
	"fmt"
	"path/filepath"
)

const (
	// ManifestFile is the top-level extension manifest at the package root
	ManifestFile = "manifest.json"

	// SourceDir holds the new-tab page
	SourceDir = "src"

	// IconsDir holds the generated toolbar/store icons
	IconsDir = "icons"

	// ContentDir holds the doha records and their manifest
	ContentDir = "dohas"

	// ContentManifestFile lists the doha records the new-tab page loads
	ContentManifestFile = "manifest.json"

	// ContentPattern matches doha record files inside ContentDir
	ContentPattern = "doha_*.json"

	// ExtensionsURL is where the unpacked extension gets loaded in Chrome
	ExtensionsURL = "chrome://extensions/"
)

// RequiredFile is a file the package must ship, relative to the package root.
type RequiredFile struct {
	Path        string
	Description string
}

// SourceFiles are the presentation files of the new-tab page.
var SourceFiles = []RequiredFile{
	{Path: filepath.Join(SourceDir, "newtab.html"), Description: "HTML file"},
	{Path: filepath.Join(SourceDir, "newtab.css"), Description: "CSS file"},
	{Path: filepath.Join(SourceDir, "newtab.js"), Description: "JavaScript file"},
}

// IconSizes are the pixel sizes Chrome asks for in the manifest's icons map.
var IconSizes = []int{16, 48, 128}

// IconFileName returns the file name used for an icon of the given size.
func IconFileName(size int) string {
	return fmt.Sprintf("icon%d.png", size)
}

// IconFiles returns the icon files the package must ship.
func IconFiles() []RequiredFile {
	files := make([]RequiredFile, 0, len(IconSizes))
	for _, size := range IconSizes {
		files = append(files, RequiredFile{
			Path:        filepath.Join(IconsDir, IconFileName(size)),
			Description: fmt.Sprintf("%dx%d icon", size, size),
		})
	}
	return files
}
