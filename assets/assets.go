// Package assets embeds the HTML templates of the web portal.
package assets

import "embed"

// Templates holds templates/*.gohtml. Files starting with "_" are partials shared by every page.
//
//go:embed templates/*.gohtml
var Templates embed.FS
