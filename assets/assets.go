// Package assets embeds the bundled skirmish maps.
package assets

import "embed"

// Maps holds the map layouts under maps/.
//
//go:embed maps/*.json
var Maps embed.FS
