// Package locales embeds the console's translations.
package locales

import "embed"

// FS holds one YAML file per language.
//
//go:embed *.yaml
var FS embed.FS
