package configs

import (
	"embed"
)

// FS provides embedded default machine YAMLs.
//
//go:embed *.yaml
var FS embed.FS
