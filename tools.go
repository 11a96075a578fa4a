//go:build tools

// Herramientas de desarrollo fijadas en go.mod.
package tools

import _ "github.com/swaggo/swag/cmd/swag"
