//go:build tools
// +build tools

// Pins oapi-codegen so `go generate ./internal/infra/api/apiv1` uses the same
// version everywhere. Excluded from normal builds by the 'tools' tag.

package tools

import (
	_ "github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen"
)
