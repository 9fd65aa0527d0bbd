package embedded

import (
	_ "embed"
)

//go:embed default_layout.yaml
var defaultLayout []byte

// DefaultLayout returns the built-in partition layout of the speaker board
// (ESP32-S3, 16MB flash) used when no build manifest is available.
func DefaultLayout() []byte {
	return defaultLayout
}
