//go:build !webview

package window

import "errors"

// Stub implementation when the webview library is not linked in.
// Build with -tags webview to enable the real window.

// ErrUnavailable is returned when the binary was built without window support
var ErrUnavailable = errors.New("built without webview tag. Rebuild with: go build -tags webview")

// Available reports whether the binary was built with window support
const Available = false

// Run always fails without the webview library
func Run(_ Options, _ <-chan struct{}) error {
	return ErrUnavailable
}
