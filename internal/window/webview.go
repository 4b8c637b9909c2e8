//go:build webview

package window

import (
	webview "github.com/webview/webview_go"
)

// Available reports whether the binary was built with window support
const Available = true

// Run opens a window on opts.URL and blocks until the user closes it
// or done is closed. It must be called from the main goroutine.
func Run(opts Options, done <-chan struct{}) error {
	w := webview.New(opts.Debug)
	defer w.Destroy()

	w.SetTitle(opts.Title)
	w.SetSize(opts.Width, opts.Height, webview.HintNone)
	w.Navigate(opts.URL)

	// Close the window when asked to shut down
	closed := make(chan struct{})
	defer close(closed)
	go func() {
		select {
		case <-done:
			w.Terminate()
		case <-closed:
		}
	}()

	// Run blocks until the window is closed
	w.Run()
	return nil
}
