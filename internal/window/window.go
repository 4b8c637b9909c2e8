// Package window shows the recommendation form in a native desktop window.
package window

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

// Options configures the application window
type Options struct {
	Title  string
	URL    string
	Width  int
	Height int
	Debug  bool
}

// DefaultOptions returns a window pointed at the given server URL
func DefaultOptions(serverURL string) Options {
	return Options{
		Title:  "Crop Recommendation System",
		URL:    serverURL,
		Width:  1024,
		Height: 768,
	}
}

// WaitForServer polls until the server behind serverURL accepts connections
func WaitForServer(ctx context.Context, serverURL string, timeout time.Duration) error {
	u, err := url.Parse(serverURL)
	if err != nil {
		return fmt.Errorf("invalid server url %q: %w", serverURL, err)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var d net.Dialer
	for {
		conn, err := d.DialContext(ctx, "tcp", u.Host)
		if err == nil {
			conn.Close()
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("server not ready at %s: %w", serverURL, ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}
}
