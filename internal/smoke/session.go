// Package smoke checks that the project is discoverable: it drives a remote
// browser through a public web search and looks for a marker string in the
// result titles.
//
// The browser is reached through the Session interface. The webdriver
// subpackage talks W3C WebDriver (a Selenium grid or a driver on a port),
// rodsession talks the DevTools protocol to a ws:// endpoint, and tests use
// fakes.
package smoke

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by Session.WaitForResults when no result appeared in time.
var ErrTimeout = errors.New("timed out waiting for search results")

// Session is one remote browser session.
type Session interface {
	ID() string
	Navigate(ctx context.Context, url string) error
	// Search locates the input element by id, types query and submits it.
	Search(ctx context.Context, inputID, query string) error
	// WaitForResults blocks until an element matches selector or timeout elapses.
	WaitForResults(ctx context.Context, selector string, timeout time.Duration) error
	ResultTexts(ctx context.Context, selector string) ([]string, error)
	Close() error
}

// Dialer opens sessions on a remote browser-automation endpoint.
type Dialer interface {
	Open(ctx context.Context, endpoint string) (Session, error)
}
