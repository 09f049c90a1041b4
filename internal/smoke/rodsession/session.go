// Package rodsession implements smoke.Session on top of go-rod, attached to a
// browser that is already running and exposes the DevTools protocol.
package rodsession

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"

	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/smoke"
)

// Dialer connects to remote browsers.
type Dialer struct {
	// Stealth opens pages with the go-rod/stealth evasions applied.
	Stealth bool
	Logger  *slog.Logger
}

// NewDialer returns a Dialer logging to the default logger.
func NewDialer(useStealth bool) *Dialer {
	return &Dialer{Stealth: useStealth, Logger: slog.Default()}
}

// Open resolves endpoint (a port, host:port or ws:// URL) to a DevTools
// websocket, connects and opens a fresh page.
func (d *Dialer) Open(ctx context.Context, endpoint string) (smoke.Session, error) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}

	wsURL, err := launcher.ResolveURL(endpoint)
	if err != nil {
		return nil, fmt.Errorf("resolve devtools endpoint %q: %w", endpoint, err)
	}
	log.Debug("Connecting to remote browser", logfields.URL(wsURL))

	b := rod.New().ControlURL(wsURL).Context(ctx)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	var page *rod.Page
	if d.Stealth {
		page, err = stealth.Page(b)
	} else {
		page, err = b.Page(proto.TargetCreateTarget{URL: ""})
	}
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("create page: %w", err)
	}

	return &Session{browser: b, page: page}, nil
}

// Session is one page on a connected browser.
type Session struct {
	browser *rod.Browser
	page    *rod.Page
}

func (s *Session) ID() string { return string(s.page.TargetID) }

func (s *Session) Navigate(ctx context.Context, url string) error {
	p := s.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait load %s: %w", url, err)
	}
	return nil
}

// Search fails at once when the input element is not on the page.
func (s *Session) Search(ctx context.Context, inputID, query string) error {
	el, err := s.page.Context(ctx).Sleeper(rod.NotFoundSleeper).Element("#" + inputID)
	if err != nil {
		return fmt.Errorf("find search input #%s: %w", inputID, err)
	}
	if err := el.Input(query); err != nil {
		return fmt.Errorf("type query: %w", err)
	}
	if err := el.Type(input.Enter); err != nil {
		return fmt.Errorf("submit query: %w", err)
	}
	return nil
}

func (s *Session) WaitForResults(ctx context.Context, selector string, timeout time.Duration) error {
	_, err := s.page.Context(ctx).Timeout(timeout).Element(selector)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil:
		return smoke.ErrTimeout
	default:
		return fmt.Errorf("wait for %s: %w", selector, err)
	}
}

func (s *Session) ResultTexts(ctx context.Context, selector string) ([]string, error) {
	els, err := s.page.Context(ctx).Elements(selector)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", selector, err)
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			return nil, fmt.Errorf("read result text: %w", err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

// Close ends the remote session.
func (s *Session) Close() error {
	return s.browser.Close()
}

var _ smoke.Dialer = (*Dialer)(nil)
var _ smoke.Session = (*Session)(nil)
