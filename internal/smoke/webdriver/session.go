// Package webdriver implements smoke.Session over the W3C WebDriver protocol
// with tebeka/selenium. It attaches to a driver or a Selenium grid that is
// already listening, typically on a local port.
package webdriver

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tebeka/selenium"

	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/smoke"
)

// Dialer opens WebDriver sessions.
type Dialer struct {
	// Browser is sent as the browserName capability. Empty leaves the choice
	// to the remote end.
	Browser string
	Logger  *slog.Logger
}

// NewDialer returns a Dialer requesting browser and logging to the default logger.
func NewDialer(browser string) *Dialer {
	return &Dialer{Browser: browser, Logger: slog.Default()}
}

// Open creates a new session on the remote end at endpoint (a port,
// host:port or http:// URL).
func (d *Dialer) Open(ctx context.Context, endpoint string) (smoke.Session, error) {
	log := d.Logger
	if log == nil {
		log = slog.Default()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	caps := selenium.Capabilities{}
	if d.Browser != "" {
		caps["browserName"] = d.Browser
	}
	url := strings.TrimSuffix(smoke.EndpointURL(endpoint), "/")
	log.Debug("Creating WebDriver session", logfields.URL(url), slog.String("browser", d.Browser))

	wd, err := selenium.NewRemote(caps, url)
	if err != nil {
		return nil, fmt.Errorf("new webdriver session at %s: %w", url, err)
	}
	return &Session{wd: wd}, nil
}

// Session is one WebDriver session.
type Session struct {
	wd selenium.WebDriver
}

func (s *Session) ID() string { return s.wd.SessionID() }

func (s *Session) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.wd.Get(url); err != nil {
		return fmt.Errorf("navigate %s: %w", url, err)
	}
	return nil
}

// Search looks the input up once, without waiting for it to appear.
func (s *Session) Search(ctx context.Context, inputID, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	el, err := s.wd.FindElement(selenium.ByID, inputID)
	if err != nil {
		return fmt.Errorf("find search input #%s: %w", inputID, err)
	}
	// W3C has no form submit command; Enter in the field submits it.
	if err := el.SendKeys(query + selenium.EnterKey); err != nil {
		return fmt.Errorf("type query: %w", err)
	}
	return nil
}

// WaitForResults polls for selector and returns smoke.ErrTimeout when nothing
// matched within timeout.
func (s *Session) WaitForResults(ctx context.Context, selector string, timeout time.Duration) error {
	var condErr error
	err := s.wd.WaitWithTimeout(func(wd selenium.WebDriver) (bool, error) {
		if err := ctx.Err(); err != nil {
			condErr = err
			return false, err
		}
		els, err := wd.FindElements(selenium.ByCSSSelector, selector)
		if err != nil {
			condErr = err
			return false, err
		}
		return len(els) > 0, nil
	}, timeout)
	switch {
	case err == nil:
		return nil
	case condErr != nil:
		return fmt.Errorf("wait for %s: %w", selector, condErr)
	default:
		return smoke.ErrTimeout
	}
}

func (s *Session) ResultTexts(ctx context.Context, selector string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	els, err := s.wd.FindElements(selenium.ByCSSSelector, selector)
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

// Close deletes the remote session, which also closes its browser.
func (s *Session) Close() error {
	return s.wd.Quit()
}

var _ smoke.Dialer = (*Dialer)(nil)
var _ smoke.Session = (*Session)(nil)
