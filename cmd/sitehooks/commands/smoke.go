package commands

import (
	"log/slog"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/smoke"
	"git.home.luguber.info/inful/sitehooks/internal/smoke/rodsession"
	"git.home.luguber.info/inful/sitehooks/internal/smoke/webdriver"
)

// SmokeCmd implements the 'smoke' command.
type SmokeCmd struct {
	Port        string        `arg:"" optional:"" help:"Port of the remote browser endpoint (host:port and ws:// URLs are accepted too)"`
	SearchURL   string        `name:"search-url" help:"Search page to open"`
	Query       string        `help:"Query to submit"`
	Marker      string        `help:"Text expected in at least one result title"`
	Timeout     time.Duration `help:"How long to wait for results"`
	AlwaysClose bool          `name:"always-close" help:"Close the browser session on every exit path"`
	Protocol    string        `help:"Session protocol: webdriver or cdp (default: cdp for ws:// endpoints, webdriver otherwise)"`
	Browser     string        `help:"WebDriver browserName capability"`
	Stealth     bool          `help:"Apply stealth evasions to the browser page (cdp only)"`
}

func (s *SmokeCmd) Run(g *Global, root *CLI) error {
	if strings.TrimSpace(s.Port) == "" {
		return ferrors.ValidationError("No port provided (first cli argument)!").Build()
	}

	cfg, err := loadConfig(root.Config)
	if err != nil {
		return err
	}
	sc := cfg.Smoke
	if s.SearchURL != "" {
		sc.SearchURL = s.SearchURL
	}
	if s.Query != "" {
		sc.Query = s.Query
	}
	if s.Marker != "" {
		sc.Marker = s.Marker
	}
	if s.Timeout > 0 {
		sc.Timeout = s.Timeout
	}
	if s.Protocol != "" {
		sc.Protocol = s.Protocol
	}
	if s.Browser != "" {
		sc.Browser = s.Browser
	}
	sc.AlwaysClose = sc.AlwaysClose || s.AlwaysClose
	sc.Stealth = sc.Stealth || s.Stealth

	logger := g.logger()
	dialer := g.Dialer
	if dialer == nil {
		dialer, err = newDialer(s.Port, sc, logger)
		if err != nil {
			return err
		}
	}

	rec := newRunRecorder(cfg)
	defer rec.flush(logger)

	_, err = smoke.NewRunner(dialer).
		WithOutput(g.out()).
		WithLogger(logger).
		WithRecorder(rec).
		Run(g.ctx(), smoke.OptionsFromConfig(s.Port, sc))
	return err
}

// newDialer picks the session driver for endpoint. WebDriver is the default;
// DevTools endpoints (ws://, wss://) go through go-rod.
func newDialer(endpoint string, sc config.SmokeConfig, logger *slog.Logger) (smoke.Dialer, error) {
	protocol := sc.Protocol
	if protocol == "" {
		protocol = config.ProtocolWebDriver
		if strings.HasPrefix(endpoint, "ws://") || strings.HasPrefix(endpoint, "wss://") {
			protocol = config.ProtocolCDP
		}
	}
	switch protocol {
	case config.ProtocolWebDriver:
		if sc.Stealth {
			logger.Warn("Stealth evasions only apply to cdp sessions; ignoring")
		}
		return &webdriver.Dialer{Browser: sc.Browser, Logger: logger}, nil
	case config.ProtocolCDP:
		return &rodsession.Dialer{Stealth: sc.Stealth, Logger: logger}, nil
	default:
		return nil, ferrors.ValidationError("unknown smoke protocol (use webdriver or cdp)").
			WithContext("protocol", protocol).
			Build()
	}
}
