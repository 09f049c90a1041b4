package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/sitehooks/internal/config"
	ferrors "git.home.luguber.info/inful/sitehooks/internal/foundation/errors"
	"git.home.luguber.info/inful/sitehooks/internal/logfields"
	"git.home.luguber.info/inful/sitehooks/internal/metrics"
)

// State is a step of a smoke run.
type State string

const (
	StateInit          State = "Init"
	StateSessionOpened State = "SessionOpened"
	StateSearched      State = "Searched"
	StateWaiting       State = "Waiting"
	StateResultsFound  State = "ResultsFound"
	StateTimedOut      State = "TimedOut"
	StateScanned       State = "Scanned"
	StateFound         State = "Found"
	StateNotFound      State = "NotFound"
	StateSessionClosed State = "SessionClosed"
)

// Options are the fixed parameters of one run.
type Options struct {
	// Endpoint is the browser-automation endpoint, usually just a local port.
	Endpoint    string
	SearchURL   string
	InputID     string
	Query       string
	ResultClass string
	Marker      string
	Timeout     time.Duration
	// AlwaysClose closes the session on every exit path. Without it a failure
	// before the result wait leaves the remote session open.
	AlwaysClose bool
}

// OptionsFromConfig builds Options for endpoint from the smoke configuration.
func OptionsFromConfig(endpoint string, cfg config.SmokeConfig) Options {
	return Options{
		Endpoint:    endpoint,
		SearchURL:   cfg.SearchURL,
		InputID:     cfg.InputID,
		Query:       cfg.Query,
		ResultClass: cfg.ResultClass,
		Marker:      cfg.Marker,
		Timeout:     cfg.Timeout,
		AlwaysClose: cfg.AlwaysClose,
	}
}

// Report describes a finished run.
type Report struct {
	RunID     string
	SessionID string
	Results   int
	Matches   int
	Found     bool
	States    []State
	Duration  time.Duration
}

func (r *Report) enter(s State) { r.States = append(r.States, s) }

// Runner executes smoke runs.
type Runner struct {
	dialer   Dialer
	out      io.Writer
	logger   *slog.Logger
	recorder metrics.Recorder
}

// NewRunner creates a runner that opens sessions through dialer and prints
// progress lines to stdout.
func NewRunner(dialer Dialer) *Runner {
	return &Runner{dialer: dialer, out: os.Stdout, logger: slog.Default(), recorder: metrics.NoopRecorder{}}
}

// WithOutput redirects the progress lines.
func (r *Runner) WithOutput(w io.Writer) *Runner {
	if w != nil {
		r.out = w
	}
	return r
}

// WithLogger sets the logger.
func (r *Runner) WithLogger(l *slog.Logger) *Runner {
	if l != nil {
		r.logger = l
	}
	return r
}

// WithRecorder attaches a metrics recorder.
func (r *Runner) WithRecorder(rec metrics.Recorder) *Runner {
	r.recorder = metrics.OrNoop(rec)
	return r
}

// Run opens a session, searches, waits up to opts.Timeout for results and
// scans them for opts.Marker. A wait that times out counts as zero results.
// The session is closed once the scan is reached; earlier failures return
// without closing unless opts.AlwaysClose is set.
func (r *Runner) Run(ctx context.Context, opts Options) (report Report, err error) {
	start := time.Now()
	report.RunID = uuid.NewString()
	log := r.logger.With(logfields.RunID(report.RunID))
	defer func() {
		report.Duration = time.Since(start)
		r.recorder.ObserveSmokeDuration(report.Duration)
		switch {
		case report.Found:
			r.recorder.IncSmokeOutcome(metrics.SmokeFound)
		case ferrors.GetCategory(err) == ferrors.CategoryAssertion:
			r.recorder.IncSmokeOutcome(metrics.SmokeNotFound)
		default:
			r.recorder.IncSmokeOutcome(metrics.SmokeError)
		}
	}()

	report.enter(StateInit)
	if strings.TrimSpace(opts.Endpoint) == "" {
		return report, ferrors.ValidationError("No port provided (first cli argument)!").Build()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = config.DefaultSmokeTimeout
	}

	_, _ = fmt.Fprintf(r.out, "Connecting to: %s\n", EndpointURL(opts.Endpoint))
	sess, err := r.dialer.Open(ctx, opts.Endpoint)
	if err != nil {
		return report, ferrors.BrowserError("open remote browser session").WithCause(err).
			WithContext("endpoint", opts.Endpoint).
			Build()
	}
	report.SessionID = sess.ID()
	report.enter(StateSessionOpened)
	_, _ = fmt.Fprintf(r.out, "Session id: %s\n", report.SessionID)
	log = log.With(logfields.Session(report.SessionID))

	closed := false
	closeSession := func() {
		if closed {
			return
		}
		closed = true
		if cerr := sess.Close(); cerr != nil {
			log.Warn("Failed to close browser session", logfields.Error(cerr))
		}
		report.enter(StateSessionClosed)
	}
	if opts.AlwaysClose {
		defer closeSession()
	}

	if err := sess.Navigate(ctx, opts.SearchURL); err != nil {
		return report, browserError(err, "navigate to search page", opts.SearchURL)
	}
	if err := sess.Search(ctx, opts.InputID, opts.Query); err != nil {
		return report, browserError(err, "submit search query", opts.SearchURL)
	}
	report.enter(StateSearched)
	log.Debug("Search submitted", logfields.URL(opts.SearchURL), slog.String("query", opts.Query))

	selector := "." + opts.ResultClass
	report.enter(StateWaiting)
	var texts []string
	switch err := sess.WaitForResults(ctx, selector, opts.Timeout); {
	case err == nil:
		report.enter(StateResultsFound)
		texts, err = sess.ResultTexts(ctx, selector)
		if err != nil {
			return report, browserError(err, "read search results", opts.SearchURL)
		}
	case errors.Is(err, ErrTimeout):
		report.enter(StateTimedOut)
		log.Warn("No search results appeared", slog.Duration("timeout", opts.Timeout))
	default:
		return report, browserError(err, "wait for search results", opts.SearchURL)
	}

	report.Results = len(texts)
	for _, text := range texts {
		if strings.Contains(text, opts.Marker) {
			report.Matches++
		}
	}
	report.Found = report.Matches > 0
	report.enter(StateScanned)
	if report.Found {
		report.enter(StateFound)
	} else {
		report.enter(StateNotFound)
	}

	closeSession()

	log.Info("Search smoke test finished",
		logfields.Count(report.Results), slog.Int("matches", report.Matches), slog.Bool("found", report.Found))
	if !report.Found {
		return report, ferrors.AssertionError(fmt.Sprintf("Did not find %s in the search results :(", opts.Marker)).
			WithContext("query", opts.Query).
			WithContext("results", report.Results).
			Build()
	}
	_, _ = fmt.Fprintln(r.out, "Test successful!")
	return report, nil
}

func browserError(err error, message, url string) error {
	return ferrors.BrowserError(message).WithCause(err).
		WithContext("url", url).
		Build()
}

// EndpointURL renders the endpoint the way it is reached: a bare port means
// the local machine.
func EndpointURL(endpoint string) string {
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	if !strings.Contains(endpoint, ":") {
		endpoint = "127.0.0.1:" + endpoint
	}
	return "http://" + endpoint
}
