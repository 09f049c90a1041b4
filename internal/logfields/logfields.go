package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyStage    = "stage"
	KeyHook     = "hook"
	KeyRule     = "rule"
	KeyPath     = "path"
	KeySource   = "source"
	KeyTarget   = "target"
	KeyRef      = "ref"
	KeyVersion  = "version"
	KeyCount    = "count"
	KeyBytes    = "bytes"
	KeyRunID    = "run_id"
	KeySession  = "session_id"
	KeyURL      = "url"
	KeyState    = "state"
	KeyDuration = "duration_ms"
	KeyError    = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Stage(name string) slog.Attr     { return slog.String(KeyStage, name) }
func Hook(name string) slog.Attr      { return slog.String(KeyHook, name) }
func Rule(name string) slog.Attr      { return slog.String(KeyRule, name) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func Source(p string) slog.Attr       { return slog.String(KeySource, p) }
func Target(p string) slog.Attr       { return slog.String(KeyTarget, p) }
func Ref(r string) slog.Attr          { return slog.String(KeyRef, r) }
func Version(v string) slog.Attr      { return slog.String(KeyVersion, v) }
func Count(n int) slog.Attr           { return slog.Int(KeyCount, n) }
func Bytes(n int64) slog.Attr         { return slog.Int64(KeyBytes, n) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func Session(id string) slog.Attr     { return slog.String(KeySession, id) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDuration, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
