package logfields

import (
	"errors"
	"log/slog"
	"testing"
)

// TestHelperKeyNames verifies string-based helper key/value stability.
func TestHelperKeyNames(t *testing.T) {
	cases := []struct {
		name    string
		attrKey string
		attrVal string
		attr    slog.Attr
	}{
		{"Stage", KeyStage, "pre-build", Stage("pre-build")},
		{"Hook", KeyHook, "manifests", Hook("manifests")},
		{"Rule", KeyRule, "chart", Rule("chart")},
		{"Path", KeyPath, "/tmp/x", Path("/tmp/x")},
		{"Source", KeySource, "a", Source("a")},
		{"Target", KeyTarget, "b", Target("b")},
		{"Ref", KeyRef, "refs/tags/v1.0.0", Ref("refs/tags/v1.0.0")},
		{"Version", KeyVersion, "v1.0.0", Version("v1.0.0")},
		{"RunID", KeyRunID, "rid", RunID("rid")},
		{"Session", KeySession, "sid", Session("sid")},
		{"URL", KeyURL, "http://example", URL("http://example")},
		{"State", KeyState, "Searched", State("Searched")},
	}

	for _, tc := range cases {
		if tc.attr.Key != tc.attrKey {
			// Key drift would break log ingestion schemas.
			t.Fatalf("%s: expected key %s, got %s", tc.name, tc.attrKey, tc.attr.Key)
		}
		if tc.attr.Value.String() != tc.attrVal {
			t.Fatalf("%s: expected value %s, got %s", tc.name, tc.attrVal, tc.attr.Value.String())
		}
	}
}

func TestNumericAndErrorHelpers(t *testing.T) {
	if a := Count(3); a.Key != KeyCount || a.Value.Int64() != 3 {
		t.Fatalf("unexpected count attr %v", a)
	}
	if a := Bytes(42); a.Key != KeyBytes || a.Value.Int64() != 42 {
		t.Fatalf("unexpected bytes attr %v", a)
	}
	if a := Error(nil); a.Value.String() != "" {
		t.Fatalf("expected empty error value, got %q", a.Value.String())
	}
	if a := Error(errors.New("boom")); a.Value.String() != "boom" {
		t.Fatalf("expected boom, got %q", a.Value.String())
	}
}
