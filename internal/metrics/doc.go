// Package metrics records what the build hooks and the smoke test did.
//
// Components receive a Recorder and default to NoopRecorder, so metrics stay
// optional and no call site needs a nil check:
//
//	rewriter := manifest.NewRewriter(prefix) // NoopRecorder
//	rewriter = rewriter.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// sitehooks is a one-shot CLI, so there is nothing to scrape. When
// metrics.textfile is configured the CLI flushes the registry to a
// node_exporter textfile collector file after the command finishes.
package metrics
