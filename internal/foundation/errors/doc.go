// Package errors provides the classified error primitives used across sitehooks.
//
// Every failure that crosses a component boundary (manifest rewrite, asset
// publishing, browser smoke test, CLI input) is returned as a ClassifiedError
// so the CLI can pick an exit code and a message without string matching.
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "read manifest").
//		WithContext("path", path).
//		Build()
package errors
