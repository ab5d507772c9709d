package domain

import "errors"

var (
	// ErrPathOutsideRoot is returned when a path does not live under the working directory.
	ErrPathOutsideRoot = errors.New("path outside working directory")
	// ErrNoWork is returned when no source file qualifies for test generation.
	ErrNoWork = errors.New("nothing to do")
	// ErrNoProvider is returned when no suggestion provider is available.
	ErrNoProvider = errors.New("no suggestion provider available")
	// ErrProviderEmpty is returned when every available provider answered with nothing.
	ErrProviderEmpty = errors.New("providers returned no suggestion")
	// ErrUnusable is returned when a suggestion contains no test function.
	ErrUnusable = errors.New("suggestion contains no test functions")
	// ErrValidationFailed is returned after a failed validation has been rolled back.
	ErrValidationFailed = errors.New("generated tests failed validation")
)
