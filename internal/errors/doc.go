// Package errors provides structured, actionable errors for vfiber.
//
// Every error carries a code from a small registry:
//   - E1xx: hooks and components (hook order, panics in render or effects)
//   - E2xx: host adapter failures
//   - E3xx: render requests (invalid input, unmounted reconciler, update storms)
//   - E4xx: configuration
//   - E5xx: wire protocol
//   - E6xx: snapshot storage
//
// # Usage
//
//	err := errors.New(errors.CodeHostFailure).Wrap(cause)
//	if errors.Code(err) == errors.CodeHostFailure { ... }
//	errors.Print(os.Stderr, err)
package errors
