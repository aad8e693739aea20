package fiber

import "github.com/vango-dev/vfiber/internal/errors"

// ErrUnmounted is returned by a reconciler after Unmount.
// Match it with errors.Is.
var ErrUnmounted error = errors.New(errors.CodeUnmounted)

// ErrUpdateStorm matches the error Flush returns when its commit limit is hit.
var ErrUpdateStorm error = errors.New(errors.CodeUpdateStorm)
