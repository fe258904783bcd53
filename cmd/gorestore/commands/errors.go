package commands

import "errors"

// ErrReported marks a failure whose details were already printed to the
// console. Callers should exit non-zero without printing it again.
var ErrReported = errors.New("failure already reported")
