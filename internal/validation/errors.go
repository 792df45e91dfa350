package validation

import "errors"

// ErrInsufficientChecks indicates no check with a positive weight was
// present, so no meaningful score can be computed.
var ErrInsufficientChecks = errors.New("insufficient check results")
