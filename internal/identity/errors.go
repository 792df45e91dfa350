package identity

import "errors"

var (
	// ErrInvalidCode indicates input that is empty or has no representable
	// characters after canonicalization.
	ErrInvalidCode = errors.New("invalid product code")

	// ErrGenerationExhausted indicates both the plain and suffixed
	// identifier candidates are held by other owners.
	ErrGenerationExhausted = errors.New("identifier generation exhausted")
)
