package streamguard

import "errors"

// Sentinel errors returned by rule and config constructors. Operations
// are infallible at the core Feed/Reset API; invalid constructions are
// rejected here, at the boundary, instead of panicking.
var (
	// ErrEmptyTokenList is returned when a forbidden-sequence rule is
	// constructed with zero tokens.
	ErrEmptyTokenList = errors.New("streamguard: forbidden-sequence rule requires at least one token")

	// ErrEmptyToken is returned when a forbidden-sequence rule is
	// constructed with a blank token in its token list.
	ErrEmptyToken = errors.New("streamguard: forbidden-sequence token must not be empty")

	// ErrEmptyPattern is returned when a pattern rule is constructed
	// with an empty custom pattern literal.
	ErrEmptyPattern = errors.New("streamguard: pattern rule requires a non-empty pattern")

	// ErrInvalidDecay is returned when a decay coefficient outside
	// [0, 1] is supplied to an engine constructor.
	ErrInvalidDecay = errors.New("streamguard: decay coefficient must be in [0, 1]")

	// ErrInvalidThreshold is returned when a non-positive score
	// threshold is supplied to an engine constructor.
	ErrInvalidThreshold = errors.New("streamguard: score threshold must be positive")
)
