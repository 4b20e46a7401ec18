package attention

import "errors"

// Every message is prefixed with "attention: ..." so log lines can be grepped.
// Return these wrapped with fmt.Errorf("%w: detail", ErrX); callers match
// them with errors.Is.
var (
	// ErrInvalidInput is returned when a caller-supplied image or fusion
	// argument fails validation. Nothing is computed when it is returned.
	ErrInvalidInput = errors.New("attention: invalid input")

	// ErrInvalidConfiguration is returned by feature constructors whose
	// parameters violate the feature's documented constraints.
	ErrInvalidConfiguration = errors.New("attention: invalid configuration")

	// ErrContractViolation signals that a raw computation returned a map with
	// the wrong shape or non-finite values. It indicates an implementation
	// bug, never a caller mistake.
	ErrContractViolation = errors.New("attention: contract violation")
)
