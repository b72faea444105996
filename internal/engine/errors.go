package engine

// constError is an immutable error type for sentinel errors.
// It implements the error interface and provides compile-time safety.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for structurally invalid or degenerate input. These are
// the fatal class of errors: recoverable cross-field violations travel in
// ValidationResult instead.
var (
	// ErrStructuralValidation indicates a missing required field or an
	// unknown enum value, detected before any computation starts.
	ErrStructuralValidation = constError("structurally invalid input")

	// ErrDegenerateInput indicates a zero denominator the validator should
	// have caught (zero feed protein, zero production volume). It is
	// surfaced explicitly instead of propagating NaN.
	ErrDegenerateInput = constError("degenerate input")

	// ErrValidationFailed indicates recoverable validation violations that
	// the caller chose to treat as aborting the run.
	ErrValidationFailed = constError("input validation failed")

	// ErrAllocationDenominator indicates the allocation basis sums to
	// zero, so no share can be computed.
	ErrAllocationDenominator = constError("allocation denominator is zero")

	// ErrNoSamples indicates a Monte Carlo run finished with no usable
	// samples, typically after early cancellation.
	ErrNoSamples = constError("no simulation samples collected")
)
