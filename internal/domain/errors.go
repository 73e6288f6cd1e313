package domain

import "fmt"

// Error kinds. Every operation rejects before any state change, so callers
// can branch on the kind alone. A zero-value kind matches any error of the
// same kind via errors.Is; a kind with a Reason matches only that reason.

// ValidationError rejects malformed input shape, length, or range.
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	if e.Reason == "" {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s", e.Reason)
}

// Is enables errors.Is matching on ValidationError.
func (e ValidationError) Is(target error) bool {
	if t, ok := target.(ValidationError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	if t, ok := target.(*ValidationError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	return false
}

// StateError rejects an operation whose precondition does not hold.
type StateError struct {
	Reason string
}

func (e StateError) Error() string {
	if e.Reason == "" {
		return "invalid state"
	}
	return fmt.Sprintf("invalid state: %s", e.Reason)
}

func (e StateError) Is(target error) bool {
	if t, ok := target.(StateError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	if t, ok := target.(*StateError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	return false
}

// ResourceLimitError rejects an operation that would cross a balance or
// supply limit.
type ResourceLimitError struct {
	Reason string
}

func (e ResourceLimitError) Error() string {
	if e.Reason == "" {
		return "resource limit exceeded"
	}
	return fmt.Sprintf("resource limit exceeded: %s", e.Reason)
}

func (e ResourceLimitError) Is(target error) bool {
	if t, ok := target.(ResourceLimitError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	if t, ok := target.(*ResourceLimitError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	return false
}

// AuthorizationError rejects a caller that is not the protocol or owner.
type AuthorizationError struct {
	Reason string
}

func (e AuthorizationError) Error() string {
	if e.Reason == "" {
		return "unauthorized"
	}
	return fmt.Sprintf("unauthorized: %s", e.Reason)
}

func (e AuthorizationError) Is(target error) bool {
	if t, ok := target.(AuthorizationError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	if t, ok := target.(*AuthorizationError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	return false
}

// ExternalVerificationError surfaces a rejected identity proof or signature.
type ExternalVerificationError struct {
	Reason string
}

func (e ExternalVerificationError) Error() string {
	if e.Reason == "" {
		return "verification failed"
	}
	return fmt.Sprintf("verification failed: %s", e.Reason)
}

func (e ExternalVerificationError) Is(target error) bool {
	if t, ok := target.(ExternalVerificationError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	if t, ok := target.(*ExternalVerificationError); ok {
		return t.Reason == "" || t.Reason == e.Reason
	}
	return false
}

var (
	ErrZeroAmount         = ValidationError{Reason: "amount must be positive"}
	ErrInvalidInputLength = ValidationError{Reason: "answers and preferences must have exactly 10 entries"}
	ErrEmptyReference     = ValidationError{Reason: "content and public key references must not be empty"}
	ErrBelowMinimumStake  = ValidationError{Reason: "amount below weekly stake amount"}

	ErrProfileNotFound = StateError{Reason: "profile not found"}
	ErrAlreadyStaked   = StateError{Reason: "account already staked this period"}
	ErrTooEarly        = StateError{Reason: "matching interval has not elapsed"}
	ErrProposalClosed  = StateError{Reason: "proposal is not open for voting"}
	ErrAlreadyVoted    = StateError{Reason: "account already voted on proposal"}

	ErrInsufficientBalance = ResourceLimitError{Reason: "insufficient liquid balance"}
	ErrInsufficientStaked  = ResourceLimitError{Reason: "insufficient staked balance"}
	ErrMaxSupplyExceeded   = ResourceLimitError{Reason: "mint would exceed max supply"}
	ErrQueueFull           = ResourceLimitError{Reason: "matching queue is full"}

	ErrNotAuthorized = AuthorizationError{}

	ErrInvalidSignature = ExternalVerificationError{Reason: "attestation signer is not the trusted authority"}
	ErrProofRejected    = ExternalVerificationError{Reason: "identity proof rejected by verifier"}
)
