package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for domain operations
var (
	// ErrNotAContract is returned when an address has no code on-chain
	ErrNotAContract = errors.New("no code at address")

	// ErrNotVerified is returned when on-chain code exists but the upstream
	// explorer has no verified source metadata for it
	ErrNotVerified = errors.New("contract not verified upstream")

	// ErrNoBytecode is returned when no tier of the fetch fallback produced bytecode
	ErrNoBytecode = errors.New("could not fetch deployed bytecode")

	// ErrArtifactNotFound is returned when a build produced no artifact for a contract
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrVerificationFailed is the run-level verdict when at least one
	// contract failed verification; main maps it to its own exit code
	ErrVerificationFailed = errors.New("verification failed")
)

// NoMappingError is returned when a canonical contract name has no entry in
// the contract mapping. Suggestions are nearest known names, display only.
type NoMappingError struct {
	Name        string
	Suggestions []string
}

func (e *NoMappingError) Error() string {
	if len(e.Suggestions) == 0 {
		return fmt.Sprintf("no source mapping for contract %q", e.Name)
	}
	return fmt.Sprintf("no source mapping for contract %q (closest: %s)",
		e.Name, strings.Join(e.Suggestions, ", "))
}

// NetworkError wraps a failed call to the explorer or RPC endpoint.
// Permanent errors (authentication, malformed request) are not retried;
// transient ones (timeouts, connection resets, upstream overload) are.
type NetworkError struct {
	Op        string
	Err       error
	Permanent bool
}

func (e *NetworkError) Error() string {
	kind := "transient"
	if e.Permanent {
		kind = "permanent"
	}
	return fmt.Sprintf("network error (%s) during %s: %v", kind, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// BuildError is returned when a group's compilation fails. It carries the
// workspace identity so the report names the failing checkout.
type BuildError struct {
	Repository string
	Ref        string
	Err        error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build failed for %s@%s: %v", e.Repository, shortRef(e.Ref), e.Err)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// BuildTimeoutError is returned when a group's compilation exceeded its budget.
type BuildTimeoutError struct {
	Repository string
	Ref        string
	Budget     string
}

func (e *BuildTimeoutError) Error() string {
	return fmt.Sprintf("build timed out after %s for %s@%s", e.Budget, e.Repository, shortRef(e.Ref))
}

// MismatchError is returned when normalized deployed and compiled bytecode
// differ. Offset is the index of the first differing byte.
type MismatchError struct {
	Offset int
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("bytecode mismatch at byte %d", e.Offset)
}

func shortRef(ref string) string {
	if len(ref) > 12 {
		return ref[:12]
	}
	return ref
}
