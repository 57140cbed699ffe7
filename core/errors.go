package core

import "fmt"

// Error categories. Every error the core returns is tagged with one of these
// stable prefixes so a host can match on category without depending on the
// exact message (spec §7).
const (
	prefixValidation    = "validation"
	prefixAuthorization = "authorization"
	prefixStateConflict = "state_conflict"
	prefixArithmetic    = "arithmetic"
	prefixConsensus     = "consensus"
	prefixStorage       = "storage"
)

// newErr formats format/args exactly as fmt.Errorf would, prefixed with the
// stable category tag. Callers that hold an underlying error use %w in
// format (not %v) so the result is unwrappable via errors.Is/errors.As.
func newErr(prefix, format string, args ...interface{}) error {
	return fmt.Errorf("%s: "+format, append([]interface{}{prefix}, args...)...)
}

func errValidation(format string, args ...interface{}) error {
	return newErr(prefixValidation, format, args...)
}

func errAuthorization(format string, args ...interface{}) error {
	return newErr(prefixAuthorization, format, args...)
}

func errStateConflict(format string, args ...interface{}) error {
	return newErr(prefixStateConflict, format, args...)
}

func errArithmetic(format string, args ...interface{}) error {
	return newErr(prefixArithmetic, format, args...)
}

func errConsensus(format string, args ...interface{}) error {
	return newErr(prefixConsensus, format, args...)
}

func errStorage(format string, args ...interface{}) error {
	return newErr(prefixStorage, format, args...)
}

// Sentinel, named errors referenced directly by callers and tests.
var (
	ErrPowVerificationFailed = errConsensus("PowVerificationFailed")
	ErrNotGenesisAuthority   = errAuthorization("NotGenesisAuthority")
	ErrNotArchon             = errAuthorization("NotArchon")
	ErrNotOwner              = errAuthorization("NotOwner")
	ErrNotSeller             = errAuthorization("NotSeller")
	ErrOverflow              = errArithmetic("Overflow")
	ErrNftIdOverflow         = errArithmetic("NftIdOverflow")
	ErrListingIdOverflow     = errArithmetic("ListingIdOverflow")
	ErrInsufficientBalance   = errStateConflict("InsufficientBalance")
	ErrProfileAlreadyExists  = errStateConflict("ProfileAlreadyExists")
	ErrProfileNotFound       = errStateConflict("ProfileNotFound")
	ErrNftNotFound           = errStateConflict("NftNotFound")
	ErrAssetNotFound         = errStateConflict("AssetNotFound")
	ErrListingNotFound       = errStateConflict("ListingNotFound")
)

// ErrInvalidNonce reports a nonce mismatch with the expected and received
// values baked into the message, per spec §4.5.
func ErrInvalidNonce(expected, got uint64) error {
	return errStateConflict("InvalidNonce{expected=%d, got=%d}", expected, got)
}

// ErrUnknownModule reports dispatch failure to find a registered module.
func ErrUnknownModule(moduleID string) error {
	return errConsensus("UnknownModule(%s)", moduleID)
}

// ErrUnknownCall reports dispatch failure to find a call within a module.
func ErrUnknownCall(moduleID, callID string) error {
	return errConsensus("UnknownCall(%s.%s)", moduleID, callID)
}
