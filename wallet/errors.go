package wallet

import (
	"errors"
	"fmt"
)

// CodeUserRejected is the EIP-1193 code a wallet returns when the user
// declines a signature request.
const CodeUserRejected = 4001

// ProviderError is an error raised by the wallet provider itself, carrying an
// EIP-1193 style numeric code.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s (code %d)", e.Message, e.Code)
}

var (
	// ErrUserRejected is returned by the signer when the user declines to sign.
	ErrUserRejected = &ProviderError{Code: CodeUserRejected, Message: "User denied transaction signature."}

	ErrNoAccounts     = errors.New("wallet: no accounts available")
	ErrNoBackend      = errors.New("wallet: no RPC backend")
	ErrUnknownAccount = errors.New("wallet: unknown account")
)

// IsUserRejected reports whether err, or anything it wraps, is a provider
// error with the user-rejected code.
func IsUserRejected(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Code == CodeUserRejected
}
