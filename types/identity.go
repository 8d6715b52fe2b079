package types

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// ValidateIdentity checks that addr has the shape of a faucet identity:
// a base58-encoded ed25519 public key. The host environment is trusted
// to have authenticated the caller; this only rejects malformed input.
func ValidateIdentity(addr string) error {
	if addr == "" {
		return fmt.Errorf("identity is empty")
	}
	raw, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("identity is not valid base58: %w", err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return fmt.Errorf("identity has invalid length %d, expected %d", len(raw), ed25519.PublicKeySize)
	}
	return nil
}
