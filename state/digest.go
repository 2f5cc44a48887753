package state

import (
	"crypto/sha256"

	"github.com/holiman/uint256"
)

// Digest returns a 256-bit fingerprint of the set's canonical form.
// Structurally equal sets always digest identically, so the value is
// usable directly as a visited-set map key during state space
// exploration.
func (s Set) Digest() uint256.Int {
	hash := sha256.Sum256([]byte(s.Key()))
	var d uint256.Int
	d.SetBytes(hash[:])
	return d
}

// DigestHex returns the fingerprint as a 0x-prefixed hex string.
func (s Set) DigestHex() string {
	d := s.Digest()
	return d.Hex()
}
