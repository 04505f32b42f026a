package chain

import (
	"encoding/hex"
	"strings"
)

const redacted = "[REDACTED]"

// PrivateKey holds signing key material. It never renders its contents:
// logging, printing, or serializing a PrivateKey yields a redacted marker,
// and only Reveal returns the raw hex.
type PrivateKey struct {
	hex string
}

// ParsePrivateKey validates key material structurally (hex, 32 bytes, with
// or without a 0x prefix). It does not contact the ledger.
func ParsePrivateKey(material string) (PrivateKey, error) {
	normalized := strings.TrimPrefix(strings.TrimSpace(material), "0x")
	raw, err := hex.DecodeString(normalized)
	if err != nil || len(raw) != 32 {
		return PrivateKey{}, ErrInvalidKey
	}
	return PrivateKey{hex: normalized}, nil
}

// Reveal returns the raw hex key without a 0x prefix. Callers are expected
// to pass the result straight into a signer and nowhere else.
func (k PrivateKey) Reveal() string { return k.hex }

// IsZero reports whether the key carries no material.
func (k PrivateKey) IsZero() bool { return k.hex == "" }

func (k PrivateKey) String() string   { return redacted }
func (k PrivateKey) GoString() string { return redacted }

// MarshalJSON redacts the key in any serialized payload.
func (k PrivateKey) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}
