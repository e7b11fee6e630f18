package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"
)

// KeyManager owns the signing keys and publishes them through a KeySet.
// The newest key signs; older keys stay in the set so tokens they issued
// keep verifying until they expire.
type KeyManager struct {
	signers []*EdDSASigner
	keys    *KeySet
}

// NewKeyManager builds a manager from existing private keys, newest first.
func NewKeyManager(privs ...ed25519.PrivateKey) (*KeyManager, error) {
	if len(privs) == 0 {
		return nil, errors.New("jwtx: at least one signing key is required")
	}
	km := &KeyManager{keys: NewKeySet()}
	for _, priv := range privs {
		s, err := NewEdDSASigner("", priv)
		if err != nil {
			return nil, err
		}
		if err := km.keys.AddSigner(s); err != nil {
			return nil, err
		}
		km.signers = append(km.signers, s)
	}
	return km, nil
}

// NewEphemeralKeyManager generates a single in-memory key. Tokens do not
// survive a restart.
func NewEphemeralKeyManager() (*KeyManager, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate key: %w", err)
	}
	return NewKeyManager(priv)
}

// GetSigner returns the active signer.
func (km *KeyManager) GetSigner() Signer { return km.signers[0] }

// KeySet exposes the verification keys.
func (km *KeyManager) KeySet() *KeySet { return km.keys }
