// Package signer owns a secp256k1 private key for the duration of a session
// and produces recoverable signatures over transaction digests. It has no
// network dependency and never logs or persists key material.
package signer

import (
	"crypto/ecdsa"
	"encoding/hex"
	"errors"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/errs"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

const SIGNATURE_SIZE = 65

// Signature is a 64-byte ECDSA signature followed by a one-byte recovery id.
type Signature [SIGNATURE_SIZE]byte

func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

func (s Signature) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *Signature) UnmarshalJSON(c []byte) error {
	if len(c) != SIGNATURE_SIZE*2+2 || c[0] != '"' || c[len(c)-1] != '"' {
		return errors.New("invalid signature literal")
	}

	dst := make([]byte, SIGNATURE_SIZE)
	if _, err := hex.Decode(dst, c[1:len(c)-1]); err != nil {
		return err
	}
	*s = Signature(dst)

	return nil
}

type Signer struct {
	key  *ecdsa.PrivateKey
	addr address.Address
}

func New(key *ecdsa.PrivateKey) (*Signer, error) {
	if key == nil {
		return nil, errs.New(errs.InvalidKey, "nil private key")
	}
	return &Signer{
		key:  key,
		addr: address.FromPubKey(&key.PublicKey),
	}, nil
}

func (s *Signer) Address() address.Address {
	return s.addr
}

// Sign produces a deterministic recoverable signature over a 32-byte digest.
func (s *Signer) Sign(digest [32]byte) (Signature, error) {
	sig, err := ethcrypto.Sign(digest[:], s.key)
	if err != nil {
		return Signature{}, errs.Wrap(errs.InvalidKey, err, "signing digest")
	}
	return Signature(sig), nil
}

// Verify reports whether sig over digest recovers to the expected address.
func Verify(digest [32]byte, sig Signature, expected address.Address) bool {
	pub, err := ethcrypto.SigToPub(digest[:], sig[:])
	if err != nil {
		return false
	}
	return address.FromPubKey(pub) == expected
}
