package address

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/calyx-network/calyx-client/config"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/blake2b"
)

const SIZE = 20

// Address is a 20-byte account or machine address. It has two interchangeable
// textual encodings: the native hex form ("0x" + 40 hex digits) and the
// delegated actor form (config.DELEGATED_ADDRESS_PREFIX + base32 payload with
// an embedded checksum).
type Address [SIZE]byte

// The zero-value of address is considered invalid
var INVALID_ADDRESS = Address{}

const checksumSize = 4

var b32 = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// FromPubKey derives the address from an uncompressed secp256k1 public key:
// the last 20 bytes of the keccak-256 hash of the key material.
func FromPubKey(pub *ecdsa.PublicKey) Address {
	return Address(ethcrypto.PubkeyToAddress(*pub))
}

// FromString parses either textual encoding.
func FromString(s string) (Address, error) {
	if strings.HasPrefix(s, config.HEX_ADDRESS_PREFIX) {
		return fromHex(s)
	}
	if strings.HasPrefix(s, config.DELEGATED_ADDRESS_PREFIX) {
		return fromDelegated(s)
	}
	return INVALID_ADDRESS, errors.New("invalid address prefix")
}

func fromHex(s string) (Address, error) {
	raw, err := hex.DecodeString(s[len(config.HEX_ADDRESS_PREFIX):])
	if err != nil {
		return INVALID_ADDRESS, errors.New("invalid hex address")
	}
	if len(raw) != SIZE {
		return INVALID_ADDRESS, errors.New("invalid address length")
	}
	return Address(raw), nil
}

func fromDelegated(s string) (Address, error) {
	data, err := b32.DecodeString(s[len(config.DELEGATED_ADDRESS_PREFIX):])
	if err != nil {
		return INVALID_ADDRESS, errors.New("invalid delegated address")
	}
	if len(data) != SIZE+checksumSize {
		return INVALID_ADDRESS, errors.New("invalid delegated address length")
	}
	if !bytes.Equal(checksum(data[:SIZE]), data[SIZE:]) {
		return INVALID_ADDRESS, errors.New("invalid address checksum")
	}
	return Address(data[:SIZE]), nil
}

func checksum(a []byte) []byte {
	h, _ := blake2b.New(checksumSize, nil)
	h.Write(a)
	return h.Sum(nil)
}

// Hex returns the native hex encoding.
func (a Address) Hex() string {
	return config.HEX_ADDRESS_PREFIX + hex.EncodeToString(a[:])
}

// Delegated returns the delegated actor encoding.
func (a Address) Delegated() string {
	return config.DELEGATED_ADDRESS_PREFIX + b32.EncodeToString(append(a[:], checksum(a[:])...))
}

func (a Address) String() string {
	return a.Delegated()
}

func (a Address) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

func (a *Address) UnmarshalJSON(c []byte) error {
	if len(c) < 2 || c[0] != '"' || c[len(c)-1] != '"' {
		return errors.New("invalid string literal")
	}

	addr, err := FromString(string(c[1 : len(c)-1]))
	if err != nil {
		return err
	}

	*a = addr

	return nil
}
