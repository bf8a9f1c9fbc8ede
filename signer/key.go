package signer

import (
	"crypto/ecdsa"
	"strings"

	"github.com/calyx-network/calyx-client/errs"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/tyler-smith/go-bip39"
	"github.com/zeebo/blake3"
)

// seed entropy in bytes
const SEED_ENTROPY = 16

// ParseKey decodes a secp256k1 private key from a hex string, with or without
// a 0x prefix.
func ParseKey(hexStr string) (*ecdsa.PrivateKey, error) {
	hexStr = strings.TrimPrefix(strings.TrimSpace(hexStr), "0x")

	key, err := ethcrypto.HexToECDSA(hexStr)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, err, "decoding private key")
	}
	return key, nil
}

// RandomKey generates a new private key from the system's CSPRNG.
func RandomKey() (*ecdsa.PrivateKey, error) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, err, "generating private key")
	}
	return key, nil
}

// NewMnemonic generates a seedphrase and returns it with the associated key.
func NewMnemonic() (string, *ecdsa.PrivateKey, error) {
	entropy, err := bip39.NewEntropy(SEED_ENTROPY * 8)
	if err != nil {
		return "", nil, errs.Wrap(errs.InvalidKey, err, "generating entropy")
	}
	seed, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", nil, errs.Wrap(errs.InvalidKey, err, "encoding mnemonic")
	}

	key, err := keyFromEntropy(entropy)
	if err != nil {
		return "", nil, err
	}
	return seed, key, nil
}

// KeyFromMnemonic decodes a seedphrase into the private key it was
// generated with.
func KeyFromMnemonic(seed string) (*ecdsa.PrivateKey, error) {
	entropy, err := bip39.EntropyFromMnemonic(seed)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, err, "decoding mnemonic")
	}
	return keyFromEntropy(entropy)
}

func keyFromEntropy(entropy []byte) (*ecdsa.PrivateKey, error) {
	sum := blake3.Sum256(entropy)
	key, err := ethcrypto.ToECDSA(sum[:])
	if err != nil {
		return nil, errs.Wrap(errs.InvalidKey, err, "deriving key from entropy")
	}
	return key, nil
}
