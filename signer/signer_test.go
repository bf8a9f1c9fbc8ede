package signer_test

import (
	"errors"
	"testing"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/signer"

	"github.com/zeebo/blake3"
)

func TestParseKey(t *testing.T) {
	const hexKey = "4c0883a69102937d6231471b5dbb6204fe512961708279feb1be6ae5538da033"

	for _, in := range []string{hexKey, "0x" + hexKey, "  " + hexKey} {
		key, err := signer.ParseKey(in)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", in, err)
		}
		if key == nil {
			t.Fatal("nil key")
		}
	}

	for _, in := range []string{"", "zz", "0x12", hexKey + "00"} {
		_, err := signer.ParseKey(in)
		if !errors.Is(err, errs.InvalidKey) {
			t.Errorf("ParseKey(%q) = %v, want InvalidKey", in, err)
		}
	}
}

func TestSignAndVerify(t *testing.T) {
	key, err := signer.RandomKey()
	if err != nil {
		t.Fatal(err)
	}
	s, err := signer.New(key)
	if err != nil {
		t.Fatal(err)
	}

	digest := blake3.Sum256([]byte("payload"))
	sig, err := s.Sign(digest)
	if err != nil {
		t.Fatal(err)
	}

	if !signer.Verify(digest, sig, s.Address()) {
		t.Error("signature did not verify against signer address")
	}

	other := blake3.Sum256([]byte("other payload"))
	if signer.Verify(other, sig, s.Address()) {
		t.Error("signature verified against a different digest")
	}

	// a different key must not recover to the same address
	key2, _ := signer.RandomKey()
	s2, _ := signer.New(key2)
	if s2.Address() == s.Address() {
		t.Fatal("two random keys derived the same address")
	}
	if signer.Verify(digest, sig, s2.Address()) {
		t.Error("signature verified against the wrong address")
	}
}

func TestSignDeterministic(t *testing.T) {
	key, _ := signer.RandomKey()
	s, _ := signer.New(key)

	digest := blake3.Sum256([]byte("same payload"))
	a, err := s.Sign(digest)
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Sign(digest)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("signing the same digest twice produced different signatures")
	}
}

func TestMnemonicRoundTrip(t *testing.T) {
	seed, key, err := signer.NewMnemonic()
	if err != nil {
		t.Fatal(err)
	}

	restored, err := signer.KeyFromMnemonic(seed)
	if err != nil {
		t.Fatal(err)
	}

	a := address.FromPubKey(&key.PublicKey)
	b := address.FromPubKey(&restored.PublicKey)
	if a != b {
		t.Errorf("restored key derives %s, want %s", b, a)
	}

	if _, err := signer.KeyFromMnemonic("definitely not a seedphrase"); !errors.Is(err, errs.InvalidKey) {
		t.Errorf("bad mnemonic: got %v, want InvalidKey", err)
	}
}
