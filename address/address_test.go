package address_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

func TestEncodingsRoundTrip(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := address.FromPubKey(&key.PublicKey)

	if addr == address.INVALID_ADDRESS {
		t.Fatal("derived the zero address")
	}

	fromHex, err := address.FromString(addr.Hex())
	if err != nil {
		t.Fatal(err)
	}
	if fromHex != addr {
		t.Errorf("hex round trip mismatch: %s != %s", fromHex, addr)
	}

	fromDel, err := address.FromString(addr.Delegated())
	if err != nil {
		t.Fatal(err)
	}
	if fromDel != addr {
		t.Errorf("delegated round trip mismatch: %s != %s", fromDel, addr)
	}
}

func TestDelegatedChecksum(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := address.FromPubKey(&key.PublicKey)

	del := addr.Delegated()
	if !strings.HasPrefix(del, config.DELEGATED_ADDRESS_PREFIX) {
		t.Fatalf("missing delegated prefix: %s", del)
	}

	// flip the last character to break the checksum
	last := del[len(del)-1]
	repl := byte('a')
	if last == repl {
		repl = 'b'
	}
	if _, err := address.FromString(del[:len(del)-1] + string(repl)); err == nil {
		t.Error("corrupted delegated address was accepted")
	}
}

func TestRejectsGarbage(t *testing.T) {
	for _, s := range []string{"", "zz", "0x1234", "0xnothex", config.DELEGATED_ADDRESS_PREFIX + "!!"} {
		if _, err := address.FromString(s); err == nil {
			t.Errorf("accepted invalid address %q", s)
		}
	}
}

func TestJSON(t *testing.T) {
	key, err := ethcrypto.GenerateKey()
	if err != nil {
		t.Fatal(err)
	}
	addr := address.FromPubKey(&key.PublicKey)

	enc, err := json.Marshal(addr)
	if err != nil {
		t.Fatal(err)
	}

	var got address.Address
	if err := json.Unmarshal(enc, &got); err != nil {
		t.Fatal(err)
	}
	if got != addr {
		t.Errorf("json round trip mismatch: %s != %s", got, addr)
	}
}
