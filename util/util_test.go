package util

import (
	crand "crypto/rand"
	"encoding/hex"
	"math/big"
	"testing"
)

func TestCoinFormat(t *testing.T) {
	cases := map[string]string{
		"0":                       "0.000000000000000000",
		"1":                       "0.000000000000000001",
		"1000000000000000000":     "1.000000000000000000",
		"1250000000000000000":     "1.250000000000000000",
		"-1250000000000000000":    "-1.250000000000000000",
		"12345000000000000000000": "12345.000000000000000000",
	}
	for in, want := range cases {
		n, ok := new(big.Int).SetString(in, 10)
		if !ok {
			t.Fatal(in)
		}
		if got := FormatCoin(n); got != want {
			t.Errorf("FormatCoin(%s) = %s, want %s", in, got, want)
		}
	}
	if got := FormatCoin(nil); got != "0.000000000000000000" {
		t.Errorf("FormatCoin(nil) = %s", got)
	}
}

func TestCoinParse(t *testing.T) {
	cases := map[string]string{
		"0":                    "0",
		"1":                    "1000000000000000000",
		"1.25":                 "1250000000000000000",
		".5":                   "500000000000000000",
		"12345":                "12345000000000000000000",
		" 2.5 ":                "2500000000000000000",
		"0.000000000000000001": "1",
	}
	for in, want := range cases {
		n, err := ParseCoin(in)
		if err != nil {
			t.Errorf("ParseCoin(%q): %v", in, err)
			continue
		}
		if n.String() != want {
			t.Errorf("ParseCoin(%q) = %s, want %s", in, n, want)
		}
	}

	for _, in := range []string{"", "abc", "1.2.3", "0.0000000000000000001"} {
		if _, err := ParseCoin(in); err == nil {
			t.Errorf("ParseCoin(%q) accepted", in)
		}
	}
}

func TestCoinRoundTrip(t *testing.T) {
	for _, s := range []string{"0", "1", "999999999999999999", "1000000000000000001"} {
		n, ok := new(big.Int).SetString(s, 10)
		if !ok {
			t.Fatal(s)
		}
		back, err := ParseCoin(FormatCoin(n))
		if err != nil {
			t.Fatal(err)
		}
		if back.Cmp(n) != 0 {
			t.Errorf("round trip %s -> %s", n, back)
		}
	}
}

func TestIsHex(t *testing.T) {
	b := make([]byte, 64)
	crand.Read(b)
	if !IsHex(hex.EncodeToString(b)) {
		t.Fail()
	}
	x := "123456789/"
	if IsHex(x) {
		t.Fail()
	}
	x = "123456789="
	if IsHex(x) {
		t.Fail()
	}
	x = "123456789A"
	if IsHex(x) {
		t.Fail()
	}
	x = "123456789~"
	if IsHex(x) {
		t.Fail()
	}
}

func TestSafeAdd(t *testing.T) {
	if n, err := SafeAdd(2, 3); err != nil || n != 5 {
		t.Fatal(n, err)
	}
	if _, err := SafeAdd(^uint64(0), 1); err == nil {
		t.Fatal("overflow not detected")
	}
}
