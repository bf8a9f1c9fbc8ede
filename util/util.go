package util

import (
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/calyx-network/calyx-client/config"

	"github.com/sasha-s/go-deadlock"
)

// FormatCoin renders an atomic-unit amount with config.ATOMIC decimal digits.
func FormatCoin(n *big.Int) string {
	if n == nil {
		n = new(big.Int)
	}
	s := n.String()

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	for len(s) < config.ATOMIC+1 {
		s = "0" + s
	}
	s = s[:len(s)-config.ATOMIC] + "." + s[len(s)-config.ATOMIC:]
	if neg {
		s = "-" + s
	}
	return s
}

// ParseCoin converts a decimal token amount like "1.25" into atomic units.
func ParseCoin(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.New("empty amount")
	}

	whole, frac, _ := strings.Cut(s, ".")
	if len(frac) > config.ATOMIC {
		return nil, errors.New("too many decimal digits")
	}
	frac = frac + strings.Repeat("0", config.ATOMIC-len(frac))
	if whole == "" {
		whole = "0"
	}

	n, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, errors.New("invalid amount")
	}
	return n, nil
}

func init() {
	deadlock.Opts.DeadlockTimeout = 30 * time.Second
}

type Mutex = deadlock.Mutex
type RWMutex = deadlock.RWMutex

func IsHex(s string) bool {
	for _, v := range s {
		if v < '0' || v > 'f' || (v > '9' && v < 'a') {
			return false
		}
	}
	return true
}

func SafeAdd(a, b uint64) (uint64, error) {
	if a+b < a {
		return 0, errors.New("overflow")
	}
	return a + b, nil
}
