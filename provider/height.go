package provider

import (
	"strconv"

	"github.com/pkg/errors"
)

// Height selects the chain state a query runs against. Besides explicit block
// heights there are two symbolic selectors: Committed (latest finalized block)
// and Pending (latest state including uncommitted transactions). The symbolic
// selectors occupy the wire values 0 and 1; height 1 is the genesis block,
// which holds no queryable machine state.
type Height uint64

const (
	Committed Height = 0
	Pending   Height = 1
)

func AtHeight(h uint64) Height {
	return Height(h)
}

// ParseHeight reads "committed", "pending" or a decimal block height. The
// empty string means Committed.
func ParseHeight(s string) (Height, error) {
	switch s {
	case "", "committed":
		return Committed, nil
	case "pending":
		return Pending, nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return Committed, errors.Errorf("invalid height %q", s)
	}
	return Height(n), nil
}

func (h Height) String() string {
	switch h {
	case Committed:
		return "committed"
	case Pending:
		return "pending"
	}
	return strconv.FormatUint(uint64(h), 10)
}
