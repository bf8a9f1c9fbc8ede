package machine

import (
	"context"
	"encoding/json"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/transaction"
	"github.com/calyx-network/calyx-client/util"

	"github.com/pkg/errors"
)

// Timehub is a handle to a deployed append-only log.
type Timehub struct {
	Address address.Address
}

// NewTimehub deploys a timehub machine.
func NewTimehub(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	owner address.Address,
	metadata map[string]string,
	gas transaction.GasOpts,
) (*Timehub, *provider.TxResult, error) {
	addr, res, err := Create(ctx, c, bld, KindTimehub, owner, metadata, gas)
	if err != nil {
		return nil, nil, err
	}
	return AttachTimehub(addr), res, nil
}

// AttachTimehub wraps an existing timehub address.
func AttachTimehub(addr address.Address) *Timehub {
	return &Timehub{Address: addr}
}

// PushReturn is the receipt payload of a push: the entry's assigned index and
// the new MMR root anchoring it.
type PushReturn struct {
	Root  util.Hash `json:"root"`
	Index uint64    `json:"index"`
}

// Push appends a payload to the log. The chain assigns the next index
// strictly sequentially; it is only known for commit-mode submissions, where
// the receipt is decoded into a PushReturn. Async and sync pushes return a
// nil PushReturn.
func (t *Timehub) Push(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	payload []byte,
	gas transaction.GasOpts,
	mode provider.BroadcastMode,
) (*PushReturn, *provider.TxResult, error) {
	call := &transaction.PushEntry{
		Machine: t.Address,
		Payload: payload,
	}
	res, err := c.SendCall(ctx, bld, call, gas, mode)
	if err != nil {
		return nil, nil, err
	}
	if !res.Committed {
		return nil, res, nil
	}

	ret := &PushReturn{}
	if err := json.Unmarshal(res.Data, ret); err != nil {
		return nil, nil, errors.Wrap(err, "decoding push receipt")
	}
	return ret, res, nil
}

// Leaf fetches the entry at index together with the block time of its
// inclusion.
func (t *Timehub) Leaf(ctx context.Context, c *provider.Client, index uint64, height provider.Height) (*provider.TimehubLeaf, error) {
	return c.TimehubLeaf(ctx, t.Address, index, height)
}

// Count reports the number of entries.
func (t *Timehub) Count(ctx context.Context, c *provider.Client, height provider.Height) (uint64, error) {
	return c.TimehubCount(ctx, t.Address, height)
}

// Peaks fetches the MMR peak hashes.
func (t *Timehub) Peaks(ctx context.Context, c *provider.Client, height provider.Height) ([]util.Hash, error) {
	return c.TimehubPeaks(ctx, t.Address, height)
}

// Root fetches the single MMR root hash.
func (t *Timehub) Root(ctx context.Context, c *provider.Client, height provider.Height) (util.Hash, error) {
	return c.TimehubRoot(ctx, t.Address, height)
}
