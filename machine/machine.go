// Package machine is the SDK surface for the chain's two machine kinds:
// buckets (key-value object stores) and timehubs (append-only MMR-anchored
// logs). Machines are deployed through the registry actor; their addresses
// are assigned by the chain and returned in the create receipt.
package machine

import (
	"context"
	"encoding/json"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/transaction"

	"github.com/pkg/errors"
)

const (
	KindBucket  = transaction.KindBucket
	KindTimehub = transaction.KindTimehub
)

// CreateReturn is the payload a create transaction leaves in its receipt.
type CreateReturn struct {
	Address address.Address `json:"address"`
}

// Create deploys a machine and waits for the committed receipt carrying its
// chain-assigned address. Deployment always uses commit mode: the address
// only exists once the transaction lands in a block.
func Create(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	kind transaction.MachineKind,
	owner address.Address,
	metadata map[string]string,
	gas transaction.GasOpts,
) (address.Address, *provider.TxResult, error) {
	call := &transaction.CreateMachine{
		Kind:     kind,
		Owner:    owner,
		Metadata: metadata,
	}
	res, err := c.SendCall(ctx, bld, call, gas, provider.ModeCommit)
	if err != nil {
		return address.INVALID_ADDRESS, nil, err
	}

	ret := CreateReturn{}
	if err := json.Unmarshal(res.Data, &ret); err != nil {
		return address.INVALID_ADDRESS, nil, errors.Wrap(err, "decoding create receipt")
	}
	return ret.Address, res, nil
}

// Info resolves a machine's kind, owner and metadata.
func Info(ctx context.Context, c *provider.Client, addr address.Address, height provider.Height) (*provider.MachineInfo, error) {
	return c.MachineInfo(ctx, addr, height)
}

// List returns the machines owned by an account.
func List(ctx context.Context, c *provider.Client, owner address.Address, height provider.Height) ([]provider.MachineRef, error) {
	return c.ListMachines(ctx, owner, height)
}
