// Package account bundles the account-level operations: state inspection and
// the fund-movement transactions (deposit from the parent chain, withdrawal
// back to it, and subnet-internal transfers).
package account

import (
	"context"
	"math/big"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/transaction"
)

// Info reads an account's sequence and balances at the requested height.
func Info(ctx context.Context, c *provider.Client, addr address.Address, height provider.Height) (*provider.AccountInfo, error) {
	return c.AccountInfo(ctx, addr, height)
}

// Sequence reads an account's next sequence, counting pending transactions.
func Sequence(ctx context.Context, c *provider.Client, addr address.Address) (uint64, error) {
	return c.AccountSequence(ctx, addr)
}

// Deposit moves funds from the parent chain into a subnet account.
func Deposit(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	recipient address.Address,
	amount *big.Int,
	gas transaction.GasOpts,
	mode provider.BroadcastMode,
) (*provider.TxResult, error) {
	call := &transaction.Deposit{
		Recipient: recipient,
		Amount:    amount,
	}
	return c.SendCall(ctx, bld, call, gas, mode)
}

// Withdraw moves funds from a subnet account back to the parent chain.
func Withdraw(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	recipient address.Address,
	amount *big.Int,
	gas transaction.GasOpts,
	mode provider.BroadcastMode,
) (*provider.TxResult, error) {
	call := &transaction.Withdraw{
		Recipient: recipient,
		Amount:    amount,
	}
	return c.SendCall(ctx, bld, call, gas, mode)
}

// Transfer moves funds between two subnet accounts.
func Transfer(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	recipient address.Address,
	amount *big.Int,
	gas transaction.GasOpts,
	mode provider.BroadcastMode,
) (*provider.TxResult, error) {
	call := &transaction.Transfer{
		Recipient: recipient,
		Amount:    amount,
	}
	return c.SendCall(ctx, bld, call, gas, mode)
}
