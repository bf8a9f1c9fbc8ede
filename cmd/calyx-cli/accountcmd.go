package main

import (
	"context"
	"encoding/hex"
	"math/big"

	"github.com/calyx-network/calyx-client/account"
	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/signer"
	"github.com/calyx-network/calyx-client/transaction"
	"github.com/calyx-network/calyx-client/util"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

func accountCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account management: create, inspect and move funds",
	}
	cmd.AddCommand(
		accountCreateCmd(),
		accountRestoreCmd(),
		accountInfoCmd(a),
		accountSequenceCmd(a),
		accountBalanceCmd(a),
		accountSendCmd(a, "deposit", "Deposit funds from the parent chain into a subnet account", account.Deposit),
		accountSendCmd(a, "withdraw", "Withdraw funds from a subnet account back to the parent chain", account.Withdraw),
		accountSendCmd(a, "transfer", "Transfer funds between two subnet accounts", account.Transfer),
	)
	return cmd
}

func accountCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Generate a new account with a seedphrase",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			seed, key, err := signer.NewMnemonic()
			if err != nil {
				return err
			}
			sgn, err := signer.New(key)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{
				"address":     sgn.Address().Delegated(),
				"hex_address": sgn.Address().Hex(),
				"private_key": hex.EncodeToString(ethcrypto.FromECDSA(key)),
				"seedphrase":  seed,
			})
		},
	}
}

func accountRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <seedphrase>",
		Short: "Restore an account from its seedphrase",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			seed := ""
			for i, w := range args {
				if i > 0 {
					seed += " "
				}
				seed += w
			}
			key, err := signer.KeyFromMnemonic(seed)
			if err != nil {
				return err
			}
			sgn, err := signer.New(key)
			if err != nil {
				return err
			}
			return printJSON(map[string]string{
				"address":     sgn.Address().Delegated(),
				"hex_address": sgn.Address().Hex(),
				"private_key": hex.EncodeToString(ethcrypto.FromECDSA(key)),
			})
		},
	}
}

func accountInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info [address]",
		Short: "Show an account's sequence and balances",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := a.signerAddress(args)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			height, err := a.height()
			if err != nil {
				return err
			}
			info, err := account.Info(context.Background(), c, addr, height)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"address":        addr,
				"sequence":       info.Sequence,
				"balance":        util.FormatCoin(info.Balance),
				"parent_balance": util.FormatCoin(info.ParentBalance),
			})
		},
	}
}

func accountSequenceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sequence [address]",
		Short: "Show an account's next sequence, counting pending transactions",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := a.signerAddress(args)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			seq, err := account.Sequence(context.Background(), c, addr)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{"address": addr, "sequence": seq})
		},
	}
}

func accountBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance [address]",
		Short: "Show an account's subnet balance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := a.signerAddress(args)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			height, err := a.height()
			if err != nil {
				return err
			}
			info, err := account.Info(context.Background(), c, addr, height)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"address": addr,
				"balance": util.FormatCoin(info.Balance),
			})
		},
	}
}

type sendFunc func(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	recipient address.Address,
	amount *big.Int,
	gas transaction.GasOpts,
	mode provider.BroadcastMode,
) (*provider.TxResult, error)

func accountSendCmd(a *app, use, short string, send sendFunc) *cobra.Command {
	gas := &gasFlags{}
	cmd := &cobra.Command{
		Use:   use + " <recipient> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			recipient, err := address.FromString(args[0])
			if err != nil {
				return err
			}
			amount, err := util.ParseCoin(args[1])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			bld, err := a.builder(c)
			if err != nil {
				return err
			}
			mode, err := a.mode()
			if err != nil {
				return err
			}
			opts, err := gas.opts()
			if err != nil {
				return err
			}
			res, err := send(context.Background(), c, bld, recipient, amount, opts, mode)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	gas.register(cmd.Flags())
	return cmd
}
