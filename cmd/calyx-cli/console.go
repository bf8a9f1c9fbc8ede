package main

import (
	"context"
	"io"
	"strings"

	"github.com/calyx-network/calyx-client/account"
	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/machine"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/transaction"
	"github.com/calyx-network/calyx-client/util"

	"github.com/ergochat/readline"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func consoleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive console bound to the configured account",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
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
			return runConsole(a, c, bld, mode)
		},
	}
}

func runConsole(a *app, c *provider.Client, bld *transaction.Builder, mode provider.BroadcastMode) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[32m" + a.networkName + ">\033[0m ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()

	log.Info("account ", bld.Address())
	log.Info("type help for the command list")

	for {
		line, err := l.ReadLine()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}

		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			return nil
		}

		if err := consoleDispatch(a, c, bld, mode, args); err != nil {
			log.Error(err)
		}
	}
}

func consoleDispatch(a *app, c *provider.Client, bld *transaction.Builder, mode provider.BroadcastMode, args []string) error {
	ctx := context.Background()

	switch args[0] {
	case "help":
		log.Info("address                      show the account addresses")
		log.Info("balance                      show the account balances")
		log.Info("sequence                     show the next sequence")
		log.Info("transfer <recipient> <amt>   send funds to a subnet account")
		log.Info("machines                     list machines owned by the account")
		log.Info("exit                         leave the console")
		return nil

	case "address":
		log.Info("delegated: ", bld.Address().Delegated())
		log.Info("hex:       ", bld.Address().Hex())
		return nil

	case "balance":
		info, err := account.Info(ctx, c, bld.Address(), provider.Committed)
		if err != nil {
			return err
		}
		log.Info("balance:        ", util.FormatCoin(info.Balance))
		log.Info("parent balance: ", util.FormatCoin(info.ParentBalance))
		return nil

	case "sequence":
		seq, err := account.Sequence(ctx, c, bld.Address())
		if err != nil {
			return err
		}
		log.Info("sequence: ", seq)
		return nil

	case "transfer":
		if len(args) != 3 {
			return errUsage("transfer <recipient> <amount>")
		}
		recipient, err := address.FromString(args[1])
		if err != nil {
			return err
		}
		amount, err := util.ParseCoin(args[2])
		if err != nil {
			return err
		}
		res, err := account.Transfer(ctx, c, bld, recipient, amount, transaction.GasOpts{}, mode)
		if err != nil {
			return err
		}
		log.Info("tx ", res.Hash)
		if res.Committed {
			log.Info("committed at height ", res.Height, ", gas used ", res.GasUsed)
		}
		return nil

	case "machines":
		machines, err := machine.List(ctx, c, bld.Address(), provider.Committed)
		if err != nil {
			return err
		}
		if len(machines) == 0 {
			log.Info("no machines")
		}
		for _, m := range machines {
			log.Info(m.Kind, " ", m.Address)
		}
		return nil
	}

	return errUsage("unknown command, type help")
}

type usageError string

func (e usageError) Error() string { return string(e) }

func errUsage(s string) error { return usageError(s) }
