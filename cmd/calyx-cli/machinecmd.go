package main

import (
	"context"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/machine"

	"github.com/spf13/cobra"
)

func machineCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "machine",
		Short: "Inspect deployed machines",
	}
	cmd.AddCommand(
		machineInfoCmd(a),
		machineListCmd(a),
	)
	return cmd
}

func machineInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <address>",
		Short: "Show a machine's kind, owner and metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := address.FromString(args[0])
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
			info, err := machine.Info(context.Background(), c, addr, height)
			if err != nil {
				return err
			}
			return printJSON(info)
		},
	}
}

func machineListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [owner]",
		Short: "List the machines owned by an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			owner, err := a.signerAddress(args)
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
			machines, err := machine.List(context.Background(), c, owner, height)
			if err != nil {
				return err
			}
			return printJSON(machines)
		},
	}
}
