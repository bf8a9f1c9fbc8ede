package main

import (
	"context"
	"strconv"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/machine"
	"github.com/calyx-network/calyx-client/provider"

	"github.com/spf13/cobra"
)

func timehubCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timehub",
		Short: "Append-only verifiable log operations",
	}
	cmd.AddCommand(
		timehubCreateCmd(a),
		timehubListCmd(a),
		timehubPushCmd(a),
		timehubLeafCmd(a),
		timehubCountCmd(a),
		timehubPeaksCmd(a),
		timehubRootCmd(a),
	)
	return cmd
}

func timehubCreateCmd(a *app) *cobra.Command {
	var metaPairs []string
	gas := &gasFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Deploy a new timehub machine",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			md, err := parseMeta(metaPairs)
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
			opts, err := gas.opts()
			if err != nil {
				return err
			}
			t, res, err := machine.NewTimehub(context.Background(), c, bld, bld.Address(), md, opts)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"address": t.Address,
				"tx":      res,
			})
		},
	}
	cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "machine metadata pair key=value (repeatable)")
	gas.register(cmd.Flags())
	return cmd
}

func timehubListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [owner]",
		Short: "List the timehubs owned by an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return listByKind(a, args, machine.KindTimehub)
		},
	}
}

func timehubPushCmd(a *app) *cobra.Command {
	gas := &gasFlags{}

	cmd := &cobra.Command{
		Use:   "push <machine> <value>",
		Short: "Append a value to a timehub",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := address.FromString(args[0])
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
			ret, res, err := machine.AttachTimehub(addr).Push(context.Background(), c, bld, []byte(args[1]), opts, mode)
			if err != nil {
				return err
			}
			out := map[string]any{"tx": res}
			if ret != nil {
				out["root"] = ret.Root
				out["index"] = ret.Index
			}
			return printJSON(out)
		},
	}
	gas.register(cmd.Flags())
	return cmd
}

func timehubLeafCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "leaf <machine> <index>",
		Short: "Fetch the entry at an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := address.FromString(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.ParseUint(args[1], 10, 64)
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
			leaf, err := machine.AttachTimehub(addr).Leaf(context.Background(), c, index, height)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"timestamp": leaf.Timestamp,
				"value":     string(leaf.Value),
			})
		},
	}
}

func timehubCountCmd(a *app) *cobra.Command {
	return timehubQueryCmd(a, "count", "Show the number of entries",
		func(ctx context.Context, c *provider.Client, t *machine.Timehub, height provider.Height) (any, error) {
			return t.Count(ctx, c, height)
		})
}

func timehubPeaksCmd(a *app) *cobra.Command {
	return timehubQueryCmd(a, "peaks", "Show the MMR peak hashes",
		func(ctx context.Context, c *provider.Client, t *machine.Timehub, height provider.Height) (any, error) {
			return t.Peaks(ctx, c, height)
		})
}

func timehubRootCmd(a *app) *cobra.Command {
	return timehubQueryCmd(a, "root", "Show the MMR root hash",
		func(ctx context.Context, c *provider.Client, t *machine.Timehub, height provider.Height) (any, error) {
			return t.Root(ctx, c, height)
		})
}

func timehubQueryCmd(
	a *app,
	use, short string,
	query func(context.Context, *provider.Client, *machine.Timehub, provider.Height) (any, error),
) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <machine>",
		Short: short,
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
			out, err := query(context.Background(), c, machine.AttachTimehub(addr), height)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{use: out})
		},
	}
}
