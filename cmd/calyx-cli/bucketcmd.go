package main

import (
	"context"
	"os"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/machine"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/transaction"

	"github.com/spf13/cobra"
)

func bucketCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bucket",
		Short: "Key-value object bucket operations",
	}
	cmd.AddCommand(
		bucketCreateCmd(a),
		bucketListCmd(a),
		bucketAddCmd(a),
		bucketGetCmd(a),
		bucketDeleteCmd(a),
		bucketQueryCmd(a),
	)
	return cmd
}

func bucketCreateCmd(a *app) *cobra.Command {
	var metaPairs []string
	gas := &gasFlags{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Deploy a new bucket machine",
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
			b, res, err := machine.NewBucket(context.Background(), c, bld, bld.Address(), md, opts)
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"address": b.Address,
				"tx":      res,
			})
		},
	}
	cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "machine metadata pair key=value (repeatable)")
	gas.register(cmd.Flags())
	return cmd
}

func bucketListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [owner]",
		Short: "List the buckets owned by an account",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return listByKind(a, args, machine.KindBucket)
		},
	}
}

func bucketAddCmd(a *app) *cobra.Command {
	var (
		ttl       uint64
		metaPairs []string
		overwrite bool
	)
	gas := &gasFlags{}

	cmd := &cobra.Command{
		Use:   "add <machine> <key> <file>",
		Short: "Store a file's content under a key",
		Args:  cobra.ExactArgs(3),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := address.FromString(args[0])
			if err != nil {
				return err
			}
			content, err := os.ReadFile(args[2])
			if err != nil {
				return err
			}
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
			mode, err := a.mode()
			if err != nil {
				return err
			}
			opts, err := gas.opts()
			if err != nil {
				return err
			}

			cid, res, err := machine.AttachBucket(addr).Add(context.Background(), c, bld, []byte(args[1]), content, machine.AddOptions{
				TTL:       ttl,
				Metadata:  md,
				Overwrite: overwrite,
				Gas:       opts,
				Mode:      mode,
			})
			if err != nil {
				return err
			}
			return printJSON(map[string]any{
				"cid": cid,
				"tx":  res,
			})
		},
	}
	cmd.Flags().Uint64Var(&ttl, "ttl", 0, "object lifetime in blocks, 0 for no expiry")
	cmd.Flags().StringArrayVar(&metaPairs, "meta", nil, "object metadata pair key=value (repeatable)")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "allow replacing an existing key")
	gas.register(cmd.Flags())
	return cmd
}

func bucketGetCmd(a *app) *cobra.Command {
	var (
		rangeSpec string
		outFile   string
	)

	cmd := &cobra.Command{
		Use:   "get <machine> <key>",
		Short: "Read an object's content",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			addr, err := address.FromString(args[0])
			if err != nil {
				return err
			}
			var rng *provider.Range
			if rangeSpec != "" {
				if rng, err = provider.ParseRange(rangeSpec); err != nil {
					return err
				}
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			height, err := a.height()
			if err != nil {
				return err
			}

			data, err := machine.AttachBucket(addr).Get(context.Background(), c, []byte(args[1]), rng, height)
			if err != nil {
				return err
			}
			if outFile != "" {
				return os.WriteFile(outFile, data, 0o644)
			}
			_, err = os.Stdout.Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&rangeSpec, "range", "", `inclusive byte range, e.g. "10-14", "10-" or "-5"`)
	cmd.Flags().StringVarP(&outFile, "output", "o", "", "write content to a file instead of stdout")
	return cmd
}

func bucketDeleteCmd(a *app) *cobra.Command {
	gas := &gasFlags{}

	cmd := &cobra.Command{
		Use:   "delete <machine> <key>",
		Short: "Remove a key from a bucket",
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
			res, err := machine.AttachBucket(addr).Delete(context.Background(), c, bld, []byte(args[1]), opts, mode)
			if err != nil {
				return err
			}
			return printJSON(res)
		},
	}
	gas.register(cmd.Flags())
	return cmd
}

func bucketQueryCmd(a *app) *cobra.Command {
	var (
		prefix    string
		delimiter string
		offset    uint64
		limit     uint64
	)

	cmd := &cobra.Command{
		Use:   "query <machine>",
		Short: "List a bucket's contents one path segment at a time",
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
			page, err := machine.AttachBucket(addr).Query(context.Background(), c, prefix, delimiter, offset, limit, height)
			if err != nil {
				return err
			}
			return printJSON(page)
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", "", "only list keys beginning with this prefix")
	cmd.Flags().StringVarP(&delimiter, "delimiter", "d", config.DEFAULT_DELIMITER, "hierarchy delimiter; empty disables grouping")
	cmd.Flags().Uint64Var(&offset, "offset", 0, "number of objects to skip")
	cmd.Flags().Uint64Var(&limit, "limit", 0, "maximum objects to return, 0 for the maximum page size")
	return cmd
}

func listByKind(a *app, args []string, kind transaction.MachineKind) error {
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

	filtered := machines[:0]
	for _, m := range machines {
		if m.Kind == kind {
			filtered = append(filtered, m)
		}
	}
	return printJSON(filtered)
}

