package main

import (
	"fmt"
	"os"

	"github.com/calyx-network/calyx-client/config"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = fmt.Sprintf("%d.%d.%d", config.VERSION_MAJOR, config.VERSION_MINOR, config.VERSION_PATCH)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "calyx-cli",
		Short:         "Command line interface for the calyx storage network",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setupLogging()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.networkName, "network", "mainnet", "network preset or networks.yml entry")
	pf.StringVar(&a.rpcURL, "rpc-url", "", "override the network's consensus RPC URL")
	pf.StringVar(&a.objectURL, "object-api-url", "", "override the network's object API URL")
	pf.StringVarP(&a.privateKey, "private-key", "k", "", "hex private key (default $CALYX_PRIVATE_KEY, prompted if unset)")
	pf.StringVarP(&a.modeName, "broadcast-mode", "b", "commit", "broadcast mode: async, sync or commit")
	pf.StringVar(&a.heightName, "height", "committed", "query height: committed, pending or a block height")
	pf.StringVar(&a.logLevel, "log-level", "info", "log level: debug, info, warn or error")

	root.AddCommand(
		accountCmd(a),
		machineCmd(a),
		bucketCmd(a),
		timehubCmd(a),
		consoleCmd(a),
	)
	return root
}
