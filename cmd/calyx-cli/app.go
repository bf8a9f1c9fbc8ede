package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/sequence"
	"github.com/calyx-network/calyx-client/signer"
	"github.com/calyx-network/calyx-client/transaction"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const privateKeyEnv = "CALYX_PRIVATE_KEY"

// app carries the global flag values and builds the core components from
// them on demand.
type app struct {
	networkName string
	rpcURL      string
	objectURL   string
	privateKey  string
	modeName    string
	heightName  string
	logLevel    string
}

func (a *app) setupLogging() error {
	lvl, err := log.ParseLevel(a.logLevel)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", a.logLevel)
	}
	log.SetLevel(lvl)
	log.SetOutput(os.Stderr)
	return nil
}

func (a *app) network() (config.Network, error) {
	net, err := config.LoadNetwork(a.networkName)
	if err != nil {
		return config.Network{}, err
	}
	if a.rpcURL != "" {
		net.RPCURL = a.rpcURL
	}
	if a.objectURL != "" {
		net.ObjectAPIURL = a.objectURL
	}
	return net, nil
}

func (a *app) client() (*provider.Client, error) {
	net, err := a.network()
	if err != nil {
		return nil, err
	}
	return provider.NewClient(net)
}

func (a *app) height() (provider.Height, error) {
	return provider.ParseHeight(a.heightName)
}

func (a *app) mode() (provider.BroadcastMode, error) {
	return provider.ParseBroadcastMode(a.modeName)
}

// builder resolves the signing key (flag, environment, or no-echo prompt) and
// wires the signer, sequence tracker and transaction builder together.
func (a *app) builder(c *provider.Client) (*transaction.Builder, error) {
	keyHex := a.privateKey
	if keyHex == "" {
		keyHex = os.Getenv(privateKeyEnv)
	}
	if keyHex == "" {
		fmt.Fprint(os.Stderr, "Private key: ")
		raw, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return nil, errors.Wrap(err, "reading private key")
		}
		keyHex = strings.TrimSpace(string(raw))
	}

	key, err := signer.ParseKey(keyHex)
	if err != nil {
		return nil, err
	}
	sgn, err := signer.New(key)
	if err != nil {
		return nil, err
	}

	return transaction.NewBuilder(c.Net, sgn, sequence.NewTracker(c), c), nil
}

// signerAddress resolves the optional address argument, defaulting to the
// account of the configured signing key.
func (a *app) signerAddress(args []string) (address.Address, error) {
	if len(args) > 0 {
		return address.FromString(args[0])
	}

	keyHex := a.privateKey
	if keyHex == "" {
		keyHex = os.Getenv(privateKeyEnv)
	}
	if keyHex == "" {
		return address.INVALID_ADDRESS, errors.New("pass an address or configure a private key")
	}
	key, err := signer.ParseKey(keyHex)
	if err != nil {
		return address.INVALID_ADDRESS, err
	}
	sgn, err := signer.New(key)
	if err != nil {
		return address.INVALID_ADDRESS, err
	}
	return sgn.Address(), nil
}

// gasFlags carries the per-command gas overrides. Unset flags are filled with
// network-suggested values at build time.
type gasFlags struct {
	limit   uint64
	feeCap  string
	premium string
}

func (g *gasFlags) register(fs *pflag.FlagSet) {
	fs.Uint64Var(&g.limit, "gas-limit", 0, "gas limit (default estimated)")
	fs.StringVar(&g.feeCap, "gas-fee-cap", "", "max base fee per gas unit, in atomic units (default estimated)")
	fs.StringVar(&g.premium, "gas-premium", "", "priority fee per gas unit, in atomic units (default estimated)")
}

func (g *gasFlags) opts() (transaction.GasOpts, error) {
	opts := transaction.GasOpts{Limit: g.limit}
	if g.feeCap != "" {
		n, ok := new(big.Int).SetString(g.feeCap, 10)
		if !ok {
			return opts, errors.Errorf("invalid gas fee cap %q", g.feeCap)
		}
		opts.FeeCap = n
	}
	if g.premium != "" {
		n, ok := new(big.Int).SetString(g.premium, 10)
		if !ok {
			return opts, errors.Errorf("invalid gas premium %q", g.premium)
		}
		opts.Premium = n
	}
	return opts, nil
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// parseMeta turns repeated key=value flags into a metadata map.
func parseMeta(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	md := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, found := strings.Cut(p, "=")
		if !found || k == "" {
			return nil, errors.Errorf("invalid metadata pair %q, expected key=value", p)
		}
		md[k] = v
	}
	return md, nil
}
