package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kelseyhightower/envconfig"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"
)

// Network holds the endpoints and contract addresses needed to talk to one
// deployment of the chain. Gateway/registry addresses are kept as hex strings;
// they are only forwarded to the chain, never dereferenced locally.
type Network struct {
	Name            string `yaml:"name"`
	ChainID         uint64 `yaml:"chain_id"`
	RPCURL          string `yaml:"rpc_url"`
	ObjectAPIURL    string `yaml:"object_api_url"`
	GatewayAddress  string `yaml:"gateway_address"`
	RegistryAddress string `yaml:"registry_address"`

	Parent *ParentNetwork `yaml:"parent,omitempty"`
}

// ParentNetwork describes the chain this subnet is anchored to. Deposits
// originate there; withdrawals land there.
type ParentNetwork struct {
	RPCURL          string `yaml:"rpc_url"`
	GatewayAddress  string `yaml:"gateway_address"`
	RegistryAddress string `yaml:"registry_address"`
}

const (
	appRootFolderName   = ".calyx"
	networksFileName    = "networks.yml"
	defaultGatewayAddr  = "0x77aa40b105843728088c0132e43fc44348881da8"
	defaultRegistryAddr = "0x74539671a1d2f1c8f200826baba665179f53a1b7"
)

var presets = map[string]Network{
	"mainnet": {
		Name:            "mainnet",
		ChainID:         310,
		RPCURL:          "https://rpc.calyx.network",
		ObjectAPIURL:    "https://objects.calyx.network",
		GatewayAddress:  defaultGatewayAddr,
		RegistryAddress: defaultRegistryAddr,
		Parent: &ParentNetwork{
			RPCURL:          "https://rpc.parent.calyx.network",
			GatewayAddress:  "0xe17b86e7befc691daefe2086e56b86d4253f3294",
			RegistryAddress: "0xe87afbec26f0fdac69e4256dc1935beab1e0855e",
		},
	},
	"testnet": {
		Name:            "testnet",
		ChainID:         3101,
		RPCURL:          "https://rpc.n1.testnet.calyx.network",
		ObjectAPIURL:    "https://objects.n1.testnet.calyx.network",
		GatewayAddress:  defaultGatewayAddr,
		RegistryAddress: defaultRegistryAddr,
		Parent: &ParentNetwork{
			RPCURL:          "https://rpc.parent.testnet.calyx.network",
			GatewayAddress:  "0xf8abf46a1114d3b44d18f2a96d850e36fc6ee94e",
			RegistryAddress: "0x0bb143a180b61ae6b1872bbf99dbe261a2adde40",
		},
	},
	"localnet": {
		Name:            "localnet",
		ChainID:         31337,
		RPCURL:          "http://127.0.0.1:26657",
		ObjectAPIURL:    "http://127.0.0.1:8001",
		GatewayAddress:  defaultGatewayAddr,
		RegistryAddress: defaultRegistryAddr,
		Parent: &ParentNetwork{
			RPCURL:          "http://127.0.0.1:8545",
			GatewayAddress:  "0x9a676e781a523b5d0c0e43731313a708cb607508",
			RegistryAddress: "0x4ed7c70f96b99c776995fb64377f0d4ab3b0e1c1",
		},
	},
	"devnet": {
		Name:            "devnet",
		ChainID:         1337,
		RPCURL:          "http://127.0.0.1:26657",
		ObjectAPIURL:    "http://127.0.0.1:8001",
		GatewayAddress:  defaultGatewayAddr,
		RegistryAddress: defaultRegistryAddr,
	},
}

type networkOverrides struct {
	RPCURL       string `envconfig:"CALYX_RPC_URL"`
	ObjectAPIURL string `envconfig:"CALYX_OBJECT_API_URL"`
}

// LoadNetwork resolves a network by name: built-in preset first, then entries
// from ~/.calyx/networks.yml, then CALYX_* environment overrides on top.
func LoadNetwork(name string) (Network, error) {
	net, ok := presets[name]

	file, err := readNetworksFile()
	if err != nil {
		return Network{}, err
	}
	if fromFile, found := file[name]; found {
		fromFile.Name = name
		net = fromFile
		ok = true
	}
	if !ok {
		return Network{}, errors.Errorf("unknown network %q", name)
	}

	var env networkOverrides
	if err := envconfig.Process("", &env); err != nil {
		return Network{}, errors.Wrap(err, "reading environment overrides")
	}
	if env.RPCURL != "" {
		net.RPCURL = env.RPCURL
	}
	if env.ObjectAPIURL != "" {
		net.ObjectAPIURL = env.ObjectAPIURL
	}

	return net, nil
}

func readNetworksFile() (map[string]Network, error) {
	home, err := homedir.Dir()
	if err != nil {
		return nil, errors.Wrap(err, "finding home directory")
	}

	path := filepath.Join(home, appRootFolderName, networksFileName)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	out := map[string]Network{}
	if err := yaml.NewDecoder(f).Decode(&out); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return out, nil
}
