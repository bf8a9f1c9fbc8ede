package transaction

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/big"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/util"
	"github.com/calyx-network/calyx-client/util/enc"
)

var errInvalidTXID = errors.New("invalid txid literal")

// Method numbers understood by the chain's actors.
const (
	MethodSend          uint64 = 0
	MethodDeposit       uint64 = 2
	MethodWithdraw      uint64 = 3
	MethodCreateMachine uint64 = 10
	MethodAddObject     uint64 = 20
	MethodDeleteObject  uint64 = 21
	MethodPushEntry     uint64 = 30
)

// MachineKind discriminates the two machine types hosted by the chain.
type MachineKind uint8

const (
	KindBucket MachineKind = iota
	KindTimehub
)

func (k MachineKind) String() string {
	switch k {
	case KindBucket:
		return "bucket"
	case KindTimehub:
		return "timehub"
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

func (k MachineKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

func (k *MachineKind) UnmarshalJSON(c []byte) error {
	switch string(c) {
	case `"bucket"`:
		*k = KindBucket
	case `"timehub"`:
		*k = KindTimehub
	default:
		return fmt.Errorf("unknown machine kind %s", c)
	}
	return nil
}

// Call is one variant of the typed calls a transaction can carry. Each variant
// validates its own constraints before any network interaction, and knows the
// envelope destination, attached value and actor method for itself.
type Call interface {
	Validate() error
	// To resolves the envelope destination. Gateway/registry-directed calls
	// need the network config to find their actor address.
	To(net config.Network) (address.Address, error)
	Value() *big.Int
	MethodNum() uint64
	Params() ([]byte, error)
	String() string
}

// Call: Deposit

// Deposit moves funds from the parent chain into a subnet account through the
// gateway actor.
type Deposit struct {
	Recipient address.Address `json:"recipient"`
	Amount    *big.Int        `json:"amount"`
}

func (c *Deposit) Validate() error                        { return validateAmount(c.Amount) }
func (c *Deposit) To(net config.Network) (address.Address, error) {
	return gatewayAddress(net)
}
func (c *Deposit) Value() *big.Int    { return c.Amount }
func (c *Deposit) MethodNum() uint64  { return MethodDeposit }
func (c *Deposit) Params() ([]byte, error) { return json.Marshal(c) }
func (c *Deposit) String() string {
	return fmt.Sprintf("deposit %s to %s", util.FormatCoin(c.Amount), c.Recipient)
}

// Call: Withdraw

// Withdraw moves funds from a subnet account back to the parent chain.
type Withdraw struct {
	Recipient address.Address `json:"recipient"`
	Amount    *big.Int        `json:"amount"`
}

func (c *Withdraw) Validate() error { return validateAmount(c.Amount) }
func (c *Withdraw) To(net config.Network) (address.Address, error) {
	return gatewayAddress(net)
}
func (c *Withdraw) Value() *big.Int    { return c.Amount }
func (c *Withdraw) MethodNum() uint64  { return MethodWithdraw }
func (c *Withdraw) Params() ([]byte, error) { return json.Marshal(c) }
func (c *Withdraw) String() string {
	return fmt.Sprintf("withdraw %s to %s", util.FormatCoin(c.Amount), c.Recipient)
}

// Call: Transfer

// Transfer moves funds between two subnet accounts.
type Transfer struct {
	Recipient address.Address `json:"recipient"`
	Amount    *big.Int        `json:"amount"`
}

func (c *Transfer) Validate() error {
	return validateAmount(c.Amount)
}
func (c *Transfer) To(config.Network) (address.Address, error) { return c.Recipient, nil }
func (c *Transfer) Value() *big.Int                            { return c.Amount }
func (c *Transfer) MethodNum() uint64                          { return MethodSend }
func (c *Transfer) Params() ([]byte, error)                    { return nil, nil }
func (c *Transfer) String() string {
	return fmt.Sprintf("transfer %s to %s", util.FormatCoin(c.Amount), c.Recipient)
}

// Call: CreateMachine

// CreateMachine deploys a new bucket or timehub through the registry actor.
// The machine address is assigned by the chain and returned in the receipt.
type CreateMachine struct {
	Kind     MachineKind       `json:"kind"`
	Owner    address.Address   `json:"owner"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

func (c *CreateMachine) Validate() error {
	if c.Kind != KindBucket && c.Kind != KindTimehub {
		return errs.New(errs.InvalidCall, "unknown machine kind %d", uint8(c.Kind))
	}
	return validateMetadata(c.Metadata)
}
func (c *CreateMachine) To(net config.Network) (address.Address, error) {
	return registryAddress(net)
}
func (c *CreateMachine) Value() *big.Int         { return nil }
func (c *CreateMachine) MethodNum() uint64       { return MethodCreateMachine }
func (c *CreateMachine) Params() ([]byte, error) { return json.Marshal(c) }
func (c *CreateMachine) String() string {
	return fmt.Sprintf("create %s owned by %s", c.Kind, c.Owner)
}

// Call: AddObject

// AddObject stores or overwrites a key in a bucket. The content itself travels
// through the object API; the transaction carries only its identifier.
type AddObject struct {
	Machine   address.Address   `json:"-"`
	Key       []byte            `json:"key"`
	ContentID util.Hash         `json:"cid"`
	Size      uint64            `json:"size"`
	TTL       uint64            `json:"ttl,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Overwrite bool              `json:"overwrite,omitempty"`
}

func (c *AddObject) Validate() error {
	if len(c.Key) == 0 {
		return errs.New(errs.InvalidCall, "object key must not be empty")
	}
	if c.Size > config.MAX_OBJECT_SIZE {
		return errs.New(errs.InvalidCall, "object size %d exceeds maximum %d", c.Size, config.MAX_OBJECT_SIZE)
	}
	return validateMetadata(c.Metadata)
}
func (c *AddObject) To(config.Network) (address.Address, error) { return c.Machine, nil }
func (c *AddObject) Value() *big.Int                            { return nil }
func (c *AddObject) MethodNum() uint64                          { return MethodAddObject }
func (c *AddObject) Params() ([]byte, error)                    { return json.Marshal(c) }
func (c *AddObject) String() string {
	return fmt.Sprintf("add object %q (%d bytes) to %s", c.Key, c.Size, c.Machine)
}

// Call: DeleteObject

type DeleteObject struct {
	Machine address.Address `json:"-"`
	Key     []byte          `json:"key"`
}

func (c *DeleteObject) Validate() error {
	if len(c.Key) == 0 {
		return errs.New(errs.InvalidCall, "object key must not be empty")
	}
	return nil
}
func (c *DeleteObject) To(config.Network) (address.Address, error) { return c.Machine, nil }
func (c *DeleteObject) Value() *big.Int                            { return nil }
func (c *DeleteObject) MethodNum() uint64                          { return MethodDeleteObject }
func (c *DeleteObject) Params() ([]byte, error)                    { return json.Marshal(c) }
func (c *DeleteObject) String() string {
	return fmt.Sprintf("delete object %q from %s", c.Key, c.Machine)
}

// Call: PushEntry

// PushEntry appends a payload to a timehub. The chain assigns the next index
// and anchors the entry in the machine's MMR.
type PushEntry struct {
	Machine address.Address `json:"-"`
	Payload enc.B64         `json:"payload"`
}

func (c *PushEntry) Validate() error {
	if len(c.Payload) > config.MAX_TIMEHUB_PAYLOAD_SIZE {
		return errs.New(errs.InvalidCall, "payload size %d exceeds maximum %d",
			len(c.Payload), config.MAX_TIMEHUB_PAYLOAD_SIZE)
	}
	return nil
}
func (c *PushEntry) To(config.Network) (address.Address, error) { return c.Machine, nil }
func (c *PushEntry) Value() *big.Int                            { return nil }
func (c *PushEntry) MethodNum() uint64                          { return MethodPushEntry }
func (c *PushEntry) Params() ([]byte, error)                    { return json.Marshal(c) }
func (c *PushEntry) String() string {
	return fmt.Sprintf("push %d bytes to %s", len(c.Payload), c.Machine)
}

func validateAmount(n *big.Int) error {
	if n == nil || n.Sign() <= 0 {
		return errs.New(errs.InvalidCall, "amount must be positive")
	}
	return nil
}

func validateMetadata(md map[string]string) error {
	for k, v := range md {
		if len(k) == 0 || len(k) > config.MAX_METADATA_KEY_SIZE {
			return errs.New(errs.InvalidCall, "metadata key %q exceeds %d bytes", k, config.MAX_METADATA_KEY_SIZE)
		}
		if len(v) > config.MAX_METADATA_VALUE_SIZE {
			return errs.New(errs.InvalidCall, "metadata value for %q exceeds %d bytes", k, config.MAX_METADATA_VALUE_SIZE)
		}
	}
	return nil
}

func gatewayAddress(net config.Network) (address.Address, error) {
	addr, err := address.FromString(net.GatewayAddress)
	if err != nil {
		return address.INVALID_ADDRESS, errs.New(errs.InvalidCall, "network %q has no valid gateway address", net.Name)
	}
	return addr, nil
}

func registryAddress(net config.Network) (address.Address, error) {
	addr, err := address.FromString(net.RegistryAddress)
	if err != nil {
		return address.INVALID_ADDRESS, errs.New(errs.InvalidCall, "network %q has no valid registry address", net.Name)
	}
	return addr, nil
}
