package transaction

import (
	"context"
	"math/big"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/signer"
)

// GasParams is a complete set of gas values for a transaction.
type GasParams struct {
	GasLimit   uint64   `json:"gas_limit"`
	GasFeeCap  *big.Int `json:"gas_fee_cap"`
	GasPremium *big.Int `json:"gas_premium"`
}

// GasOpts overrides individual gas fields. Zero/nil fields receive
// network-suggested defaults at build time.
type GasOpts struct {
	Limit   uint64
	FeeCap  *big.Int
	Premium *big.Int
}

func (o GasOpts) complete() bool {
	return o.Limit != 0 && o.FeeCap != nil && o.Premium != nil
}

// Sequencer allocates the next sequence number for an account.
type Sequencer interface {
	Next(ctx context.Context, addr address.Address) (uint64, error)
	Invalidate(addr address.Address)
}

// GasEstimator fetches network-suggested gas values for a message.
type GasEstimator interface {
	EstimateGas(ctx context.Context, msg *Message) (GasParams, error)
}

// Builder assembles typed calls into signable envelopes. It validates the
// call, resolves the destination actor, binds the next sequence number and
// fills gas defaults from the chain.
type Builder struct {
	net    config.Network
	signer *signer.Signer
	seq    Sequencer
	gas    GasEstimator
}

func NewBuilder(net config.Network, s *signer.Signer, seq Sequencer, gas GasEstimator) *Builder {
	return &Builder{
		net:    net,
		signer: s,
		seq:    seq,
		gas:    gas,
	}
}

func (b *Builder) Address() address.Address {
	return b.signer.Address()
}

// InvalidateSequence drops the cached sequence baseline for the builder's
// account, forcing a chain re-sync before the next build.
func (b *Builder) InvalidateSequence() {
	b.seq.Invalidate(b.signer.Address())
}

// Build assembles an unsigned envelope for call. Validation runs before any
// network interaction; the only network effects are the sequence lookup (on a
// cold cache) and the gas-default fetch when opts leaves fields unset.
func (b *Builder) Build(ctx context.Context, call Call, opts GasOpts) (*Message, error) {
	if err := call.Validate(); err != nil {
		return nil, err
	}

	to, err := call.To(b.net)
	if err != nil {
		return nil, err
	}
	params, err := call.Params()
	if err != nil {
		return nil, err
	}

	seq, err := b.seq.Next(ctx, b.signer.Address())
	if err != nil {
		return nil, err
	}

	msg := &Message{
		From:       b.signer.Address(),
		To:         to,
		Sequence:   seq,
		Value:      orZero(call.Value()),
		Method:     call.MethodNum(),
		Params:     params,
		GasLimit:   opts.Limit,
		GasFeeCap:  opts.FeeCap,
		GasPremium: opts.Premium,
	}

	if !opts.complete() {
		est, err := b.gas.EstimateGas(ctx, msg)
		if err != nil {
			return nil, err
		}
		if msg.GasLimit == 0 {
			msg.GasLimit = est.GasLimit
		}
		if msg.GasFeeCap == nil {
			msg.GasFeeCap = est.GasFeeCap
		}
		if msg.GasPremium == nil {
			msg.GasPremium = est.GasPremium
		}
	}
	clampGas(msg)

	return msg, nil
}

// Sign seals the envelope under the network's chain id.
func (b *Builder) Sign(msg *Message) (*SignedTransaction, error) {
	sig, err := b.signer.Sign(msg.SigningDigest(b.net.ChainID))
	if err != nil {
		return nil, err
	}
	return &SignedTransaction{
		Message:   *msg,
		Signature: sig,
	}, nil
}

func (b *Builder) BuildSigned(ctx context.Context, call Call, opts GasOpts) (*SignedTransaction, error) {
	msg, err := b.Build(ctx, call, opts)
	if err != nil {
		return nil, err
	}
	return b.Sign(msg)
}

// clampGas enforces the client-side pricing floors and the block gas ceiling.
func clampGas(msg *Message) {
	if msg.GasLimit > config.BLOCK_GAS_LIMIT {
		msg.GasLimit = config.BLOCK_GAS_LIMIT
	}
	if msg.GasFeeCap == nil || msg.GasFeeCap.Cmp(big.NewInt(config.MIN_GAS_FEE_CAP)) < 0 {
		msg.GasFeeCap = big.NewInt(config.MIN_GAS_FEE_CAP)
	}
	if msg.GasPremium == nil || msg.GasPremium.Cmp(big.NewInt(config.MIN_GAS_PREMIUM)) < 0 {
		msg.GasPremium = big.NewInt(config.MIN_GAS_PREMIUM)
	}
}
