package provider

import (
	"context"
	"encoding/json"

	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/transaction"

	"github.com/pkg/errors"
)

// BroadcastMode controls how long Submit waits for the result of a
// transaction.
type BroadcastMode uint8

const (
	// ModeAsync returns immediately after the transaction is handed to the
	// node, with only its hash.
	ModeAsync BroadcastMode = iota
	// ModeSync waits for the node's mempool admission check.
	ModeSync
	// ModeCommit waits for inclusion in a committed block.
	ModeCommit
)

func ParseBroadcastMode(s string) (BroadcastMode, error) {
	switch s {
	case "async":
		return ModeAsync, nil
	case "sync":
		return ModeSync, nil
	case "", "commit":
		return ModeCommit, nil
	}
	return ModeCommit, errors.Errorf("invalid broadcast mode %q", s)
}

func (m BroadcastMode) String() string {
	switch m {
	case ModeAsync:
		return "async"
	case ModeSync:
		return "sync"
	}
	return "commit"
}

// CodeSequenceMismatch is the admission-check code the chain uses for a
// transaction whose sequence does not match the account state.
const CodeSequenceMismatch = 32

// TxResult is the normalized outcome of a broadcast. Height, GasUsed and Data
// are only populated for commit-mode submissions.
type TxResult struct {
	Hash      transaction.TXID `json:"hash"`
	Committed bool             `json:"committed"`
	Height    uint64           `json:"height,omitempty"`
	GasUsed   uint64           `json:"gas_used,omitempty"`
	Data      json.RawMessage  `json:"data,omitempty"`
}

// Submit broadcasts a signed transaction under the requested mode.
//
// A mempool-level rejection surfaces as TransactionRejected (or
// SequenceMismatch for a stale nonce). In commit mode, an expired local wait
// surfaces as ConfirmationTimeout; the transaction may still be included
// later, and the hash embedded in the error remains valid for lookup.
func (c *Client) Submit(ctx context.Context, tx *transaction.SignedTransaction, mode BroadcastMode) (*TxResult, error) {
	req := broadcastRequest{Tx: tx.Serialize()}
	hash := tx.Hash()

	switch mode {
	case ModeAsync:
		out := broadcastAsyncResponse{}
		if err := c.Request(ctx, "broadcast_tx_async", req, &out); err != nil {
			return nil, err
		}
		return &TxResult{Hash: hash}, nil

	case ModeSync:
		out := broadcastSyncResponse{}
		if err := c.Request(ctx, "broadcast_tx_sync", req, &out); err != nil {
			return nil, err
		}
		if out.Code != 0 {
			return nil, rejection(out.Code, out.Log)
		}
		return &TxResult{Hash: hash}, nil
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.COMMIT_TIMEOUT)
		defer cancel()
	}

	out := broadcastCommitResponse{}
	if err := c.Request(ctx, "broadcast_tx_commit", req, &out); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errs.New(errs.ConfirmationTimeout, "commit wait expired for tx %s", hash)
		}
		return nil, err
	}
	if out.CheckCode != 0 {
		return nil, rejection(out.CheckCode, out.CheckLog)
	}
	if out.DeliverCode != 0 {
		return nil, errs.Rejected(out.DeliverCode, out.DeliverLog)
	}

	return &TxResult{
		Hash:      hash,
		Committed: true,
		Height:    out.Height,
		GasUsed:   out.GasUsed,
		Data:      out.Data,
	}, nil
}

func rejection(code uint32, log string) error {
	if code == CodeSequenceMismatch {
		return errs.New(errs.SequenceMismatch, "%s", log)
	}
	return errs.Rejected(code, log)
}

// SendCall builds, signs and broadcasts a typed call in one step. On a
// sequence mismatch the local cache is re-synced from the chain and the call
// is rebuilt and resubmitted once; a second mismatch is fatal.
func (c *Client) SendCall(ctx context.Context, bld *transaction.Builder, call transaction.Call, gas transaction.GasOpts, mode BroadcastMode) (*TxResult, error) {
	tx, err := bld.BuildSigned(ctx, call, gas)
	if err != nil {
		return nil, err
	}

	res, err := c.Submit(ctx, tx, mode)
	if err == nil || !errors.Is(err, errs.SequenceMismatch) {
		return res, err
	}

	bld.InvalidateSequence()
	tx, err = bld.BuildSigned(ctx, call, gas)
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, tx, mode)
}
