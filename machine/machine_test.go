package machine

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/rpc"
	"github.com/calyx-network/calyx-client/sequence"
	"github.com/calyx-network/calyx-client/signer"
	"github.com/calyx-network/calyx-client/transaction"
	"github.com/calyx-network/calyx-client/util/enc"
)

// fakeChain is a JSON-RPC node that records decoded broadcasts and answers
// commit-mode waits with a canned receipt. It admits every transaction unless
// mismatches is set, in which case it rejects that many sync broadcasts with
// the sequence-mismatch code and moves the account sequence forward each time.
type fakeChain struct {
	t *testing.T

	receipt    json.RawMessage
	sequence   uint64
	mismatches int
	broadcasts []*transaction.SignedTransaction
}

func (f *fakeChain) handle(method string, params json.RawMessage) (any, *rpc.Error) {
	switch method {
	case "get_account":
		return provider.AccountInfo{Sequence: f.sequence, Balance: big.NewInt(1e18), ParentBalance: big.NewInt(0)}, nil
	case "estimate_gas":
		return transaction.GasParams{
			GasLimit:   1_000_000,
			GasFeeCap:  big.NewInt(config.MIN_GAS_FEE_CAP),
			GasPremium: big.NewInt(config.MIN_GAS_PREMIUM),
		}, nil
	case "broadcast_tx_sync", "broadcast_tx_commit":
		req := struct {
			Tx enc.Hex `json:"tx"`
		}{}
		if err := json.Unmarshal(params, &req); err != nil {
			f.t.Error(err)
			return nil, &rpc.Error{Code: -32602, Message: "bad params"}
		}
		tx := &transaction.SignedTransaction{}
		if err := tx.Deserialize(req.Tx); err != nil {
			f.t.Error(err)
			return nil, &rpc.Error{Code: -32602, Message: "bad tx"}
		}
		f.broadcasts = append(f.broadcasts, tx)

		if method == "broadcast_tx_sync" {
			if f.mismatches > 0 {
				f.mismatches--
				f.sequence += 5
				return map[string]any{
					"hash": tx.Hash(),
					"code": provider.CodeSequenceMismatch,
					"log":  "sequence mismatch",
				}, nil
			}
			return map[string]any{"hash": tx.Hash()}, nil
		}
		return map[string]any{
			"hash":     tx.Hash(),
			"height":   42,
			"gas_used": 55_555,
			"data":     f.receipt,
		}, nil
	}
	f.t.Errorf("unexpected method %q", method)
	return nil, &rpc.Error{Code: -32601, Message: "method not found"}
}

func (f *fakeChain) serve(t *testing.T) string {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := rpc.RequestIn{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		result, rpcErr := f.handle(req.Method, req.Params)
		json.NewEncoder(w).Encode(rpc.ResponseOut{
			JsonRpc: "2.0",
			Result:  result,
			Error:   rpcErr,
			Id:      req.Id,
		})
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func testEnv(t *testing.T, chain *fakeChain, objectAPIURL string) (*provider.Client, *transaction.Builder) {
	t.Helper()
	chain.t = t

	c, err := provider.NewClient(config.Network{
		Name:         "test",
		ChainID:      1337,
		RPCURL:       chain.serve(t),
		ObjectAPIURL: objectAPIURL,
	})
	if err != nil {
		t.Fatal(err)
	}

	key, err := signer.RandomKey()
	if err != nil {
		t.Fatal(err)
	}
	sgn, err := signer.New(key)
	if err != nil {
		t.Fatal(err)
	}
	return c, transaction.NewBuilder(c.Net, sgn, sequence.NewTracker(c), c)
}

func machineAddr(b byte) address.Address {
	var a address.Address
	a[0] = b
	return a
}

func TestCreateDecodesAssignedAddress(t *testing.T) {
	want := machineAddr(0xAB)
	receipt, err := json.Marshal(CreateReturn{Address: want})
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{receipt: receipt}
	c, bld := testEnv(t, chain, "")

	addr, res, err := Create(context.Background(), c, bld, KindBucket, bld.Address(), nil, transaction.GasOpts{})
	if err != nil {
		t.Fatal(err)
	}
	if addr != want {
		t.Errorf("address = %s, want %s", addr, want)
	}
	if !res.Committed || res.Height != 42 {
		t.Errorf("unexpected result: %+v", res)
	}

	if len(chain.broadcasts) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(chain.broadcasts))
	}
	call := transaction.CreateMachine{}
	if err := json.Unmarshal(chain.broadcasts[0].Message.Params, &call); err != nil {
		t.Fatal(err)
	}
	if call.Kind != KindBucket {
		t.Errorf("kind = %v", call.Kind)
	}
}

func TestPushDecodesReceipt(t *testing.T) {
	receipt, err := json.Marshal(PushReturn{Root: [32]byte{1, 2, 3}, Index: 7})
	if err != nil {
		t.Fatal(err)
	}
	chain := &fakeChain{receipt: receipt}
	c, bld := testEnv(t, chain, "")

	hub := AttachTimehub(machineAddr(2))
	ret, res, err := hub.Push(context.Background(), c, bld, []byte("event"), transaction.GasOpts{}, provider.ModeCommit)
	if err != nil {
		t.Fatal(err)
	}
	if ret == nil || ret.Index != 7 {
		t.Fatalf("push return = %+v", ret)
	}
	if res.GasUsed != 55_555 {
		t.Errorf("gas used = %d", res.GasUsed)
	}
}

func TestPushSyncSkipsReceipt(t *testing.T) {
	chain := &fakeChain{}
	c, bld := testEnv(t, chain, "")

	hub := AttachTimehub(machineAddr(2))
	ret, res, err := hub.Push(context.Background(), c, bld, []byte("event"), transaction.GasOpts{}, provider.ModeSync)
	if err != nil {
		t.Fatal(err)
	}
	if ret != nil {
		t.Errorf("sync push decoded a receipt: %+v", ret)
	}
	if res.Committed {
		t.Error("sync result claims commitment")
	}
}
