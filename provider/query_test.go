package provider

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/rpc"
	"github.com/calyx-network/calyx-client/transaction"
)

func TestAccountInfo(t *testing.T) {
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *rpc.Error) {
		if method != "get_account" {
			t.Errorf("method = %q", method)
		}
		req := getAccountRequest{}
		if err := json.Unmarshal(params, &req); err != nil {
			t.Fatal(err)
		}
		if req.Height != Pending {
			t.Errorf("height = %v, want pending", req.Height)
		}
		return AccountInfo{Sequence: 9, Balance: big.NewInt(1500), ParentBalance: big.NewInt(30)}, nil
	})

	info, err := c.AccountInfo(context.Background(), testAddr(1), Pending)
	if err != nil {
		t.Fatal(err)
	}
	if info.Sequence != 9 || info.Balance.Int64() != 1500 || info.ParentBalance.Int64() != 30 {
		t.Errorf("unexpected info: %+v", info)
	}

	seq, err := c.AccountSequence(context.Background(), testAddr(1))
	if err != nil {
		t.Fatal(err)
	}
	if seq != 9 {
		t.Errorf("sequence = %d, want 9", seq)
	}
}

func TestMachineInfoNotFound(t *testing.T) {
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *rpc.Error) {
		return nil, &rpc.Error{Code: errCodeNotFound, Message: "no machine at that address"}
	})

	_, err := c.MachineInfo(context.Background(), testAddr(2), Committed)
	if !errors.Is(err, errs.NotFound) {
		t.Fatalf("got %v, want NotFound", err)
	}
}

func TestMachineInfoAtHistoricalHeight(t *testing.T) {
	// the machine exists from height 50 on; earlier heights answer NotFound
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *rpc.Error) {
		req := getMachineRequest{}
		if err := json.Unmarshal(params, &req); err != nil {
			t.Fatal(err)
		}
		if req.Height != Committed && uint64(req.Height) < 50 {
			return nil, &rpc.Error{Code: errCodeNotFound, Message: "no machine at that address"}
		}
		return MachineInfo{Kind: transaction.KindBucket, Owner: testAddr(9)}, nil
	})

	for i := 0; i < 3; i++ {
		info, err := c.MachineInfo(context.Background(), testAddr(2), AtHeight(80))
		if err != nil {
			t.Fatal(err)
		}
		if info.Kind != transaction.KindBucket || info.Owner != testAddr(9) {
			t.Errorf("unexpected info: %+v", info)
		}
	}
	if _, err := c.MachineInfo(context.Background(), testAddr(2), AtHeight(49)); !errors.Is(err, errs.NotFound) {
		t.Error("machine visible before its creation height")
	}
}

func bucketNode(t *testing.T, keys ...string) *Client {
	records := make([]ObjectRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, ObjectRecord{Key: []byte(k), Meta: ObjectMeta{Size: 1}})
	}
	return fakeNode(t, func(method string, params json.RawMessage) (any, *rpc.Error) {
		if method != "list_objects" {
			t.Errorf("method = %q", method)
		}
		return listObjectsResponse{Objects: records}, nil
	})
}

func pageKeys(page *BucketPage) []string {
	keys := make([]string, 0, len(page.Objects))
	for _, o := range page.Objects {
		keys = append(keys, string(o.Key))
	}
	return keys
}

func TestBucketQueryPrefixDelimiter(t *testing.T) {
	c := bucketNode(t, "my/object", "my/data", "my/object/child")

	page, err := c.BucketQuery(context.Background(), testAddr(3), "my/", "/", 0, 0, Committed)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := pageKeys(page), []string{"my/data", "my/object"}; !reflect.DeepEqual(got, want) {
		t.Errorf("objects = %v, want %v", got, want)
	}
	if got, want := page.CommonPrefixes, []string{"my/object/"}; !reflect.DeepEqual(got, want) {
		t.Errorf("common prefixes = %v, want %v", got, want)
	}
}

func TestBucketQueryRootListing(t *testing.T) {
	c := bucketNode(t, "my/object", "my/data", "my/object/child")

	page, err := c.BucketQuery(context.Background(), testAddr(3), "", "/", 0, 0, Committed)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Objects) != 0 {
		t.Errorf("objects = %v, want none", pageKeys(page))
	}
	if got, want := page.CommonPrefixes, []string{"my/"}; !reflect.DeepEqual(got, want) {
		t.Errorf("common prefixes = %v, want %v", got, want)
	}
}

func TestBucketQueryEmptyDelimiter(t *testing.T) {
	c := bucketNode(t, "my/object", "my/data", "other")

	// no delimiter: no grouping, every prefixed key is an object
	page, err := c.BucketQuery(context.Background(), testAddr(3), "my/", "", 0, 0, Committed)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := pageKeys(page), []string{"my/data", "my/object"}; !reflect.DeepEqual(got, want) {
		t.Errorf("objects = %v, want %v", got, want)
	}
	if len(page.CommonPrefixes) != 0 {
		t.Errorf("common prefixes = %v, want none", page.CommonPrefixes)
	}
}

func TestBucketQueryPagination(t *testing.T) {
	c := bucketNode(t, "e", "a", "c", "b", "d")

	page, err := c.BucketQuery(context.Background(), testAddr(3), "", "/", 1, 2, Committed)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := pageKeys(page), []string{"b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("objects = %v, want %v", got, want)
	}

	// offset past the end yields an empty page, not an error
	page, err = c.BucketQuery(context.Background(), testAddr(3), "", "/", 10, 2, Committed)
	if err != nil {
		t.Fatal(err)
	}
	if len(page.Objects) != 0 {
		t.Errorf("objects = %v, want none", pageKeys(page))
	}
}

func TestTimehubLeafBounds(t *testing.T) {
	const count = 4
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *rpc.Error) {
		switch method {
		case "get_count":
			return getCountResponse{Count: count}, nil
		case "get_leaf":
			req := getLeafRequest{}
			if err := json.Unmarshal(params, &req); err != nil {
				t.Fatal(err)
			}
			return TimehubLeaf{Timestamp: 1700000000 + req.Index, Value: []byte("hello world")}, nil
		}
		t.Errorf("unexpected method %q", method)
		return nil, &rpc.Error{Code: -32601, Message: "method not found"}
	})

	leaf, err := c.TimehubLeaf(context.Background(), testAddr(4), count-1, Committed)
	if err != nil {
		t.Fatal(err)
	}
	if string(leaf.Value) != "hello world" {
		t.Errorf("value = %q", leaf.Value)
	}

	_, err = c.TimehubLeaf(context.Background(), testAddr(4), count, Committed)
	if !errors.Is(err, errs.NotFound) {
		t.Fatalf("leaf at count: got %v, want NotFound", err)
	}
}

func TestEstimateGasForcesSequenceZero(t *testing.T) {
	c := fakeNode(t, func(method string, params json.RawMessage) (any, *rpc.Error) {
		req := estimateGasRequest{}
		if err := json.Unmarshal(params, &req); err != nil {
			t.Fatal(err)
		}
		if req.Message.Sequence != 0 {
			t.Errorf("sequence = %d, want 0", req.Message.Sequence)
		}
		return estimateGasResponse{GasLimit: 42, GasFeeCap: big.NewInt(7), GasPremium: big.NewInt(3)}, nil
	})

	msg := &transaction.Message{From: testAddr(1), To: testAddr(2), Sequence: 55}
	got, err := c.EstimateGas(context.Background(), msg)
	if err != nil {
		t.Fatal(err)
	}
	if got.GasLimit != 42 {
		t.Errorf("gas limit = %d, want 42", got.GasLimit)
	}
	if msg.Sequence != 55 {
		t.Error("caller's message was mutated")
	}
}

func TestParseHeight(t *testing.T) {
	cases := map[string]Height{
		"":          Committed,
		"committed": Committed,
		"pending":   Pending,
		"12345":     AtHeight(12345),
	}
	for in, want := range cases {
		got, err := ParseHeight(in)
		if err != nil {
			t.Errorf("ParseHeight(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseHeight(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseHeight("soon"); err == nil {
		t.Error("accepted invalid height")
	}
}
