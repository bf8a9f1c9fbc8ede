package provider

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/rpc"
)

// rpcHandler answers one decoded JSON-RPC request in a fake node.
type rpcHandler func(method string, params json.RawMessage) (any, *rpc.Error)

// fakeNode starts a JSON-RPC test server and returns a client pointed at it.
func fakeNode(t *testing.T, handler rpcHandler) *Client {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := rpc.RequestIn{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
			return
		}
		result, rpcErr := handler(req.Method, req.Params)
		res := rpc.ResponseOut{
			JsonRpc: "2.0",
			Result:  result,
			Error:   rpcErr,
			Id:      req.Id,
		}
		if err := json.NewEncoder(w).Encode(res); err != nil {
			t.Errorf("encoding response: %v", err)
		}
	}))
	t.Cleanup(srv.Close)

	c, err := NewClient(config.Network{
		Name:    "test",
		ChainID: 1337,
		RPCURL:  srv.URL,
	})
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func testAddr(b byte) address.Address {
	var a address.Address
	a[19] = b
	return a
}
