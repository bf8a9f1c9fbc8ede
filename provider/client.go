// Package provider implements the client side of the chain's RPC surface:
// broadcasting signed transactions under the three finality modes, and the
// read-only query family used to inspect accounts, machines, bucket contents
// and timehub state.
package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/provider/objectapi"
	"github.com/calyx-network/calyx-client/rpc"

	"github.com/pkg/errors"
)

// Application-level error codes the chain returns through the JSON-RPC error
// object.
const (
	errCodeNotFound = -32004
)

type Client struct {
	Net config.Network

	// Objects talks to the object-data endpoint. Nil when the network has no
	// object API configured; byte reads and uploads fail in that case.
	Objects *objectapi.Client

	Retry RetryPolicy

	rpcURL string
	http   *http.Client
}

func NewClient(net config.Network) (*Client, error) {
	if net.RPCURL == "" {
		return nil, errors.Errorf("network %q has no rpc url", net.Name)
	}
	rpcURL := net.RPCURL
	if !strings.Contains(rpcURL, "://") {
		rpcURL = "http://" + rpcURL
	}

	c := &Client{
		Net:    net,
		Retry:  DefaultRetryPolicy,
		rpcURL: rpcURL,
		http: &http.Client{
			Timeout: config.RPC_TIMEOUT,
		},
	}
	if net.ObjectAPIURL != "" {
		c.Objects = objectapi.New(net.ObjectAPIURL)
	}
	return c, nil
}

// Request performs one JSON-RPC call. Transport failures are retried with
// bounded exponential backoff before surfacing as a NetworkError; chain-level
// errors are returned as-is on the first response.
func (c *Client) Request(ctx context.Context, method string, params any, output any) error {
	body, err := json.Marshal(rpc.RequestOut{
		JsonRpc: "2.0",
		Method:  method,
		Params:  params,
		Id:      0,
	})
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= c.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			t := time.NewTimer(c.Retry.delay(attempt))
			select {
			case <-ctx.Done():
				t.Stop()
				return errs.Wrap(errs.NetworkError, ctx.Err(), method)
			case <-t.C:
			}
		}

		res, err := c.post(ctx, body)
		if err != nil {
			if ctx.Err() != nil {
				return errs.Wrap(errs.NetworkError, ctx.Err(), method)
			}
			lastErr = err
			continue
		}
		if res.Error != nil {
			return chainError(res.Error)
		}
		if output == nil {
			return nil
		}
		return errors.Wrapf(json.Unmarshal(res.Result, output), "decoding %s result", method)
	}

	return errs.Wrap(errs.NetworkError, lastErr, method)
}

func (c *Client) post(ctx context.Context, body []byte) (*rpc.ResponseIn, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	out := &rpc.ResponseIn{}
	if err := json.Unmarshal(data, out); err != nil {
		return nil, errors.Wrap(err, "decoding rpc response")
	}
	return out, nil
}

func chainError(e *rpc.Error) error {
	if e.Code == errCodeNotFound {
		return errs.New(errs.NotFound, "%s", e.Message)
	}
	return e
}
