// Package objectapi talks to the network's object-data HTTP endpoint: byte
// and byte-range downloads, size lookups, and multipart uploads of bucket
// content. Transaction broadcast and state queries go through the consensus
// RPC instead; see the provider package.
package objectapi

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/util"
	"github.com/calyx-network/calyx-client/util/enc"

	"github.com/pkg/errors"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http: &http.Client{
			Timeout: config.RPC_TIMEOUT,
		},
	}
}

func (c *Client) objectURL(machine address.Address, key []byte, height uint64) string {
	return fmt.Sprintf("%s/v1/objects/%s/%s?height=%d",
		c.baseURL, machine, url.PathEscape(string(key)), height)
}

// Download reads an object's content. rangeSpec is an inclusive "start-end"
// byte range, or empty for the full content.
func (c *Client) Download(ctx context.Context, machine address.Address, key []byte, rangeSpec string, height uint64) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.objectURL(machine, key, height), nil)
	if err != nil {
		return nil, err
	}
	if rangeSpec != "" {
		req.Header.Set("Range", "bytes="+rangeSpec)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(errs.NetworkError, err, "downloading object")
	}
	defer res.Body.Close()

	if err := statusError(res, machine, key); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, errs.Wrap(errs.NetworkError, err, "reading object body")
	}
	return data, nil
}

// Size reports an object's size from a HEAD request's content-length.
func (c *Client) Size(ctx context.Context, machine address.Address, key []byte, height uint64) (uint64, error) {
	req, err := http.NewRequestWithContext(ctx, "HEAD", c.objectURL(machine, key, height), nil)
	if err != nil {
		return 0, err
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, errs.Wrap(errs.NetworkError, err, "requesting object size")
	}
	defer res.Body.Close()

	if err := statusError(res, machine, key); err != nil {
		return 0, err
	}
	cl := res.Header.Get("Content-Length")
	if cl == "" {
		return 0, errors.New("missing content-length header in object size response")
	}
	size, err := strconv.ParseUint(cl, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid content-length %q", cl)
	}
	return size, nil
}

// Upload stages an object's content with the network before the add-object
// transaction referencing it is broadcast. The signed transaction travels in
// the form so the endpoint can verify the content against it.
func (c *Client) Upload(ctx context.Context, chainID uint64, signedTx []byte, hash util.Hash, size uint64, content io.Reader) error {
	body := &strings.Builder{}
	form := multipart.NewWriter(body)

	fields := map[string]string{
		"chain_id": strconv.FormatUint(chainID, 10),
		"msg":      enc.B64(signedTx).String(),
		"hash":     hash.String(),
		"size":     strconv.FormatUint(size, 10),
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return err
		}
	}
	part, err := form.CreateFormFile("object", hash.String())
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, content); err != nil {
		return err
	}
	if err := form.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v1/objects", strings.NewReader(body.String()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(errs.NetworkError, err, "uploading object")
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
		return errors.Errorf("object upload failed: %s: %s", res.Status, msg)
	}
	return nil
}

func statusError(res *http.Response, machine address.Address, key []byte) error {
	switch {
	case res.StatusCode >= 200 && res.StatusCode <= 299:
		return nil
	case res.StatusCode == http.StatusNotFound:
		return errs.New(errs.NotFound, "object %q not found in %s", key, machine)
	case res.StatusCode == http.StatusRequestedRangeNotSatisfiable:
		return errs.New(errs.RangeNotSatisfiable, "object %q in %s", key, machine)
	}
	msg, _ := io.ReadAll(io.LimitReader(res.Body, 1024))
	return errors.Errorf("object request failed: %s: %s", res.Status, msg)
}
