package machine

import (
	"bytes"
	"context"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/provider"
	"github.com/calyx-network/calyx-client/transaction"
	"github.com/calyx-network/calyx-client/util"

	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// Bucket is a handle to a deployed key-value object store.
type Bucket struct {
	Address address.Address
}

// NewBucket deploys a bucket machine.
func NewBucket(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	owner address.Address,
	metadata map[string]string,
	gas transaction.GasOpts,
) (*Bucket, *provider.TxResult, error) {
	addr, res, err := Create(ctx, c, bld, KindBucket, owner, metadata, gas)
	if err != nil {
		return nil, nil, err
	}
	return AttachBucket(addr), res, nil
}

// AttachBucket wraps an existing bucket address.
func AttachBucket(addr address.Address) *Bucket {
	return &Bucket{Address: addr}
}

// AddOptions tunes an object store operation.
type AddOptions struct {
	// TTL is the number of blocks the object lives for; zero means no expiry.
	TTL uint64
	// Metadata is attached to the stored object as ordered key-value pairs.
	Metadata map[string]string
	// Overwrite allows replacing an existing key.
	Overwrite bool

	Gas  transaction.GasOpts
	Mode provider.BroadcastMode
}

// Add stores content under key. The content identifier is computed locally,
// the bytes are staged with the object API, and the add-object transaction
// referencing them is then broadcast. On a sequence mismatch the transaction
// is rebuilt, the content re-staged under the new envelope, and submitted
// once more.
func (b *Bucket) Add(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	key []byte,
	content []byte,
	opts AddOptions,
) (util.Hash, *provider.TxResult, error) {
	if c.Objects == nil {
		return util.Hash{}, nil, errs.New(errs.InvalidCall, "network %q has no object api", c.Net.Name)
	}

	cid := util.Hash(blake3.Sum256(content))
	call := &transaction.AddObject{
		Machine:   b.Address,
		Key:       key,
		ContentID: cid,
		Size:      uint64(len(content)),
		TTL:       opts.TTL,
		Metadata:  opts.Metadata,
		Overwrite: opts.Overwrite,
	}

	res, err := b.stageAndSubmit(ctx, c, bld, call, cid, content, opts)
	if err != nil && errors.Is(err, errs.SequenceMismatch) {
		bld.InvalidateSequence()
		res, err = b.stageAndSubmit(ctx, c, bld, call, cid, content, opts)
	}
	if err != nil {
		return util.Hash{}, nil, err
	}
	return cid, res, nil
}

func (b *Bucket) stageAndSubmit(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	call *transaction.AddObject,
	cid util.Hash,
	content []byte,
	opts AddOptions,
) (*provider.TxResult, error) {
	tx, err := bld.BuildSigned(ctx, call, opts.Gas)
	if err != nil {
		return nil, err
	}
	err = c.Objects.Upload(ctx, c.Net.ChainID, tx.Serialize(), cid, uint64(len(content)), bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	return c.Submit(ctx, tx, opts.Mode)
}

// Delete removes a key from the bucket.
func (b *Bucket) Delete(
	ctx context.Context,
	c *provider.Client,
	bld *transaction.Builder,
	key []byte,
	gas transaction.GasOpts,
	mode provider.BroadcastMode,
) (*provider.TxResult, error) {
	call := &transaction.DeleteObject{
		Machine: b.Address,
		Key:     key,
	}
	return c.SendCall(ctx, bld, call, gas, mode)
}

// Get reads an object's content, optionally restricted to an inclusive byte
// range.
func (b *Bucket) Get(ctx context.Context, c *provider.Client, key []byte, rng *provider.Range, height provider.Height) ([]byte, error) {
	return c.ObjectGet(ctx, b.Address, key, rng, height)
}

// Size reports an object's size without fetching its content.
func (b *Bucket) Size(ctx context.Context, c *provider.Client, key []byte, height provider.Height) (uint64, error) {
	return c.ObjectSize(ctx, b.Address, key, height)
}

// Query lists the bucket's contents one path segment at a time. See
// provider.BucketQuery for the prefix/delimiter rules.
func (b *Bucket) Query(ctx context.Context, c *provider.Client, prefix, delimiter string, offset, limit uint64, height provider.Height) (*provider.BucketPage, error) {
	return c.BucketQuery(ctx, b.Address, prefix, delimiter, offset, limit, height)
}
