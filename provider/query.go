package provider

import (
	"bytes"
	"context"
	"math/big"
	"sort"
	"strings"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/config"
	"github.com/calyx-network/calyx-client/errs"
	"github.com/calyx-network/calyx-client/transaction"
	"github.com/calyx-network/calyx-client/util"
)

// All query operations are read-only and mutate no local or remote state.

type AccountInfo struct {
	Sequence      uint64   `json:"sequence"`
	Balance       *big.Int `json:"balance"`
	ParentBalance *big.Int `json:"parent_balance"`
}

func (c *Client) AccountInfo(ctx context.Context, addr address.Address, height Height) (*AccountInfo, error) {
	out := &AccountInfo{}
	return out, c.Request(ctx, "get_account", getAccountRequest{addr, height}, out)
}

// AccountSequence reports the account's next sequence at the Pending height,
// so transactions still waiting in the mempool are counted.
func (c *Client) AccountSequence(ctx context.Context, addr address.Address) (uint64, error) {
	info, err := c.AccountInfo(ctx, addr, Pending)
	if err != nil {
		return 0, err
	}
	return info.Sequence, nil
}

type MachineInfo struct {
	Kind     transaction.MachineKind `json:"kind"`
	Owner    address.Address         `json:"owner"`
	Metadata map[string]string       `json:"metadata,omitempty"`
}

// MachineInfo resolves a machine's kind and owner. Fails with NotFound if no
// machine exists at that address at the requested height.
func (c *Client) MachineInfo(ctx context.Context, addr address.Address, height Height) (*MachineInfo, error) {
	out := &MachineInfo{}
	return out, c.Request(ctx, "get_machine", getMachineRequest{addr, height}, out)
}

type MachineRef struct {
	Address address.Address         `json:"address"`
	Kind    transaction.MachineKind `json:"kind"`
}

func (c *Client) ListMachines(ctx context.Context, owner address.Address, height Height) ([]MachineRef, error) {
	out := struct {
		Machines []MachineRef `json:"machines"`
	}{}
	err := c.Request(ctx, "list_machines", listMachinesRequest{owner, height}, &out)
	return out.Machines, err
}

// ObjectMeta describes a stored bucket object without its content.
type ObjectMeta struct {
	ContentID util.Hash         `json:"cid"`
	Size      uint64            `json:"size"`
	Expiry    uint64            `json:"expiry,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

type ObjectRecord struct {
	Key  []byte     `json:"key"`
	Meta ObjectMeta `json:"meta"`
}

// BucketPage is one page of a hierarchical bucket listing.
type BucketPage struct {
	Objects        []ObjectRecord `json:"objects"`
	CommonPrefixes []string       `json:"common_prefixes"`
}

// BucketQuery lists a bucket's contents one path segment at a time. Keys
// beginning with prefix are selected; a key whose remainder after the prefix
// contains delimiter is folded into a common prefix (cut after the first
// delimiter occurrence) instead of being listed. Objects are ordered by key
// and sliced by [offset, offset+limit); limit 0 means the maximum page size.
func (c *Client) BucketQuery(ctx context.Context, machine address.Address, prefix, delimiter string, offset, limit uint64, height Height) (*BucketPage, error) {
	list := listObjectsResponse{}
	if err := c.Request(ctx, "list_objects", listObjectsRequest{machine, height}, &list); err != nil {
		return nil, err
	}
	return paginate(list.Objects, prefix, delimiter, offset, limit), nil
}

func paginate(records []ObjectRecord, prefix, delimiter string, offset, limit uint64) *BucketPage {
	if limit == 0 || limit > config.MAX_LIST_LIMIT {
		limit = config.MAX_LIST_LIMIT
	}

	page := &BucketPage{
		Objects:        []ObjectRecord{},
		CommonPrefixes: []string{},
	}

	seen := make(map[string]bool)
	var objects []ObjectRecord
	for _, rec := range records {
		key := string(rec.Key)
		if !strings.HasPrefix(key, prefix) {
			continue
		}
		rest := key[len(prefix):]

		// An empty delimiter disables grouping: every matching key is an
		// object.
		if delimiter != "" {
			if i := strings.Index(rest, delimiter); i >= 0 {
				cp := prefix + rest[:i+len(delimiter)]
				if !seen[cp] {
					seen[cp] = true
					page.CommonPrefixes = append(page.CommonPrefixes, cp)
				}
				continue
			}
		}
		objects = append(objects, rec)
	}

	sort.Slice(objects, func(i, j int) bool {
		return bytes.Compare(objects[i].Key, objects[j].Key) < 0
	})
	sort.Strings(page.CommonPrefixes)

	if offset < uint64(len(objects)) {
		objects = objects[offset:]
		if uint64(len(objects)) > limit {
			objects = objects[:limit]
		}
		page.Objects = append(page.Objects, objects...)
	}

	return page
}

// ObjectGet reads an object's content, optionally restricted to an inclusive
// byte range. Range resolution needs the object size, so ranged reads cost an
// extra HEAD request against the object API.
func (c *Client) ObjectGet(ctx context.Context, machine address.Address, key []byte, rng *Range, height Height) ([]byte, error) {
	if c.Objects == nil {
		return nil, errs.New(errs.InvalidCall, "network %q has no object api", c.Net.Name)
	}
	if rng == nil {
		return c.Objects.Download(ctx, machine, key, "", uint64(height))
	}

	size, err := c.Objects.Size(ctx, machine, key, uint64(height))
	if err != nil {
		return nil, err
	}
	spec, err := rng.resolve(size)
	if err != nil {
		return nil, err
	}
	return c.Objects.Download(ctx, machine, key, spec, uint64(height))
}

// ObjectSize reports an object's size in bytes.
func (c *Client) ObjectSize(ctx context.Context, machine address.Address, key []byte, height Height) (uint64, error) {
	if c.Objects == nil {
		return 0, errs.New(errs.InvalidCall, "network %q has no object api", c.Net.Name)
	}
	return c.Objects.Size(ctx, machine, key, uint64(height))
}

// TimehubLeaf is one append-only log entry together with the block time of
// its inclusion.
type TimehubLeaf struct {
	Timestamp uint64 `json:"timestamp"`
	Value     []byte `json:"value"`
}

// TimehubLeaf fetches the entry at index. Fails with NotFound when index is
// at or past the entry count.
func (c *Client) TimehubLeaf(ctx context.Context, machine address.Address, index uint64, height Height) (*TimehubLeaf, error) {
	count, err := c.TimehubCount(ctx, machine, height)
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, errs.New(errs.NotFound, "leaf index %d out of range (count %d)", index, count)
	}

	out := &TimehubLeaf{}
	return out, c.Request(ctx, "get_leaf", getLeafRequest{machine, index, height}, out)
}

func (c *Client) TimehubCount(ctx context.Context, machine address.Address, height Height) (uint64, error) {
	out := getCountResponse{}
	err := c.Request(ctx, "get_count", timehubRequest{machine, height}, &out)
	return out.Count, err
}

// TimehubPeaks returns one hash per maximal complete subtree of the machine's
// MMR. The peaks are derived on-chain and fetched as-is.
func (c *Client) TimehubPeaks(ctx context.Context, machine address.Address, height Height) ([]util.Hash, error) {
	out := getPeaksResponse{}
	err := c.Request(ctx, "get_peaks", timehubRequest{machine, height}, &out)
	return out.Peaks, err
}

// TimehubRoot returns the single hash summarizing all of the machine's
// entries.
func (c *Client) TimehubRoot(ctx context.Context, machine address.Address, height Height) (util.Hash, error) {
	out := getRootResponse{}
	err := c.Request(ctx, "get_root", timehubRequest{machine, height}, &out)
	return out.Root, err
}

// EstimateGas asks the chain for suggested gas values. The message's sequence
// is forced to zero so estimation doesn't trip over a nonce mismatch.
func (c *Client) EstimateGas(ctx context.Context, msg *transaction.Message) (transaction.GasParams, error) {
	m := *msg
	m.Sequence = 0

	out := estimateGasResponse{}
	if err := c.Request(ctx, "estimate_gas", estimateGasRequest{m, Pending}, &out); err != nil {
		return transaction.GasParams{}, err
	}
	return transaction.GasParams{
		GasLimit:   out.GasLimit,
		GasFeeCap:  out.GasFeeCap,
		GasPremium: out.GasPremium,
	}, nil
}
