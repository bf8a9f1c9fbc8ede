package provider

import (
	"encoding/json"
	"math/big"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/transaction"
	"github.com/calyx-network/calyx-client/util"
	"github.com/calyx-network/calyx-client/util/enc"
)

// Wire requests. Responses that surface to callers are defined next to the
// operations in query.go and broadcast.go.

type getAccountRequest struct {
	Address address.Address `json:"address"`
	Height  Height          `json:"height"`
}

type getMachineRequest struct {
	Address address.Address `json:"address"`
	Height  Height          `json:"height"`
}

type listMachinesRequest struct {
	Owner  address.Address `json:"owner"`
	Height Height          `json:"height"`
}

type listObjectsRequest struct {
	Machine address.Address `json:"machine"`
	Height  Height          `json:"height"`
}

type listObjectsResponse struct {
	Objects []ObjectRecord `json:"objects"`
}

type timehubRequest struct {
	Machine address.Address `json:"machine"`
	Height  Height          `json:"height"`
}

type getLeafRequest struct {
	Machine address.Address `json:"machine"`
	Index   uint64          `json:"index"`
	Height  Height          `json:"height"`
}

type getCountResponse struct {
	Count uint64 `json:"count"`
}

type getPeaksResponse struct {
	Peaks []util.Hash `json:"peaks"`
}

type getRootResponse struct {
	Root util.Hash `json:"root"`
}

type estimateGasRequest struct {
	Message transaction.Message `json:"message"`
	Height  Height              `json:"height"`
}

type estimateGasResponse struct {
	GasLimit   uint64   `json:"gas_limit"`
	GasFeeCap  *big.Int `json:"gas_fee_cap"`
	GasPremium *big.Int `json:"gas_premium"`
}

type broadcastRequest struct {
	Tx enc.Hex `json:"tx"`
}

type broadcastAsyncResponse struct {
	Hash transaction.TXID `json:"hash"`
}

type broadcastSyncResponse struct {
	Hash transaction.TXID `json:"hash"`
	Code uint32           `json:"code"`
	Log  string           `json:"log,omitempty"`
}

type broadcastCommitResponse struct {
	Hash        transaction.TXID `json:"hash"`
	CheckCode   uint32           `json:"check_code"`
	CheckLog    string           `json:"check_log,omitempty"`
	DeliverCode uint32           `json:"deliver_code"`
	DeliverLog  string           `json:"deliver_log,omitempty"`
	Height      uint64           `json:"height"`
	GasUsed     uint64           `json:"gas_used"`
	Data        json.RawMessage  `json:"data,omitempty"`
}
