package transaction

import (
	"encoding/hex"
	"math/big"

	"github.com/calyx-network/calyx-client/address"
	"github.com/calyx-network/calyx-client/binary"
	"github.com/calyx-network/calyx-client/signer"

	"github.com/zeebo/blake3"
)

// Message is the chain-specific envelope for a single call. Immutable once
// signed: any field change invalidates the signature.
type Message struct {
	Version  uint8           `json:"version"`
	From     address.Address `json:"from"`
	To       address.Address `json:"to"`
	Sequence uint64          `json:"sequence"`
	Value    *big.Int        `json:"value"`
	Method   uint64          `json:"method"`
	Params   []byte          `json:"params"`

	GasLimit   uint64   `json:"gas_limit"`
	GasFeeCap  *big.Int `json:"gas_fee_cap"`
	GasPremium *big.Int `json:"gas_premium"`
}

type TXID [32]byte

func (t TXID) String() string {
	return hex.EncodeToString(t[:])
}

func (t TXID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.String() + `"`), nil
}

func (t *TXID) UnmarshalJSON(c []byte) error {
	if len(c) != 66 || c[0] != '"' || c[len(c)-1] != '"' {
		return errInvalidTXID
	}
	dst := make([]byte, 32)
	if _, err := hex.Decode(dst, c[1:len(c)-1]); err != nil {
		return err
	}
	*t = TXID(dst)
	return nil
}

func (m Message) Serialize() []byte {
	s := binary.NewSer(make([]byte, 192))

	s.AddUint8(m.Version)
	s.AddFixedByteArray(m.From[:])
	s.AddFixedByteArray(m.To[:])
	s.AddUvarint(m.Sequence)
	s.AddBigInt(orZero(m.Value))
	s.AddUvarint(m.Method)
	s.AddByteSlice(m.Params)
	s.AddUvarint(m.GasLimit)
	s.AddBigInt(orZero(m.GasFeeCap))
	s.AddBigInt(orZero(m.GasPremium))

	return s.Output()
}

func (m *Message) Deserialize(data []byte) error {
	d := binary.NewDes(data)

	m.Version = d.ReadUint8()
	m.From = address.Address(d.ReadFixedByteArray(address.SIZE))
	m.To = address.Address(d.ReadFixedByteArray(address.SIZE))
	m.Sequence = d.ReadUvarint()
	m.Value = d.ReadBigInt()
	m.Method = d.ReadUvarint()
	m.Params = d.ReadByteSlice()
	m.GasLimit = d.ReadUvarint()
	m.GasFeeCap = d.ReadBigInt()
	m.GasPremium = d.ReadBigInt()

	return d.Error()
}

// SigningDigest binds the envelope to a chain id so a signature is not
// replayable on another network.
func (m Message) SigningDigest(chainID uint64) [32]byte {
	s := binary.NewSer(make([]byte, 8))
	s.AddUvarint(chainID)

	h := blake3.New()
	h.Write(s.Output())
	h.Write(m.Serialize())

	return [32]byte(h.Sum(nil))
}

// SignedTransaction is an envelope plus its signature.
type SignedTransaction struct {
	Message   Message          `json:"message"`
	Signature signer.Signature `json:"signature"`
}

func (t SignedTransaction) Serialize() []byte {
	s := binary.NewSer(make([]byte, 256))
	s.AddByteSlice(t.Message.Serialize())
	s.AddFixedByteArray(t.Signature[:])
	return s.Output()
}

func (t *SignedTransaction) Deserialize(data []byte) error {
	d := binary.NewDes(data)

	msg := d.ReadByteSlice()
	sig := d.ReadFixedByteArray(signer.SIGNATURE_SIZE)
	if err := d.Error(); err != nil {
		return err
	}

	t.Signature = signer.Signature(sig)
	return t.Message.Deserialize(msg)
}

func (t SignedTransaction) Hash() TXID {
	return blake3.Sum256(t.Serialize())
}

// Verify checks the signature against the envelope's sender.
func (t SignedTransaction) Verify(chainID uint64) bool {
	return signer.Verify(t.Message.SigningDigest(chainID), t.Signature, t.Message.From)
}

func orZero(n *big.Int) *big.Int {
	if n == nil {
		return new(big.Int)
	}
	return n
}
