// Package block implements the binary codec, field model and identity of a
// contract chain block.
//
// A block is an immutable value: it is built once, from bytes, from hex,
// from its display object or from raw fields, and every accessor returns a
// copy. The block identifier is computed from the header encoding on first
// use and reused afterwards.
package block

import (
	"io"
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/domain/transaction"
)

// Transaction is a transaction record carried in a block body. The block
// relies on it to serialize itself and to provide its content hash.
// Implementations must be safe for concurrent use.
type Transaction interface {
	Serialize(w io.Writer) error
	SerializeSize() int
	Hash() *chainhash.Hash
	ToObject() *transaction.Object
}

// TransactionDecoder reads a single transaction record from r.
type TransactionDecoder func(r io.Reader) (Transaction, error)

// DecodeTransaction is the TransactionDecoder used by the package level
// decoding functions.
func DecodeTransaction(r io.Reader) (Transaction, error) {
	tx, err := transaction.Decode(r)
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// ReservedContractData is the prevContractData collection. Its entries have
// no payload on the wire, so only their number is kept.
type ReservedContractData struct {
	Count uint64 `json:"count"`
}

// Fields holds the raw decoded content of a block.
type Fields struct {
	Header       Header
	Transactions []Transaction
	GroupSizes   []uint16
	ContractData ReservedContractData
}

// Block is a decoded contract chain block. It is safe for concurrent use.
type Block struct {
	header       Header
	transactions []Transaction
	groupSizes   []uint16
	contractData ReservedContractData

	identityOnce sync.Once
	hash         chainhash.Hash
	id           string
}

// NewBlock returns a block holding a copy of fields. No validation is
// performed: in particular the merkle root in the header is taken as given.
func NewBlock(fields *Fields) *Block {
	return &Block{
		header:       fields.Header.Clone(),
		transactions: cloneTransactions(fields.Transactions),
		groupSizes:   cloneGroupSizes(fields.GroupSizes),
		contractData: fields.ContractData,
	}
}

// New builds a block from any of its representations: encoded bytes, a hex
// string, a display object or raw fields. Any other argument fails with
// ErrInvalidArgument.
func New(arg interface{}) (*Block, error) {
	switch v := arg.(type) {
	case []byte:
		return FromBytes(v)
	case string:
		return FromHex(v)
	case *Object:
		return ParseObject(v)
	case Object:
		return ParseObject(&v)
	case *Fields:
		if v == nil {
			return nil, errors.Wrap(ErrInvalidArgument, "block fields are nil")
		}
		return NewBlock(v), nil
	case Fields:
		return NewBlock(&v), nil
	}
	return nil, errors.Wrapf(ErrInvalidArgument, "unrecognized argument for block: %T", arg)
}

// Header returns a copy of the block header.
func (b *Block) Header() Header {
	return b.header.Clone()
}

// Transactions returns the transactions of the block, in block order. The
// returned slice is a copy.
func (b *Block) Transactions() []Transaction {
	return cloneTransactions(b.transactions)
}

// GroupSizes returns a copy of the groupSize collection.
func (b *Block) GroupSizes() []uint16 {
	return cloneGroupSizes(b.groupSizes)
}

// ContractData returns the prevContractData collection.
func (b *Block) ContractData() ReservedContractData {
	return b.contractData
}

// Fields returns a copy of the raw content of the block.
func (b *Block) Fields() *Fields {
	return &Fields{
		Header:       b.Header(),
		Transactions: b.Transactions(),
		GroupSizes:   b.GroupSizes(),
		ContractData: b.contractData,
	}
}

func cloneTransactions(txs []Transaction) []Transaction {
	if len(txs) == 0 {
		return nil
	}
	return append([]Transaction(nil), txs...)
}

func cloneGroupSizes(groupSizes []uint16) []uint16 {
	if len(groupSizes) == 0 {
		return nil
	}
	return append([]uint16(nil), groupSizes...)
}
