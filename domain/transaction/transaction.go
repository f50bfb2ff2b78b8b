// Package transaction provides the transaction records carried in a block
// body. The wire format is the bitcoin transaction format without witness
// data, and the content hash is the double sha256 of that encoding.
package transaction

import (
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"
	"github.com/pkg/errors"
)

// Transaction wraps a wire transaction together with its content hash. It
// is safe for concurrent use.
type Transaction struct {
	tx   *btcutil.Tx
	hash chainhash.Hash
}

// New returns a Transaction for msgTx. The content hash is computed here,
// so the caller must not modify msgTx afterwards.
func New(msgTx *wire.MsgTx) *Transaction {
	tx := btcutil.NewTx(msgTx)
	return &Transaction{tx: tx, hash: *tx.Hash()}
}

// Decode reads a single transaction from r.
func Decode(r io.Reader) (*Transaction, error) {
	msgTx := &wire.MsgTx{}
	err := msgTx.DeserializeNoWitness(r)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return New(msgTx), nil
}

// Serialize writes the transaction to w.
func (t *Transaction) Serialize(w io.Writer) error {
	return errors.WithStack(t.tx.MsgTx().SerializeNoWitness(w))
}

// SerializeSize returns the number of bytes Serialize writes.
func (t *Transaction) SerializeSize() int {
	return t.tx.MsgTx().SerializeSizeStripped()
}

// Hash returns a copy of the content hash of the transaction, in wire byte
// order.
func (t *Transaction) Hash() *chainhash.Hash {
	hash := t.hash
	return &hash
}

// MsgTx returns the underlying wire transaction. It must be treated as read
// only.
func (t *Transaction) MsgTx() *wire.MsgTx {
	return t.tx.MsgTx()
}

// String returns the display form of the transaction hash.
func (t *Transaction) String() string {
	return t.Hash().String()
}
