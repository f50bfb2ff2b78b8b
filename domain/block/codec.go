// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/infrastructure/logger"
)

// TxLoc holds locator data for the offset and length of where a transaction
// is located within a block's encoding.
type TxLoc struct {
	TxStart int
	TxLen   int
}

// countingReader counts the bytes read through it, so that transaction
// locations can be reported for any reader.
type countingReader struct {
	r io.Reader
	n int
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n += n
	return n, err
}

// malformed wraps a decoding failure of field so that it matches
// ErrMalformedInput.
func malformed(err error, field string) error {
	if errors.Is(err, ErrMalformedInput) {
		return errors.Wrapf(err, "failed to read %s", field)
	}
	return errors.Wrapf(ErrMalformedInput, "failed to read %s: %s", field, err)
}

// decode reads a whole block from r. Every transaction location, relative to
// the start of the block, is recorded in the returned slice.
func decode(r io.Reader, decodeTx TransactionDecoder) (*Block, []TxLoc, error) {
	cr := &countingReader{r: r}
	b := &Block{}

	err := readBlockHeader(cr, &b.header)
	if err != nil {
		if cr.n == 0 && errors.Is(err, io.EOF) {
			return nil, nil, errors.Wrap(ErrMalformedInput, "no block data received")
		}
		return nil, nil, malformed(err, "block header")
	}

	txCount, err := ReadVarInt(cr)
	if err != nil {
		return nil, nil, malformed(err, "transaction count")
	}

	// Prevent a forged count from allocating more than a typical block
	// needs up front. The slice grows as records actually decode.
	allocCount := txCount
	if allocCount > defaultTransactionAlloc {
		allocCount = defaultTransactionAlloc
	}
	if txCount > 0 {
		b.transactions = make([]Transaction, 0, allocCount)
	}
	txLocs := make([]TxLoc, 0, allocCount)
	for i := uint64(0); i < txCount; i++ {
		start := cr.n
		tx, err := decodeTx(cr)
		if err != nil {
			return nil, nil, malformed(err, fmt.Sprintf("transaction %d of %d", i, txCount))
		}
		b.transactions = append(b.transactions, tx)
		txLocs = append(txLocs, TxLoc{TxStart: start, TxLen: cr.n - start})
	}

	groupCount, err := ReadVarInt(cr)
	if err != nil {
		return nil, nil, malformed(err, "group size count")
	}
	allocCount = groupCount
	if allocCount > defaultGroupSizeAlloc {
		allocCount = defaultGroupSizeAlloc
	}
	if groupCount > 0 {
		b.groupSizes = make([]uint16, 0, allocCount)
	}
	for i := uint64(0); i < groupCount; i++ {
		var groupSize uint16
		err := readElement(cr, &groupSize)
		if err != nil {
			return nil, nil, malformed(err, fmt.Sprintf("group size %d of %d", i, groupCount))
		}
		b.groupSizes = append(b.groupSizes, groupSize)
	}

	// prevContractData entries carry no bytes, so the count is all there
	// is to read.
	b.contractData.Count, err = ReadVarInt(cr)
	if err != nil {
		return nil, nil, malformed(err, "prevContractData count")
	}

	log.Tracef("Decoded block of %d bytes: %s", cr.n, logger.NewLogClosure(func() string {
		return spew.Sdump(b.header)
	}))
	return b, txLocs, nil
}

// Deserialize decodes a block from r using the default transaction decoder.
// Trailing bytes after the block are left unread.
func Deserialize(r io.Reader) (*Block, error) {
	return DeserializeWith(r, DecodeTransaction)
}

// DeserializeWith decodes a block from r, reading every transaction record
// with decodeTx.
func DeserializeWith(r io.Reader, decodeTx TransactionDecoder) (*Block, error) {
	b, _, err := decode(r, decodeTx)
	return b, err
}

// FromBytes decodes a block from its binary encoding.
func FromBytes(data []byte) (*Block, error) {
	if len(data) == 0 {
		return nil, errors.Wrap(ErrMalformedInput, "no block data received")
	}
	return Deserialize(bytes.NewReader(data))
}

// FromBytesWithLocations decodes a block from its binary encoding and also
// returns the location of every transaction within data.
func FromBytesWithLocations(data []byte) (*Block, []TxLoc, error) {
	if len(data) == 0 {
		return nil, nil, errors.Wrap(ErrMalformedInput, "no block data received")
	}
	return decode(bytes.NewReader(data), DecodeTransaction)
}

// FromHex decodes a block from the hex form of its binary encoding.
func FromHex(s string) (*Block, error) {
	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedInput, "invalid block hex: %s", err)
	}
	return FromBytes(data)
}

// FromRawBlock decodes a block from the raw block file layout, in which
// StartOfBlock bytes precede the block encoding.
func FromRawBlock(data []byte) (*Block, error) {
	if len(data) < StartOfBlock {
		return nil, errors.Wrapf(ErrMalformedInput,
			"raw block of %d bytes is shorter than its %d byte prefix", len(data), StartOfBlock)
	}
	return FromBytes(data[StartOfBlock:])
}

// SerializeHeader writes the header encoding of the block to w.
func (b *Block) SerializeHeader(w io.Writer) error {
	return writeBlockHeader(w, &b.header)
}

// Serialize writes the full encoding of the block to w.
func (b *Block) Serialize(w io.Writer) error {
	err := writeBlockHeader(w, &b.header)
	if err != nil {
		return err
	}

	err = WriteVarInt(w, uint64(len(b.transactions)))
	if err != nil {
		return err
	}
	for _, tx := range b.transactions {
		err = tx.Serialize(w)
		if err != nil {
			return err
		}
	}

	err = WriteVarInt(w, uint64(len(b.groupSizes)))
	if err != nil {
		return err
	}
	for _, groupSize := range b.groupSizes {
		err = writeElement(w, groupSize)
		if err != nil {
			return err
		}
	}

	return WriteVarInt(w, b.contractData.Count)
}

// HeaderBytes returns the header encoding of the block, the bytes its
// identity is computed over.
func (b *Block) HeaderBytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, b.header.SerializeSize()))
	// A bytes.Buffer never fails to write.
	_ = writeBlockHeader(buf, &b.header)
	return buf.Bytes()
}

// Bytes returns the full encoding of the block.
func (b *Block) Bytes() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, b.SerializeSize()))
	err := b.Serialize(buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// HeaderSerializeSize returns the length of the header encoding.
func (b *Block) HeaderSerializeSize() int {
	return b.header.SerializeSize()
}

// SerializeSize returns the length of the full encoding of the block.
func (b *Block) SerializeSize() int {
	n := b.header.SerializeSize() + VarIntSerializeSize(uint64(len(b.transactions)))
	for _, tx := range b.transactions {
		n += tx.SerializeSize()
	}
	n += VarIntSerializeSize(uint64(len(b.groupSizes))) + 2*len(b.groupSizes)
	return n + VarIntSerializeSize(b.contractData.Count)
}

// String returns the hex form of the full block encoding.
func (b *Block) String() string {
	data, err := b.Bytes()
	if err != nil {
		log.Errorf("Block %s does not serialize: %s", b.ID(), err)
		return ""
	}
	return hex.EncodeToString(data)
}
