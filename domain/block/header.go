// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// baseHeaderPayload is the number of bytes a block header occupies before
// the block signature.
// Version 4 bytes + PrevHash 32 bytes + MerkleRoot 32 bytes +
// HashMerkleRootWithData 32 bytes + HashMerkleRootWithPrevData 32 bytes +
// Time 4 bytes + Bits 4 bytes + Nonce 4 bytes + OutpointHash 32 bytes +
// OutpointN 4 bytes.
const baseHeaderPayload = 4 + 4*chainhash.HashSize + 12 + chainhash.HashSize + 4

// Header holds the fields of a block that its identity is computed over.
// Hashes are held in wire byte order.
type Header struct {
	// Version of the block.
	Version int32

	// Hash of the previous block.
	PrevHash chainhash.Hash

	// Merkle tree reference to the hashes of all transactions in the block.
	MerkleRoot chainhash.Hash

	// Contract data commitments. They are carried through untouched.
	HashMerkleRootWithData     chainhash.Hash
	HashMerkleRootWithPrevData chainhash.Hash

	// Time the block was created, in seconds since the unix epoch.
	Time uint32

	// Difficulty target for the block.
	Bits uint32

	// Nonce used to generate the block.
	Nonce uint32

	// Staking outpoint.
	OutpointHash chainhash.Hash
	OutpointN    int32

	// Block signature. It is covered by the block identity.
	Signature []byte
}

// Clone returns a deep copy of the header.
func (h *Header) Clone() Header {
	clone := *h
	clone.Signature = cloneBytes(h.Signature)
	return clone
}

// BlockHash computes the block identifier hash for the given block header.
func (h *Header) BlockHash() chainhash.Hash {
	buf := bytes.NewBuffer(make([]byte, 0, h.SerializeSize()))
	// A bytes.Buffer never fails to write.
	_ = writeBlockHeader(buf, h)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Deserialize decodes a block header from r into the receiver.
func (h *Header) Deserialize(r io.Reader) error {
	return readBlockHeader(r, h)
}

// Serialize encodes a block header from h into w.
func (h *Header) Serialize(w io.Writer) error {
	return writeBlockHeader(w, h)
}

// SerializeSize returns the number of bytes it would take to serialize the
// block header.
func (h *Header) SerializeSize() int {
	return baseHeaderPayload + VarIntSerializeSize(uint64(len(h.Signature))) + len(h.Signature)
}

// readBlockHeader reads a block header from r.
func readBlockHeader(r io.Reader, bh *Header) error {
	err := readElements(r, &bh.Version, &bh.PrevHash, &bh.MerkleRoot,
		&bh.HashMerkleRootWithData, &bh.HashMerkleRootWithPrevData,
		&bh.Time, &bh.Bits, &bh.Nonce, &bh.OutpointHash, &bh.OutpointN)
	if err != nil {
		return err
	}

	bh.Signature, err = ReadVarBytes(r)
	return err
}

// writeBlockHeader writes a block header to w.
func writeBlockHeader(w io.Writer, bh *Header) error {
	err := writeElements(w, bh.Version, &bh.PrevHash, &bh.MerkleRoot,
		&bh.HashMerkleRootWithData, &bh.HashMerkleRootWithPrevData,
		bh.Time, bh.Bits, bh.Nonce, &bh.OutpointHash, bh.OutpointN)
	if err != nil {
		return err
	}

	return WriteVarBytes(w, bh.Signature)
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	return append([]byte(nil), b...)
}
