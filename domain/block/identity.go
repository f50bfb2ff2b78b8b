package block

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/contractchain/contractd/domain/merkle"
)

func (b *Block) computeIdentity() {
	b.identityOnce.Do(func() {
		b.hash = b.header.BlockHash()
		b.id = b.hash.String()
	})
}

// BlockHash returns the block identifier hash in wire byte order: the double
// sha256 of the header encoding. It is computed once per block.
func (b *Block) BlockHash() *chainhash.Hash {
	b.computeIdentity()
	hash := b.hash
	return &hash
}

// ID returns the block identifier: the block hash in reversed byte order,
// hex encoded.
func (b *Block) ID() string {
	b.computeIdentity()
	return b.id
}

// Hash is an alias of ID.
func (b *Block) Hash() string {
	return b.ID()
}

// TransactionHashes returns the content hash of every transaction, in block
// order. A block without transactions yields the single NullHash leaf.
func (b *Block) TransactionHashes() []*chainhash.Hash {
	if len(b.transactions) == 0 {
		return []*chainhash.Hash{NullHash()}
	}

	hashes := make([]*chainhash.Hash, len(b.transactions))
	for i, tx := range b.transactions {
		hash := *tx.Hash()
		hashes[i] = &hash
	}
	return hashes
}

// MerkleTree returns the flattened merkle tree over the transaction hashes.
// The last element is the root.
func (b *Block) MerkleTree() []*chainhash.Hash {
	return merkle.BuildMerkleTreeStore(b.TransactionHashes())
}

// MerkleRoot computes the merkle root of the transactions. It is NullHash
// for a block without transactions.
func (b *Block) MerkleRoot() *chainhash.Hash {
	return merkle.Root(b.MerkleTree())
}

// ValidMerkleRoot reports whether the merkle root stored in the header
// matches the one computed from the transactions.
func (b *Block) ValidMerkleRoot() bool {
	computed := b.MerkleRoot()
	valid := b.header.MerkleRoot.IsEqual(computed)
	if !valid {
		log.Debugf("Block %s has merkle root %s, transactions hash to %s",
			b.ID(), &b.header.MerkleRoot, computed)
	}
	return valid
}

// MerkleBranch returns the sibling path proving the transaction at index
// under the computed merkle root.
func (b *Block) MerkleBranch(index int) ([]*chainhash.Hash, error) {
	leaves := b.TransactionHashes()
	return merkle.Branch(merkle.BuildMerkleTreeStore(leaves), len(leaves), index)
}

// GoString returns a short inspection form of the block.
func (b *Block) GoString() string {
	return fmt.Sprintf("<Block %s>", b.ID())
}
