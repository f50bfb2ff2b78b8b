package block

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// MaxBlockSize is the advisory upper bound of an encoded block in
	// bytes. The codec does not enforce it; callers that read blocks from
	// untrusted sources may.
	MaxBlockSize = 1000000

	// StartOfBlock is the length of the prefix that precedes a block in
	// the raw block file layout.
	StartOfBlock = 8

	// defaultTransactionAlloc is the default size used for the backing
	// array for transactions. The transaction array will dynamically grow
	// as needed, but this figure is intended to provide enough space for
	// the number of transactions in the vast majority of blocks without
	// needing to grow the backing array multiple times.
	defaultTransactionAlloc = 2048

	// defaultGroupSizeAlloc bounds the initial allocation for the group
	// size list in the same way.
	defaultGroupSizeAlloc = 2048
)

// NullHash returns the all-zero hash. It is the merkle root of a block that
// carries no transactions.
func NullHash() *chainhash.Hash {
	return &chainhash.Hash{}
}
