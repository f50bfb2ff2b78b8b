// Package merkle builds the transaction hash tree committed to by a block
// header.
//
// The tree is stored flattened in level order: the leaves first, then every
// parent level, ending with the root. A level with an odd number of nodes
// pairs its last node with itself.
package merkle

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"
)

// HashMerkleBranches returns the double sha256 of the concatenation of left
// and right.
func HashMerkleBranches(left, right *chainhash.Hash) *chainhash.Hash {
	var hash [chainhash.HashSize * 2]byte
	copy(hash[:chainhash.HashSize], left[:])
	copy(hash[chainhash.HashSize:], right[:])

	newHash := chainhash.DoubleHashH(hash[:])
	return &newHash
}

// storeSize returns the number of nodes in the flattened tree over
// leafCount leaves.
func storeSize(leafCount int) int {
	if leafCount <= 1 {
		return leafCount
	}
	total := 0
	for size := leafCount; size > 1; size = (size + 1) / 2 {
		total += size
	}
	return total + 1
}

// BuildMerkleTreeStore builds the flattened merkle tree over leaves.
//
// For n <= 1 leaves the tree is the leaves themselves. Otherwise each level
// of size s pairs node i with node min(i+1, s-1) and the parents are appended
// in order, until a level of size one (the root) is produced.
func BuildMerkleTreeStore(leaves []*chainhash.Hash) []*chainhash.Hash {
	tree := make([]*chainhash.Hash, len(leaves), storeSize(len(leaves)))
	copy(tree, leaves)

	offset := 0
	for size := len(leaves); size > 1; size = (size + 1) / 2 {
		for i := 0; i < size; i += 2 {
			right := i + 1
			if right > size-1 {
				right = size - 1
			}
			tree = append(tree, HashMerkleBranches(tree[offset+i], tree[offset+right]))
		}
		offset += size
	}
	return tree
}

// Root returns the last node of a flattened tree, or nil for an empty tree.
func Root(tree []*chainhash.Hash) *chainhash.Hash {
	if len(tree) == 0 {
		return nil
	}
	return tree[len(tree)-1]
}

// Branch returns the sibling path of the leaf at index, bottom up, taken from
// a tree built by BuildMerkleTreeStore over leafCount leaves.
func Branch(tree []*chainhash.Hash, leafCount int, index int) ([]*chainhash.Hash, error) {
	if leafCount <= 0 || len(tree) != storeSize(leafCount) {
		return nil, errors.Errorf("tree of %d nodes does not match %d leaves", len(tree), leafCount)
	}
	if index < 0 || index >= leafCount {
		return nil, errors.Errorf("leaf index %d is out of range [0, %d)", index, leafCount)
	}

	var branch []*chainhash.Hash
	offset := 0
	for size := leafCount; size > 1; size = (size + 1) / 2 {
		sibling := index ^ 1
		if sibling > size-1 {
			sibling = size - 1
		}
		branch = append(branch, tree[offset+sibling])
		index >>= 1
		offset += size
	}
	return branch, nil
}

// BranchRoot recomputes the root from a leaf, its index and the sibling path
// returned by Branch.
func BranchRoot(leaf *chainhash.Hash, index int, branch []*chainhash.Hash) *chainhash.Hash {
	hash := leaf
	for _, sibling := range branch {
		if index&1 == 1 {
			hash = HashMerkleBranches(sibling, hash)
		} else {
			hash = HashMerkleBranches(hash, sibling)
		}
		index >>= 1
	}
	return hash
}

// VerifyBranch reports whether the sibling path proves leaf at index under
// root.
func VerifyBranch(leaf *chainhash.Hash, index int, branch []*chainhash.Hash, root *chainhash.Hash) bool {
	if leaf == nil || root == nil {
		return false
	}
	return BranchRoot(leaf, index, branch).IsEqual(root)
}
