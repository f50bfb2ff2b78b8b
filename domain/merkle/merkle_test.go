package merkle

import (
	"crypto/sha256"
	"reflect"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"
)

func leaf(b byte) *chainhash.Hash {
	hash := chainhash.DoubleHashH([]byte{b})
	return &hash
}

func leaves(n int) []*chainhash.Hash {
	result := make([]*chainhash.Hash, n)
	for i := range result {
		result[i] = leaf(byte(i))
	}
	return result
}

// sha256d is computed without chainhash to check HashMerkleBranches
// independently.
func sha256d(left, right *chainhash.Hash) *chainhash.Hash {
	first := sha256.Sum256(append(append([]byte{}, left[:]...), right[:]...))
	second := chainhash.Hash(sha256.Sum256(first[:]))
	return &second
}

// referenceRoot computes the root recursively, level by level.
func referenceRoot(level []*chainhash.Hash) *chainhash.Hash {
	if len(level) == 1 {
		return level[0]
	}
	var next []*chainhash.Hash
	for i := 0; i < len(level); i += 2 {
		j := i + 1
		if j == len(level) {
			j = i
		}
		next = append(next, sha256d(level[i], level[j]))
	}
	return referenceRoot(next)
}

func TestHashMerkleBranches(t *testing.T) {
	a, b := leaf(1), leaf(2)
	got := HashMerkleBranches(a, b)
	want := sha256d(a, b)
	if !got.IsEqual(want) {
		t.Fatalf("HashMerkleBranches: got %s, want %s", got, want)
	}
	if HashMerkleBranches(b, a).IsEqual(got) {
		t.Fatalf("HashMerkleBranches: concatenation order is ignored")
	}
}

func TestBuildMerkleTreeStoreSmall(t *testing.T) {
	if tree := BuildMerkleTreeStore(nil); len(tree) != 0 || Root(tree) != nil {
		t.Errorf("empty tree: got %s", spew.Sdump(tree))
	}

	single := leaves(1)
	tree := BuildMerkleTreeStore(single)
	if len(tree) != 1 || !Root(tree).IsEqual(single[0]) {
		t.Errorf("single leaf tree: got %s, want %s", spew.Sdump(tree), spew.Sdump(single))
	}
}

func TestBuildMerkleTreeStoreOddLevel(t *testing.T) {
	in := leaves(3)
	a, b, c := in[0], in[1], in[2]

	ab := sha256d(a, b)
	cc := sha256d(c, c)
	root := sha256d(ab, cc)
	want := []*chainhash.Hash{a, b, c, ab, cc, root}

	tree := BuildMerkleTreeStore(in)
	if !reflect.DeepEqual(tree, want) {
		t.Fatalf("BuildMerkleTreeStore: got %s, want %s", spew.Sdump(tree), spew.Sdump(want))
	}
	if !Root(tree).IsEqual(root) {
		t.Fatalf("Root: got %s, want %s", Root(tree), root)
	}
}

func TestBuildMerkleTreeStoreMatchesReference(t *testing.T) {
	for n := 1; n <= 33; n++ {
		in := leaves(n)
		tree := BuildMerkleTreeStore(in)

		if len(tree) != storeSize(n) {
			t.Errorf("%d leaves: got %d nodes, want %d", n, len(tree), storeSize(n))
		}
		if !reflect.DeepEqual(tree[:n], in) {
			t.Errorf("%d leaves: the tree does not start with the leaves", n)
		}
		if want := referenceRoot(in); !Root(tree).IsEqual(want) {
			t.Errorf("%d leaves: root - got %s, want %s", n, Root(tree), want)
		}
	}
}

func TestBuildMerkleTreeStoreDoesNotAliasInput(t *testing.T) {
	in := leaves(4)
	original := append([]*chainhash.Hash{}, in...)
	_ = BuildMerkleTreeStore(in)
	if !reflect.DeepEqual(in, original) {
		t.Fatalf("BuildMerkleTreeStore modified its input")
	}
}

func TestBranch(t *testing.T) {
	for n := 1; n <= 17; n++ {
		in := leaves(n)
		tree := BuildMerkleTreeStore(in)
		root := Root(tree)

		for i := 0; i < n; i++ {
			branch, err := Branch(tree, n, i)
			if err != nil {
				t.Fatalf("%d leaves: Branch(%d): %v", n, i, err)
			}
			if !VerifyBranch(in[i], i, branch, root) {
				t.Errorf("%d leaves: VerifyBranch(%d) failed", n, i)
			}
			if n > 1 && VerifyBranch(leaf(0xff), i, branch, root) {
				t.Errorf("%d leaves: VerifyBranch(%d) accepted a foreign leaf", n, i)
			}
		}
	}
}

func TestBranchErrors(t *testing.T) {
	tree := BuildMerkleTreeStore(leaves(5))

	tests := []struct {
		name      string
		leafCount int
		index     int
	}{
		{"negative index", 5, -1},
		{"index past the end", 5, 5},
		{"wrong leaf count", 4, 0},
		{"no leaves", 0, 0},
	}
	for _, test := range tests {
		if _, err := Branch(tree, test.leafCount, test.index); err == nil {
			t.Errorf("%s: expected an error", test.name)
		}
	}

	if VerifyBranch(nil, 0, nil, Root(tree)) {
		t.Errorf("VerifyBranch accepted a nil leaf")
	}
}
