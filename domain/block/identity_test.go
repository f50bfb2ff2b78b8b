package block

import (
	"crypto/sha256"
	"encoding/hex"
	"math/big"
	"math/rand"
	"sync"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/davecgh/go-spew/spew"

	"github.com/contractchain/contractd/domain/merkle"
)

// reversedDoubleSha256 computes a block id without chainhash.
func reversedDoubleSha256(data []byte) string {
	first := sha256.Sum256(data)
	second := sha256.Sum256(first[:])
	for i, j := 0, len(second)-1; i < j; i, j = i+1, j-1 {
		second[i], second[j] = second[j], second[i]
	}
	return hex.EncodeToString(second[:])
}

func TestID(t *testing.T) {
	b := testBlock(t)

	if b.ID() != testBlockID {
		t.Errorf("ID: got %s, want %s", b.ID(), testBlockID)
	}
	if want := reversedDoubleSha256(b.HeaderBytes()); b.ID() != want {
		t.Errorf("ID: got %s, want %s", b.ID(), want)
	}
	if b.Hash() != b.ID() {
		t.Errorf("Hash: got %s, want %s", b.Hash(), b.ID())
	}
	if b.BlockHash().String() != b.ID() {
		t.Errorf("BlockHash: got %s, want %s", b.BlockHash(), b.ID())
	}

	// The returned hash is a copy.
	b.BlockHash()[0] ^= 0xff
	if b.ID() != testBlockID || b.BlockHash().String() != testBlockID {
		t.Errorf("BlockHash: the memoized hash was modified")
	}
}

func TestIDCoversHeaderOnly(t *testing.T) {
	b := testBlock(t)

	fields := b.Fields()
	fields.GroupSizes = append(fields.GroupSizes, 9)
	fields.ContractData.Count = 100
	fields.Transactions = nil
	if NewBlock(fields).ID() != testBlockID {
		t.Errorf("ID changed with the block body")
	}

	fields = b.Fields()
	fields.Header.Signature[len(fields.Header.Signature)-1] ^= 0x01
	if NewBlock(fields).ID() == testBlockID {
		t.Errorf("ID did not change with the block signature")
	}
}

func TestIDConcurrent(t *testing.T) {
	b := testBlock(t)

	const readers = 16
	ids := make([]string, readers)
	var wg sync.WaitGroup
	wg.Add(readers)
	for i := 0; i < readers; i++ {
		go func(i int) {
			defer wg.Done()
			ids[i] = b.ID()
		}(i)
	}
	wg.Wait()

	for i, id := range ids {
		if id != testBlockID {
			t.Errorf("reader %d: got %s, want %s", i, id, testBlockID)
		}
	}
}

func TestValidMerkleRootConcurrent(t *testing.T) {
	blocks := []*Block{
		testBlock(t),
		NewBlock(&Fields{Transactions: []Transaction{testTransaction(1), testTransaction(2), testTransaction(3)}}),
	}

	for n, b := range blocks {
		want := b.MerkleRoot().String()

		const readers = 8
		valid := make([]bool, readers)
		roots := make([]string, readers)
		var wg sync.WaitGroup
		wg.Add(readers)
		for i := 0; i < readers; i++ {
			go func(i int) {
				defer wg.Done()
				valid[i] = b.ValidMerkleRoot()
				roots[i] = b.MerkleRoot().String()
			}(i)
		}
		wg.Wait()

		for i := 0; i < readers; i++ {
			if valid[i] != (n == 0) {
				t.Errorf("block %d, reader %d: ValidMerkleRoot got %v, want %v", n, i, valid[i], n == 0)
			}
			if roots[i] != want {
				t.Errorf("block %d, reader %d: MerkleRoot got %s, want %s", n, i, roots[i], want)
			}
		}
	}
}

func TestMerkleRootSingleTransaction(t *testing.T) {
	b := testBlock(t)

	hashes := b.TransactionHashes()
	if len(hashes) != 1 || hashes[0].String() != testCoinbaseID {
		t.Fatalf("TransactionHashes: got %s", spew.Sdump(hashes))
	}
	if root := b.MerkleRoot(); root.String() != testCoinbaseID {
		t.Errorf("MerkleRoot: got %s, want %s", root, testCoinbaseID)
	}
	if tree := b.MerkleTree(); len(tree) != 1 {
		t.Errorf("MerkleTree: got %d nodes, want 1", len(tree))
	}
	if !b.ValidMerkleRoot() {
		t.Errorf("ValidMerkleRoot: got false, want true")
	}
}

func TestMerkleRootEmptyBlock(t *testing.T) {
	b := NewBlock(&Fields{})

	hashes := b.TransactionHashes()
	if len(hashes) != 1 || !hashes[0].IsEqual(NullHash()) {
		t.Fatalf("TransactionHashes: got %s, want the null hash", spew.Sdump(hashes))
	}
	if !b.MerkleRoot().IsEqual(NullHash()) {
		t.Errorf("MerkleRoot: got %s, want the null hash", b.MerkleRoot())
	}
	if !b.ValidMerkleRoot() {
		t.Errorf("ValidMerkleRoot: got false, want true")
	}

	header := Header{MerkleRoot: chainhash.Hash{1}}
	if NewBlock(&Fields{Header: header}).ValidMerkleRoot() {
		t.Errorf("ValidMerkleRoot: accepted a non-null root for an empty block")
	}
}

func TestMerkleRootTamperedTransaction(t *testing.T) {
	data := testBlockBytes(t)

	// Flip a bit inside the coinbase script. The block still decodes, but
	// its transaction no longer hashes to the stored root.
	data[testTxStart+60] ^= 0x01
	b, err := FromBytes(data)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if b.ValidMerkleRoot() {
		t.Errorf("ValidMerkleRoot: accepted a tampered transaction")
	}
	if b.ID() != testBlockID {
		t.Errorf("ID: got %s, want %s", b.ID(), testBlockID)
	}
}

func TestMerkleRootMultipleTransactions(t *testing.T) {
	txs := []Transaction{testTransaction(1), testTransaction(2), testTransaction(3)}
	a, b, c := txs[0].Hash(), txs[1].Hash(), txs[2].Hash()
	want := merkle.HashMerkleBranches(merkle.HashMerkleBranches(a, b), merkle.HashMerkleBranches(c, c))

	blk := NewBlock(&Fields{Header: Header{MerkleRoot: *want}, Transactions: txs})
	if !blk.MerkleRoot().IsEqual(want) {
		t.Errorf("MerkleRoot: got %s, want %s", blk.MerkleRoot(), want)
	}
	if !blk.ValidMerkleRoot() {
		t.Errorf("ValidMerkleRoot: got false, want true")
	}
	if tree := blk.MerkleTree(); len(tree) != 6 {
		t.Errorf("MerkleTree: got %d nodes, want 6", len(tree))
	}

	for i := range txs {
		branch, err := blk.MerkleBranch(i)
		if err != nil {
			t.Fatalf("MerkleBranch(%d): %v", i, err)
		}
		if !merkle.VerifyBranch(txs[i].Hash(), i, branch, want) {
			t.Errorf("MerkleBranch(%d) does not verify", i)
		}
	}
	if _, err := blk.MerkleBranch(len(txs)); err == nil {
		t.Errorf("MerkleBranch(%d): expected an error", len(txs))
	}
}

// TestValidMerkleRootNumericEquality checks that comparing the stored and
// computed roots bytewise agrees with comparing them as integers parsed from
// hex.
func TestValidMerkleRootNumericEquality(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for i := 0; i < 64; i++ {
		txCount := r.Intn(9)
		txs := make([]Transaction, txCount)
		for j := range txs {
			txs[j] = testTransaction(r.Uint32())
		}

		var header Header
		computed := NewBlock(&Fields{Transactions: txs}).MerkleRoot()
		switch r.Intn(3) {
		case 0:
			header.MerkleRoot = *computed
		case 1:
			header.MerkleRoot = *computed
			header.MerkleRoot[r.Intn(chainhash.HashSize)] ^= byte(1 << uint(r.Intn(8)))
		default:
			r.Read(header.MerkleRoot[:])
		}

		b := NewBlock(&Fields{Header: header, Transactions: txs})
		stored, _ := new(big.Int).SetString(hex.EncodeToString(header.MerkleRoot[:]), 16)
		fresh, _ := new(big.Int).SetString(hex.EncodeToString(computed[:]), 16)
		want := stored.Cmp(fresh) == 0
		if got := b.ValidMerkleRoot(); got != want {
			t.Errorf("case %d: ValidMerkleRoot got %v, want %v", i, got, want)
		}
	}

	var maxHash chainhash.Hash
	for i := range maxHash {
		maxHash[i] = 0xff
	}
	txs := []Transaction{testTransaction(1), testTransaction(2)}
	computed := NewBlock(&Fields{Transactions: txs}).MerkleRoot()

	edges := []struct {
		name   string
		stored chainhash.Hash
		txs    []Transaction
	}{
		{"maximum stored root", maxHash, txs},
		{"all-zero stored root", chainhash.Hash{}, txs},
		{"computed root stored", *computed, txs},
		{"all-zero root of an empty block", chainhash.Hash{}, nil},
		{"maximum root of an empty block", maxHash, nil},
	}
	for _, test := range edges {
		b := NewBlock(&Fields{Header: Header{MerkleRoot: test.stored}, Transactions: test.txs})
		fresh := b.MerkleRoot()
		storedInt, _ := new(big.Int).SetString(hex.EncodeToString(test.stored[:]), 16)
		freshInt, _ := new(big.Int).SetString(hex.EncodeToString(fresh[:]), 16)
		want := storedInt.Cmp(freshInt) == 0
		if got := b.ValidMerkleRoot(); got != want {
			t.Errorf("%s: ValidMerkleRoot got %v, want %v", test.name, got, want)
		}
	}
}
