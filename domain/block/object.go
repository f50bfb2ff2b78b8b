package block

import (
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/domain/transaction"
)

// Object is the display form of a block.
//
// PrevHash, MerkleRoot, HashMerkleRootWithData and HashMerkleRootWithPrevData
// are shown in reversed byte order, like the block hash itself. OutpointHash
// and BlockSig are shown in wire byte order.
type Object struct {
	Hash                       string                `json:"hash"`
	Version                    int32                 `json:"version"`
	PrevHash                   string                `json:"prevHash"`
	MerkleRoot                 string                `json:"merkleRoot"`
	HashMerkleRootWithData     string                `json:"hashMerkleRootWithData"`
	HashMerkleRootWithPrevData string                `json:"hashMerkleRootWithPrevData"`
	Time                       uint32                `json:"time"`
	Bits                       uint32                `json:"bits"`
	Nonce                      uint32                `json:"nonce"`
	OutpointHash               string                `json:"outpointhash"`
	OutpointN                  int32                 `json:"outpointn"`
	BlockSigSize               int                   `json:"blocksigsize"`
	BlockSig                   string                `json:"blocksig"`
	Transactions               []*transaction.Object `json:"txs"`
	GroupSize                  []uint16              `json:"groupSize"`
	PrevContractData           ReservedContractData  `json:"prevContractData"`
}

// ToObject returns the display form of the block.
func (b *Block) ToObject() *Object {
	h := &b.header
	obj := &Object{
		Hash:                       b.ID(),
		Version:                    h.Version,
		PrevHash:                   h.PrevHash.String(),
		MerkleRoot:                 h.MerkleRoot.String(),
		HashMerkleRootWithData:     h.HashMerkleRootWithData.String(),
		HashMerkleRootWithPrevData: h.HashMerkleRootWithPrevData.String(),
		Time:                       h.Time,
		Bits:                       h.Bits,
		Nonce:                      h.Nonce,
		OutpointHash:               hex.EncodeToString(h.OutpointHash[:]),
		OutpointN:                  h.OutpointN,
		BlockSigSize:               len(h.Signature),
		BlockSig:                   hex.EncodeToString(h.Signature),
		Transactions:               make([]*transaction.Object, 0, len(b.transactions)),
		GroupSize:                  make([]uint16, len(b.groupSizes)),
		PrevContractData:           b.contractData,
	}
	for _, tx := range b.transactions {
		obj.Transactions = append(obj.Transactions, tx.ToObject())
	}
	copy(obj.GroupSize, b.groupSizes)
	return obj
}

// MarshalJSON encodes the display form of the block.
func (b *Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.ToObject())
}

// parseDisplayHash parses a hash shown in reversed byte order.
func parseDisplayHash(s string, field string) (chainhash.Hash, error) {
	if len(s) != chainhash.MaxHashStringSize {
		return chainhash.Hash{}, errors.Wrapf(ErrInvalidArgument,
			"%s must be %d hex characters, got %d", field, chainhash.MaxHashStringSize, len(s))
	}
	hash, err := chainhash.NewHashFromStr(s)
	if err != nil {
		return chainhash.Hash{}, errors.Wrapf(ErrInvalidArgument, "invalid %s: %s", field, err)
	}
	return *hash, nil
}

// parseWireHash parses a hash shown in wire byte order.
func parseWireHash(s string, field string) (chainhash.Hash, error) {
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return chainhash.Hash{}, errors.Wrapf(ErrInvalidArgument, "invalid %s: %s", field, err)
	}
	hash, err := chainhash.NewHash(decoded)
	if err != nil {
		return chainhash.Hash{}, errors.Wrapf(ErrInvalidArgument, "invalid %s: %s", field, err)
	}
	return *hash, nil
}

// ParseObject builds a block from its display form. When obj.Hash is set it
// must match the identifier of the rebuilt block.
func ParseObject(obj *Object) (*Block, error) {
	if obj == nil {
		return nil, errors.Wrap(ErrInvalidArgument, "block object is nil")
	}

	fields := &Fields{
		Header: Header{
			Version:   obj.Version,
			Time:      obj.Time,
			Bits:      obj.Bits,
			Nonce:     obj.Nonce,
			OutpointN: obj.OutpointN,
		},
		GroupSizes:   obj.GroupSize,
		ContractData: obj.PrevContractData,
	}

	var err error
	header := &fields.Header
	if header.PrevHash, err = parseDisplayHash(obj.PrevHash, "prevHash"); err != nil {
		return nil, err
	}
	if header.MerkleRoot, err = parseDisplayHash(obj.MerkleRoot, "merkleRoot"); err != nil {
		return nil, err
	}
	header.HashMerkleRootWithData, err = parseDisplayHash(obj.HashMerkleRootWithData, "hashMerkleRootWithData")
	if err != nil {
		return nil, err
	}
	header.HashMerkleRootWithPrevData, err = parseDisplayHash(obj.HashMerkleRootWithPrevData,
		"hashMerkleRootWithPrevData")
	if err != nil {
		return nil, err
	}
	if header.OutpointHash, err = parseWireHash(obj.OutpointHash, "outpointhash"); err != nil {
		return nil, err
	}

	header.Signature, err = hex.DecodeString(obj.BlockSig)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "invalid blocksig: %s", err)
	}
	if len(header.Signature) != obj.BlockSigSize {
		return nil, errors.Wrapf(ErrInvalidArgument, "blocksigsize is %d but blocksig holds %d bytes",
			obj.BlockSigSize, len(header.Signature))
	}

	fields.Transactions = make([]Transaction, 0, len(obj.Transactions))
	for i, txObj := range obj.Transactions {
		tx, err := transaction.FromObject(txObj)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidArgument, "transaction %d: %s", i, err)
		}
		fields.Transactions = append(fields.Transactions, tx)
	}

	b := NewBlock(fields)
	if obj.Hash != "" && obj.Hash != b.ID() {
		return nil, errors.Wrapf(ErrInvalidArgument, "block hash mismatch - object says %s, header hashes to %s",
			obj.Hash, b.ID())
	}
	return b, nil
}
