package transaction

import (
	"encoding/hex"
	"encoding/json"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/btcsuite/btcutil"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/infrastructure/logger"
)

var log = logger.RegisterSubSystem("TRNS")

// Object is the display form of a transaction.
type Object struct {
	Hash     string    `json:"hash"`
	Version  int32     `json:"version"`
	Inputs   []*Input  `json:"inputs"`
	Outputs  []*Output `json:"outputs"`
	LockTime uint32    `json:"nLockTime"`
}

// Input is the display form of a transaction input. PrevTxID is shown in
// reversed byte order like every other transaction hash.
type Input struct {
	PrevTxID       string `json:"prevTxId"`
	OutputIndex    uint32 `json:"outputIndex"`
	SequenceNumber uint32 `json:"sequenceNumber"`
	Script         string `json:"script"`
	ScriptAsm      string `json:"scriptAsm,omitempty"`
}

// Output is the display form of a transaction output.
type Output struct {
	Satoshis  int64   `json:"satoshis"`
	Amount    float64 `json:"amount"`
	Script    string  `json:"script"`
	ScriptAsm string  `json:"scriptAsm,omitempty"`
}

// disasm renders script for display. Scripts that do not parse, such as
// arbitrary coinbase data, are shown in hex only.
func disasm(script []byte) string {
	asm, err := txscript.DisasmString(script)
	if err != nil {
		log.Tracef("Script %x does not disassemble: %s", script, err)
		return ""
	}
	return asm
}

// ToObject returns the display form of the transaction.
func (t *Transaction) ToObject() *Object {
	msgTx := t.tx.MsgTx()

	obj := &Object{
		Hash:     t.Hash().String(),
		Version:  msgTx.Version,
		Inputs:   make([]*Input, 0, len(msgTx.TxIn)),
		Outputs:  make([]*Output, 0, len(msgTx.TxOut)),
		LockTime: msgTx.LockTime,
	}
	for _, txIn := range msgTx.TxIn {
		obj.Inputs = append(obj.Inputs, &Input{
			PrevTxID:       txIn.PreviousOutPoint.Hash.String(),
			OutputIndex:    txIn.PreviousOutPoint.Index,
			SequenceNumber: txIn.Sequence,
			Script:         hex.EncodeToString(txIn.SignatureScript),
			ScriptAsm:      disasm(txIn.SignatureScript),
		})
	}
	for _, txOut := range msgTx.TxOut {
		obj.Outputs = append(obj.Outputs, &Output{
			Satoshis:  txOut.Value,
			Amount:    btcutil.Amount(txOut.Value).ToBTC(),
			Script:    hex.EncodeToString(txOut.PkScript),
			ScriptAsm: disasm(txOut.PkScript),
		})
	}
	return obj
}

// MarshalJSON encodes the display form of the transaction.
func (t *Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToObject())
}

// FromObject builds a Transaction from its display form. Amounts are taken
// from Satoshis; Amount and the script disassembly are informational. When
// obj.Hash is set it must match the hash of the rebuilt transaction.
func FromObject(obj *Object) (*Transaction, error) {
	if obj == nil {
		return nil, errors.New("transaction object is nil")
	}

	msgTx := wire.NewMsgTx(obj.Version)
	msgTx.LockTime = obj.LockTime

	for i, input := range obj.Inputs {
		prevTxID, err := chainhash.NewHashFromStr(input.PrevTxID)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d: invalid prevTxId %q", i, input.PrevTxID)
		}
		script, err := hex.DecodeString(input.Script)
		if err != nil {
			return nil, errors.Wrapf(err, "input %d: invalid script", i)
		}
		txIn := wire.NewTxIn(wire.NewOutPoint(prevTxID, input.OutputIndex), script, nil)
		txIn.Sequence = input.SequenceNumber
		msgTx.AddTxIn(txIn)
	}

	for i, output := range obj.Outputs {
		script, err := hex.DecodeString(output.Script)
		if err != nil {
			return nil, errors.Wrapf(err, "output %d: invalid script", i)
		}
		msgTx.AddTxOut(wire.NewTxOut(output.Satoshis, script))
	}

	tx := New(msgTx)
	if obj.Hash != "" && obj.Hash != tx.Hash().String() {
		return nil, errors.Errorf("transaction hash mismatch - object says %s, content hashes to %s",
			obj.Hash, tx.Hash())
	}
	return tx, nil
}
