package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/domain/block"
	"github.com/contractchain/contractd/infrastructure/logger"
)

var errInvalidMerkleRoot = errors.New("merkle root does not match the transactions")

type report struct {
	ID              string        `json:"id"`
	Size            int           `json:"size"`
	HeaderSize      int           `json:"headerSize"`
	ValidMerkleRoot bool          `json:"validMerkleRoot"`
	Block           *block.Object `json:"block"`
}

// readBlockBytes returns the input named by cfg, hex decoded unless it was
// given as a binary file.
func readBlockBytes(cfg *configFlags) ([]byte, error) {
	text := cfg.Hex
	if cfg.File != "" {
		content, err := os.ReadFile(cfg.File)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		if cfg.Binary {
			return content, nil
		}
		text = string(content)
	}

	data, err := hex.DecodeString(strings.TrimSpace(text))
	if err != nil {
		return nil, errors.Wrapf(block.ErrMalformedInput, "invalid block hex: %s", err)
	}
	return data, nil
}

func loadBlock(cfg *configFlags) (*block.Block, error) {
	data, err := readBlockBytes(cfg)
	if err != nil {
		return nil, err
	}
	log.Debugf("Read %d bytes of block data", len(data))

	if cfg.Raw {
		return block.FromRawBlock(data)
	}
	return block.FromBytes(data)
}

// inspect decodes the block named by cfg and writes its report to out. A
// block whose merkle root does not match its transactions is reported and
// then returned as an error.
func inspect(cfg *configFlags, out io.Writer) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "inspect")
	defer onEnd()

	b, err := loadBlock(cfg)
	if err != nil {
		return err
	}

	r := &report{
		ID:              b.ID(),
		Size:            b.SerializeSize(),
		HeaderSize:      b.HeaderSerializeSize(),
		ValidMerkleRoot: b.ValidMerkleRoot(),
		Block:           b.ToObject(),
	}
	if r.Size > cfg.MaxBlockSize {
		log.Warnf("Block %s is %d bytes, over the limit of %d bytes", r.ID, r.Size, cfg.MaxBlockSize)
	}

	encoded, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = fmt.Fprintln(out, string(encoded))
	if err != nil {
		return errors.WithStack(err)
	}

	if cfg.Dump {
		_, err = fmt.Fprint(out, spew.Sdump(b.Fields()))
		if err != nil {
			return errors.WithStack(err)
		}
	}

	if !r.ValidMerkleRoot {
		return errors.Wrapf(errInvalidMerkleRoot, "block %s", r.ID)
	}
	return nil
}
