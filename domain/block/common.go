// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package block

import (
	"bytes"
	"io"
	"math"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/pkg/errors"

	"github.com/contractchain/contractd/util/binaryserializer"
)

// MaxVarIntPayload is the maximum payload size for a variable length integer.
const MaxVarIntPayload = 9

// errNonCanonicalVarInt is the common format string used for non-canonically
// encoded variable length integer errors.
var errNonCanonicalVarInt = "non-canonical varint %x - discriminant %x must " +
	"encode a value greater than %x"

// errNoEncodingForType signifies that there's no encoding for the given type.
var errNoEncodingForType = errors.New("there's no encoding for this type")

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *int32:
		rv, err := binaryserializer.Int32(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *uint32:
		rv, err := binaryserializer.Uint32(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *uint16:
		rv, err := binaryserializer.Uint16(r)
		if err != nil {
			return err
		}
		*e = rv
		return nil

	case *chainhash.Hash:
		_, err := io.ReadFull(r, e[:])
		if err != nil {
			return errors.WithStack(err)
		}
		return nil
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to read type %T", element)
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case int32:
		return binaryserializer.PutInt32(w, e)

	case uint32:
		return binaryserializer.PutUint32(w, e)

	case uint16:
		return binaryserializer.PutUint16(w, e)

	case *chainhash.Hash:
		_, err := w.Write(e[:])
		return errors.WithStack(err)
	}

	return errors.Wrapf(errNoEncodingForType, "couldn't find a way to write type %T", element)
}

// ReadVarInt reads a variable length integer from r and returns it as a uint64.
// Values that could have been encoded in fewer bytes are rejected with
// ErrMalformedInput, since re-encoding them would not reproduce the input.
//
// Readers that accept any CompactSize form, such as bitcore's
// readVarintNum, decode such values without complaint. Blocks produced by
// those implementations must therefore write every count and length in its
// shortest form to be readable here.
func ReadVarInt(r io.Reader) (uint64, error) {
	discriminant, err := binaryserializer.Uint8(r)
	if err != nil {
		return 0, err
	}

	var rv uint64
	var min uint64
	switch discriminant {
	case 0xff:
		rv, err = binaryserializer.Uint64(r)
		min = 0x100000000

	case 0xfe:
		var sv uint32
		sv, err = binaryserializer.Uint32(r)
		rv, min = uint64(sv), 0x10000

	case 0xfd:
		var sv uint16
		sv, err = binaryserializer.Uint16(r)
		rv, min = uint64(sv), 0xfd

	default:
		return uint64(discriminant), nil
	}
	if err != nil {
		return 0, err
	}

	// The encoding is not canonical if the value could have been
	// encoded using fewer bytes.
	if rv < min {
		return 0, errors.Wrapf(ErrMalformedInput, errNonCanonicalVarInt, rv, discriminant, min)
	}
	return rv, nil
}

// WriteVarInt serializes val to w using a variable number of bytes depending
// on its value.
func WriteVarInt(w io.Writer, val uint64) error {
	switch {
	case val < 0xfd:
		return binaryserializer.PutUint8(w, uint8(val))

	case val <= math.MaxUint16:
		if err := binaryserializer.PutUint8(w, 0xfd); err != nil {
			return err
		}
		return binaryserializer.PutUint16(w, uint16(val))

	case val <= math.MaxUint32:
		if err := binaryserializer.PutUint8(w, 0xfe); err != nil {
			return err
		}
		return binaryserializer.PutUint32(w, uint32(val))

	default:
		if err := binaryserializer.PutUint8(w, 0xff); err != nil {
			return err
		}
		return binaryserializer.PutUint64(w, val)
	}
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	// The value is small enough to be represented by itself, so it's
	// just 1 byte.
	if val < 0xfd {
		return 1
	}

	// Discriminant 1 byte plus 2 bytes for the uint16.
	if val <= math.MaxUint16 {
		return 3
	}

	// Discriminant 1 byte plus 4 bytes for the uint32.
	if val <= math.MaxUint32 {
		return 5
	}

	// Discriminant 1 byte plus 8 bytes for the uint64.
	return 9
}

// ReadVarBytes reads a variable length byte array. A byte array is encoded
// as a varInt containing the length of the array followed by the bytes
// themselves. The bytes are read incrementally, so a forged length can not
// force an allocation larger than the data actually available in r.
func ReadVarBytes(r io.Reader) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}
	if count > math.MaxInt64 {
		return nil, errors.Wrapf(ErrMalformedInput, "byte array length %d is out of range", count)
	}

	var buf bytes.Buffer
	_, err = io.CopyN(&buf, r, int64(count))
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.WithStack(err)
	}
	return buf.Bytes(), nil
}

// WriteVarBytes serializes a variable length byte array to w as a varInt
// containing the number of bytes, followed by the bytes themselves.
func WriteVarBytes(w io.Writer, b []byte) error {
	err := WriteVarInt(w, uint64(len(b)))
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return errors.WithStack(err)
}

// readElements reads multiple items from r. It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		err := readElement(r, element)
		if err != nil {
			return err
		}
	}
	return nil
}

// writeElements writes multiple items to w. It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		err := writeElement(w, element)
		if err != nil {
			return err
		}
	}
	return nil
}
