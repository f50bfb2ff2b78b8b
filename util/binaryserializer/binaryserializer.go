package binaryserializer

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// maxItems is the number of buffers to keep in the free
// list to use for binary serialization and deserialization.
const maxItems = 1024

// freeList is a concurrent safe free list of byte slices with a cap of 8,
// enough for any fixed-width integer up to a uint64.
type freeList chan []byte

// borrow returns a byte slice of the requested size from the free list.
// A new buffer is allocated if there are not any available.
func (l freeList) borrow(size int) []byte {
	var buf []byte
	select {
	case buf = <-l:
	default:
		buf = make([]byte, 8)
	}
	return buf[:size]
}

// release puts the provided byte slice back on the free list.
func (l freeList) release(buf []byte) {
	select {
	case l <- buf[:8]:
	default:
		// Let it go to the garbage collector.
	}
}

var binaryFreeList = make(freeList, maxItems)

// read fills a borrowed buffer of the given size from r and hands it to
// decode. The buffer is released before returning.
func read(r io.Reader, size int, decode func([]byte)) error {
	buf := binaryFreeList.borrow(size)
	defer binaryFreeList.release(buf)

	if _, err := io.ReadFull(r, buf); err != nil {
		return errors.WithStack(err)
	}
	decode(buf)
	return nil
}

// write encodes into a borrowed buffer of the given size and writes it to w.
func write(w io.Writer, size int, encode func([]byte)) error {
	buf := binaryFreeList.borrow(size)
	defer binaryFreeList.release(buf)

	encode(buf)
	_, err := w.Write(buf)
	return errors.WithStack(err)
}

// Uint8 reads a single byte from r.
func Uint8(r io.Reader) (rv uint8, err error) {
	err = read(r, 1, func(buf []byte) { rv = buf[0] })
	return rv, err
}

// Uint16 reads two little endian bytes from r.
func Uint16(r io.Reader) (rv uint16, err error) {
	err = read(r, 2, func(buf []byte) { rv = binary.LittleEndian.Uint16(buf) })
	return rv, err
}

// Uint32 reads four little endian bytes from r.
func Uint32(r io.Reader) (rv uint32, err error) {
	err = read(r, 4, func(buf []byte) { rv = binary.LittleEndian.Uint32(buf) })
	return rv, err
}

// Int32 reads four little endian bytes from r as a two's complement value.
func Int32(r io.Reader) (int32, error) {
	rv, err := Uint32(r)
	return int32(rv), err
}

// Uint64 reads eight little endian bytes from r.
func Uint64(r io.Reader) (rv uint64, err error) {
	err = read(r, 8, func(buf []byte) { rv = binary.LittleEndian.Uint64(buf) })
	return rv, err
}

// PutUint8 writes a single byte to w.
func PutUint8(w io.Writer, val uint8) error {
	return write(w, 1, func(buf []byte) { buf[0] = val })
}

// PutUint16 writes val to w as two little endian bytes.
func PutUint16(w io.Writer, val uint16) error {
	return write(w, 2, func(buf []byte) { binary.LittleEndian.PutUint16(buf, val) })
}

// PutUint32 writes val to w as four little endian bytes.
func PutUint32(w io.Writer, val uint32) error {
	return write(w, 4, func(buf []byte) { binary.LittleEndian.PutUint32(buf, val) })
}

// PutInt32 writes val to w as four little endian two's complement bytes.
func PutInt32(w io.Writer, val int32) error {
	return PutUint32(w, uint32(val))
}

// PutUint64 writes val to w as eight little endian bytes.
func PutUint64(w io.Writer, val uint64) error {
	return write(w, 8, func(buf []byte) { binary.LittleEndian.PutUint64(buf, val) })
}
