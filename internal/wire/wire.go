// Package wire frames stored entries: the encoded value plus the metadata the
// pipeline needs back on load.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"time"
)

const (
	formatVersion byte = 1
	kindEntry     byte = 1

	headerLen = 4 + 1 + 1 + 8 + 8 + 4
)

var (
	ErrCorrupt = errors.New("gridchain: corrupt stored entry")
	magic4     = [...]byte{'G', 'R', 'D', 'C'}
)

// Record is one stored entry.
type Record struct {
	Version  uint64
	Lifespan time.Duration
	Payload  []byte
}

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames r as
//
//	magic(4) | fmt(1) | kind(1) | version(u64 be) | lifespan ns(i64 be) | vlen(u32 be) | payload(vlen)
func Encode(r Record) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(r.Payload))

	buf.Write(magic4[:])
	buf.WriteByte(formatVersion)
	buf.WriteByte(kindEntry)

	var u8 [8]byte
	var u4 [4]byte

	binary.BigEndian.PutUint64(u8[:], r.Version)
	buf.Write(u8[:])
	binary.BigEndian.PutUint64(u8[:], uint64(r.Lifespan))
	buf.Write(u8[:])

	binary.BigEndian.PutUint32(u4[:], uint32(len(r.Payload)))
	buf.Write(u4[:])

	buf.Write(r.Payload)
	return buf.Bytes()
}

// Decode parses a framed entry. The payload aliases b.
func Decode(b []byte) (Record, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != formatVersion || b[5] != kindEntry {
		return Record{}, ErrCorrupt
	}
	off := 6

	ver := binary.BigEndian.Uint64(b[off : off+8])
	off += 8
	life := time.Duration(binary.BigEndian.Uint64(b[off : off+8]))
	off += 8
	if life < 0 {
		return Record{}, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[off : off+4]))
	off += 4
	// exact length: trailing bytes are corruption too
	if vlen != len(b)-off {
		return Record{}, ErrCorrupt
	}

	return Record{Version: ver, Lifespan: life, Payload: b[off : off+vlen]}, nil
}
