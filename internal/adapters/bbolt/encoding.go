// Binary encoding for stored entries.
//
// Each raw-store entry is one bbolt value under an 8-byte big-endian sequence
// key, so a cursor walk replays entries in import order. The value layout is
// (little-endian):
//
//	keyLen: uint32
//	key:    [keyLen]byte
//	value:  remaining bytes (JSON encoding of the stored value)
//
// Reports are small and gob-encoded.
package bbolt

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"fmt"

	"github.com/corey/tagreport/internal/ports"
)

// seqKey encodes a bucket sequence number as a sortable key.
func seqKey(seq uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, seq)
	return b
}

// encodeEntry packs an entry into a single buffer.
func encodeEntry(e ports.Entry) []byte {
	buf := make([]byte, 4+len(e.Key)+len(e.Value))
	binary.LittleEndian.PutUint32(buf, uint32(len(e.Key)))
	copy(buf[4:], e.Key)
	copy(buf[4+len(e.Key):], e.Value)
	return buf
}

// decodeEntry unpacks an entry. The returned entry owns its memory, so it
// stays valid after the transaction that produced data ends.
func decodeEntry(data []byte) (ports.Entry, error) {
	if len(data) < 4 {
		return ports.Entry{}, fmt.Errorf("entry too short: %d bytes", len(data))
	}
	keyLen := int(binary.LittleEndian.Uint32(data))
	if 4+keyLen > len(data) {
		return ports.Entry{}, fmt.Errorf("truncated entry key (need %d, have %d)", keyLen, len(data)-4)
	}
	value := make([]byte, len(data)-4-keyLen)
	copy(value, data[4+keyLen:])
	return ports.Entry{
		Key:   string(data[4 : 4+keyLen]),
		Value: value,
	}, nil
}

// encodeGob encodes a value using gob.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decodeGob decodes gob-encoded data into target. Target must be a pointer.
func decodeGob(data []byte, target interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(target)
}
