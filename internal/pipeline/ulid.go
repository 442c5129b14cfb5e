package pipeline

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"
)

// Job IDs are ULIDs: 48-bit millisecond timestamp plus 80 bits of entropy,
// Crockford Base32 encoded to 26 characters. IDs minted in the same
// millisecond carry an increasing sequence in the first two entropy bytes.

const crockford = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var ulidState struct {
	sync.Mutex
	ts  uint64
	seq uint16
}

func generateULID() string {
	return newULID(time.Now())
}

func newULID(now time.Time) string {
	ulidState.Lock()
	ts := uint64(now.UnixMilli())
	if ts == ulidState.ts {
		ulidState.seq++
	} else {
		ulidState.ts = ts
		ulidState.seq = 0
	}
	seq := ulidState.seq
	ulidState.Unlock()

	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], ts<<16)
	_, _ = rand.Read(b[6:])
	binary.BigEndian.PutUint16(b[6:8], seq)
	return encodeULID(b)
}

// encodeULID writes the 128 bits as 26 five-bit groups, most significant
// first. The leading group holds only the top 3 bits.
func encodeULID(b [16]byte) string {
	hi := binary.BigEndian.Uint64(b[0:8])
	lo := binary.BigEndian.Uint64(b[8:16])

	var out [26]byte
	for i := 25; i >= 0; i-- {
		out[i] = crockford[lo&31]
		lo = lo>>5 | hi<<59
		hi >>= 5
	}
	return string(out[:])
}
