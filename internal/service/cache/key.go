package cache

import (
	"crypto/md5"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math"
	"time"
)

// Key builds a result-cache key from the operation, the actual sample values
// and the query shape. Hashing the data itself (not just its length) means
// two different datasets of equal size can never collide on the same result.
func Key(operation string, data []float64, from, to time.Time, extra ...any) string {
	h := md5.New()
	fmt.Fprintf(h, "%s|%d|%d|%d|", operation, len(data), from.Unix(), to.Unix())

	var buf [8]byte
	for _, v := range data {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for _, e := range extra {
		fmt.Fprintf(h, "|%v", e)
	}
	return hex.EncodeToString(h.Sum(nil))
}
