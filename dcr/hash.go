package dcr

import (
	"fmt"

	"github.com/minio/highwayhash"
)

var key = []byte("BPMN2DCRBPMN2DCRBPMN2DCRBPMN2DCR")

// Hash returns a keyed 64-bit content hash. Expression-event identity
// relies on its stability across runs, not on the algorithm.
func Hash(data []byte) (uint64, error) {
	hash, err := highwayhash.New64(key)
	if err != nil {
		return 0, err
	}
	_, err = hash.Write(data)
	return hash.Sum64(), err
}

// HashPrefix renders the first eight hex digits of the content hash.
func HashPrefix(data []byte) string {
	sum, _ := Hash(data)
	return fmt.Sprintf("%016x", sum)[:8]
}
