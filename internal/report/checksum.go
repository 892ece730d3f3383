package report

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// Checksum is the content hash of a finished PDF, used as its ETag and
// recorded in the export history.
func Checksum(pdf []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(pdf))
}
