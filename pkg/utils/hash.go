package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString gives a fixed-length key for arbitrary input. Not for
// credentials; used for counter key namespacing.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
