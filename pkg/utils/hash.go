package utils

import (
	"crypto/md5"
	"fmt"
)

// HashString returns a hex md5 of the input. Used for cache keys so raw
// emails never end up in Redis.
func HashString(input string) string {
	hash := md5.Sum([]byte(input))
	return fmt.Sprintf("%x", hash)
}
