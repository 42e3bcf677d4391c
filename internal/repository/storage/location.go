package storage

import (
	"fmt"
	"strings"
)

// ParseLocation splits an s3://bucket/key target. The bucket may be empty (s3:///key)
// so callers can fall back to a configured default.
func ParseLocation(target string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(target, "s3://")
	if !ok {
		return "", "", fmt.Errorf("not an s3 location: %s", target)
	}

	bucket, key, _ = strings.Cut(rest, "/")
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", "", fmt.Errorf("s3 location has no object key: %s", target)
	}
	return bucket, key, nil
}

// IsLocation reports whether target names an object-store location
func IsLocation(target string) bool {
	return strings.HasPrefix(target, "s3://")
}
