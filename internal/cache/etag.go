package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateETag returns a strong, quoted ETag for content
func GenerateETag(content []byte) string {
	sum := sha256.Sum256(content)
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

// ParseIfNoneMatch splits an If-None-Match header into its entity tags
func ParseIfNoneMatch(header string) []string {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil
	}
	if header == "*" {
		return []string{"*"}
	}

	var tags []string
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		weak := strings.HasPrefix(tag, "W/")
		opaque := strings.TrimPrefix(tag, "W/")
		if len(opaque) < 2 || opaque[0] != '"' || opaque[len(opaque)-1] != '"' {
			continue
		}
		if weak {
			opaque = "W/" + opaque
		}
		tags = append(tags, opaque)
	}
	return tags
}

// MatchesETag reports whether etag matches any of tags using the weak
// comparison If-None-Match calls for
func MatchesETag(etag string, tags []string) bool {
	if len(tags) == 1 && tags[0] == "*" {
		return true
	}

	want := strings.TrimPrefix(etag, "W/")
	for _, tag := range tags {
		if strings.TrimPrefix(tag, "W/") == want {
			return true
		}
	}
	return false
}
