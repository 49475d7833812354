package importers

import (
	"crypto/md5"
	"encoding/hex"
	"strings"

	"github.com/gosimple/slug"
)

// maxSlugBase is the length of the slugified title before the hash suffix.
const maxSlugBase = 200

// Slug derives a stable slug from the title and identifier. The same pair
// always yields the same slug; the hash suffix keeps equal titles apart.
func Slug(title, identifier string) string {
	sum := md5.Sum([]byte(identifier))
	suffix := hex.EncodeToString(sum[:])[:8]

	base := SlugBase(title)
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

// SlugBase slugifies title and truncates it without leaving a trailing dash.
func SlugBase(title string) string {
	base := slug.Make(title)
	if len(base) > maxSlugBase {
		base = strings.TrimRight(base[:maxSlugBase], "-")
	}
	return base
}
