package fingerprint

import (
	"net/url"
	"path/filepath"
	"strings"
)

const (
	// Separator splits the escaped base name from the hash prefix.
	Separator = "__"
	// HashLen is the number of hex characters of the hash kept in an identifier.
	HashLen = 8
)

// Decoded is the result of decoding an identifier produced by Encode.
type Decoded struct {
	Filename string
	Hash     string // HashLen hex characters
}

// Encode builds the identifier for filename with the given content hash:
//
//	escape(base) + "__" + hash[:8] + ext
//
// The base is percent-encoded so the identifier only ever contains the
// RFC 3986 unreserved set plus '%'.
func Encode(filename, hash string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	if len(hash) > HashLen {
		hash = hash[:HashLen]
	}
	return escape(base) + Separator + strings.ToLower(hash) + ext
}

// Decode reverses Encode. It reports false for identifiers that do not carry
// a hash suffix; such documents predate the encoding scheme.
func Decode(identifier string) (Decoded, bool) {
	// The hash never contains a dot, so the identifier's extension is exactly
	// the extension Encode appended.
	ext := filepath.Ext(identifier)
	stem := strings.TrimSuffix(identifier, ext)

	suffixLen := len(Separator) + HashLen
	if len(stem) < suffixLen {
		return Decoded{}, false
	}

	escapedBase := stem[:len(stem)-suffixLen]
	sep := stem[len(escapedBase) : len(escapedBase)+len(Separator)]
	hash := stem[len(stem)-HashLen:]
	if sep != Separator || !isLowerHex(hash) {
		return Decoded{}, false
	}

	base, err := url.PathUnescape(escapedBase)
	if err != nil || escape(base) != escapedBase {
		return Decoded{}, false
	}

	return Decoded{Filename: base + ext, Hash: hash}, true
}

// escape percent-encodes every byte outside the unreserved set. Space becomes
// %20, never '+'.
func escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func isLowerHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
