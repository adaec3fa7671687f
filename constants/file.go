package constants

import "strings"

// PDF is the only document format accepted for comparison.
const PDF = "PDF"

// PDFMagic is the header every PDF file starts with.
const PDFMagic = "%PDF-"

// AllowedExtensions holds the file extensions accepted by the compare endpoint.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
}

// Default validated example pair and its diff, looked up under the fixtures directory.
const (
	DefaultFixtureOld  = "APL13-014.pdf"
	DefaultFixtureNew  = "APL25-008.pdf"
	DefaultFixtureDiff = "Diff_13-014_25-008.json"
)

// DefaultReferencePrefix is the letter prefix of APL filenames (APL25-008.pdf).
const DefaultReferencePrefix = "APL"

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowedExt reports whether ext (with or without the dot) may be uploaded.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}
