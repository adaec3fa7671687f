// Package reference derives APL metadata (number, year, citation key) from filenames.
package reference

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

// centuryThreshold: a two-digit year above it is read as 19xx, otherwise 20xx.
const centuryThreshold = 50

// Parser matches PREFIXnn-nnn case-insensitively.
type Parser struct {
	prefix string
	re     *regexp.Regexp
}

// NewParser builds a parser for the given letter prefix; empty means constants.DefaultReferencePrefix.
func NewParser(prefix string) *Parser {
	prefix = strings.ToUpper(strings.TrimSpace(prefix))
	if prefix == "" {
		prefix = constants.DefaultReferencePrefix
	}
	return &Parser{
		prefix: prefix,
		re:     regexp.MustCompile(`(?i)` + regexp.QuoteMeta(prefix) + `(\d{2})-(\d{3})`),
	}
}

var defaultParser = NewParser(constants.DefaultReferencePrefix)

// Parse uses the default APL prefix.
func Parse(filename string) (entity.ReferenceID, bool) {
	return defaultParser.Parse(filename)
}

// Prefix returns the upper-cased prefix the parser matches.
func (p *Parser) Prefix() string { return p.prefix }

// Parse returns the reference identifier embedded in filename, or false when there is none.
func (p *Parser) Parse(filename string) (entity.ReferenceID, bool) {
	m := p.re.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return entity.ReferenceID{}, false
	}
	yy, number := m[1], m[2]

	n, err := strconv.Atoi(yy)
	if err != nil {
		return entity.ReferenceID{}, false
	}
	century := "20"
	if n > centuryThreshold {
		century = "19"
	}

	return entity.ReferenceID{
		ID:          yy + "-" + number,
		Period:      century + yy,
		CitationKey: p.prefix + yy,
	}, true
}
