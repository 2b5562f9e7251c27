package domain

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// CanonicalSuffix replaces every trailing corporate-suffix variant.
const CanonicalSuffix = " S.A."

// The separator matches Unicode spaces (U+00A0) as well as ASCII whitespace.
var suffixExpr = regexp.MustCompile(`[\s\p{Z}\x{85}]+(S\.?A\.?|S/A|SA)$`)

// FilingRecord is one row of the FRE filings index.
type FilingRecord struct {
	Company      string
	Version      string
	DocumentLink string
}

// PlanRecord is one row of the compensation-plans workbook.
// Values keeps every cell of the row aligned with Plans.Headers.
type PlanRecord struct {
	Company string
	Link    string
	Values  []string
}

// Filings is the loaded filings index in original row order.
type Filings struct {
	Records []FilingRecord
}

// Plans is the loaded compensation-plans table in original row order.
type Plans struct {
	Headers []string
	Records []PlanRecord
}

// ItemCodeMap maps a chapter-8 item identifier ("8.4") to its CodigoQuadro.
type ItemCodeMap map[string]string

// Items returns the item identifiers in chapter order (8.2 before 8.10).
func (m ItemCodeMap) Items() []string {
	items := make([]string, 0, len(m))
	for id := range m {
		items = append(items, id)
	}
	sort.Slice(items, func(i, j int) bool {
		return itemLess(items[i], items[j])
	})
	return items
}

// Clone returns an independent copy.
func (m ItemCodeMap) Clone() ItemCodeMap {
	out := make(ItemCodeMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func itemLess(a, b string) bool {
	an, aok := itemOrdinal(a)
	bn, bok := itemOrdinal(b)
	if aok && bok && an != bn {
		return an < bn
	}
	return a < b
}

func itemOrdinal(id string) (int, bool) {
	_, sub, found := strings.Cut(id, ".")
	if !found {
		return 0, false
	}
	n, err := strconv.Atoi(sub)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeCompanyName uppercases and trims raw and rewrites a trailing
// "S.A", "S.A.", "S/A" or "SA" into CanonicalSuffix. Empty input reports false.
func NormalizeCompanyName(raw string) (string, bool) {
	name := strings.TrimSpace(strings.ToUpper(raw))
	if name == "" {
		return "", false
	}
	return suffixExpr.ReplaceAllString(name, CanonicalSuffix), true
}
