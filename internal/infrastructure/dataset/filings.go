package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"FRELookup/internal/domain"
)

const (
	colCompany = "DENOM_CIA"
	colVersion = "VERSAO"
	colLink    = "LINK_DOC"
)

// ParseFilings reads the semicolon-separated, Latin-1 encoded FRE index.
func ParseFilings(r io.Reader) (domain.Filings, error) {
	reader := csv.NewReader(charmap.ISO8859_1.NewDecoder().Reader(r))
	reader.Comma = ';'
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.Filings{}, fmt.Errorf("empty filings file")
		}
		return domain.Filings{}, fmt.Errorf("read header: %w", err)
	}

	idx, err := columnIndex(header, colCompany, colVersion, colLink)
	if err != nil {
		return domain.Filings{}, err
	}

	var records []domain.FilingRecord
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return domain.Filings{}, fmt.Errorf("line %d: %w", line, err)
		}
		if isBlank(row) {
			continue
		}

		company, _ := domain.NormalizeCompanyName(cell(row, idx[colCompany]))
		records = append(records, domain.FilingRecord{
			Company:      company,
			Version:      strings.TrimSpace(cell(row, idx[colVersion])),
			DocumentLink: strings.TrimSpace(cell(row, idx[colLink])),
		})
	}

	return domain.Filings{Records: records}, nil
}

// columnIndex locates required columns in header, failing with the names of
// every missing one.
func columnIndex(header []string, required ...string) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		if _, seen := positions[name]; !seen {
			positions[name] = i
		}
	}

	idx := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		pos, ok := positions[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		idx[name] = pos
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return idx, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
