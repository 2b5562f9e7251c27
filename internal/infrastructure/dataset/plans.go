package dataset

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"FRELookup/internal/domain"
)

const (
	colPlanCompany = "Empresa"
	colPlanLink    = "Link"
)

// ParsePlans reads the first sheet of the compensation-plans workbook.
func ParsePlans(r io.Reader) (domain.Plans, error) {
	book, err := excelize.OpenReader(r)
	if err != nil {
		return domain.Plans{}, fmt.Errorf("open workbook: %w", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return domain.Plans{}, fmt.Errorf("workbook has no sheets")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return domain.Plans{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return domain.Plans{}, fmt.Errorf("sheet %s is empty", sheets[0])
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.TrimSpace(h)
	}

	idx, err := columnIndex(headers, colPlanCompany, colPlanLink)
	if err != nil {
		return domain.Plans{}, err
	}

	records := make([]domain.PlanRecord, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if isBlank(row) {
			continue
		}

		values := make([]string, len(headers))
		for i := range values {
			values[i] = strings.TrimSpace(cell(row, i))
		}

		company, _ := domain.NormalizeCompanyName(values[idx[colPlanCompany]])
		values[idx[colPlanCompany]] = company
		records = append(records, domain.PlanRecord{
			Company: company,
			Link:    values[idx[colPlanLink]],
			Values:  values,
		})
	}

	return domain.Plans{Headers: headers, Records: records}, nil
}
