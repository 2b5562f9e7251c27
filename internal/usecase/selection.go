package usecase

import (
	"sort"
	"strconv"
	"strings"

	"FRELookup/internal/domain"
)

// SelectFiling returns the most recent filing for company. Rows sharing the
// highest version keep their load order.
func SelectFiling(filings domain.Filings, company string) (domain.FilingRecord, bool) {
	var matches []domain.FilingRecord
	for _, rec := range filings.Records {
		if rec.Company != "" && rec.Company == company {
			matches = append(matches, rec)
		}
	}
	if len(matches) == 0 {
		return domain.FilingRecord{}, false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return compareVersions(matches[i].Version, matches[j].Version) > 0
	})
	return matches[0], true
}

// compareVersions orders numerically when both sides are integers and
// lexically otherwise.
func compareVersions(a, b string) int {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	an, aerr := strconv.ParseInt(a, 10, 64)
	bn, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

// ListPlans returns the plan rows of company in original order.
func ListPlans(company string, plans domain.Plans) []domain.PlanRecord {
	out := make([]domain.PlanRecord, 0)
	for _, rec := range plans.Records {
		if rec.Company != "" && rec.Company == company {
			out = append(out, rec)
		}
	}
	return out
}

// Companies is the sorted union of company names across both datasets.
func Companies(filings domain.Filings, plans domain.Plans) []string {
	seen := map[string]struct{}{}
	for _, rec := range filings.Records {
		if rec.Company != "" {
			seen[rec.Company] = struct{}{}
		}
	}
	for _, rec := range plans.Records {
		if rec.Company != "" {
			seen[rec.Company] = struct{}{}
		}
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
