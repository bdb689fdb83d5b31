package usecase

import (
	"sort"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// AggregateReport partitions per-contract results into verified and failed
// sections, each sorted ascending by contract name, with counts derived from
// the partitions. An empty input yields an empty, passing report.
func AggregateReport(results []*models.ComparisonResult) *models.VerificationReport {
	sorted := make([]*models.ComparisonResult, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SortKey() < sorted[j].SortKey()
	})

	report := &models.VerificationReport{
		Verified: make([]models.ReportEntry, 0, len(sorted)),
		Failed:   make([]models.ReportEntry, 0),
	}
	for _, r := range sorted {
		if r.Verified() {
			report.Verified = append(report.Verified, r.Entry())
		} else {
			report.Failed = append(report.Failed, r.Entry())
		}
	}
	report.Summary = models.ReportSummary{
		Total:    len(report.Verified) + len(report.Failed),
		Verified: len(report.Verified),
		Failed:   len(report.Failed),
	}
	return report
}
