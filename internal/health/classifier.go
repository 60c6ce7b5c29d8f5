package health

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/meshscope/backend-go/internal/domain"
	"github.com/meshscope/backend-go/internal/registry"
)

// Classifier summarizes and classifies registry health checks
type Classifier struct {
	reader *registry.Reader
	logger *zap.Logger
}

// NewClassifier creates a Classifier reading checks through reader
func NewClassifier(reader *registry.Reader, logger *zap.Logger) *Classifier {
	return &Classifier{reader: reader, logger: logger.Named("health")}
}

// Checks fetches every check. ok is false when the registry read degraded.
func (c *Classifier) Checks(ctx context.Context) (checks []domain.HealthCheck, ok bool) {
	res := c.reader.AllChecks(ctx)
	return FromRecords(res.Value), res.OK()
}

// Summary counts all registry checks. If the checks cannot be read the
// summary is empty with overall status unknown.
func (c *Classifier) Summary(ctx context.Context) domain.HealthSummary {
	checks, ok := c.Checks(ctx)
	if !ok {
		return unknownSummary()
	}
	return Summarize(checks)
}

// ClassifyAll runs Classify over every registry check
func (c *Classifier) ClassifyAll(ctx context.Context) ClassificationReport {
	checks, _ := c.Checks(ctx)
	report := Classify(checks)
	c.logger.Debug("classified health checks",
		zap.Int("failing", report.FailingChecks),
		zap.Int("patterns", len(report.Patterns)),
	)
	return report
}

// DiagnoseFailing diagnoses every warning and critical check
func (c *Classifier) DiagnoseFailing(ctx context.Context) []CheckDiagnosis {
	checks, _ := c.Checks(ctx)
	failing := Failing(checks)

	diagnoses := make([]CheckDiagnosis, 0, len(failing))
	for _, check := range failing {
		diagnoses = append(diagnoses, DiagnoseCheck(check))
	}
	return diagnoses
}

// Summarize counts checks by status. FailingChecksByService is sorted by
// count descending; ties keep first-seen order. Checks without a service
// name count toward the totals only.
func Summarize(checks []domain.HealthCheck) domain.HealthSummary {
	summary := domain.HealthSummary{
		Total:                  len(checks),
		FailingChecksByService: []domain.ServiceCheckCount{},
	}

	index := make(map[string]int)
	for _, check := range checks {
		switch check.Status {
		case domain.HealthPassing:
			summary.Passing++
		case domain.HealthWarning:
			summary.Warning++
		case domain.HealthCritical:
			summary.Critical++
		default:
			summary.Unknown++
		}

		if !check.Status.IsFailing() || check.ServiceName == "" {
			continue
		}
		i, seen := index[check.ServiceName]
		if !seen {
			i = len(summary.FailingChecksByService)
			index[check.ServiceName] = i
			summary.FailingChecksByService = append(summary.FailingChecksByService,
				domain.ServiceCheckCount{Service: check.ServiceName})
		}
		summary.FailingChecksByService[i].Count++
	}

	sort.SliceStable(summary.FailingChecksByService, func(i, j int) bool {
		return summary.FailingChecksByService[i].Count > summary.FailingChecksByService[j].Count
	})

	summary.OverallStatus = RollupChecks(checks)
	return summary
}

func unknownSummary() domain.HealthSummary {
	return domain.HealthSummary{
		OverallStatus:          domain.HealthUnknown,
		FailingChecksByService: []domain.ServiceCheckCount{},
	}
}
