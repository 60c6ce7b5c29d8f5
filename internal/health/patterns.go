package health

import (
	"regexp"
	"strings"

	"github.com/meshscope/backend-go/internal/domain"
)

// httpErrorStatus matches a 4xx/5xx code in HTTP check output, e.g.
// "HTTP GET http://10.0.0.1:8080/health: 503 Service Unavailable" or
// "status code: 404". The code must follow the URL's trailing ": " so a
// port such as :443 is never taken for it. Group 1 is the code.
var httpErrorStatus = regexp.MustCompile(`(?i)(?:\bhttp\s+[a-z]+\s+\S+?:\s+|\bstatus(?:\s+code)?\s*[:=]?\s*)([45]\d{2})\b`)

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// Pattern types reported by Classify
const (
	PatternTimeout       = "timeout"
	PatternConnection    = "connection"
	PatternDisk          = "disk"
	PatternHTTPError     = "http_error"
	PatternMiscellaneous = "miscellaneous"
)

type signature struct {
	kind           string
	match          func(output string) bool
	recommendation string
}

// patternSignatures is scanned in full for every check; a check can match
// more than one signature
var patternSignatures = []signature{
	{
		kind:           PatternTimeout,
		match:          func(o string) bool { return strings.Contains(o, "timeout") },
		recommendation: "Investigate network latency and slow responses; consider raising health check timeouts",
	},
	{
		kind:           PatternConnection,
		match:          func(o string) bool { return containsAny(o, "connection refused", "connect") },
		recommendation: "Verify affected services are running and listening on their registered ports",
	},
	{
		kind:           PatternDisk,
		match:          func(o string) bool { return containsAny(o, "disk", "storage") },
		recommendation: "Check disk usage on affected nodes and free or expand storage",
	},
	{
		kind:           PatternHTTPError,
		match:          httpErrorStatus.MatchString,
		recommendation: "Review application logs for the HTTP errors returned by health endpoints",
	},
}

const miscellaneousRecommendation = "Review the output of failing health checks for service-specific errors"

// ClassificationReport groups failing checks by failure signature
type ClassificationReport struct {
	FailingChecks   int                    `json:"failing_checks"`
	Patterns        []domain.PatternReport `json:"patterns"`
	Recommendations []string               `json:"recommendations"`
}

// Classify scans the output of failing checks for known failure signatures.
// Each matched signature yields one PatternReport and one recommendation.
// When failing checks exist but none match, a single miscellaneous report
// covers all of them.
func Classify(checks []domain.HealthCheck) ClassificationReport {
	failing := Failing(checks)
	report := ClassificationReport{
		FailingChecks:   len(failing),
		Patterns:        []domain.PatternReport{},
		Recommendations: []string{},
	}
	if len(failing) == 0 {
		return report
	}

	for _, sig := range patternSignatures {
		var affected orderedSet
		count := 0
		for _, check := range failing {
			if sig.match(strings.ToLower(check.Output)) {
				count++
				affected.add(affectedName(check))
			}
		}
		if count == 0 {
			continue
		}
		report.Patterns = append(report.Patterns, domain.PatternReport{
			Type:             sig.kind,
			Count:            count,
			AffectedServices: affected.values(),
		})
		report.Recommendations = append(report.Recommendations, sig.recommendation)
	}

	if len(report.Patterns) == 0 {
		var affected orderedSet
		for _, check := range failing {
			affected.add(affectedName(check))
		}
		report.Patterns = append(report.Patterns, domain.PatternReport{
			Type:             PatternMiscellaneous,
			Count:            len(failing),
			AffectedServices: affected.values(),
		})
		report.Recommendations = append(report.Recommendations, miscellaneousRecommendation)
	}

	return report
}

// affectedName identifies the owner of a check; node checks have no
// service so the check ID stands in
func affectedName(check domain.HealthCheck) string {
	if check.ServiceName != "" {
		return check.ServiceName
	}
	return check.ID
}

type orderedSet struct {
	seen  map[string]bool
	items []string
}

func (s *orderedSet) add(v string) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[v] {
		return
	}
	s.seen[v] = true
	s.items = append(s.items, v)
}

func (s *orderedSet) values() []string {
	if s.items == nil {
		return []string{}
	}
	return s.items
}
