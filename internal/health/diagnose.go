package health

import (
	"fmt"
	"strings"

	"github.com/meshscope/backend-go/internal/domain"
)

// CheckDiagnosis is the heuristic reading of a single check
type CheckDiagnosis struct {
	CheckID     string              `json:"check_id"`
	CheckName   string              `json:"check_name"`
	ServiceName string              `json:"service_name,omitempty"`
	Status      domain.HealthStatus `json:"status"`
	Severity    domain.Severity     `json:"severity"`
	Issues      []string            `json:"issues"`
	Remediation []string            `json:"remediation"`
}

// checkDiagnostics is kept separate from patternSignatures; its wording is
// consumed verbatim by per-check views.
var checkDiagnostics = []struct {
	match       func(output string) bool
	issue       string
	remediation string
}{
	{
		match:       func(o string) bool { return strings.Contains(o, "timeout") },
		issue:       "Health check is timing out",
		remediation: "Check service response times and increase the check timeout if needed",
	},
	{
		match:       func(o string) bool { return containsAny(o, "connection refused", "connect") },
		issue:       "Connection to the service is failing",
		remediation: "Verify the service is listening on the expected address and port",
	},
	{
		match:       func(o string) bool { return containsAny(o, "disk", "storage") },
		issue:       "Disk or storage problem reported",
		remediation: "Free disk space or expand the storage volume",
	},
}

// DiagnoseCheck derives issues, remediation steps and severity for one check
func DiagnoseCheck(check domain.HealthCheck) CheckDiagnosis {
	d := CheckDiagnosis{
		CheckID:     check.ID,
		CheckName:   check.Name,
		ServiceName: check.ServiceName,
		Status:      check.Status,
		Severity:    SeverityFor(check.Status),
		Issues:      []string{},
		Remediation: []string{},
	}

	switch check.Status {
	case domain.HealthCritical:
		d.Issues = append(d.Issues, "Service may be down")
		d.Remediation = append(d.Remediation,
			"Check if the service is running",
			"Verify network connectivity to the service",
		)
	case domain.HealthWarning:
		d.Issues = append(d.Issues, "Service is degraded but functional")
	}

	output := strings.ToLower(check.Output)
	for _, diag := range checkDiagnostics {
		if diag.match(output) {
			d.Issues = append(d.Issues, diag.issue)
			d.Remediation = append(d.Remediation, diag.remediation)
		}
	}

	if m := httpErrorStatus.FindStringSubmatch(output); m != nil {
		code := m[1]
		if code[0] == '5' {
			d.Issues = append(d.Issues, fmt.Sprintf("HTTP %s server error returned", code))
			d.Remediation = append(d.Remediation, "Check application logs for server-side errors")
		} else {
			d.Issues = append(d.Issues, fmt.Sprintf("HTTP %s client error returned", code))
			d.Remediation = append(d.Remediation, "Verify the health endpoint path, method and credentials")
		}
	}

	if len(d.Issues) == 0 {
		d.Issues = []string{"Unknown issue"}
	}
	if len(d.Remediation) == 0 {
		d.Remediation = []string{"Investigate service logs"}
	}
	return d
}

// SeverityFor maps a check status to its urgency bucket
func SeverityFor(status domain.HealthStatus) domain.Severity {
	switch status {
	case domain.HealthCritical:
		return domain.SeverityHigh
	case domain.HealthWarning:
		return domain.SeverityMedium
	default:
		return domain.SeverityLow
	}
}
