// # internal/model/diagnostics.go
package model

import (
	"fmt"

	"docref/internal/shared/observability"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is a structured build message consumed by the host tool's
// logging: parse failures, scope anomalies, unresolved-but-expected names.
type Diagnostic struct {
	File     string
	Line     int
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	if d.Line > 0 {
		return fmt.Sprintf("%s:%d: %s: %s", d.File, d.Line, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.File, d.Severity, d.Message)
}

func (m *Model) addDiagnostic(d Diagnostic) {
	m.Diagnostics = append(m.Diagnostics, d)
	observability.DiagnosticsTotal.WithLabelValues(string(d.Severity)).Inc()
}
