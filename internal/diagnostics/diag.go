package diagnostics

import (
	"fmt"
	"runtime/debug"
	"time"
)

type Severity string

const (
	Low      Severity = "low"
	Medium   Severity = "medium"
	High     Severity = "high"
	Critical Severity = "critical"
)

func (s Severity) Valid() bool {
	switch s {
	case Low, Medium, High, Critical:
		return true
	}
	return false
}

type Diagnostic struct {
	ID       string            `json:"id"`
	Time     time.Time         `json:"time"`
	Severity Severity          `json:"severity"`
	Module   string            `json:"module"`
	Summary  string            `json:"summary"`
	Evidence map[string]any    `json:"evidence,omitempty"`
	Context  map[string]string `json:"context,omitempty"`
}

// Sink accepts failure reports from any module. Implementations must not panic.
type Sink interface {
	Report(message, module string, sev Severity, extra map[string]any) Diagnostic
}

// Discard drops every report.
type Discard struct{}

func (Discard) Report(message, module string, sev Severity, extra map[string]any) Diagnostic {
	return Diagnostic{Severity: sev, Module: module, Summary: message, Evidence: extra}
}

// Catch recovers a panic in the calling goroutine and reports it at Critical
// with the stack attached. It must be invoked directly by defer.
func Catch(s Sink, module string) {
	r := recover()
	if r == nil {
		return
	}
	if s == nil {
		s = Discard{}
	}
	s.Report(fmt.Sprint(r), module, Critical, map[string]any{"stack": string(debug.Stack())})
}
