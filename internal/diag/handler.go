package diag

import (
	"fmt"
	"io"
)

// Handler accumulates diagnostics during checking and emission, enforcing an
// error budget beyond which compilation gives up rather than flooding the
// user with cascading failures.
type Handler struct {
	diagnostics  []Diagnostic
	maxErrors    int
	errorCount   int
	warningCount int
	formatter    *Formatter
}

// NewHandler creates a handler with the given error budget. A budget of 0
// or less falls back to the default of 100, matching the original compiler's
// DiagnosticHandler::new.
func NewHandler(maxErrors int) *Handler {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &Handler{maxErrors: maxErrors, formatter: NewFormatter()}
}

// Error records an error diagnostic.
func (h *Handler) Error(d Diagnostic) {
	d.Severity = SeverityError
	h.diagnostics = append(h.diagnostics, d)
	h.errorCount++
}

// Warning records a warning diagnostic. Warnings never block compilation.
func (h *Handler) Warning(d Diagnostic) {
	d.Severity = SeverityWarning
	h.diagnostics = append(h.diagnostics, d)
	h.warningCount++
}

// HasErrors reports whether any error-severity diagnostic has been recorded.
func (h *Handler) HasErrors() bool {
	return h.errorCount > 0
}

// ShouldContinue reports whether the caller should keep checking, i.e. the
// error budget has not been exhausted.
func (h *Handler) ShouldContinue() bool {
	return h.errorCount < h.maxErrors
}

// Diagnostics returns all recorded diagnostics in emission order.
func (h *Handler) Diagnostics() []Diagnostic {
	return h.diagnostics
}

// ErrorCount returns the number of error-severity diagnostics recorded.
func (h *Handler) ErrorCount() int { return h.errorCount }

// WarningCount returns the number of warning-severity diagnostics recorded.
func (h *Handler) WarningCount() int { return h.warningCount }

// PrintSummary renders every diagnostic followed by a one-line tally to w.
func (h *Handler) PrintSummary(w io.Writer) {
	for _, d := range h.diagnostics {
		h.formatter.Format(w, d)
	}
	if h.errorCount == 0 && h.warningCount == 0 {
		return
	}
	fmt.Fprintf(w, "\n%d error(s), %d warning(s) generated\n", h.errorCount, h.warningCount)
}
