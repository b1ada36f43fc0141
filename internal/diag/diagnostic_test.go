package diag_test

import (
	"strings"
	"testing"

	"github.com/bahimpro2011-code/vixc/internal/diag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerTracksErrorsAndWarnings(t *testing.T) {
	h := diag.NewHandler(2)
	require.True(t, h.ShouldContinue())

	h.Warning(diag.Diagnostic{Code: diag.CodeUnsafeCast, Message: "narrowing cast"})
	assert.False(t, h.HasErrors())
	assert.Equal(t, 1, h.WarningCount())

	h.Error(diag.Diagnostic{Code: diag.CodeVoidType, Message: "void variable"})
	assert.True(t, h.HasErrors())
	assert.Equal(t, 1, h.ErrorCount())
	assert.True(t, h.ShouldContinue())

	h.Error(diag.Diagnostic{Code: diag.CodeArgumentCount, Message: "wrong arity"})
	assert.False(t, h.ShouldContinue(), "budget of 2 should be exhausted after two errors")
}

func TestHandlerDefaultsZeroBudgetTo100(t *testing.T) {
	h := diag.NewHandler(0)
	for i := 0; i < 99; i++ {
		h.Error(diag.Diagnostic{Code: diag.CodeUndefinedName})
	}
	assert.True(t, h.ShouldContinue())
	h.Error(diag.Diagnostic{Code: diag.CodeUndefinedName})
	assert.False(t, h.ShouldContinue())
}

func TestFormatterRendersSimpleDiagnosticWithoutSource(t *testing.T) {
	f := diag.NewFormatter()
	var buf strings.Builder
	f.Format(&buf, diag.Diagnostic{
		Severity: diag.SeverityError,
		Code:     diag.CodeBorrowConflict,
		Message:  "cannot borrow `x` as mutable more than once at a time",
		Help:     "pass a second binding, or split this into two calls",
	})
	out := buf.String()
	assert.Contains(t, out, "error[E0502]")
	assert.Contains(t, out, "cannot borrow `x` as mutable")
	assert.Contains(t, out, "help: pass a second binding")
}

func TestFormatterFallsBackToSimpleWhenSourceIsUnreadable(t *testing.T) {
	f := diag.NewFormatter()
	var buf strings.Builder
	f.Format(&buf, diag.Diagnostic{
		Code:    diag.CodeTypeMismatch,
		Message: "expected `int32`, found `bool`",
		Span:    diag.Span{Filename: "/nonexistent/does-not-exist.vix", Line: 3, Column: 5},
	})
	out := buf.String()
	assert.Contains(t, out, "error[E0308]")
	assert.Contains(t, out, "expected `int32`, found `bool`")
}
