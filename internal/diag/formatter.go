package diag

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// Formatter renders diagnostics with source code snippets, in the style of
// the original compiler's error reporter: a header line, a context window
// around the primary span, caret/tilde underlines, and a help footer.
type Formatter struct {
	sourceCache map[string]string
}

// NewFormatter creates a new diagnostic formatter.
func NewFormatter() *Formatter {
	return &Formatter{sourceCache: make(map[string]string)}
}

// LoadSource loads source code for a file (cached).
func (f *Formatter) LoadSource(filename string) (string, error) {
	if filename == "" {
		return "", nil
	}
	if src, ok := f.sourceCache[filename]; ok {
		return src, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return "", err
	}
	src := string(data)
	f.sourceCache[filename] = src
	return src, nil
}

// Format writes a diagnostic to w.
func (f *Formatter) Format(w io.Writer, d Diagnostic) {
	spans := f.collectSpans(d)
	if len(spans) == 0 {
		f.formatSimple(w, d)
		return
	}

	spansByFile := make(map[string][]LabeledSpan)
	for _, span := range spans {
		filename := span.Span.Filename
		if filename == "" {
			filename = "<unknown>"
		}
		spansByFile[filename] = append(spansByFile[filename], span)
	}

	f.printHeader(w, d)

	for filename, fileSpans := range spansByFile {
		src, err := f.LoadSource(filename)
		if err != nil {
			f.formatSimple(w, d)
			return
		}
		f.printFileSpans(w, filename, src, fileSpans)
	}

	f.printHelp(w, d)
}

func (f *Formatter) collectSpans(d Diagnostic) []LabeledSpan {
	if len(d.LabeledSpans) > 0 {
		return d.LabeledSpans
	}
	if d.Span.IsValid() {
		return []LabeledSpan{{Span: d.Span, Style: "primary"}}
	}
	return nil
}

func (f *Formatter) printHeader(w io.Writer, d Diagnostic) {
	severity := string(d.Severity)
	if severity == "" {
		severity = "error"
	}
	if d.Code != "" {
		fmt.Fprintf(w, "%s[%s]: %s\n", severity, d.Code, d.Message)
	} else {
		fmt.Fprintf(w, "%s: %s\n", severity, d.Message)
	}
}

func (f *Formatter) printFileSpans(w io.Writer, filename string, src string, spans []LabeledSpan) {
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Span.Line != spans[j].Span.Line {
			return spans[i].Span.Line < spans[j].Span.Line
		}
		return spans[i].Span.Column < spans[j].Span.Column
	})

	spansByLine := make(map[int][]LabeledSpan)
	lines := strings.Split(src, "\n")
	maxLine := len(lines)

	for _, span := range spans {
		line := span.Span.Line
		if line > 0 && line <= maxLine {
			spansByLine[line] = append(spansByLine[line], span)
		}
	}

	lineNumbers := make([]int, 0, len(spansByLine))
	for line := range spansByLine {
		lineNumbers = append(lineNumbers, line)
	}
	sort.Ints(lineNumbers)
	if len(lineNumbers) == 0 {
		return
	}

	startLine := lineNumbers[0]
	endLine := lineNumbers[len(lineNumbers)-1]
	contextStart := max(1, startLine-2)
	contextEnd := min(maxLine, endLine+2)
	lineNumWidth := len(fmt.Sprintf("%d", contextEnd))

	fmt.Fprintf(w, "  --> %s\n", filename)
	fmt.Fprintf(w, "   %s |\n", strings.Repeat(" ", lineNumWidth))

	hasPrimary := make(map[int]bool)
	for _, span := range spans {
		if span.Style == "primary" {
			hasPrimary[span.Span.Line] = true
		}
	}

	for lineNum := contextStart; lineNum <= contextEnd; lineNum++ {
		lineSpans := spansByLine[lineNum]
		lineContent := ""
		if lineNum <= len(lines) {
			lineContent = lines[lineNum-1]
		}

		lineNumStr := fmt.Sprintf("%*d", lineNumWidth, lineNum)
		marker := " "
		if hasPrimary[lineNum] {
			marker = ">"
		}
		fmt.Fprintf(w, "%s%s | %s\n", lineNumStr, marker, lineContent)

		if len(lineSpans) > 0 {
			f.printUnderlines(w, lineNumWidth, lineContent, lineSpans)
		}
	}

	fmt.Fprintf(w, "   %s |\n", strings.Repeat(" ", lineNumWidth))
}

func (f *Formatter) printUnderlines(w io.Writer, lineNumWidth int, lineContent string, spans []LabeledSpan) {
	underline := make([]byte, len(lineContent))
	for i := range underline {
		underline[i] = ' '
	}

	sort.Slice(spans, func(i, j int) bool {
		return spans[i].Span.Column < spans[j].Span.Column
	})

	for _, span := range spans {
		if span.Style == "primary" {
			start := max(0, span.Span.Column-1)
			end := min(len(underline), span.Span.Column-1+max(1, span.Span.End-span.Span.Start))
			for i := start; i < end && i < len(underline); i++ {
				underline[i] = '^'
			}
		}
	}
	for _, span := range spans {
		if span.Style == "secondary" {
			start := max(0, span.Span.Column-1)
			end := min(len(underline), span.Span.Column-1+max(1, span.Span.End-span.Span.Start))
			for i := start; i < end && i < len(underline); i++ {
				if underline[i] == ' ' {
					underline[i] = '~'
				}
			}
		}
	}

	rightmost := -1
	for i := len(underline) - 1; i >= 0; i-- {
		if underline[i] != ' ' {
			rightmost = i
			break
		}
	}
	if rightmost == -1 {
		return
	}

	underlineStr := string(underline)
	fmt.Fprintf(w, "   %s | %s", strings.Repeat(" ", lineNumWidth), underlineStr)

	primaryLabel := ""
	var secondaryLabels []string
	for _, span := range spans {
		if span.Label == "" {
			continue
		}
		if span.Style == "primary" {
			primaryLabel = span.Label
		} else {
			secondaryLabels = append(secondaryLabels, span.Label)
		}
	}

	if primaryLabel != "" {
		fmt.Fprintf(w, " %s", primaryLabel)
	}
	fmt.Fprintf(w, "\n")

	for _, label := range secondaryLabels {
		fmt.Fprintf(w, "   %s |", strings.Repeat(" ", lineNumWidth))
		labelPos := len(lineContent) + 1
		if labelPos < rightmost+2 {
			labelPos = rightmost + 2
		}
		if labelPos > len(lineContent) {
			fmt.Fprintf(w, "%s", strings.Repeat(" ", labelPos-len(lineContent)))
		}
		fmt.Fprintf(w, " %s\n", label)
	}
}

func (f *Formatter) printHelp(w io.Writer, d Diagnostic) {
	for _, step := range d.ProofChain {
		fmt.Fprintf(w, "\n")
		if step.Span.IsValid() {
			fmt.Fprintf(w, "  = note: %s\n", step.Message)
			fmt.Fprintf(w, "           at %s\n", step.Span.String())
		} else {
			fmt.Fprintf(w, "  = note: %s\n", step.Message)
		}
	}

	for _, note := range d.Notes {
		fmt.Fprintf(w, "\n  = note: %s\n", note)
	}

	if d.Help != "" {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "%s\n", strings.Repeat("-", 72))
		fmt.Fprintf(w, "help: %s\n", d.Help)
	} else if d.Suggestion != "" {
		fmt.Fprintf(w, "\nhelp: %s\n", d.Suggestion)
	}

	for _, related := range d.Related {
		if related.IsValid() {
			fmt.Fprintf(w, "\n  = note: related location at %s\n", related.String())
		}
	}
}

func (f *Formatter) formatSimple(w io.Writer, d Diagnostic) {
	f.printHeader(w, d)
	if d.Span.IsValid() {
		fmt.Fprintf(w, "  --> %s\n", d.Span.String())
	}
	f.printHelp(w, d)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
