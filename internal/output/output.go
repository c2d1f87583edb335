package output

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// OutputMode represents the different output modes available.
type OutputMode string

const (
	ModeColor    OutputMode = "color"
	ModePlain    OutputMode = "plain"
	ModeMarkdown OutputMode = "markdown"
)

// Writer provides an interface for different output modes.
type Writer interface {
	// Printf formats and writes output with optional formatting
	Printf(format string, args ...interface{})
	// Header writes a header with emphasis
	Header(text string)
	// Success writes a success message
	Success(text string)
	// Warning writes a warning message
	Warning(text string)
	// Error writes an error message
	Error(text string)
	// Info writes an informational message
	Info(text string)
	// Bullet writes a bullet point with a value
	Bullet(text string, value interface{})
	// Replaced describes an input whose pinned URL changed
	Replaced(name, oldURL, newURL string)
	// Added describes a newly declared input
	Added(name, url string)
	// UpdatedFile writes an updated file message
	UpdatedFile(file string)
	// Println writes a line break
	Println()
}

// ColorWriter implements Writer for colored terminal output.
type ColorWriter struct {
	out io.Writer
}

// NewColorWriter creates a new ColorWriter.
func NewColorWriter(out io.Writer) *ColorWriter {
	return &ColorWriter{out: out}
}

func (w *ColorWriter) Printf(format string, args ...interface{}) {
	fmt.Fprintf(w.out, format, args...)
}

func (w *ColorWriter) Header(text string) {
	fmt.Fprintf(w.out, "🔍 \033[1;34m%s\033[0m\n", text)
}

func (w *ColorWriter) Success(text string) {
	fmt.Fprintf(w.out, "✅ \033[1;32m%s\033[0m\n", text)
}

func (w *ColorWriter) Warning(text string) {
	fmt.Fprintf(w.out, "⚠️  \033[33mWarning:\033[0m %s\n", text)
}

func (w *ColorWriter) Error(text string) {
	fmt.Fprintf(w.out, "❌ \033[1;31m%s\033[0m\n", text)
}

func (w *ColorWriter) Info(text string) {
	fmt.Fprintf(w.out, "\033[1m%s\033[0m\n", text)
}

func (w *ColorWriter) Bullet(text string, value interface{}) {
	fmt.Fprintf(w.out, "  \033[36m•\033[0m %s \033[36m%v\033[0m\n", text, value)
}

func (w *ColorWriter) Replaced(name, oldURL, newURL string) {
	fmt.Fprintf(w.out, "  ✏️  \033[36m%s\033[0m: \033[31m%s\033[0m → \033[32m%s\033[0m\n", name, oldURL, newURL)
}

func (w *ColorWriter) Added(name, url string) {
	fmt.Fprintf(w.out, "  ➕ \033[36m%s\033[0m: \033[32m%s\033[0m\n", name, url)
}

func (w *ColorWriter) UpdatedFile(file string) {
	fmt.Fprintf(w.out, "📝 \033[1;32mUpdated file:\033[0m %s\n", file)
}

func (w *ColorWriter) Println() {
	fmt.Fprintln(w.out)
}

// PlainWriter implements Writer for plain text output without colors or emojis.
type PlainWriter struct {
	out io.Writer
}

// NewPlainWriter creates a new PlainWriter.
func NewPlainWriter(out io.Writer) *PlainWriter {
	return &PlainWriter{out: out}
}

func (w *PlainWriter) Printf(format string, args ...interface{}) {
	// Strip ANSI color codes from format string
	cleanFormat := stripANSI(format)
	fmt.Fprintf(w.out, cleanFormat, args...)
}

func (w *PlainWriter) Header(text string) {
	fmt.Fprintf(w.out, "%s\n", text)
}

func (w *PlainWriter) Success(text string) {
	fmt.Fprintf(w.out, "SUCCESS: %s\n", text)
}

func (w *PlainWriter) Warning(text string) {
	fmt.Fprintf(w.out, "WARNING: %s\n", text)
}

func (w *PlainWriter) Error(text string) {
	fmt.Fprintf(w.out, "ERROR: %s\n", text)
}

func (w *PlainWriter) Info(text string) {
	fmt.Fprintf(w.out, "%s\n", text)
}

func (w *PlainWriter) Bullet(text string, value interface{}) {
	fmt.Fprintf(w.out, "  • %s %v\n", text, value)
}

func (w *PlainWriter) Replaced(name, oldURL, newURL string) {
	fmt.Fprintf(w.out, "  CHANGED: %s: %s -> %s\n", name, oldURL, newURL)
}

func (w *PlainWriter) Added(name, url string) {
	fmt.Fprintf(w.out, "  ADDED: %s: %s\n", name, url)
}

func (w *PlainWriter) UpdatedFile(file string) {
	fmt.Fprintf(w.out, "Updated file: %s\n", file)
}

func (w *PlainWriter) Println() {
	fmt.Fprintln(w.out)
}

// MarkdownWriter implements Writer for markdown output.
type MarkdownWriter struct {
	out io.Writer
}

// NewMarkdownWriter creates a new MarkdownWriter.
func NewMarkdownWriter(out io.Writer) *MarkdownWriter {
	return &MarkdownWriter{out: out}
}

func (w *MarkdownWriter) Printf(format string, args ...interface{}) {
	// Strip ANSI color codes and convert basic formatting
	cleanFormat := stripANSI(format)
	fmt.Fprintf(w.out, cleanFormat, args...)
}

func (w *MarkdownWriter) Header(text string) {
	fmt.Fprintf(w.out, "## %s\n\n", text)
}

func (w *MarkdownWriter) Success(text string) {
	fmt.Fprintf(w.out, "✅ **%s**\n\n", text)
}

func (w *MarkdownWriter) Warning(text string) {
	fmt.Fprintf(w.out, "⚠️  **Warning:** %s\n\n", text)
}

func (w *MarkdownWriter) Error(text string) {
	fmt.Fprintf(w.out, "❌ **ERROR:** %s\n\n", text)
}

func (w *MarkdownWriter) Info(text string) {
	fmt.Fprintf(w.out, "**%s**\n\n", text)
}

func (w *MarkdownWriter) Bullet(text string, value interface{}) {
	fmt.Fprintf(w.out, "- %s **%v**\n", text, value)
}

func (w *MarkdownWriter) Replaced(name, oldURL, newURL string) {
	fmt.Fprintf(w.out, "- ✏️  `%s`: `%s` → `%s`\n", name, oldURL, newURL)
}

func (w *MarkdownWriter) Added(name, url string) {
	fmt.Fprintf(w.out, "- ➕ `%s`: `%s`\n", name, url)
}

func (w *MarkdownWriter) UpdatedFile(file string) {
	fmt.Fprintf(w.out, "📝 **Updated file:** `%s`\n\n", file)
}

func (w *MarkdownWriter) Println() {
	fmt.Fprintln(w.out)
}

// stripANSI removes ANSI escape sequences from a string.
func stripANSI(str string) string {
	// Simple regex-like replacement for common ANSI codes
	// Replace escape sequences like \033[0m, \033[1;32m, etc.
	result := str

	// Common ANSI escape patterns
	patterns := []string{
		"\033[0m", "\033[1m", "\033[31m", "\033[32m", "\033[33m", "\033[34m",
		"\033[35m", "\033[36m", "\033[37m", "\033[1;31m", "\033[1;32m",
		"\033[1;33m", "\033[1;34m", "\033[1;35m", "\033[1;36m", "\033[1;37m",
	}

	for _, pattern := range patterns {
		result = strings.ReplaceAll(result, pattern, "")
	}

	return result
}

// NewWriter creates a new Writer based on the specified mode.
func NewWriter(mode OutputMode, out io.Writer) Writer {
	switch mode {
	case ModeColor:
		return NewColorWriter(out)
	case ModePlain:
		return NewPlainWriter(out)
	case ModeMarkdown:
		return NewMarkdownWriter(out)
	default:
		return NewPlainWriter(out)
	}
}

// DetectDefaultMode detects the appropriate default output mode based on TTY.
func DetectDefaultMode() OutputMode {
	// Check if stdout is a terminal
	if isTerminal(os.Stdout) {
		return ModeColor
	}
	return ModePlain
}

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	stat, err := f.Stat()
	if err != nil {
		return false
	}

	// Check if it's a character device (typical for terminals)
	return (stat.Mode() & os.ModeCharDevice) != 0
}
