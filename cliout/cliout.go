package cliout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/term"
)

// Format represents the output format.
type Format string

const (
	// FormatDefault is the default human-readable format.
	FormatDefault Format = "default"
	// FormatJSON is JSON format.
	FormatJSON Format = "json"
)

// ANSI color codes
const (
	Reset        = "\033[0m"
	Bold         = "\033[1m"
	Dim          = "\033[2m"
	Cyan         = "\033[36m"
	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightBlue   = "\033[94m"
)

// Unicode symbols with ASCII fallbacks
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "⚠"
	SymbolInfo    = "ℹ"

	ASCIICheck   = "[+]"
	ASCIICross   = "[-]"
	ASCIIWarning = "[!]"
	ASCIIInfo    = "[i]"
)

var (
	mu           sync.RWMutex
	globalFormat           = FormatDefault
	out          io.Writer = os.Stdout
	color                  = detectColor(os.Stdout)
	unicode                = detectUnicodeSupport()
)

// detectColor reports whether w is a terminal and NO_COLOR is unset.
func detectColor(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func detectUnicodeSupport() bool {
	if runtime.GOOS != "windows" {
		return true
	}
	return os.Getenv("WT_SESSION") != "" ||
		os.Getenv("TERM_PROGRAM") == "vscode" ||
		os.Getenv("PSModulePath") != "" ||
		os.Getenv("TERM") != ""
}

// SetOutput redirects all output to w and re-detects color support.
// It returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	out = w
	color = detectColor(w)
	return prev
}

// NoColor disables color output.
func NoColor() {
	mu.Lock()
	color = false
	mu.Unlock()
}

// SetFormat sets the global output format.
func SetFormat(format string) error {
	mu.Lock()
	defer mu.Unlock()
	switch format {
	case "default", "":
		globalFormat = FormatDefault
	case "json":
		globalFormat = FormatJSON
	default:
		return fmt.Errorf("invalid output format: %s (valid options: default, json)", format)
	}
	return nil
}

// GetFormat returns the current output format.
func GetFormat() Format {
	mu.RLock()
	defer mu.RUnlock()
	return globalFormat
}

// IsJSON returns true if the output format is JSON.
func IsJSON() bool {
	return GetFormat() == FormatJSON
}

func writer() (io.Writer, bool) {
	mu.RLock()
	defer mu.RUnlock()
	return out, color
}

// PrintJSON prints data as indented JSON.
func PrintJSON(data interface{}) error {
	w, _ := writer()
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Print outputs data in the configured format. For the default format the
// formatter is called; for JSON the data is marshaled.
func Print(data interface{}, formatter func()) error {
	if IsJSON() {
		return PrintJSON(data)
	}
	formatter()
	return nil
}

func paint(code, s string) string {
	if _, c := writer(); !c {
		return s
	}
	return code + s + Reset
}

func icon(u, ascii string) string {
	if unicode {
		return u
	}
	return ascii
}

func printf(format string, args ...interface{}) {
	w, _ := writer()
	_, _ = fmt.Fprintf(w, format, args...)
}

// Header prints a bold header with a divider.
func Header(text string) {
	printf("\n%s\n%s\n", paint(Bold, text), strings.Repeat("=", len(text)))
}

// Success prints a success message with a green check.
func Success(format string, args ...interface{}) {
	printf("%s %s\n", paint(BrightGreen, icon(SymbolCheck, ASCIICheck)), fmt.Sprintf(format, args...))
}

// Error prints an error message with a red cross.
func Error(format string, args ...interface{}) {
	printf("%s %s\n", paint(BrightRed, icon(SymbolCross, ASCIICross)), fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func Warning(format string, args ...interface{}) {
	printf("%s  %s\n", paint(BrightYellow, icon(SymbolWarning, ASCIIWarning)), fmt.Sprintf(format, args...))
}

// Info prints an info message.
func Info(format string, args ...interface{}) {
	printf("%s  %s\n", paint(BrightBlue, icon(SymbolInfo, ASCIIInfo)), fmt.Sprintf(format, args...))
}

// Label prints a label and value pair
func Label(label, value string) {
	printf("   %s %s\n", paint(Dim, fmt.Sprintf("%-12s", label+":")), value)
}

// Plain prints text without decoration.
func Plain(format string, args ...interface{}) {
	printf(format+"\n", args...)
}

// Muted returns dim text.
func Muted(format string, args ...interface{}) string {
	return paint(Dim, fmt.Sprintf(format, args...))
}

// Highlight returns bold cyan text.
func Highlight(format string, args ...interface{}) string {
	return paint(Bold+Cyan, fmt.Sprintf(format, args...))
}

// TableRow represents a row in a table as a map of column header to value.
type TableRow map[string]string

// Table prints a simple table with the given headers and rows.
func Table(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make(map[string]int)
	for _, header := range headers {
		widths[header] = len(header)
	}
	for _, row := range rows {
		for _, header := range headers {
			if len(row[header]) > widths[header] {
				widths[header] = len(row[header])
			}
		}
	}

	var b strings.Builder
	b.WriteString("   ")
	for _, header := range headers {
		b.WriteString(paint(Bold, fmt.Sprintf("%-*s", widths[header], header)) + "  ")
	}
	b.WriteString("\n   ")
	for _, header := range headers {
		b.WriteString(strings.Repeat("─", widths[header]) + "  ")
	}
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString("   ")
		for _, header := range headers {
			fmt.Fprintf(&b, "%-*s  ", widths[header], row[header])
		}
		b.WriteString("\n")
	}
	printf("%s", b.String())
}
