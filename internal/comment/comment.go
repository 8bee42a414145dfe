// Package comment collects user-facing diagnostics during a rewrite run
// and flushes them to the console at the end. Units are processed
// concurrently, so the collector is safe for parallel use.
package comment

import (
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/fatih/color"
)

const (
	InfoHeader string = "DERIVE INFO"
	WarnHeader string = "DERIVE WARN"
)

type ConsolePrinter struct {
	mu       sync.Mutex
	comments []string
	seen     map[string]bool
}

// initialize this if you want to use it at the start of the program
var printer *ConsolePrinter

func EnableConsolePrinter() {
	printer = &ConsolePrinter{}
}

func WriteAll() {
	if printer != nil {
		printer.Flush()
	}
}

// Info records an informational message. The location is usually built
// with Location; additionalInfo lines are printed below the message.
func Info(location, message string, additionalInfo ...string) {
	printer.Add(color.CyanString(InfoHeader), location, message, additionalInfo...)
}

// Warn records a warning for a recoverable problem, like a malformed
// annotation that caused a declaration to be skipped.
func Warn(location, message string, additionalInfo ...string) {
	printer.Add(color.YellowString(WarnHeader), location, message, additionalInfo...)
}

// Location renders a "path:line:col" position for a byte offset in text.
func Location(path, text string, offset int) string {
	if offset < 0 || offset > len(text) {
		return path
	}
	line := 1 + strings.Count(text[:offset], "\n")
	col := offset - strings.LastIndexByte(text[:offset], '\n')
	return fmt.Sprintf("%s:%d:%d", path, line, col)
}

// Add appends a new diagnostic to the printer.
func (p *ConsolePrinter) Add(header, location, message string, additionalInfo ...string) {
	if p == nil {
		return
	}

	b := strings.Builder{}
	b.WriteString(header)
	b.WriteByte(':')
	b.WriteByte(' ')

	if location != "" {
		b.WriteString(location)
		b.WriteByte(' ')
	}
	b.WriteString(message)
	for _, info := range additionalInfo {
		b.WriteString("\n")
		b.WriteString(info)
	}

	// a unit is scanned once per sweep, so the same diagnostic can
	// recur; report it once
	msg := b.String()
	p.mu.Lock()
	if p.seen == nil {
		p.seen = map[string]bool{}
	}
	if !p.seen[msg] {
		p.seen[msg] = true
		p.comments = append(p.comments, msg)
	}
	p.mu.Unlock()
}

// Flush logs all collected diagnostics and resets the printer.
func (p *ConsolePrinter) Flush() {
	if p == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.comments {
		log.Println(c)
	}
	p.comments = []string{}
	p.seen = nil
}
