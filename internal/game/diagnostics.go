package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Severity grades a diagnostic.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarn
)

func (s Severity) String() string {
	if s == SeverityWarn {
		return "warn"
	}
	return "info"
}

// Diagnostic categories.
const (
	CatDevice  = "device"  // assignment, hot-plug
	CatPairing = "pairing" // BindController and verification
	CatCamera  = "camera"  // viewport setup, targets, re-enable
	CatAudio   = "audio"   // listener enforcement
	CatLights  = "lights"  // culling
	CatScene   = "scene"   // transitions, checkpoints
)

// Diagnostic is one event reported by the coop subsystem. Nothing in the
// subsystem returns errors from the frame loop; failures land here instead.
type Diagnostic struct {
	Frame    int
	Severity Severity
	Category string
	Key      string
	Slot     Slot
	Message  string
	Err      error
}

// String formats the entry as a fixed-width log line.
//
//	[F=0042] P1   pairing   bind_failed      pair "Pad" with user 1: device disconnected
func (d Diagnostic) String() string {
	slot := "--"
	if d.Slot.Valid() {
		slot = d.Slot.String()
	}
	msg := d.Message
	if d.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, d.Err)
	}
	return fmt.Sprintf("[F=%04d] %-4s %-9s %-16s %s", d.Frame, slot, d.Category, d.Key, msg)
}

// Diagnostics receives diagnostics.
type Diagnostics interface {
	Report(Diagnostic)
}

// DiscardDiagnostics drops everything.
type DiscardDiagnostics struct{}

func (DiscardDiagnostics) Report(Diagnostic) {}

// MultiSink fans a diagnostic out to several sinks.
type MultiSink []Diagnostics

func (m MultiSink) Report(d Diagnostic) {
	for _, s := range m {
		if s != nil {
			s.Report(d)
		}
	}
}

// SlogSink forwards diagnostics to a slog.Logger.
type SlogSink struct {
	Logger *slog.Logger
}

func (s SlogSink) Report(d Diagnostic) {
	lvl := slog.LevelInfo
	if d.Severity == SeverityWarn {
		lvl = slog.LevelWarn
	}
	attrs := []slog.Attr{
		slog.Int("frame", d.Frame),
		slog.String("category", d.Category),
		slog.String("key", d.Key),
	}
	if d.Slot.Valid() {
		attrs = append(attrs, slog.String("slot", d.Slot.String()))
	}
	if d.Err != nil {
		attrs = append(attrs, slog.Any("err", d.Err))
	}
	s.Logger.LogAttrs(context.Background(), lvl, d.Message, attrs...)
}

// CoopLog collects diagnostics in memory. Unlike EventLog (UI ring buffer),
// CoopLog is unbounded and machine-readable; tests and the headless report
// query it.
type CoopLog struct {
	entries []Diagnostic
}

// NewCoopLog creates an empty log.
func NewCoopLog() *CoopLog { return &CoopLog{} }

// Report implements Diagnostics.
func (cl *CoopLog) Report(d Diagnostic) { cl.entries = append(cl.entries, d) }

// Entries returns all recorded entries.
func (cl *CoopLog) Entries() []Diagnostic { return cl.entries }

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (cl *CoopLog) Filter(category, key string) []Diagnostic {
	var out []Diagnostic
	for _, e := range cl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSlot returns entries for one player slot.
func (cl *CoopLog) FilterSlot(slot Slot) []Diagnostic {
	var out []Diagnostic
	for _, e := range cl.entries {
		if e.Slot == slot {
			out = append(out, e)
		}
	}
	return out
}

// Count returns how many entries match category and key.
func (cl *CoopLog) Count(category, key string) int {
	return len(cl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (cl *CoopLog) LastOf(category, key string) (Diagnostic, bool) {
	entries := cl.Filter(category, key)
	if len(entries) == 0 {
		return Diagnostic{}, false
	}
	return entries[len(entries)-1], true
}

// Warnings returns every warn-level entry.
func (cl *CoopLog) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, e := range cl.entries {
		if e.Severity == SeverityWarn {
			out = append(out, e)
		}
	}
	return out
}

// Format returns the full log as a single string for t.Log output.
func (cl *CoopLog) Format() string {
	var sb strings.Builder
	for _, e := range cl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
