package sim

import (
	"fmt"
	"strings"
)

// SimLogEntry is one recorded event during a simulation run.
type SimLogEntry struct {
	Step     int64
	Time     float64
	Node     string  // label e.g. "cam0", or "--" for global events
	Category string  // move, vision, action, extract
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[S=0042 t=  4.200] cam0  move      no_target       molecule=target
func (e SimLogEntry) String() string {
	return fmt.Sprintf("[S=%04d t=%7.3f] %-5s %-9s %-15s %s",
		e.Step, e.Time, e.Node, e.Category, e.Key, e.Value)
}

// SimLog collects structured events. It is unbounded and machine-readable.
// The engine stamps it with the step being fired, so actions can record
// without knowing the clock.
type SimLog struct {
	entries []SimLogEntry
	verbose bool
	step    int64
	time    float64
}

// NewSimLog creates a SimLog. If verbose is true, per-activation entries
// from actions are also recorded.
func NewSimLog(verbose bool) *SimLog {
	return &SimLog{verbose: verbose}
}

// SetVerbose toggles per-activation entries.
func (sl *SimLog) SetVerbose(v bool) { sl.verbose = v }

// Verbose reports whether per-activation entries are recorded.
func (sl *SimLog) Verbose() bool { return sl != nil && sl.verbose }

func (sl *SimLog) at(step int64, time float64) {
	sl.step, sl.time = step, time
}

// Add records a new entry.
func (sl *SimLog) Add(step int64, time float64, node, category, key, value string, numVal float64) {
	sl.entries = append(sl.entries, SimLogEntry{
		Step:     step,
		Time:     time,
		Node:     node,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry at the current step, only when verbose mode is
// on. A nil log records nothing.
func (sl *SimLog) AddVerbose(node, category, key, value string, numVal float64) {
	if !sl.Verbose() {
		return
	}
	sl.Add(sl.step, sl.time, node, category, key, value, numVal)
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (sl *SimLog) Filter(category, key string) []SimLogEntry {
	var out []SimLogEntry
	for _, e := range sl.entries {
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

// CountCategory returns how many entries match the given category and key.
func (sl *SimLog) CountCategory(category, key string) int {
	return len(sl.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (sl *SimLog) LastOf(category, key string) (SimLogEntry, bool) {
	entries := sl.Filter(category, key)
	if len(entries) == 0 {
		return SimLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (sl *SimLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range sl.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (sl *SimLog) Format() string {
	var sb strings.Builder
	for _, e := range sl.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
