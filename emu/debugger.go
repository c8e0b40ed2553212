package emu

import (
	"log"
	"strconv"
	"strings"
)

// DebuggerError reports a malformed trace filter expression.
type DebuggerError struct {
	Reason string
}

func (e *DebuggerError) Error() string { return "debugger: " + e.Reason }

// EventKind identifies the origin and shape of a debug event.
type EventKind int

const (
	EventCPUInstruction EventKind = iota
	EventMemoryRead
	EventMemoryWrite
	EventPPUScanlineStart
	EventAPUPortWrite
	EventSPC700Instruction
	EventAnomaly // open-bus read, write during active display, DMA overrun, etc.
)

func (k EventKind) String() string {
	switch k {
	case EventCPUInstruction:
		return "cpu_instruction"
	case EventMemoryRead:
		return "memory_read"
	case EventMemoryWrite:
		return "memory_write"
	case EventPPUScanlineStart:
		return "ppu_scanline_start"
	case EventAPUPortWrite:
		return "apu_port_write"
	case EventSPC700Instruction:
		return "spc700_instruction"
	case EventAnomaly:
		return "anomaly"
	}
	return "unknown"
}

// Event is a structured record emitted by any component, opaque enough to
// cover a CPU instruction fetch, a bus access, an APU port write, or a PPU
// scanline boundary (§4.5).
type Event struct {
	Kind      EventKind
	Address   uint32
	Value     uint32
	Component string
	Note      string
}

// BreakReason identifies why Break{reason} was returned from an execute_*
// call.
type BreakReason int

const (
	BreakNone BreakReason = iota
	BreakInstructionAt
	BreakMemoryAccess
	BreakManualHalt
)

func (r BreakReason) String() string {
	switch r {
	case BreakInstructionAt:
		return "InstructionAt"
	case BreakMemoryAccess:
		return "MemoryAccess"
	case BreakManualHalt:
		return "ManualHalt"
	}
	return "None"
}

// filterPredicate is a compiled textual filter expression.
type filterPredicate func(Event) bool

// Debugger collects structured events from every component, evaluates a
// compiled filter, and can force a break at the next safe point. It is
// shared by reference among all components; its lifetime matches the
// System (§3 Lifecycles, §9 cyclic references).
type Debugger struct {
	filter       filterPredicate
	breakOn      filterPredicate
	pendingBreak BreakReason
	log          []Event
	logCap       int
	manualHalt   bool
}

// NewDebugger creates a Debugger with logging capped at capacity events
// (oldest dropped first) and an always-false filter.
func NewDebugger(capacity int) *Debugger {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Debugger{
		filter:  func(Event) bool { return false },
		breakOn: func(Event) bool { return false },
		logCap:  capacity,
	}
}

// SetFilter compiles a textual expression for event logging. An invalid
// expression logs a warning and leaves the previous filter in place,
// matching the "never abort execution" rule of §7.
func (d *Debugger) SetFilter(expr string) {
	pred, err := CompileFilter(expr)
	if err != nil {
		log.Printf("[debugger] filter compile error, keeping previous filter: %v", err)
		return
	}
	d.filter = pred
}

// SetBreakFilter compiles a textual expression that, on match, requests a
// break at the next safe point.
func (d *Debugger) SetBreakFilter(expr string) {
	pred, err := CompileFilter(expr)
	if err != nil {
		log.Printf("[debugger] break filter compile error, keeping previous filter: %v", err)
		return
	}
	d.breakOn = pred
}

// Emit delivers an event through the single mediator; components never
// call each other directly for debug purposes (§9). Logging and break
// evaluation both serialize through this one call.
func (d *Debugger) Emit(e Event) {
	if d.filter(e) {
		d.log = append(d.log, e)
		if len(d.log) > d.logCap {
			d.log = d.log[len(d.log)-d.logCap:]
		}
	}
	if d.breakOn(e) {
		d.requestBreak(reasonForKind(e.Kind))
	}
}

func reasonForKind(k EventKind) BreakReason {
	if k == EventCPUInstruction || k == EventSPC700Instruction {
		return BreakInstructionAt
	}
	return BreakMemoryAccess
}

func (d *Debugger) requestBreak(r BreakReason) {
	if d.pendingBreak == BreakNone {
		d.pendingBreak = r
	}
}

// Halt requests a ManualHalt break at the next safe point.
func (d *Debugger) Halt() {
	d.manualHalt = true
	d.requestBreak(BreakManualHalt)
}

// TakeBreak returns and clears any pending break reason.
func (d *Debugger) TakeBreak() BreakReason {
	r := d.pendingBreak
	d.pendingBreak = BreakNone
	d.manualHalt = false
	return r
}

// Log returns the events retained by the active filter, oldest first.
func (d *Debugger) Log() []Event {
	return d.log
}

// ClearLog empties the retained event log without touching the filter.
func (d *Debugger) ClearLog() {
	d.log = d.log[:0]
}

// --- filter language ---
//
// A filter expression is a sequence of clauses joined by AND/OR (left to
// right, no precedence beyond that):
//
//	kind=cpu_instruction AND addr=0x8000-0x80FF
//	kind=memory_write OR kind=apu_port_write
//	value=0x00-0xFF AND component=ppu
//
// Clauses: kind=<name>, addr=<hex>[-<hex>], value=<hex>[-<hex>],
// component=<name>.

type filterClause struct {
	field string
	lo    uint64
	hi    uint64
	str   string
	isStr bool
}

// CompileFilter compiles a textual expression into a predicate evaluated
// per event (§4.5).
func CompileFilter(expr string) (filterPredicate, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return func(Event) bool { return false }, nil
	}

	// Split on AND/OR while remembering which joined which pair, left to
	// right; unlike a general boolean parser, this matches the spec's
	// "kind selectors joined by AND/OR" (no nested grouping required).
	tokens := splitFilterTokens(expr)
	var clauses []filterClause
	var ops []string
	for i, tok := range tokens {
		if i%2 == 0 {
			c, err := parseClause(tok)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, c)
		} else {
			ops = append(ops, strings.ToUpper(tok))
		}
	}

	return func(e Event) bool {
		if len(clauses) == 0 {
			return false
		}
		result := clauses[0].matches(e)
		for i, op := range ops {
			next := clauses[i+1].matches(e)
			if op == "AND" {
				result = result && next
			} else {
				result = result || next
			}
		}
		return result
	}, nil
}

func splitFilterTokens(expr string) []string {
	fields := strings.Fields(expr)
	var out []string
	var cur []string
	for _, f := range fields {
		up := strings.ToUpper(f)
		if up == "AND" || up == "OR" {
			out = append(out, strings.Join(cur, " "), up)
			cur = nil
			continue
		}
		cur = append(cur, f)
	}
	out = append(out, strings.Join(cur, " "))
	return out
}

func parseClause(tok string) (filterClause, error) {
	parts := strings.SplitN(tok, "=", 2)
	if len(parts) != 2 {
		return filterClause{}, &DebuggerError{Reason: "malformed filter clause: " + tok}
	}
	field := strings.ToLower(strings.TrimSpace(parts[0]))
	val := strings.TrimSpace(parts[1])

	if field == "kind" || field == "component" {
		return filterClause{field: field, str: val, isStr: true}, nil
	}

	lo, hi, err := parseRange(val)
	if err != nil {
		return filterClause{}, err
	}
	return filterClause{field: field, lo: lo, hi: hi}, nil
}

func parseRange(val string) (lo, hi uint64, err error) {
	parts := strings.SplitN(val, "-", 2)
	lo, err = strconv.ParseUint(strings.TrimPrefix(parts[0], "0x"), 16, 64)
	if err != nil {
		return 0, 0, err
	}
	if len(parts) == 1 {
		return lo, lo, nil
	}
	hi, err = strconv.ParseUint(strings.TrimPrefix(parts[1], "0x"), 16, 64)
	if err != nil {
		return 0, 0, err
	}
	return lo, hi, nil
}

func (c filterClause) matches(e Event) bool {
	switch c.field {
	case "kind":
		return strings.EqualFold(c.str, e.Kind.String())
	case "component":
		return strings.EqualFold(c.str, e.Component)
	case "addr":
		return uint64(e.Address) >= c.lo && uint64(e.Address) <= c.hi
	case "value":
		return uint64(e.Value) >= c.lo && uint64(e.Value) <= c.hi
	}
	return false
}
