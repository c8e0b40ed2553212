package emu

import "testing"

func TestFilterCompilesKindClause(t *testing.T) {
	pred, err := CompileFilter("kind=cpu_instruction")
	if err != nil {
		t.Fatal(err)
	}
	if !pred(Event{Kind: EventCPUInstruction}) {
		t.Fatalf("expected kind=cpu_instruction to match a CPU instruction event")
	}
	if pred(Event{Kind: EventMemoryRead}) {
		t.Fatalf("expected kind=cpu_instruction to reject a memory_read event")
	}
}

func TestFilterAndOrCombination(t *testing.T) {
	pred, err := CompileFilter("kind=memory_write AND addr=0x8000-0x80FF")
	if err != nil {
		t.Fatal(err)
	}
	if !pred(Event{Kind: EventMemoryWrite, Address: 0x8050}) {
		t.Fatalf("expected a matching write inside the address range to pass")
	}
	if pred(Event{Kind: EventMemoryWrite, Address: 0x9000}) {
		t.Fatalf("expected a write outside the address range to fail")
	}

	orPred, err := CompileFilter("kind=memory_write OR kind=apu_port_write")
	if err != nil {
		t.Fatal(err)
	}
	if !orPred(Event{Kind: EventAPUPortWrite}) {
		t.Fatalf("expected an apu_port_write event to match the OR expression")
	}
	if orPred(Event{Kind: EventMemoryRead}) {
		t.Fatalf("expected a memory_read event to fail the OR expression")
	}
}

func TestDebuggerEmitLogsOnlyWhenFiltered(t *testing.T) {
	d := NewDebugger(16)
	d.SetFilter("kind=anomaly")
	d.Emit(Event{Kind: EventMemoryRead})
	if len(d.Log()) != 0 {
		t.Fatalf("expected no log entries for a non-matching event")
	}
	d.Emit(Event{Kind: EventAnomaly})
	if len(d.Log()) != 1 {
		t.Fatalf("expected exactly one log entry for a matching anomaly event")
	}
}

func TestDebuggerBreakFilterRequestsBreak(t *testing.T) {
	d := NewDebugger(0)
	d.SetBreakFilter("kind=cpu_instruction")
	d.Emit(Event{Kind: EventCPUInstruction})
	if r := d.TakeBreak(); r != BreakInstructionAt {
		t.Fatalf("TakeBreak() = %v, want BreakInstructionAt", r)
	}
	if r := d.TakeBreak(); r != BreakNone {
		t.Fatalf("break reason should clear after TakeBreak")
	}
}

func TestInvalidFilterKeepsPrevious(t *testing.T) {
	d := NewDebugger(0)
	d.SetFilter("kind=cpu_instruction")
	d.SetFilter("not a valid clause !!!")
	if !d.filter(Event{Kind: EventCPUInstruction}) {
		t.Fatalf("an invalid filter expression should leave the previous filter active")
	}
}

func TestManualHalt(t *testing.T) {
	d := NewDebugger(0)
	d.Halt()
	if r := d.TakeBreak(); r != BreakManualHalt {
		t.Fatalf("TakeBreak() = %v, want BreakManualHalt", r)
	}
}
