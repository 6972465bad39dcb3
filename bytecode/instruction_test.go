package bytecode

import "testing"

func TestOpcodeStringKnown(t *testing.T) {
	if got := OpAddInt.String(); got != "add_int" {
		t.Fatalf("expected add_int, got %s", got)
	}
}

func TestOpcodeStringUnknown(t *testing.T) {
	unknown := Opcode(255)
	if unknown.String() != "unknown" {
		t.Fatalf("expected unknown for unregistered opcode, got %s", unknown.String())
	}
}

func TestOpcodeDense(t *testing.T) {
	if OpcodeCount > 256 {
		t.Fatalf("opcode space overflowed byte range: %d", OpcodeCount)
	}
}

func TestGuardRange(t *testing.T) {
	if !OpGuardInt.IsGuard() {
		t.Fatalf("expected OpGuardInt to be a guard opcode")
	}
	if OpAddInt.IsGuard() {
		t.Fatalf("did not expect OpAddInt to be a guard opcode")
	}
}

func TestLineForIP(t *testing.T) {
	fn := &CompiledFunction{
		SourceSpans: []SourceSpan{{StartIP: 0, Line: 1}, {StartIP: 5, Line: 2}},
	}
	if line := fn.LineForIP(3); line != 1 {
		t.Fatalf("expected line 1 at ip=3, got %d", line)
	}
	if line := fn.LineForIP(5); line != 2 {
		t.Fatalf("expected line 2 at ip=5, got %d", line)
	}
	if line := fn.LineForIP(100); line != 2 {
		t.Fatalf("expected last known line at ip beyond spans, got %d", line)
	}
}
