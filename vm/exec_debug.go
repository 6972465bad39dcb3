package vm

import (
	"fmt"

	"github.com/holovm/enginevm/bytecode"
)

// registerDebugHandlers wires the three debug/diagnostic opcodes. None of
// them affect program semantics; they only feed the profiler and the
// breakpoint set a host debugger attaches through SetBreakpoint.
func registerDebugHandlers(t *dispatchTable) {
	t[bytecode.OpDebugBreak] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		if m.isBreakpoint(frame.IP) {
			m.profile.addDebug(fmt.Sprintf("breakpoint hit: %s ip=%d", frame.Function.Name, frame.IP))
		}
		return true, nil
	}
	t[bytecode.OpLineNumber] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		if m.debugLevel >= DebugLevelDetailed {
			m.profile.addDebug(fmt.Sprintf("%s:%d", frame.Function.Name, inst.Operand1))
		}
		return true, nil
	}
	t[bytecode.OpGcSafepoint] = func(m *VirtualMachine, ctx *ExecutionContext, frame *CallFrame, inst bytecode.Instruction) (bool, error) {
		if m.debugLevel >= DebugLevelBasic {
			m.profile.addDebug(fmt.Sprintf("gc_safepoint %s ip=%d", frame.Function.Name, frame.IP))
		}
		return true, nil
	}
}
