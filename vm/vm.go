// Package vm implements the stack-based interpreter: a computed-dispatch
// instruction loop over bytecode.CompiledFunction, wired to the shared
// type-feedback collector, inline method cache, and native function
// registry. Grounded on vm/vm.go VirtualMachine /
// executeInstruction loop, restructured around the array dispatch table
// in dispatch.go instead of switch statement.
package vm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/feedback"
	"github.com/holovm/enginevm/methodcache"
	"github.com/holovm/enginevm/registry"
	"github.com/holovm/enginevm/values"
)

// VirtualMachine is the shared, request-independent interpreter: the
// dispatch table and the class/cache/feedback/registry collaborators it
// consults on every call, guard, and method dispatch. A single instance
// serves many ExecutionContexts, one per request.
type VirtualMachine struct {
	dispatch    *dispatchTable
	classes     *ClassTable
	methodCache *methodcache.Cache
	feedback    *feedback.Collector
	registry    *registry.Registry

	debugLevel DebugLevel
	profile    *profileState

	mu          sync.Mutex
	breakpoints map[int]bool
	watchedVars map[string]bool
}

// NewVirtualMachine returns a VM at DebugLevelNone (no debug records; the
// per-instruction execution counts behind GetHotSpots are still kept),
// wired to a fresh class table, method cache, and feedback collector, and
// to the given function registry.
func NewVirtualMachine(reg *registry.Registry) *VirtualMachine {
	return NewVirtualMachineWithProfiling(reg, DebugLevelNone)
}

// NewVirtualMachineWithProfiling is NewVirtualMachine with an explicit
// instrumentation level, grounded on equivalent constructor.
func NewVirtualMachineWithProfiling(reg *registry.Registry, level DebugLevel) *VirtualMachine {
	return &VirtualMachine{
		dispatch:    buildDispatchTable(),
		classes:     NewClassTable(),
		methodCache: methodcache.NewCache(),
		feedback:    feedback.NewCollector(),
		registry:    reg,
		debugLevel:  level,
		profile:     newProfileState(),
		breakpoints: make(map[int]bool),
		watchedVars: make(map[string]bool),
	}
}

// Classes exposes the shared class table so a host can declare classes
// before running a request.
func (m *VirtualMachine) Classes() *ClassTable { return m.classes }

// MethodCache exposes the shared inline cache, mainly for tests and
// diagnostics that assert on its warm-up state.
func (m *VirtualMachine) MethodCache() *methodcache.Cache { return m.methodCache }

// Feedback exposes the shared type-feedback collector.
func (m *VirtualMachine) Feedback() *feedback.Collector { return m.feedback }

// SetBreakpoint arms a debug_break at the given function-local ip.
func (m *VirtualMachine) SetBreakpoint(ip int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.breakpoints[ip] = true
}

func (m *VirtualMachine) isBreakpoint(ip int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.breakpoints[ip]
}

// WatchVariable adds a global name to the VM's watch set. GetDebugReport
// does not report watched variables; the set is only recorded.
func (m *VirtualMachine) WatchVariable(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.watchedVars[name] = true
}

// GetPerformanceReport renders the profiler's running summary.
func (m *VirtualMachine) GetPerformanceReport() string { return m.profile.render() }

// GetHotSpots returns the n most-executed instruction pointers.
func (m *VirtualMachine) GetHotSpots(n int) []HotSpot { return m.profile.hotSpots(n) }

// GetDebugReport returns every debug_break/line_number/gc_safepoint
// record accumulated so far.
func (m *VirtualMachine) GetDebugReport() []string { return m.profile.debugRecords() }

// Execute runs fn to completion (or to an uncaught exception) as the
// entry point of ctx's request: the top fn.ParameterCount values already
// on ctx's operand stack become the root frame's arguments (its first
// local slots), and the dispatch loop runs until the frame stack empties or ctx is
// halted. The function's return value is reported to the caller; an
// uncaught, fatal, or dispatch error is returned instead.
func (m *VirtualMachine) Execute(ctx *ExecutionContext, fn *bytecode.CompiledFunction) (*values.Value, error) {
	basePointer := ctx.stackTop - fn.ParameterCount
	if basePointer < 0 {
		return nil, NewEngineError(ErrStackUnderflow, "execute %s: fewer than %d arguments on the operand stack", fn.Name, fn.ParameterCount)
	}
	if err := allocateFrameLocals(ctx, basePointer, fn.LocalSlotCount); err != nil {
		return nil, err
	}
	root := newCallFrame(fn, basePointer, -1)
	if err := ctx.pushFrame(root); err != nil {
		return nil, err
	}
	if err := m.run(ctx); err != nil {
		return nil, err
	}
	if ctx.PendingException != nil {
		return nil, fmt.Errorf("uncaught exception: %s", ctx.PendingException.ObjectGet("message").ToString())
	}
	result, err := ctx.Peek()
	if err != nil {
		return values.NewNull(), nil
	}
	return result, nil
}

// run is the computed-dispatch instruction loop: fetch, profile, dispatch,
// advance. Handler errors are routed through raiseException before being
// surfaced to the caller, so a catchable error unwound by a try range
// never aborts the request.
func (m *VirtualMachine) run(ctx *ExecutionContext) error {
	for !ctx.Halted {
		frame := ctx.currentFrame()
		if frame == nil {
			return nil
		}
		if frame.IP < 0 || frame.IP >= len(frame.Function.Bytecode) {
			if err := finishReturn(ctx, frame, values.NewNull()); err != nil {
				if !m.raiseException(ctx, err) {
					return err
				}
			}
			continue
		}

		inst := frame.Function.Bytecode[frame.IP]
		m.profile.observe(frame.IP, inst.Opcode)

		handler := m.dispatch[inst.Opcode]
		if handler == nil {
			err := DecorateError(NewEngineError(ErrInvalidOpcode, "no handler registered for opcode %s", inst.Opcode), frame, inst)
			if !m.raiseException(ctx, err) {
				return err
			}
			continue
		}

		advance, err := handler(m, ctx, frame, inst)
		if err != nil {
			decorated := DecorateError(err, frame, inst)
			if !m.raiseException(ctx, decorated) {
				return decorated
			}
			continue
		}
		if advance {
			frame.IP++
		}
	}
	return nil
}

// raiseException walks the frame stack looking for a try range that
// covers the current ip: the operand stack is truncated to exactly the
// handler frame's locals before a single exception value is pushed and
// control jumps to catchIP. Fatal-kind errors (stack/dispatch/OOM) skip
// the search entirely and propagate straight out.
func (m *VirtualMachine) raiseException(ctx *ExecutionContext, err error) bool {
	var ee *EngineError
	if !errors.As(err, &ee) {
		ee = &EngineError{Kind: ErrUncaughtException, Message: err.Error()}
	}
	if ee.Kind.Fatal() {
		ctx.PendingException = makeExceptionValue(ee)
		return false
	}
	for {
		frame := ctx.currentFrame()
		if frame == nil {
			ctx.PendingException = makeExceptionValue(ee)
			return false
		}
		if handler, ok := frame.popExceptionHandler(); ok {
			ctx.stackTop = frame.BasePointer + frame.Function.LocalSlotCount
			exc := makeExceptionValue(ee)
			if pushErr := ctx.Push(exc); pushErr != nil {
				ctx.PendingException = exc
				return false
			}
			frame.IP = handler.catchIP
			return true
		}
		ctx.popFrame()
	}
}

// makeExceptionValue turns an EngineError into the host-visible exception
// object a catch block inspects: a plain Exception instance carrying its
// coarse category and message.
func makeExceptionValue(ee *EngineError) *values.Value {
	exc := values.NewObject("Exception")
	exc.ObjectSet("kind", values.NewString(ee.Kind.Category()))
	exc.ObjectSet("message", values.NewString(ee.Message))
	return exc
}
