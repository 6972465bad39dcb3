// Package engine is the host-facing façade: it wires a request arena
// pool, the shared VirtualMachine, and the native function registry into
// a single request lifecycle (BeginRequest/Run/EndRequest). Grounded on
// vmfactory/factory.go VMFactory, which plays the same
// role of assembling collaborators the host would otherwise wire by
// hand, adapted here around this engine's own request/arena lifecycle
// instead of compiler-callback/include-file concern, which
// has no equivalent in this engine's scope.
package engine

import (
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/holovm/enginevm/arena"
	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/registry"
	"github.com/holovm/enginevm/runtime"
	"github.com/holovm/enginevm/values"
	"github.com/holovm/enginevm/vm"
)

// Engine owns the collaborators that outlive any single request: the
// native function registry, the shared VirtualMachine (dispatch table,
// class table, inline cache, feedback collector), and a bounded pool of
// request arenas.
type Engine struct {
	ID       string
	Registry *registry.Registry
	VM       *vm.VirtualMachine
	Arenas   *arena.Pool

	globalAllocator *globalStore
}

// Config controls pool sizing and VM instrumentation.
type Config struct {
	ArenaPoolCeiling int
	ArenaCapacity    int
	DebugLevel       vm.DebugLevel
}

// DefaultConfig returns reasonable defaults for a single-process host.
func DefaultConfig() Config {
	return Config{ArenaPoolCeiling: 64, ArenaCapacity: 1 << 20, DebugLevel: vm.DebugLevelNone}
}

// New assembles an Engine: a fresh registry bootstrapped with the native
// function catalogue, a VirtualMachine over it, and an arena pool sized
// per cfg.
func New(cfg Config) *Engine {
	reg := registry.NewRegistry()
	runtime.Bootstrap(reg)

	return &Engine{
		ID:              uuid.NewString(),
		Registry:        reg,
		VM:              vm.NewVirtualMachineWithProfiling(reg, cfg.DebugLevel),
		Arenas:          arena.NewPool(cfg.ArenaPoolCeiling, cfg.ArenaCapacity),
		globalAllocator: newGlobalStore(),
	}
}

// Request is one in-flight request: its arena and execution context.
type Request struct {
	ID     string
	Arena  *arena.RequestArena
	Ctx    *vm.ExecutionContext
	engine *Engine
}

// BeginRequest acquires an arena from the pool (spawning one if capacity
// allows) and a fresh ExecutionContext writing to out.
func (e *Engine) BeginRequest(out io.Writer) (*Request, error) {
	a := e.Arenas.Acquire()
	if a == nil {
		return nil, fmt.Errorf("engine %s: arena pool exhausted", e.ID)
	}
	reqID := a.BeginRequest()
	return &Request{
		ID:     reqID,
		Arena:  a,
		Ctx:    vm.NewExecutionContext(out),
		engine: e,
	}, nil
}

// Run executes fn as the request's entry point.
func (r *Request) Run(fn *bytecode.CompiledFunction) (*values.Value, error) {
	return r.engine.VM.Execute(r.Ctx, fn)
}

// EndRequest promotes any values the request's arena marked as escaping
// to the engine's global allocator, then returns the arena to the pool
// for reuse.
func (r *Request) EndRequest() arena.Stats {
	stats := r.Arena.EndRequest(r.engine.globalAllocator)
	r.engine.Arenas.Release(r.Arena)
	return stats
}

// globalStore is the minimal arena.GlobalAllocator an escaped value is
// promoted into: a plain keyed map, standing in for whatever durable
// session/cache store a host would plug in.
type globalStore struct {
	mu     sync.Mutex
	values map[string]interface{}
}

func newGlobalStore() *globalStore {
	return &globalStore{values: make(map[string]interface{})}
}

func (g *globalStore) Store(key string, value interface{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.values[key] = value
}

// Lookup retrieves a previously escaped value, for diagnostics and tests.
func (g *globalStore) Lookup(key string) (interface{}, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.values[key]
	return v, ok
}
