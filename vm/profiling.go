package vm

import (
	"fmt"
	"sort"
	"sync"

	"github.com/holovm/enginevm/bytecode"
)

// DebugLevel controls which debug records the line_number and gc_safepoint
// handlers add to the debug log. Per-instruction execution counts are kept
// at every level. Grounded on vm.DebugLevel /
// NewVirtualMachineWithProfiling.
type DebugLevel int

const (
	DebugLevelNone DebugLevel = iota
	DebugLevelBasic
	DebugLevelDetailed
)

// HotSpot is one (instruction pointer, execution count) sample, sorted by
// count descending for GetHotSpots.
type HotSpot struct {
	IP    int
	Count int
}

// profileState accumulates per-ip and per-opcode execution counts plus a
// rolling debug log, mirroring vm/profiling.go profileState
// one-for-one.
type profileState struct {
	mu                sync.Mutex
	instructionCounts map[int]int
	opcodeCounts      map[bytecode.Opcode]int
	allocs            int
	frees             int
	debug             []string
}

func newProfileState() *profileState {
	return &profileState{
		instructionCounts: make(map[int]int),
		opcodeCounts:      make(map[bytecode.Opcode]int),
	}
}

func (p *profileState) observe(ip int, op bytecode.Opcode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.instructionCounts[ip]++
	p.opcodeCounts[op]++
}

func (p *profileState) addDebug(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.debug = append(p.debug, message)
}

func (p *profileState) debugRecords() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.debug))
	copy(out, p.debug)
	return out
}

func (p *profileState) hotSpots(n int) []HotSpot {
	p.mu.Lock()
	defer p.mu.Unlock()
	spots := make([]HotSpot, 0, len(p.instructionCounts))
	for ip, count := range p.instructionCounts {
		spots = append(spots, HotSpot{IP: ip, Count: count})
	}
	sort.Slice(spots, func(i, j int) bool {
		if spots[i].Count != spots[j].Count {
			return spots[i].Count > spots[j].Count
		}
		return spots[i].IP < spots[j].IP
	})
	if n > 0 && len(spots) > n {
		spots = spots[:n]
	}
	return spots
}

func (p *profileState) render() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, c := range p.instructionCounts {
		total += c
	}
	return fmt.Sprintf("instructions executed: %d, distinct sites: %d, allocs: %d, frees: %d",
		total, len(p.instructionCounts), p.allocs, p.frees)
}

func (p *profileState) recordAlloc(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if delta > 0 {
		p.allocs++
	} else {
		p.frees++
	}
}
