package vm

import (
	"sync"

	"github.com/holovm/enginevm/bytecode"
	"github.com/holovm/enginevm/methodcache"
)

// Class is an immutable-after-registration descriptor: a dense id, a
// parent link for inheritance, and a method table. Its method table is
// only ever replaced through RebindMethods, which invalidates the inline
// cache before publishing the new table.
type Class struct {
	ID     uint32
	Name   string
	Parent *Class

	mu      sync.RWMutex
	methods map[string]*bytecode.CompiledFunction
}

// NewClass creates a class descriptor with the given method table.
func NewClass(id uint32, name string, parent *Class, methods map[string]*bytecode.CompiledFunction) *Class {
	if methods == nil {
		methods = make(map[string]*bytecode.CompiledFunction)
	}
	return &Class{ID: id, Name: name, Parent: parent, methods: methods}
}

// ResolveMethod walks c and its ancestors for name, the slow path an
// inline-cache miss falls back to.
func (c *Class) ResolveMethod(name string) (*bytecode.CompiledFunction, bool) {
	for cls := c; cls != nil; cls = cls.Parent {
		cls.mu.RLock()
		m, ok := cls.methods[name]
		cls.mu.RUnlock()
		if ok {
			return m, true
		}
	}
	return nil, false
}

// IsSubclassOf reports whether c is other or descends from it, the
// primitive instanceof relies on.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cls := c; cls != nil; cls = cls.Parent {
		if cls == other || cls.ID == other.ID {
			return true
		}
	}
	return false
}

// RebindMethods replaces c's method table. cache.InvalidateClass(c.ID) is
// called before the new table becomes visible, so no reader observes a
// mix of old and new bindings.
func (c *Class) RebindMethods(methods map[string]*bytecode.CompiledFunction, cache *methodcache.Cache) {
	if cache != nil {
		cache.InvalidateClass(c.ID)
	}
	c.mu.Lock()
	c.methods = methods
	c.mu.Unlock()
}

// ClassTable is the request-independent (shared, read-mostly) registry of
// class descriptors, indexed by id and by name.
type ClassTable struct {
	mu     sync.RWMutex
	byID   map[uint32]*Class
	byName map[string]*Class
	nextID uint32
}

// NewClassTable returns an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{byID: make(map[uint32]*Class), byName: make(map[string]*Class)}
}

// Declare registers a new class and assigns it the next dense id.
func (t *ClassTable) Declare(name string, parent *Class, methods map[string]*bytecode.CompiledFunction) *Class {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	cls := NewClass(id, name, parent, methods)
	t.byID[id] = cls
	t.byName[name] = cls
	return cls
}

// ByID resolves a class by its dense id, as used by new_object/instanceof
// operands.
func (t *ClassTable) ByID(id uint32) (*Class, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.byID[id]
	return c, ok
}

// ByName resolves a class by name.
func (t *ClassTable) ByName(name string) (*Class, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.byName[name]
	return c, ok
}
