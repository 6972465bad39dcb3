// Package values implements the tagged-union runtime value and the
// reference-counted heap boxes that back its array, object, struct,
// closure, and resource variants.
package values

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ValueType is the discriminant of the value sum.
type ValueType byte

const (
	TypeNull ValueType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
	TypeArray
	TypeObject
	TypeStruct
	TypeClosure
	TypeResource
)

func (vt ValueType) String() string {
	switch vt {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	case TypeStruct:
		return "struct"
	case TypeClosure:
		return "closure"
	case TypeResource:
		return "resource"
	default:
		return "unknown"
	}
}

// Value is the runtime representation every bytecode slot, constant, and
// native-function argument carries. Scalars live inline in Data; the six
// heap variants (string, array, object, struct, closure, resource) hold a
// *HeapBox.
type Value struct {
	Type ValueType
	Data interface{}
}

// HeapBox is the uniform header every heap-allocated payload shares: a
// strong reference count plus a small mark bitset a future cycle collector
// could use at a gc_safepoint. The engine never frees box memory directly;
// Go's collector reclaims it once nothing references the box, but the
// count itself is authoritative for the COW and lifecycle invariants this
// engine is tested against (testable properties around retain/release
// accounting and copy-on-write).
type HeapBox struct {
	refCount uint32
	gcMarks  uint8
	Payload  interface{} // *StringData | *Array | *Object | *StructInstance | *Closure | *Resource
}

func newBox(payload interface{}) *HeapBox {
	return &HeapBox{refCount: 1, Payload: payload}
}

// RefCount reports the box's current strong reference count.
func (b *HeapBox) RefCount() uint32 { return b.refCount }

// StringData is the immutable byte-sequence payload for TypeString. The
// interior is never mutated after construction; any operation that would
// "modify" a string allocates a fresh StringData instead.
type StringData struct {
	Bytes []byte
}

// Array is an insertion-ordered mapping from a canonical key to *Value:
// integer and interned-string keys, a monotonic next_index for positional
// appends, and iteration order equal to insertion order.
type Array struct {
	order     []interface{}       // insertion-ordered keys
	index     map[interface{}]int // key -> position in order/values
	values    []*Value
	NextIndex int64
}

// Object is a property-store instance of a named class. Property storage
// is a plain map; shape specialization is an optional optimization the
// behavioral contract never requires.
type Object struct {
	ClassName  string
	Properties map[string]*Value
	propOrder  []string
}

// StructInstance is a flat, fixed-arity field vector for a declared struct
// descriptor: len(Fields) stays equal to the descriptor's arity for the
// lifetime of the instance.
type StructInstance struct {
	StructName string
	Fields     []*Value
}

// Closure pairs a compiled function reference with its captured bindings,
// including an optional bound receiver.
type Closure struct {
	FunctionID int
	FuncRef    interface{} // optional *bytecode.CompiledFunction; the VM does not set it
	Captured   map[string]*Value
	Bound      *Value // bound `this`, or nil
}

// Resource is an opaque native handle identified by a type id the host
// assigns; the engine never interprets Handle itself.
type Resource struct {
	TypeID uint32
	Handle interface{}
}

// ---- constructors ----

func NewNull() *Value           { return &Value{Type: TypeNull} }
func NewBool(b bool) *Value     { return &Value{Type: TypeBool, Data: b} }
func NewInt(i int64) *Value     { return &Value{Type: TypeInt, Data: i} }
func NewFloat(f float64) *Value { return &Value{Type: TypeFloat, Data: f} }

func NewString(s string) *Value {
	return &Value{Type: TypeString, Data: newBox(&StringData{Bytes: []byte(s)})}
}

func NewArray() *Value {
	return &Value{Type: TypeArray, Data: newBox(&Array{index: make(map[interface{}]int)})}
}

func NewObject(className string) *Value {
	return &Value{Type: TypeObject, Data: newBox(&Object{
		ClassName:  className,
		Properties: make(map[string]*Value),
	})}
}

func NewStruct(structName string, fieldCount int) *Value {
	fields := make([]*Value, fieldCount)
	for i := range fields {
		fields[i] = NewNull()
	}
	return &Value{Type: TypeStruct, Data: newBox(&StructInstance{StructName: structName, Fields: fields})}
}

func NewClosure(functionID int, captured map[string]*Value, bound *Value) *Value {
	if captured == nil {
		captured = make(map[string]*Value)
	}
	return &Value{Type: TypeClosure, Data: newBox(&Closure{FunctionID: functionID, Captured: captured, Bound: bound})}
}

func NewResource(typeID uint32, handle interface{}) *Value {
	return &Value{Type: TypeResource, Data: newBox(&Resource{TypeID: typeID, Handle: handle})}
}

// ---- reference counting ----

// IsHeapAllocated reports whether v owns a HeapBox.
func (v *Value) IsHeapAllocated() bool {
	switch v.Type {
	case TypeString, TypeArray, TypeObject, TypeStruct, TypeClosure, TypeResource:
		return true
	default:
		return false
	}
}

func (v *Value) box() *HeapBox {
	if v == nil || !v.IsHeapAllocated() {
		return nil
	}
	b, _ := v.Data.(*HeapBox)
	return b
}

// Retain increments the strong reference count for heap-backed values.
// Scalars are no-ops: they are copied by value and never shared.
func Retain(v *Value) {
	if b := v.box(); b != nil {
		b.refCount++
	}
}

// Release decrements the strong reference count for heap-backed values.
// Reaching zero releases ownership of any values the payload itself holds
// (array elements, object properties, struct fields, captured variables).
func Release(v *Value) {
	b := v.box()
	if b == nil {
		return
	}
	if b.refCount == 0 {
		return
	}
	b.refCount--
	if b.refCount > 0 {
		return
	}
	switch p := b.Payload.(type) {
	case *Array:
		for _, el := range p.values {
			Release(el)
		}
	case *Object:
		for _, val := range p.Properties {
			Release(val)
		}
	case *StructInstance:
		for _, f := range p.Fields {
			Release(f)
		}
	case *Closure:
		for _, val := range p.Captured {
			Release(val)
		}
		Release(p.Bound)
	}
}

// RefCount reports the live strong-reference count for heap-backed values,
// or 0 for scalars.
func (v *Value) RefCount() uint32 {
	if b := v.box(); b != nil {
		return b.refCount
	}
	return 0
}

// IsShared reports whether a mutating instruction on v must copy first
// (ref count > 1). This is the check a cow_check opcode exposes.
func (v *Value) IsShared() bool {
	return v.RefCount() > 1
}

// Clone performs the deep copy a cow_copy opcode installs: the result is a
// fresh heap box, disjoint in identity, with matching contents.
func (v *Value) Clone() *Value {
	switch v.Type {
	case TypeArray:
		arr := v.arr()
		out := NewArray()
		outArr := out.arr()
		for i, k := range arr.order {
			el := arr.values[i].Clone()
			Retain(el)
			outArr.insert(k, el)
		}
		outArr.NextIndex = arr.NextIndex
		return out
	case TypeObject:
		obj := v.obj()
		out := NewObject(obj.ClassName)
		outObj := out.obj()
		for _, name := range obj.propOrder {
			cloned := obj.Properties[name].Clone()
			Retain(cloned)
			outObj.set(name, cloned)
		}
		return out
	case TypeStruct:
		s := v.Data.(*HeapBox).Payload.(*StructInstance)
		out := NewStruct(s.StructName, len(s.Fields))
		outS := out.Data.(*HeapBox).Payload.(*StructInstance)
		for i, f := range s.Fields {
			outS.Fields[i] = f.Clone()
			Retain(outS.Fields[i])
		}
		return out
	case TypeString:
		return NewString(v.ToString())
	case TypeClosure:
		c := v.Data.(*HeapBox).Payload.(*Closure)
		captured := make(map[string]*Value, len(c.Captured))
		for k, val := range c.Captured {
			captured[k] = val
		}
		return NewClosure(c.FunctionID, captured, c.Bound)
	case TypeResource:
		r := v.Data.(*HeapBox).Payload.(*Resource)
		return NewResource(r.TypeID, r.Handle)
	default:
		return &Value{Type: v.Type, Data: v.Data}
	}
}

func (v *Value) arr() *Array {
	return v.Data.(*HeapBox).Payload.(*Array)
}

func (v *Value) obj() *Object {
	return v.Data.(*HeapBox).Payload.(*Object)
}

func (a *Array) insert(key interface{}, val *Value) {
	if pos, ok := a.index[key]; ok {
		old := a.values[pos]
		Release(old)
		a.values[pos] = val
		return
	}
	a.index[key] = len(a.order)
	a.order = append(a.order, key)
	a.values = append(a.values, val)
}

func (o *Object) set(name string, val *Value) {
	if old, ok := o.Properties[name]; ok {
		Release(old)
	} else {
		o.propOrder = append(o.propOrder, name)
	}
	o.Properties[name] = val
}

// ---- type predicates ----

func (v *Value) IsNull() bool     { return v.Type == TypeNull }
func (v *Value) IsBool() bool     { return v.Type == TypeBool }
func (v *Value) IsInt() bool      { return v.Type == TypeInt }
func (v *Value) IsFloat() bool    { return v.Type == TypeFloat }
func (v *Value) IsNumeric() bool  { return v.Type == TypeInt || v.Type == TypeFloat }
func (v *Value) IsString() bool   { return v.Type == TypeString }
func (v *Value) IsArray() bool    { return v.Type == TypeArray }
func (v *Value) IsObject() bool   { return v.Type == TypeObject }
func (v *Value) IsStruct() bool   { return v.Type == TypeStruct }
func (v *Value) IsClosure() bool  { return v.Type == TypeClosure }
func (v *Value) IsResource() bool { return v.Type == TypeResource }

func (v *Value) IsNumericString() bool {
	if v.Type != TypeString {
		return false
	}
	s := strings.TrimSpace(v.ToString())
	if s == "" {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// TypeName returns the lowercase type tag name, for gettype()-style
// helpers.
func (v *Value) TypeName() string { return v.Type.String() }

// ---- coercions (fixed and total) ----

func (v *Value) ToBool() bool {
	switch v.Type {
	case TypeNull:
		return false
	case TypeBool:
		return v.Data.(bool)
	case TypeInt:
		return v.Data.(int64) != 0
	case TypeFloat:
		f := v.Data.(float64)
		return f != 0.0 && !isNaN(f)
	case TypeString:
		return v.ToString() != ""
	case TypeArray:
		return v.ArrayCount() > 0
	case TypeObject, TypeStruct, TypeClosure, TypeResource:
		return true
	default:
		return false
	}
}

func phpStringToInt(s string) int64 {
	if s == "" {
		return 0
	}
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) {
		return 0
	}
	sign := int64(1)
	if s[i] == '+' || s[i] == '-' {
		if s[i] == '-' {
			sign = -1
		}
		i++
	}
	if i >= len(s) {
		return 0
	}
	var intPart int64
	inFraction := false
	for i < len(s) {
		ch := s[i]
		if ch >= '0' && ch <= '9' {
			digit := int64(ch - '0')
			if !inFraction {
				if intPart > (9223372036854775807-digit)/10 {
					break
				}
				intPart = intPart*10 + digit
			}
		} else if ch == '.' && !inFraction {
			inFraction = true
		} else {
			break
		}
		i++
	}
	return sign * intPart
}

func phpStringToFloat(s string) float64 {
	if s == "" {
		return 0.0
	}
	i := 0
	for i < len(s) && (s[i] == ' ' || s[i] == '\t' || s[i] == '\n' || s[i] == '\r') {
		i++
	}
	if i >= len(s) {
		return 0.0
	}
	sign := 1.0
	if s[i] == '+' || s[i] == '-' {
		if s[i] == '-' {
			sign = -1.0
		}
		i++
	}
	start := i
	hasDecimal, hasExponent := false, false
	for i < len(s) {
		ch := s[i]
		if ch >= '0' && ch <= '9' {
			// digit
		} else if ch == '.' && !hasDecimal && !hasExponent {
			hasDecimal = true
		} else if (ch == 'e' || ch == 'E') && !hasExponent && i > start {
			hasExponent = true
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				i++
			}
		} else {
			break
		}
		i++
	}
	numericPart := s[start:i]
	if numericPart == "" {
		return 0.0
	}
	if f, err := strconv.ParseFloat(numericPart, 64); err == nil {
		return sign * f
	}
	return 0.0
}

func (v *Value) ToInt() int64 {
	switch v.Type {
	case TypeNull:
		return 0
	case TypeBool:
		if v.Data.(bool) {
			return 1
		}
		return 0
	case TypeInt:
		return v.Data.(int64)
	case TypeFloat:
		return int64(v.Data.(float64))
	case TypeString:
		return phpStringToInt(v.ToString())
	case TypeArray:
		return int64(v.ArrayCount())
	default:
		return 0
	}
}

func (v *Value) ToFloat() float64 {
	switch v.Type {
	case TypeNull:
		return 0.0
	case TypeBool:
		if v.Data.(bool) {
			return 1.0
		}
		return 0.0
	case TypeInt:
		return float64(v.Data.(int64))
	case TypeFloat:
		return v.Data.(float64)
	case TypeString:
		return phpStringToFloat(v.ToString())
	case TypeArray:
		return float64(v.ArrayCount())
	default:
		return 0.0
	}
}

// ToString renders the shortest lossless decimal for numbers, "Array" for
// arrays, and "Object" for objects lacking a coercion hook.
func (v *Value) ToString() string {
	switch v.Type {
	case TypeNull:
		return ""
	case TypeBool:
		if v.Data.(bool) {
			return "1"
		}
		return ""
	case TypeInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case TypeFloat:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case TypeString:
		return string(v.Data.(*HeapBox).Payload.(*StringData).Bytes)
	case TypeArray:
		return "Array"
	case TypeObject:
		return "Object"
	case TypeStruct:
		return fmt.Sprintf("Struct(%s)", v.Data.(*HeapBox).Payload.(*StructInstance).StructName)
	case TypeClosure:
		return "Closure"
	case TypeResource:
		return "Resource"
	default:
		return ""
	}
}

// ---- array operations ----

// ArrayKey returns the canonical key representation: int64 or string.
func ArrayKey(key *Value) interface{} {
	switch key.Type {
	case TypeInt:
		return key.Data.(int64)
	case TypeFloat:
		return int64(key.Data.(float64))
	case TypeBool:
		if key.Data.(bool) {
			return int64(1)
		}
		return int64(0)
	case TypeNull:
		return ""
	case TypeString:
		s := key.ToString()
		if i, err := strconv.ParseInt(s, 10, 64); err == nil && strconv.FormatInt(i, 10) == s {
			return i
		}
		return s
	default:
		return key.ToString()
	}
}

func (v *Value) ArrayGet(key *Value) *Value {
	if v.Type != TypeArray {
		return NewNull()
	}
	arr := v.arr()
	k := ArrayKey(key)
	if pos, ok := arr.index[k]; ok {
		return arr.values[pos]
	}
	return NewNull()
}

// ArraySet implements positional append (key == nil) or keyed assignment,
// maintaining NextIndex and insertion order.
func (v *Value) ArraySet(key *Value, val *Value) {
	if v.Type != TypeArray {
		return
	}
	arr := v.arr()
	Retain(val)
	if key == nil || key.IsNull() {
		arr.insert(arr.NextIndex, val)
		arr.NextIndex++
		return
	}
	k := ArrayKey(key)
	arr.insert(k, val)
	if ik, ok := k.(int64); ok && ik >= arr.NextIndex {
		arr.NextIndex = ik + 1
	}
}

func (v *Value) ArrayUnset(key *Value) {
	if v.Type != TypeArray {
		return
	}
	arr := v.arr()
	k := ArrayKey(key)
	pos, ok := arr.index[k]
	if !ok {
		return
	}
	Release(arr.values[pos])
	delete(arr.index, k)
	arr.order = append(arr.order[:pos], arr.order[pos+1:]...)
	arr.values = append(arr.values[:pos], arr.values[pos+1:]...)
	for i := pos; i < len(arr.order); i++ {
		arr.index[arr.order[i]] = i
	}
}

func (v *Value) ArrayExists(key *Value) bool {
	if v.Type != TypeArray {
		return false
	}
	_, ok := v.arr().index[ArrayKey(key)]
	return ok
}

func (v *Value) ArrayCount() int {
	if v.Type != TypeArray {
		return 0
	}
	return len(v.arr().order)
}

// ArrayPush appends and returns the new length.
func (v *Value) ArrayPush(val *Value) int {
	v.ArraySet(nil, val)
	return v.ArrayCount()
}

// ArrayPop removes and returns the last element in insertion order, or
// null if empty.
func (v *Value) ArrayPop() *Value {
	arr := v.arr()
	n := len(arr.order)
	if n == 0 {
		return NewNull()
	}
	lastKey := arr.order[n-1]
	val := arr.values[n-1]
	delete(arr.index, lastKey)
	arr.order = arr.order[:n-1]
	arr.values = arr.values[:n-1]
	return val
}

// ArrayKeysInOrder returns a copy of the array's keys in insertion order.
func (v *Value) ArrayKeysInOrder() []interface{} {
	arr := v.arr()
	out := make([]interface{}, len(arr.order))
	copy(out, arr.order)
	return out
}

// ArrayValuesInOrder returns a copy of the array's values in insertion order.
func (v *Value) ArrayValuesInOrder() []*Value {
	arr := v.arr()
	out := make([]*Value, len(arr.values))
	copy(out, arr.values)
	return out
}

// ---- object / struct operations ----

func (v *Value) ObjectGet(name string) *Value {
	if v.Type != TypeObject {
		return NewNull()
	}
	if val, ok := v.obj().Properties[name]; ok {
		return val
	}
	return NewNull()
}

func (v *Value) ObjectSet(name string, val *Value) {
	if v.Type != TypeObject {
		return
	}
	Retain(val)
	v.obj().set(name, val)
}

func (v *Value) ObjectUnset(name string) {
	if v.Type != TypeObject {
		return
	}
	obj := v.obj()
	if old, ok := obj.Properties[name]; ok {
		Release(old)
		delete(obj.Properties, name)
		for i, n := range obj.propOrder {
			if n == name {
				obj.propOrder = append(obj.propOrder[:i], obj.propOrder[i+1:]...)
				break
			}
		}
	}
}

func (v *Value) ClassName() string {
	if v.Type != TypeObject {
		return ""
	}
	return v.obj().ClassName
}

func (v *Value) StructGet(index int) *Value {
	s := v.Data.(*HeapBox).Payload.(*StructInstance)
	if index < 0 || index >= len(s.Fields) {
		return NewNull()
	}
	return s.Fields[index]
}

func (v *Value) StructSet(index int, val *Value) {
	s := v.Data.(*HeapBox).Payload.(*StructInstance)
	if index < 0 || index >= len(s.Fields) {
		return
	}
	Retain(val)
	Release(s.Fields[index])
	s.Fields[index] = val
}

func (v *Value) ClosurePayload() *Closure {
	if v.Type != TypeClosure {
		return nil
	}
	return v.Data.(*HeapBox).Payload.(*Closure)
}

// ---- equality & comparison ----

func (v *Value) identical(other *Value) bool {
	switch v.Type {
	case TypeNull:
		return true
	case TypeBool:
		return v.Data.(bool) == other.Data.(bool)
	case TypeInt:
		return v.Data.(int64) == other.Data.(int64)
	case TypeFloat:
		return v.Data.(float64) == other.Data.(float64)
	case TypeString:
		return v.ToString() == other.ToString()
	case TypeArray, TypeObject, TypeStruct, TypeClosure, TypeResource:
		return v.Data.(*HeapBox) == other.Data.(*HeapBox)
	default:
		return false
	}
}

// Identical implements strict equality (===): same tag and bitwise-equal
// payload; strings compare byte-wise, the other heap variants by identity.
func (v *Value) Identical(other *Value) bool {
	if v.Type != other.Type {
		return false
	}
	return v.identical(other)
}

// Equal implements loose equality (==).
func (v *Value) Equal(other *Value) bool {
	if v.Type == other.Type {
		if v.Type == TypeArray {
			return v.arrayEqual(other)
		}
		return v.identical(other)
	}
	if v.IsBool() || other.IsBool() {
		return v.ToBool() == other.ToBool()
	}
	if v.IsNull() || other.IsNull() {
		return v.IsNull() && other.IsNull()
	}
	if v.IsNumeric() && other.IsNumeric() {
		if v.IsFloat() || other.IsFloat() {
			return v.ToFloat() == other.ToFloat()
		}
		return v.ToInt() == other.ToInt()
	}
	if (v.IsNumericString() && other.IsNumeric()) || (v.IsNumeric() && other.IsNumericString()) {
		return v.ToFloat() == other.ToFloat()
	}
	if v.IsString() && other.IsString() {
		return v.ToString() == other.ToString()
	}
	return false
}

func (v *Value) arrayEqual(other *Value) bool {
	a, b := v.arr(), other.arr()
	if len(a.order) != len(b.order) {
		return false
	}
	for k, pos := range a.index {
		bpos, ok := b.index[k]
		if !ok || !a.values[pos].Equal(b.values[bpos]) {
			return false
		}
	}
	return true
}

// Compare returns -1, 0, 1 for v <, ==, > other (numeric if both numeric,
// otherwise lexicographic on ToString()).
func (v *Value) Compare(other *Value) int {
	if v.IsNull() && other.IsNull() {
		return 0
	}
	if v.IsNull() {
		return -1
	}
	if other.IsNull() {
		return 1
	}
	if v.IsNumeric() && other.IsNumeric() {
		if v.IsFloat() || other.IsFloat() {
			return cmpFloat(v.ToFloat(), other.ToFloat())
		}
		return cmpInt(v.ToInt(), other.ToInt())
	}
	return strings.Compare(v.ToString(), other.ToString())
}

func cmpFloat(a, b float64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

func cmpInt(a, b int64) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ---- string ops ----

func (v *Value) Concat(other *Value) *Value {
	return NewString(v.ToString() + other.ToString())
}

func isNaN(f float64) bool { return f != f }

// ---- debug rendering ----

func (v *Value) String() string {
	switch v.Type {
	case TypeNull:
		return "null"
	case TypeBool:
		if v.Data.(bool) {
			return "true"
		}
		return "false"
	case TypeInt:
		return fmt.Sprintf("int(%d)", v.Data.(int64))
	case TypeFloat:
		return fmt.Sprintf("float(%g)", v.Data.(float64))
	case TypeString:
		return fmt.Sprintf("string(%q)", v.ToString())
	case TypeArray:
		return fmt.Sprintf("array[%d]", v.ArrayCount())
	case TypeObject:
		return fmt.Sprintf("object(%s)", v.ClassName())
	default:
		return v.Type.String()
	}
}

// VarDump renders v following var_dump()'s formatting rules.
func (v *Value) VarDump() string {
	var b strings.Builder
	visited := make(map[*HeapBox]bool)
	v.appendVarDump(&b, 0, visited)
	return b.String()
}

func (v *Value) appendVarDump(b *strings.Builder, indent int, visited map[*HeapBox]bool) {
	ind := strings.Repeat(" ", indent)
	switch v.Type {
	case TypeNull:
		b.WriteString(ind + "NULL\n")
	case TypeBool:
		if v.Data.(bool) {
			b.WriteString(ind + "bool(true)\n")
		} else {
			b.WriteString(ind + "bool(false)\n")
		}
	case TypeInt:
		b.WriteString(fmt.Sprintf("%sint(%d)\n", ind, v.Data.(int64)))
	case TypeFloat:
		b.WriteString(fmt.Sprintf("%sfloat(%s)\n", ind, strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)))
	case TypeString:
		s := v.ToString()
		b.WriteString(fmt.Sprintf("%sstring(%d) %q\n", ind, len(s), s))
	case TypeArray:
		v.appendArrayVarDump(b, indent, visited)
	case TypeObject:
		v.appendObjectVarDump(b, indent, visited)
	case TypeResource:
		b.WriteString(ind + "resource(unknown)\n")
	case TypeClosure:
		b.WriteString(ind + "object(Closure)#0 (0) {}\n")
	default:
		b.WriteString(ind + v.Type.String() + "\n")
	}
}

func (v *Value) appendArrayVarDump(b *strings.Builder, indent int, visited map[*HeapBox]bool) {
	box := v.Data.(*HeapBox)
	ind := strings.Repeat(" ", indent)
	if visited[box] {
		b.WriteString(ind + "*RECURSION*\n")
		return
	}
	visited[box] = true
	defer delete(visited, box)

	arr := v.arr()
	b.WriteString(fmt.Sprintf("%sarray(%d) {\n", ind, len(arr.order)))
	for i, key := range arr.order {
		b.WriteString(fmt.Sprintf("%s  [%s]=>\n", ind, formatArrayKey(key)))
		arr.values[i].appendVarDump(b, indent+2, visited)
	}
	b.WriteString(ind + "}\n")
}

func (v *Value) appendObjectVarDump(b *strings.Builder, indent int, visited map[*HeapBox]bool) {
	box := v.Data.(*HeapBox)
	obj := v.obj()
	ind := strings.Repeat(" ", indent)
	b.WriteString(fmt.Sprintf("%sobject(%s)#0 (%d) {\n", ind, obj.ClassName, len(obj.propOrder)))
	if visited[box] {
		b.WriteString(ind + "  *RECURSION*\n" + ind + "}\n")
		return
	}
	visited[box] = true
	defer delete(visited, box)
	for _, name := range obj.propOrder {
		b.WriteString(fmt.Sprintf("%s  [\"%s\"]=>\n", ind, name))
		obj.Properties[name].appendVarDump(b, indent+2, visited)
	}
	b.WriteString(ind + "}\n")
}

// PrintR renders v following print_r()'s formatting rules.
func (v *Value) PrintR() string {
	var b strings.Builder
	visited := make(map[*HeapBox]bool)
	v.appendPrintR(&b, 0, visited)
	return b.String()
}

func (v *Value) appendPrintR(b *strings.Builder, indent int, visited map[*HeapBox]bool) {
	switch v.Type {
	case TypeNull:
	case TypeBool:
		if v.Data.(bool) {
			b.WriteString("1")
		}
	case TypeArray:
		v.appendArrayPrintR(b, indent, visited)
	case TypeObject:
		v.appendObjectPrintR(b, indent, visited)
	default:
		b.WriteString(v.ToString())
	}
}

func (v *Value) appendArrayPrintR(b *strings.Builder, indent int, visited map[*HeapBox]bool) {
	box := v.Data.(*HeapBox)
	if visited[box] {
		b.WriteString("Array\n *RECURSION*")
		return
	}
	visited[box] = true
	defer delete(visited, box)

	arr := v.arr()
	b.WriteString("Array\n")
	ind := strings.Repeat(" ", indent*4)
	b.WriteString(ind + "(\n")
	nextInd := strings.Repeat(" ", (indent+1)*4)
	for i, key := range arr.order {
		b.WriteString(fmt.Sprintf("%s[%s] => ", nextInd, formatPrintRKey(key)))
		arr.values[i].appendPrintR(b, indent+2, visited)
		b.WriteString("\n")
	}
	b.WriteString(ind + ")\n")
}

func (v *Value) appendObjectPrintR(b *strings.Builder, indent int, visited map[*HeapBox]bool) {
	obj := v.obj()
	b.WriteString(fmt.Sprintf("%s Object\n", obj.ClassName))
	ind := strings.Repeat(" ", indent*4)
	b.WriteString(ind + "(\n")
	nextInd := strings.Repeat(" ", (indent+1)*4)
	names := append([]string(nil), obj.propOrder...)
	sort.Strings(names)
	for _, name := range names {
		b.WriteString(fmt.Sprintf("%s[%s] => ", nextInd, name))
		obj.Properties[name].appendPrintR(b, indent+2, visited)
		b.WriteString("\n")
	}
	b.WriteString(ind + ")\n")
}

func formatArrayKey(key interface{}) string {
	switch k := key.(type) {
	case string:
		return fmt.Sprintf("%q", k)
	case int64:
		return fmt.Sprintf("%d", k)
	default:
		return fmt.Sprintf("%q", fmt.Sprint(k))
	}
}

func formatPrintRKey(key interface{}) string {
	switch k := key.(type) {
	case string:
		return k
	case int64:
		return fmt.Sprintf("%d", k)
	default:
		return fmt.Sprint(k)
	}
}

// ShortestFloat applies the "shortest lossless decimal" rule used by
// ToString for finite TypeFloat values, exposed for callers formatting
// floats outside a Value (e.g. a sqrt builtin). Unlike ToString, it renders
// infinities and NaN as INF, -INF and NAN.
func ShortestFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "INF"
	}
	if math.IsInf(f, -1) {
		return "-INF"
	}
	if math.IsNaN(f) {
		return "NAN"
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}
