// Package bytecode defines the wire format shared by the compiler and the
// interpreter: a dense, fixed-width instruction encoding, the opcode
// space, and the per-function constant pool.
package bytecode

// Opcode is the 8-bit discriminant of one interpreter operation. The space
// is dense within [0, 256) so a computed-dispatch table can be a plain
// array indexed by Opcode.
type Opcode byte

const (
	OpNop Opcode = iota

	// Stack
	OpPushConst
	OpPushLocal
	OpPushGlobal
	OpPop
	OpDup
	OpSwap
	OpPushNull
	OpPushTrue
	OpPushFalse
	OpPushInt0
	OpPushInt1
	OpStoreLocal
	OpStoreGlobal

	// Integer arithmetic
	OpAddInt
	OpSubInt
	OpMulInt
	OpDivInt
	OpModInt
	OpNegInt
	OpIncInt
	OpDecInt
	OpAndInt
	OpOrInt
	OpXorInt
	OpNotInt
	OpShlInt
	OpShrInt

	// Float arithmetic
	OpAddFloat
	OpSubFloat
	OpMulFloat
	OpDivFloat
	OpNegFloat
	OpSqrtFloat

	// Comparisons
	OpEq
	OpNeq
	OpLtInt
	OpGtInt
	OpLtFloat
	OpGtFloat

	// Logic
	OpLogicAnd
	OpLogicOr
	OpLogicNot

	// Control
	OpJmp
	OpJz
	OpJnz
	OpCall
	OpCallMethod
	OpCallBuiltin
	OpRet
	OpRetVoid
	OpHalt
	OpLoopStart
	OpLoopEnd

	// Type guards
	OpGuardNull
	OpGuardBool
	OpGuardInt
	OpGuardFloat
	OpGuardString
	OpGuardArray
	OpGuardObject

	// Heap: arrays and objects
	OpNewArray
	OpArrayGet
	OpArraySet
	OpArrayPush
	OpArrayPop
	OpArrayLen
	OpArrayExists
	OpArrayUnset
	OpNewObject
	OpGetProp
	OpSetProp
	OpInstanceof
	OpClone

	// Structs
	OpNewStruct
	OpStructGet
	OpStructSet

	// Conversions
	OpToInt
	OpToFloat
	OpToBool
	OpToString
	OpIsNull
	OpIsInt
	OpIsFloat
	OpIsString
	OpIsArray
	OpIsObject

	// String
	OpConcat
	OpStrlen

	// Argument passing
	OpPassByValue
	OpPassByRef
	OpPassByCow
	OpPassByMove
	OpCowCheck
	OpCowCopy

	// Returns
	OpRetMove
	OpRetCow

	// Debug
	OpDebugBreak
	OpLineNumber
	OpGcSafepoint

	// opcodeCount is the sentinel marking the end of the dense range;
	// used to size the dispatch table.
	opcodeCount
)

// OpcodeCount is the number of opcodes currently registered.
const OpcodeCount = int(opcodeCount)

var opcodeNames = [opcodeCount]string{
	OpNop:         "nop",
	OpPushConst:   "push_const",
	OpPushLocal:   "push_local",
	OpPushGlobal:  "push_global",
	OpPop:         "pop",
	OpDup:         "dup",
	OpSwap:        "swap",
	OpPushNull:    "push_null",
	OpPushTrue:    "push_true",
	OpPushFalse:   "push_false",
	OpPushInt0:    "push_int_0",
	OpPushInt1:    "push_int_1",
	OpStoreLocal:  "store_local",
	OpStoreGlobal: "store_global",

	OpAddInt: "add_int",
	OpSubInt: "sub_int",
	OpMulInt: "mul_int",
	OpDivInt: "div_int",
	OpModInt: "mod_int",
	OpNegInt: "neg_int",
	OpIncInt: "inc_int",
	OpDecInt: "dec_int",
	OpAndInt: "and_int",
	OpOrInt:  "or_int",
	OpXorInt: "xor_int",
	OpNotInt: "not_int",
	OpShlInt: "shl_int",
	OpShrInt: "shr_int",

	OpAddFloat:  "add_float",
	OpSubFloat:  "sub_float",
	OpMulFloat:  "mul_float",
	OpDivFloat:  "div_float",
	OpNegFloat:  "neg_float",
	OpSqrtFloat: "sqrt_float",

	OpEq:      "eq",
	OpNeq:     "neq",
	OpLtInt:   "lt_int",
	OpGtInt:   "gt_int",
	OpLtFloat: "lt_float",
	OpGtFloat: "gt_float",

	OpLogicAnd: "logic_and",
	OpLogicOr:  "logic_or",
	OpLogicNot: "logic_not",

	OpJmp:         "jmp",
	OpJz:          "jz",
	OpJnz:         "jnz",
	OpCall:        "call",
	OpCallMethod:  "call_method",
	OpCallBuiltin: "call_builtin",
	OpRet:         "ret",
	OpRetVoid:     "ret_void",
	OpHalt:        "halt",
	OpLoopStart:   "loop_start",
	OpLoopEnd:     "loop_end",

	OpGuardNull:   "guard_null",
	OpGuardBool:   "guard_bool",
	OpGuardInt:    "guard_int",
	OpGuardFloat:  "guard_float",
	OpGuardString: "guard_string",
	OpGuardArray:  "guard_array",
	OpGuardObject: "guard_object",

	OpNewArray:    "new_array",
	OpArrayGet:    "array_get",
	OpArraySet:    "array_set",
	OpArrayPush:   "array_push",
	OpArrayPop:    "array_pop",
	OpArrayLen:    "array_len",
	OpArrayExists: "array_exists",
	OpArrayUnset:  "array_unset",
	OpNewObject:   "new_object",
	OpGetProp:     "get_prop",
	OpSetProp:     "set_prop",
	OpInstanceof:  "instanceof",
	OpClone:       "clone",

	OpNewStruct: "new_struct",
	OpStructGet: "struct_get",
	OpStructSet: "struct_set",

	OpToInt:    "to_int",
	OpToFloat:  "to_float",
	OpToBool:   "to_bool",
	OpToString: "to_string",
	OpIsNull:   "is_null",
	OpIsInt:    "is_int",
	OpIsFloat:  "is_float",
	OpIsString: "is_string",
	OpIsArray:  "is_array",
	OpIsObject: "is_object",

	OpConcat: "concat",
	OpStrlen: "strlen",

	OpPassByValue: "pass_by_value",
	OpPassByRef:   "pass_by_ref",
	OpPassByCow:   "pass_by_cow",
	OpPassByMove:  "pass_by_move",
	OpCowCheck:    "cow_check",
	OpCowCopy:     "cow_copy",

	OpRetMove: "ret_move",
	OpRetCow:  "ret_cow",

	OpDebugBreak:  "debug_break",
	OpLineNumber:  "line_number",
	OpGcSafepoint: "gc_safepoint",
}

func (op Opcode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "unknown"
}

// IsGuard reports whether op is one of the guard_<T> family that the
// type-feedback collector instruments.
func (op Opcode) IsGuard() bool {
	return op >= OpGuardNull && op <= OpGuardObject
}
