package value

import "fmt"

// Op is a single bytecode operation. Each Op occupies exactly one code unit;
// its operand bytes (if any) follow immediately, per the fixed operand
// counts documented below.
type Op uint8

//nolint:revive
const (
	OpConstant Op = iota // 1 operand: const index
	OpNil                // 0
	OpTrue               // 0
	OpFalse              // 0
	OpPop                // 0
	OpGetLocal           // 1 operand: slot
	OpSetLocal           // 1 operand: slot
	OpGetGlobal          // 1 operand: const index (String)
	OpDefineGlobal       // 1 operand: const index (String)
	OpSetGlobal          // 1 operand: const index (String)
	OpGetUpvalue         // 1 operand: slot
	OpSetUpvalue         // 1 operand: slot
	OpEqual              // 0
	OpGreater            // 0
	OpLess               // 0
	OpAdd                // 0
	OpSubtract           // 0
	OpMultiply           // 0
	OpDivide             // 0
	OpNot                // 0
	OpNegate             // 0
	OpPrint              // 0
	OpJump               // 2 operands: u16 big-endian
	OpJumpIfFalse        // 2 operands: u16 big-endian
	OpLoop               // 2 operands: u16 big-endian
	OpCall               // 1 operand: arg count
	OpClosure            // 1 operand: const index, then 2*upvalueCount trailer bytes
	OpCloseUpvalue       // 0
	OpReturn             // 0
	OpClass              // 1 operand: const index
	OpGetProperty        // 1 operand: const index
	OpSetProperty        // 1 operand: const index
	OpMethod             // 1 operand: const index
	OpGetSuper           // 1 operand: const index
	OpInvoke             // 2 operands: const index, arg count
	OpSuperInvoke        // 2 operands: const index, arg count
	OpInherit            // 0

	opMax
)

var opNames = [...]string{
	OpConstant:     "OP_CONSTANT",
	OpNil:          "OP_NIL",
	OpTrue:         "OP_TRUE",
	OpFalse:        "OP_FALSE",
	OpPop:          "OP_POP",
	OpGetLocal:     "OP_GET_LOCAL",
	OpSetLocal:     "OP_SET_LOCAL",
	OpGetGlobal:    "OP_GET_GLOBAL",
	OpDefineGlobal: "OP_DEFINE_GLOBAL",
	OpSetGlobal:    "OP_SET_GLOBAL",
	OpGetUpvalue:   "OP_GET_UPVALUE",
	OpSetUpvalue:   "OP_SET_UPVALUE",
	OpEqual:        "OP_EQUAL",
	OpGreater:      "OP_GREATER",
	OpLess:         "OP_LESS",
	OpAdd:          "OP_ADD",
	OpSubtract:     "OP_SUBTRACT",
	OpMultiply:     "OP_MULTIPLY",
	OpDivide:       "OP_DIVIDE",
	OpNot:          "OP_NOT",
	OpNegate:       "OP_NEGATE",
	OpPrint:        "OP_PRINT",
	OpJump:         "OP_JUMP",
	OpJumpIfFalse:  "OP_JUMP_IF_FALSE",
	OpLoop:         "OP_LOOP",
	OpCall:         "OP_CALL",
	OpClosure:      "OP_CLOSURE",
	OpCloseUpvalue: "OP_CLOSE_UPVALUE",
	OpReturn:       "OP_RETURN",
	OpClass:        "OP_CLASS",
	OpGetProperty:  "OP_GET_PROPERTY",
	OpSetProperty:  "OP_SET_PROPERTY",
	OpMethod:       "OP_METHOD",
	OpGetSuper:     "OP_GET_SUPER",
	OpInvoke:       "OP_INVOKE",
	OpSuperInvoke:  "OP_SUPER_INVOKE",
	OpInherit:      "OP_INHERIT",
}

func (op Op) String() string {
	if op < opMax {
		if name := opNames[op]; name != "" {
			return name
		}
	}
	return fmt.Sprintf("illegal op (%d)", op)
}

// operandCount returns the number of operand bytes that follow op, not
// counting Closure's variable-length upvalue trailer (which the caller
// must account for separately using the function's upvalue count).
func operandCount(op Op) int {
	switch op {
	case OpConstant, OpGetLocal, OpSetLocal, OpGetGlobal, OpDefineGlobal,
		OpSetGlobal, OpGetUpvalue, OpSetUpvalue, OpCall, OpClosure,
		OpClass, OpGetProperty, OpSetProperty, OpMethod, OpGetSuper:
		return 1
	case OpJump, OpJumpIfFalse, OpLoop, OpInvoke, OpSuperInvoke:
		return 2
	default:
		return 0
	}
}
