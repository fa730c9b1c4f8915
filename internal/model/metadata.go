package model

import "strings"

// DecodeStatus is a bitmask recording which decode phases have completed.
// Consumers must check the relevant bits before trusting the fields a phase
// fills in; a reused scratch instruction may carry stale values from an
// earlier decode in fields whose bits are not set.
type DecodeStatus uint8

const (
	DecodeInvalid   DecodeStatus = 0      // nothing decoded
	DecodeBasic     DecodeStatus = 1 << 0 // ascii, offset, vma, size, bytes
	DecodeMnemonic  DecodeStatus = 1 << 1 // mnemonic and prefixes
	DecodeOperands  DecodeStatus = 1 << 2 // operand list and target/dest/src
	DecodeInsnFlags DecodeStatus = 1 << 3 // instruction category and flags
	DecodeOpFlags   DecodeStatus = 1 << 4 // operand categories and flags
)

// Has reports whether every bit in bits is set.
func (s DecodeStatus) Has(bits DecodeStatus) bool { return s&bits == bits }

// OperandCategory identifies which Value arm of an operand is live.
type OperandCategory uint8

const (
	OpCatUnknown OperandCategory = iota
	OpCatRegister
	OpCatAbsolute
	OpCatExpr
	OpCatImmediate
)

var opCatNames = [...]string{
	OpCatUnknown:   "unknown",
	OpCatRegister:  "register",
	OpCatAbsolute:  "absolute address",
	OpCatExpr:      "address expression",
	OpCatImmediate: "immediate",
}

func (c OperandCategory) String() string {
	if int(c) < len(opCatNames) {
		return opCatNames[c]
	}
	return "unknown"
}

// OperandFlag is a bitset of operand attributes.
type OperandFlag uint16

const (
	OpFlagRead OperandFlag = 1 << iota
	OpFlagWrite
	OpFlagExec
	OpFlagSigned
	OpFlagAddress
	OpFlagIndirect
)

var opFlagNames = []string{"r", "w", "x", "signed", "address", "indirect"}

// Format renders the set flags in bit-value order, joined by delim.
// An empty flag set renders as the empty string.
func (f OperandFlag) Format(delim string) string {
	return formatBits(uint32(f), opFlagNames, delim)
}

// RegisterFlag is a bitset describing the kind of a CPU register.
type RegisterFlag uint16

const (
	RegGeneral RegisterFlag = 1 << iota
	RegFPU
	RegGPU
	RegSIMD
	RegTask
	RegMemMgmt
	RegDebug
	RegPC
	RegCondition
	RegStackPtr
	RegFramePtr
	RegSegment
	RegZero
)

var regFlagNames = []string{
	"gen", "fpu", "gpu", "simd", "task", "mem", "debug",
	"pc", "flags", "stack", "frame", "seg", "zero",
}

// Format renders the set flags in bit-value order, joined by delim.
func (f RegisterFlag) Format(delim string) string {
	return formatBits(uint32(f), regFlagNames, delim)
}

// AddrExprElem is a bitset of the components present in an address
// expression. Exactly one of the three displacement-variant bits is set when
// ExprDisp is set.
type AddrExprElem uint8

const (
	ExprBase AddrExprElem = 1 << iota
	ExprIndex
	ExprDisp
	ExprDispUnsigned
	ExprDispSigned
	ExprDispAbsolute
)

// AddrExprShift is the scale operation applied to the index register.
// Everything but ASL is ARM-specific; x86 scaling is always ASL.
type AddrExprShift uint8

const (
	ShiftLSL AddrExprShift = iota // logical shift left
	ShiftLSR                      // logical shift right
	ShiftASL                      // arithmetic shift left
	ShiftROR                      // rotate right
	ShiftRRX                      // rotate right with extend
)

var shiftNames = [...]string{"lsl", "lsr", "asl", "ror", "rrx"}

func (s AddrExprShift) String() string {
	if int(s) < len(shiftNames) {
		return shiftNames[s]
	}
	return "asl"
}

// InsnCategory is the broad class of an instruction opcode.
type InsnCategory uint8

const (
	InsnCatUnknown InsnCategory = iota
	InsnCatCFlow
	InsnCatStack
	InsnCatLoadStore
	InsnCatTest
	InsnCatMath
	InsnCatBit
	InsnCatIO
	InsnCatTrap
	InsnCatPriv
	InsnCatNop
)

// Note: "load/store" and "i/o" contain a slash, so '/' is a poor choice of
// delimiter anywhere category or flag strings are joined.
var insnCatNames = [...]string{
	InsnCatUnknown:   "unknown",
	InsnCatCFlow:     "control-flow",
	InsnCatStack:     "stack",
	InsnCatLoadStore: "load/store",
	InsnCatTest:      "test",
	InsnCatMath:      "math",
	InsnCatBit:       "bitwise",
	InsnCatIO:        "i/o",
	InsnCatTrap:      "trap",
	InsnCatPriv:      "privileged",
	InsnCatNop:       "nop",
}

func (c InsnCategory) String() string {
	if int(c) < len(insnCatNames) {
		return insnCatNames[c]
	}
	return "unknown"
}

// ISASubset is the instruction-set subset an opcode belongs to.
type ISASubset uint8

const (
	ISAGeneral ISASubset = iota
	ISAFPU
	ISAGPU
	ISASIMD
	ISAVM
)

var isaNames = [...]string{"general", "fpu", "gpu", "simd", "vm"}

func (s ISASubset) String() string {
	if int(s) < len(isaNames) {
		return isaNames[s]
	}
	return "general"
}

// InsnFlags is the category-specific flag arm of an instruction. The dynamic
// type is the tag: CFlowFlag for control-flow instructions, StackFlag for
// stack instructions, IOFlag for port I/O, BitFlag for bitwise operations.
// A nil InsnFlags means flags have not been decoded.
type InsnFlags interface {
	// Format renders the set flags in bit-value order, joined by delim.
	Format(delim string) string

	insnFlags()
}

// CFlowFlag describes a control-flow instruction.
type CFlowFlag uint8

const (
	CFlowCall   CFlowFlag = 1 << iota // unconditional call
	CFlowCallCC                       // conditional call
	CFlowJmp                          // unconditional jump
	CFlowJmpCC                        // conditional jump
	CFlowRet                          // return from procedure
)

var cflowNames = []string{"call", "callcc", "jmp", "jmpcc", "ret"}

func (f CFlowFlag) Format(delim string) string {
	return formatBits(uint32(f), cflowNames, delim)
}

func (CFlowFlag) insnFlags() {}

// StackFlag describes a stack-manipulation instruction.
type StackFlag uint8

const (
	StackPush StackFlag = 1 << iota
	StackPop
	StackFrame   // enter a stack frame
	StackUnframe // leave a stack frame
)

var stackNames = []string{"push", "pop", "frame", "unframe"}

func (f StackFlag) Format(delim string) string {
	return formatBits(uint32(f), stackNames, delim)
}

func (StackFlag) insnFlags() {}

// IOFlag describes a port I/O instruction.
type IOFlag uint8

const (
	IOIn IOFlag = 1 << iota
	IOOut
)

var ioNames = []string{"in", "out"}

func (f IOFlag) Format(delim string) string {
	return formatBits(uint32(f), ioNames, delim)
}

func (IOFlag) insnFlags() {}

// BitFlag describes a bitwise instruction.
type BitFlag uint16

const (
	BitAnd BitFlag = 1 << iota
	BitOr
	BitXor
	BitNot
	BitShl
	BitShr
	BitSar
	BitRol
	BitRor
	BitRcl
	BitRcr
)

var bitNames = []string{
	"and", "or", "xor", "not", "shl", "shr", "sar", "rol", "ror", "rcl", "rcr",
}

func (f BitFlag) Format(delim string) string {
	return formatBits(uint32(f), bitNames, delim)
}

func (BitFlag) insnFlags() {}

func formatBits(v uint32, names []string, delim string) string {
	var parts []string
	for i, name := range names {
		if v&(1<<uint(i)) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, delim)
}
