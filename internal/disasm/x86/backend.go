// Package x86 decodes x86 and x86-64 machine code into model Instructions
// using golang.org/x/arch/x86/x86asm.
package x86

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"

	"opdump/internal/model"
)

// Backend is a disasm.Backend for the x86 family.
type Backend struct {
	mode int // 16, 32 or 64
}

// New returns a backend for the given processor mode (16, 32 or 64 bit).
func New(mode int) (*Backend, error) {
	switch mode {
	case 16, 32, 64:
		return &Backend{mode: mode}, nil
	}
	return nil, fmt.Errorf("x86: unsupported mode %d", mode)
}

// Mode returns the processor mode the backend decodes for.
func (b *Backend) Mode() int { return b.mode }

// Decode fills insn from the leading bytes of data and returns the number
// of bytes consumed. insn is expected to be cleared; every decode phase
// that completes is recorded in its status mask.
func (b *Backend) Decode(insn *model.Instruction, data []byte, offset, vma uint64) (int, error) {
	inst, err := x86asm.Decode(data, b.mode)
	if err != nil {
		return 0, fmt.Errorf("x86: decode at %#x: %w", vma, err)
	}

	insn.SetLocation(offset, vma)
	insn.SetBytes(data[:inst.Len])
	insn.SetAscii(x86asm.IntelSyntax(inst, vma, nil))
	insn.Status |= model.DecodeBasic

	for _, p := range inst.Prefix {
		if p == 0 || p&x86asm.PrefixImplicit != 0 {
			continue
		}
		switch p & 0xFF {
		case 0xF0:
			insn.AddPrefix("lock")
		case 0xF2:
			insn.AddPrefix("repn")
		case 0xF3:
			insn.AddPrefix("rep")
		}
	}
	insn.SetMnemonic(strings.ToLower(inst.Op.String()))
	insn.Status |= model.DecodeMnemonic

	insn.Category, insn.Flags, insn.ISA = classify(inst)
	insn.Status |= model.DecodeInsnFlags

	branch := insn.IsBranch()
	targetIdx := -1
	for argIdx, arg := range inst.Args {
		if arg == nil {
			break
		}
		// Reuse the pre-allocated operand on a fixed-size instruction;
		// allocate fresh otherwise. AddOperand claims the same slot.
		op := insn.NextAvailableOperand()
		if op == nil {
			op = model.NewOperand()
		} else {
			op.Clear()
		}
		fillOperand(op, arg, inst, vma)
		// x86 convention: the first operand is written, the rest are read.
		if argIdx == 0 && !branch {
			op.Flags |= model.OpFlagWrite
		} else {
			op.Flags |= model.OpFlagRead
		}
		if !insn.AddOperand(op) {
			return 0, fmt.Errorf("x86: add operand %d at %#x", argIdx, vma)
		}
		if branch && targetIdx < 0 {
			if _, ok := arg.(x86asm.Rel); ok {
				targetIdx = argIdx
			}
		}
	}
	insn.Status |= model.DecodeOperands | model.DecodeOpFlags

	switch {
	case branch:
		if targetIdx < 0 && insn.NumOperands() > 0 {
			targetIdx = 0 // indirect branch: target is the first operand
		}
		insn.SetTarget(targetIdx)
	case insn.NumOperands() >= 2:
		insn.SetDest(0)
		insn.SetSrc(1)
	}

	return inst.Len, nil
}

// fillOperand maps one x86asm argument onto an operand, setting its value
// arm, flags, data size and display string.
func fillOperand(op *model.Operand, arg x86asm.Arg, inst x86asm.Inst, vma uint64) {
	switch a := arg.(type) {
	case x86asm.Reg:
		reg := regValue(a)
		op.Value = reg
		op.DataSize = reg.Size
		op.SetAscii(reg.Name)

	case x86asm.Mem:
		var expr model.AddressExpr
		expr.Shift = model.ShiftASL
		expr.Scale = 1
		if a.Base != 0 {
			expr.Base = regValue(a.Base)
			expr.Elements |= model.ExprBase
		}
		if a.Index != 0 {
			expr.Index = regValue(a.Index)
			expr.Elements |= model.ExprIndex
			expr.Scale = int8(a.Scale)
		}
		switch {
		case a.Segment != 0:
			expr.SetDispAbsolute(model.AbsoluteAddress{
				Segment: regValue(a.Segment),
				Offset:  uint64(a.Disp),
			})
		case a.Disp != 0:
			if a.Disp >= -(1<<31) && a.Disp < 1<<31 {
				expr.SetDispSigned(int32(a.Disp))
			} else {
				expr.SetDispUnsigned(uint64(a.Disp))
			}
		}
		op.Value = expr
		op.Flags = model.OpFlagAddress | model.OpFlagIndirect
		op.DataSize = uint8(inst.MemBytes)
		op.SetAscii(strings.ToLower(arg.String()))

	case x86asm.Imm:
		op.Value = model.Immediate{U: uint64(a), S: int64(a)}
		op.Flags = model.OpFlagSigned
		op.DataSize = uint8(inst.DataSize / 8)
		op.SetAscii(strings.ToLower(arg.String()))

	case x86asm.Rel:
		target := vma + uint64(inst.Len) + uint64(int64(a))
		op.Value = model.Immediate{VMA: target}
		op.Flags = model.OpFlagAddress | model.OpFlagExec
		op.DataSize = uint8(inst.Mode / 8)
		op.SetAscii(fmt.Sprintf("0x%x", target))

	default:
		op.SetAscii(strings.ToLower(arg.String()))
	}
}

// regValue maps an x86asm register onto the model's register value,
// deriving its kind flags and byte size from the register class.
func regValue(r x86asm.Reg) model.Register {
	reg := model.Register{ID: uint8(r)}
	reg.SetName(strings.ToLower(r.String()))

	switch {
	case r >= x86asm.AL && r <= x86asm.R15B:
		reg.Flags, reg.Size = model.RegGeneral, 1
	case r >= x86asm.AX && r <= x86asm.R15W:
		reg.Flags, reg.Size = model.RegGeneral, 2
	case r >= x86asm.EAX && r <= x86asm.R15L:
		reg.Flags, reg.Size = model.RegGeneral, 4
	case r >= x86asm.RAX && r <= x86asm.R15:
		reg.Flags, reg.Size = model.RegGeneral, 8
	case r == x86asm.IP:
		reg.Flags, reg.Size = model.RegPC, 2
	case r == x86asm.EIP:
		reg.Flags, reg.Size = model.RegPC, 4
	case r == x86asm.RIP:
		reg.Flags, reg.Size = model.RegPC, 8
	case r >= x86asm.F0 && r <= x86asm.F7:
		reg.Flags, reg.Size = model.RegFPU, 10
	case r >= x86asm.M0 && r <= x86asm.M7:
		reg.Flags, reg.Size = model.RegSIMD, 8
	case r >= x86asm.X0 && r <= x86asm.X15:
		reg.Flags, reg.Size = model.RegSIMD, 16
	case r >= x86asm.ES && r <= x86asm.GS:
		reg.Flags, reg.Size = model.RegSegment, 2
	case r >= x86asm.GDTR && r <= x86asm.TASK:
		reg.Flags, reg.Size = model.RegMemMgmt, 8
	case r >= x86asm.CR0 && r <= x86asm.CR15:
		reg.Flags, reg.Size = model.RegMemMgmt, 8
	case r >= x86asm.DR0 && r <= x86asm.DR15:
		reg.Flags, reg.Size = model.RegDebug, 8
	case r >= x86asm.TR0 && r <= x86asm.TR7:
		reg.Flags, reg.Size = model.RegTask, 8
	}

	switch r {
	case x86asm.SP, x86asm.ESP, x86asm.RSP:
		reg.Flags |= model.RegStackPtr
	case x86asm.BP, x86asm.EBP, x86asm.RBP:
		reg.Flags |= model.RegFramePtr
	}
	return reg
}

// classify derives the model category, category-specific flags and ISA
// subset for a decoded instruction.
func classify(inst x86asm.Inst) (model.InsnCategory, model.InsnFlags, model.ISASubset) {
	isa := isaOf(inst)
	name := inst.Op.String()

	switch inst.Op {
	case x86asm.CALL, x86asm.LCALL:
		return model.InsnCatCFlow, model.CFlowCall, isa
	case x86asm.JMP, x86asm.LJMP:
		return model.InsnCatCFlow, model.CFlowJmp, isa
	case x86asm.RET, x86asm.LRET, x86asm.IRET, x86asm.IRETD, x86asm.IRETQ:
		return model.InsnCatCFlow, model.CFlowRet, isa
	case x86asm.LOOP, x86asm.LOOPE, x86asm.LOOPNE:
		return model.InsnCatCFlow, model.CFlowJmpCC, isa

	case x86asm.PUSH, x86asm.PUSHA, x86asm.PUSHAD,
		x86asm.PUSHF, x86asm.PUSHFD, x86asm.PUSHFQ:
		return model.InsnCatStack, model.StackPush, isa
	case x86asm.POP, x86asm.POPA, x86asm.POPAD,
		x86asm.POPF, x86asm.POPFD, x86asm.POPFQ:
		return model.InsnCatStack, model.StackPop, isa
	case x86asm.ENTER:
		return model.InsnCatStack, model.StackFrame, isa
	case x86asm.LEAVE:
		return model.InsnCatStack, model.StackUnframe, isa

	case x86asm.IN, x86asm.INSB, x86asm.INSD, x86asm.INSW:
		return model.InsnCatIO, model.IOIn, isa
	case x86asm.OUT, x86asm.OUTSB, x86asm.OUTSD, x86asm.OUTSW:
		return model.InsnCatIO, model.IOOut, isa

	case x86asm.AND:
		return model.InsnCatBit, model.BitAnd, isa
	case x86asm.OR:
		return model.InsnCatBit, model.BitOr, isa
	case x86asm.XOR:
		return model.InsnCatBit, model.BitXor, isa
	case x86asm.NOT:
		return model.InsnCatBit, model.BitNot, isa
	case x86asm.SHL, x86asm.SHLD:
		return model.InsnCatBit, model.BitShl, isa
	case x86asm.SHR, x86asm.SHRD:
		return model.InsnCatBit, model.BitShr, isa
	case x86asm.SAR:
		return model.InsnCatBit, model.BitSar, isa
	case x86asm.ROL:
		return model.InsnCatBit, model.BitRol, isa
	case x86asm.ROR:
		return model.InsnCatBit, model.BitRor, isa
	case x86asm.RCL:
		return model.InsnCatBit, model.BitRcl, isa
	case x86asm.RCR:
		return model.InsnCatBit, model.BitRcr, isa

	case x86asm.TEST, x86asm.CMP:
		return model.InsnCatTest, nil, isa

	case x86asm.ADD, x86asm.ADC, x86asm.SUB, x86asm.SBB,
		x86asm.MUL, x86asm.IMUL, x86asm.DIV, x86asm.IDIV,
		x86asm.INC, x86asm.DEC, x86asm.NEG:
		return model.InsnCatMath, nil, isa

	case x86asm.LEA, x86asm.XCHG:
		return model.InsnCatLoadStore, nil, isa

	case x86asm.INT, x86asm.INTO, x86asm.SYSCALL, x86asm.SYSENTER,
		x86asm.SYSEXIT, x86asm.SYSRET, x86asm.UD1, x86asm.UD2:
		return model.InsnCatTrap, nil, isa

	case x86asm.HLT, x86asm.CLI, x86asm.STI, x86asm.CLTS,
		x86asm.LGDT, x86asm.LIDT, x86asm.LLDT, x86asm.LTR, x86asm.LMSW,
		x86asm.INVD, x86asm.WBINVD, x86asm.INVLPG,
		x86asm.RDMSR, x86asm.WRMSR:
		return model.InsnCatPriv, nil, isa

	case x86asm.NOP, x86asm.PAUSE, x86asm.FNOP:
		return model.InsnCatNop, nil, isa
	}

	// Conditional jumps come in too many mnemonics to enumerate: JMP and
	// the loop forms are handled above, so any remaining J* is a Jcc.
	if strings.HasPrefix(name, "J") {
		return model.InsnCatCFlow, model.CFlowJmpCC, isa
	}
	if strings.HasPrefix(name, "MOV") || strings.HasPrefix(name, "CMOV") ||
		strings.HasPrefix(name, "LODS") || strings.HasPrefix(name, "STOS") {
		return model.InsnCatLoadStore, nil, isa
	}
	return model.InsnCatUnknown, nil, isa
}

// isaOf picks the ISA subset: SIMD when any argument is an MMX/XMM
// register, x87 for the F* opcodes, general otherwise.
func isaOf(inst x86asm.Inst) model.ISASubset {
	for _, arg := range inst.Args {
		if arg == nil {
			break
		}
		if r, ok := arg.(x86asm.Reg); ok {
			if (r >= x86asm.M0 && r <= x86asm.M7) || (r >= x86asm.X0 && r <= x86asm.X15) {
				return model.ISASIMD
			}
		}
	}
	if strings.HasPrefix(inst.Op.String(), "F") {
		return model.ISAFPU
	}
	return model.ISAGeneral
}
