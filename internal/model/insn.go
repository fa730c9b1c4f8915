package model

// prefixCap is the heuristic upper bound for the concatenated prefix string
// of a fixed-size instruction: four prefix tokens of mnemonic length.
func prefixCap(mnemonicCap int) int { return 4 * mnemonicCap }

// Instruction is a disassembled instruction: raw bytes, textual rendering,
// decoded mnemonic/prefixes/flags, and an ordered list of owned operands.
// Depending on the decoder, only some fields are set; Status records which
// decode phases completed and therefore which fields may be trusted.
//
// The target, dest and src accessors identify which stored operand plays
// each semantic role. They are indices into the operand list, not owning
// references, so resizing or copying the list can never leave them
// dangling.
type Instruction struct {
	Status DecodeStatus

	ascii MutableText

	Offset uint64 // offset of the instruction in the decoded buffer
	VMA    uint64 // virtual memory address of the instruction
	Bytes  []byte // raw instruction bytes

	numPrefixes int
	prefixes    MutableText
	mnemonic    MutableText

	Category InsnCategory
	ISA      ISASubset
	Flags    InsnFlags // nil until the flag-decode phase runs

	comment MutableText

	ops  []*Operand // len(ops) is the allocated slot count
	used int        // populated slots; always <= len(ops)

	target, dest, src int // operand indices, -1 when unset

	fixed bool
}

// NewInstruction returns a dynamic instruction with numOperands empty
// operand slots reserved. The operands themselves are not created.
func NewInstruction(numOperands int) *Instruction {
	i := &Instruction{
		ascii:    NewDynamicText(),
		prefixes: NewDynamicText(),
		mnemonic: NewDynamicText(),
		comment:  NewDynamicText(),
		target:   -1,
		dest:     -1,
		src:      -1,
	}
	if numOperands > 0 {
		i.ops = make([]*Operand, numOperands)
	}
	return i
}

// NewFixedInstruction returns an instruction whose ascii, mnemonic, comment
// and prefix buffers are allocated once at the given capacities (the prefix
// buffer at 4x mnemonicCap, the comment buffer at asciiCap) and whose
// numOperands operand slots are pre-populated with fixed-size operands of
// opAsciiCap display capacity. The instruction is intended as a scratch
// buffer: Clear it between decode calls rather than discarding it.
func NewFixedInstruction(asciiCap, mnemonicCap, numOperands, opAsciiCap int) (*Instruction, error) {
	if numOperands < 0 {
		numOperands = 0
	}
	ascii, err := NewFixedText(asciiCap)
	if err != nil {
		return nil, err
	}
	prefixes, err := NewFixedText(prefixCap(mnemonicCap))
	if err != nil {
		return nil, err
	}
	mnemonic, err := NewFixedText(mnemonicCap)
	if err != nil {
		return nil, err
	}
	comment, err := NewFixedText(asciiCap)
	if err != nil {
		return nil, err
	}

	i := &Instruction{
		ascii:    ascii,
		prefixes: prefixes,
		mnemonic: mnemonic,
		comment:  comment,
		target:   -1,
		dest:     -1,
		src:      -1,
		fixed:    true,
	}
	i.ops = make([]*Operand, 0, numOperands)
	for k := 0; k < numOperands; k++ {
		op, err := NewFixedOperand(opAsciiCap)
		if err != nil {
			return nil, err
		}
		i.ops = append(i.ops, op)
	}
	return i, nil
}

// Fixed reports whether the instruction is a fixed-size scratch object.
func (i *Instruction) Fixed() bool { return i != nil && i.fixed }

// Size returns the instruction length in bytes.
func (i *Instruction) Size() int {
	if i == nil {
		return 0
	}
	return len(i.Bytes)
}

// SetLocation records the buffer offset and virtual address.
func (i *Instruction) SetLocation(offset, vma uint64) {
	if i == nil {
		return
	}
	i.Offset = offset
	i.VMA = vma
}

// SetBytes stores an owned copy of the raw instruction bytes, reusing the
// existing backing array where possible.
func (i *Instruction) SetBytes(b []byte) {
	if i == nil {
		return
	}
	i.Bytes = append(i.Bytes[:0], b...)
}

// Ascii returns the full textual rendering of the instruction.
func (i *Instruction) Ascii() string {
	if i == nil {
		return ""
	}
	return i.ascii.String()
}

// SetAscii sets the textual rendering, truncating on a fixed-size
// instruction. No-op on a nil instruction.
func (i *Instruction) SetAscii(s string) {
	if i == nil {
		return
	}
	i.ascii.Set(s)
}

// Mnemonic returns the opcode mnemonic.
func (i *Instruction) Mnemonic() string {
	if i == nil {
		return ""
	}
	return i.mnemonic.String()
}

// SetMnemonic sets the opcode mnemonic, truncating on a fixed-size
// instruction. No-op on a nil instruction.
func (i *Instruction) SetMnemonic(s string) {
	if i == nil {
		return
	}
	i.mnemonic.Set(s)
}

// Prefixes returns the space-delimited prefix string.
func (i *Instruction) Prefixes() string {
	if i == nil {
		return ""
	}
	return i.prefixes.String()
}

// NumPrefixes returns the number of prefixes added.
func (i *Instruction) NumPrefixes() int {
	if i == nil {
		return 0
	}
	return i.numPrefixes
}

// AddPrefix appends a prefix token, space-separated from any previous one.
// A fixed-size instruction truncates to the prefix buffer's remaining
// capacity. No-op on a nil instruction or empty prefix.
func (i *Instruction) AddPrefix(prefix string) {
	if i == nil || prefix == "" {
		return
	}
	i.prefixes.Append(" ", prefix)
	i.numPrefixes++
}

// Comment returns the accumulated comment string.
func (i *Instruction) Comment() string {
	if i == nil {
		return ""
	}
	return i.comment.String()
}

// AddComment appends a comment, ';'-separated from any previous one, with
// the same growth policy as AddPrefix.
func (i *Instruction) AddComment(text string) {
	if i == nil || text == "" {
		return
	}
	i.comment.Append(";", text)
}

// NumOperands returns the number of populated operand slots.
func (i *Instruction) NumOperands() int {
	if i == nil {
		return 0
	}
	return i.used
}

// AllocOperands returns the number of allocated operand slots.
func (i *Instruction) AllocOperands() int {
	if i == nil {
		return 0
	}
	return len(i.ops)
}

// Operands returns the populated operands in order. The returned slice
// aliases the instruction's list; callers must not retain it across a
// Clear of a fixed-size instruction.
func (i *Instruction) Operands() []*Operand {
	if i == nil {
		return nil
	}
	return i.ops[:i.used]
}

// OperandAt returns the populated operand at index idx, or nil.
func (i *Instruction) OperandAt(idx int) *Operand {
	if i == nil || idx < 0 || idx >= i.used {
		return nil
	}
	return i.ops[idx]
}

// AddOperand appends op to the operand list, transferring ownership without
// duplicating. While a free slot exists the operand is written in place;
// otherwise the slot count grows by one. Reports success; fails only on a
// nil instruction or operand.
func (i *Instruction) AddOperand(op *Operand) bool {
	if i == nil || op == nil {
		return false
	}
	if i.used < len(i.ops) {
		i.ops[i.used] = op
		i.used++
		return true
	}
	i.ops = append(i.ops, op)
	i.used++
	return true
}

// NextAvailableOperand returns the pre-allocated operand in the next unused
// slot, or nil when no allocated, populated slot remains. This is the
// fixed-size reuse path: the decoder fills the returned operand in place
// and then passes it to AddOperand, which claims the same slot.
func (i *Instruction) NextAvailableOperand() *Operand {
	if i == nil || i.used >= len(i.ops) {
		return nil
	}
	return i.ops[i.used]
}

// TargetIndex returns the operand-list index of the branch target, or -1.
func (i *Instruction) TargetIndex() int {
	if i == nil {
		return -1
	}
	return i.accessor(i.target)
}

// DestIndex returns the operand-list index of the destination, or -1.
func (i *Instruction) DestIndex() int {
	if i == nil {
		return -1
	}
	return i.accessor(i.dest)
}

// SrcIndex returns the operand-list index of the source, or -1.
func (i *Instruction) SrcIndex() int {
	if i == nil {
		return -1
	}
	return i.accessor(i.src)
}

func (i *Instruction) accessor(idx int) int {
	if idx < 0 || idx >= i.used {
		return -1
	}
	return idx
}

// Target returns the branch target operand, or nil when unset.
func (i *Instruction) Target() *Operand { return i.OperandAt(i.TargetIndex()) }

// Dest returns the destination operand, or nil when unset.
func (i *Instruction) Dest() *Operand { return i.OperandAt(i.DestIndex()) }

// Src returns the source operand, or nil when unset.
func (i *Instruction) Src() *Operand { return i.OperandAt(i.SrcIndex()) }

// SetTarget marks the operand at idx as the branch target. Ignored unless
// idx refers to a populated slot.
func (i *Instruction) SetTarget(idx int) {
	if i.validIndex(idx) {
		i.target = idx
	}
}

// SetDest marks the operand at idx as the destination operand.
func (i *Instruction) SetDest(idx int) {
	if i.validIndex(idx) {
		i.dest = idx
	}
}

// SetSrc marks the operand at idx as the source operand.
func (i *Instruction) SetSrc(idx int) {
	if i.validIndex(idx) {
		i.src = idx
	}
}

func (i *Instruction) validIndex(idx int) bool {
	return i != nil && idx >= 0 && idx < i.used
}

// Clear resets the instruction for reuse: status invalid, ascii, prefixes,
// mnemonic and comment truncated to empty with buffers preserved, prefix
// and operand counts zeroed, accessors unset. The allocated operand slots
// and their contents are untouched; the next decode pass overwrites them.
// No-op on a nil instruction.
func (i *Instruction) Clear() {
	if i == nil {
		return
	}
	i.Status = DecodeInvalid
	i.ascii.Reset()
	i.prefixes.Reset()
	i.mnemonic.Reset()
	i.comment.Reset()
	i.numPrefixes = 0
	i.used = 0
	i.target, i.dest, i.src = -1, -1, -1
}

// Dup returns a fully independent dynamic copy of the instruction, sized to
// exactly the source's populated operand count and with every string and
// operand independently owned. This is the sanctioned way to keep a result
// that outlives a reused fixed-size buffer.
//
// The target/dest/src accessors are not carried over: the retained decoder
// contract is that role assignment belongs to the decode pass that produced
// the instruction, so the copy starts with all three unset.
func (i *Instruction) Dup() *Instruction {
	if i == nil {
		return nil
	}
	d := NewInstruction(i.used)
	d.Status = i.Status
	d.Offset = i.Offset
	d.VMA = i.VMA
	d.Bytes = append([]byte(nil), i.Bytes...)
	d.Category = i.Category
	d.ISA = i.ISA
	d.Flags = i.Flags

	d.ascii.Set(i.Ascii())
	d.mnemonic.Set(i.Mnemonic())
	if p := i.Prefixes(); p != "" {
		d.prefixes.Set(p)
		d.numPrefixes = i.numPrefixes
	}
	if c := i.Comment(); c != "" {
		d.comment.Set(c)
	}

	for k := 0; k < i.used && k < len(d.ops); k++ {
		d.ops[k] = i.ops[k].Dup()
		d.used++
	}
	return d
}

// IsBranch reports whether the instruction is a call or jump, conditional
// or not; such instructions carry a branch target operand. The caller is
// responsible for having checked that Status includes DecodeInsnFlags and
// DecodeOperands; the predicate only reads the decoded category and flags.
func (i *Instruction) IsBranch() bool {
	if i == nil || i.Category != InsnCatCFlow {
		return false
	}
	cf, ok := i.Flags.(CFlowFlag)
	if !ok {
		return false
	}
	return cf&(CFlowCall|CFlowCallCC|CFlowJmp|CFlowJmpCC) != 0
}

// FallsThrough reports whether execution can continue at the next
// instruction in memory. Only unconditional jumps and returns do not fall
// through; every other instruction, including one whose flags were never
// decoded, defaults to "continues".
func (i *Instruction) FallsThrough() bool {
	if i == nil || i.Category != InsnCatCFlow {
		return true
	}
	cf, ok := i.Flags.(CFlowFlag)
	if !ok {
		return true
	}
	return cf&(CFlowJmp|CFlowRet) == 0
}

// RenderISA appends the name of the instruction's ISA subset to buf.
func (i *Instruction) RenderISA(buf MutableText) {
	if i == nil {
		return
	}
	buf.Append("", i.ISA.String())
}

// RenderCategory appends the instruction's category name to buf. Category
// names may contain '/' ("load/store", "i/o"), so '/' must not be used as a
// joining delimiter around them.
func (i *Instruction) RenderCategory(buf MutableText) {
	if i == nil {
		return
	}
	buf.Append("", i.Category.String())
}

// RenderFlags appends the instruction's flag string to buf, delim-joined.
// Undecoded or empty flags append nothing.
func (i *Instruction) RenderFlags(buf MutableText, delim string) {
	if i == nil || i.Flags == nil {
		return
	}
	buf.Append("", i.Flags.Format(delim))
}
