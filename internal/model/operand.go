// Package model defines the object model for a disassembled machine
// instruction and its operands.
//
// Objects come in two allocation regimes. Dynamic objects grow their string
// fields on demand and are meant for long-lived storage. Fixed-size objects
// pre-allocate every string buffer once and truncate all later writes,
// making them suitable as scratch buffers reused across decode calls in a
// hot disassembly loop (see Pool). Dup converts either kind into an
// independent dynamic copy.
//
// The model stores what a decoder tells it and nothing more; it does not
// decode bytes and carries no instruction-set semantics beyond the category
// and flag tags defined in this package.
package model

// RegNameSize bounds a register name, including the terminator byte
// reserved for C-style consumers.
const RegNameSize = 16

// Register is a CPU register operand, e.g. EAX. Plain value type.
type Register struct {
	Name  string
	Flags RegisterFlag
	ID    uint8
	Size  uint8 // size of the register in bytes
}

// Category implements Value.
func (Register) Category() OperandCategory { return OpCatRegister }

// SetName sets the register name, truncating to the RegNameSize bound.
func (r *Register) SetName(name string) {
	if len(name) > RegNameSize-1 {
		name = name[:RegNameSize-1]
	}
	r.Name = name
}

// RenderFlags appends the register's flag string to buf, delim-joined.
func (r Register) RenderFlags(buf MutableText, delim string) {
	buf.Append("", r.Flags.Format(delim))
}

// AbsoluteAddress is a segment:offset operand, e.g. CS:0x401000.
type AbsoluteAddress struct {
	Segment Register
	Offset  uint64
}

// Category implements Value.
func (AbsoluteAddress) Category() OperandCategory { return OpCatAbsolute }

// AddressExpr is an effective-address operand. The general x86 form is
//
//	segment:[base + index*scale + displacement]
//
// with every component optional; Elements records which are present. The
// displacement is stored as exactly one of an unsigned 64-bit value, a
// signed 32-bit value, or an AbsoluteAddress, selected by the
// displacement-variant bit in Elements and mutated only through the
// SetDisp* methods.
type AddressExpr struct {
	Elements AddrExprElem
	Shift    AddrExprShift
	Scale    int8
	Index    Register
	Base     Register

	dispU   uint64
	dispS   int32
	dispAbs AbsoluteAddress
}

// Category implements Value.
func (AddressExpr) Category() OperandCategory { return OpCatExpr }

const exprDispMask = ExprDisp | ExprDispUnsigned | ExprDispSigned | ExprDispAbsolute

// SetDispUnsigned stores an unsigned displacement, replacing any other
// displacement variant.
func (x *AddressExpr) SetDispUnsigned(v uint64) {
	x.dispU = v
	x.Elements = x.Elements&^exprDispMask | ExprDisp | ExprDispUnsigned
}

// SetDispSigned stores a signed displacement, replacing any other variant.
func (x *AddressExpr) SetDispSigned(v int32) {
	x.dispS = v
	x.Elements = x.Elements&^exprDispMask | ExprDisp | ExprDispSigned
}

// SetDispAbsolute stores an absolute-address displacement, replacing any
// other variant.
func (x *AddressExpr) SetDispAbsolute(a AbsoluteAddress) {
	x.dispAbs = a
	x.Elements = x.Elements&^exprDispMask | ExprDisp | ExprDispAbsolute
}

// DispUnsigned returns the unsigned displacement, if that variant is live.
func (x AddressExpr) DispUnsigned() (uint64, bool) {
	return x.dispU, x.Elements.Has(ExprDispUnsigned)
}

// DispSigned returns the signed displacement, if that variant is live.
func (x AddressExpr) DispSigned() (int32, bool) {
	return x.dispS, x.Elements.Has(ExprDispSigned)
}

// DispAbsolute returns the absolute displacement, if that variant is live.
func (x AddressExpr) DispAbsolute() (AbsoluteAddress, bool) {
	return x.dispAbs, x.Elements.Has(ExprDispAbsolute)
}

// RenderShift appends the shift operation's name to buf.
func (x AddressExpr) RenderShift(buf MutableText) {
	buf.Append("", x.Shift.String())
}

// Has reports whether every bit in bits is set.
func (e AddrExprElem) Has(bits AddrExprElem) bool { return e&bits == bits }

// Immediate is a constant operand. Which field is meaningful is decided by
// the owning operand's flags: OpFlagAddress selects VMA, OpFlagSigned
// selects S, otherwise U.
type Immediate struct {
	VMA uint64
	U   uint64
	S   int64
}

// Category implements Value.
func (Immediate) Category() OperandCategory { return OpCatImmediate }

// Value is the payload of an Operand. Exactly one concrete type is live at
// a time and the dynamic type doubles as the category tag, so a consumer
// can never read the wrong arm. All implementations are plain value types;
// assigning a Value copies it.
type Value interface {
	Category() OperandCategory
}

// Operand is a single argument to an instruction. It exclusively owns its
// display string; the instruction's operand list owns the Operand.
type Operand struct {
	ascii    MutableText
	Flags    OperandFlag
	Value    Value // nil until the decoder assigns one
	DataSize uint8 // size of the operand datatype in bytes
	fixed    bool
}

// NewOperand returns a zero-valued dynamic operand with no display string
// and an unknown category.
func NewOperand() *Operand {
	return &Operand{ascii: NewDynamicText()}
}

// NewFixedOperand returns an operand whose display string is pre-allocated
// to asciiCap bytes and never grown.
func NewFixedOperand(asciiCap int) (*Operand, error) {
	t, err := NewFixedText(asciiCap)
	if err != nil {
		return nil, err
	}
	return &Operand{ascii: t, fixed: true}, nil
}

// Fixed reports whether the operand is a fixed-size scratch object.
func (o *Operand) Fixed() bool { return o != nil && o.fixed }

// AsciiCap returns the fixed display-string capacity, or 0 when dynamic.
func (o *Operand) AsciiCap() int {
	if o == nil {
		return 0
	}
	return o.ascii.Cap()
}

// Ascii returns the display string.
func (o *Operand) Ascii() string {
	if o == nil {
		return ""
	}
	return o.ascii.String()
}

// SetAscii sets the display string, truncating on a fixed-size operand and
// replacing the owned string on a dynamic one. No-op on a nil operand.
func (o *Operand) SetAscii(s string) {
	if o == nil {
		return
	}
	o.ascii.Set(s)
}

// Category returns the tag of the live Value arm, or OpCatUnknown when no
// value has been assigned.
func (o *Operand) Category() OperandCategory {
	if o == nil || o.Value == nil {
		return OpCatUnknown
	}
	return o.Value.Category()
}

// Clear resets the operand to its zero decode state, preserving a fixed
// operand's allocated capacity for reuse. No-op on a nil operand.
func (o *Operand) Clear() {
	if o == nil {
		return
	}
	o.ascii.Reset()
	o.Flags = 0
	o.Value = nil
	o.DataSize = 0
}

// Dup returns a fully independent dynamic copy of the operand. The copy is
// always dynamic regardless of the source's regime; fixed-size metadata is
// not carried over. Returns nil for a nil source.
func (o *Operand) Dup() *Operand {
	if o == nil {
		return nil
	}
	d := NewOperand()
	d.Flags = o.Flags
	d.Value = o.Value
	d.DataSize = o.DataSize
	d.ascii.Set(o.ascii.String())
	return d
}

// RenderCategory appends the operand's category name to buf.
func (o *Operand) RenderCategory(buf MutableText) {
	buf.Append("", o.Category().String())
}

// RenderFlags appends the operand's flag string to buf, delim-joined.
// An empty flag set appends nothing.
func (o *Operand) RenderFlags(buf MutableText, delim string) {
	if o == nil {
		return
	}
	buf.Append("", o.Flags.Format(delim))
}
