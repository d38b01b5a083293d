package abi

// Type describes the binary shape of a value as supplied by the host
// language's type resolution. A Type is immutable once constructed and
// safe to share; the layout calculator caches results by descriptor
// identity.
type Type struct {
	Kind Kind
	Name string

	// Elem is the pointee descriptor for Ptr kinds. It never affects the
	// pointer's own layout.
	Elem *Type

	// Fields are the declared fields of an Aggregate, in declaration order.
	Fields []Field

	// AlignOverride replaces the natural alignment of an Aggregate when
	// nonzero. It is honored verbatim (including values below the natural
	// alignment, matching packed layouts) but must be a power of two.
	AlignOverride uint32

	// Const marks the descriptor as a const-qualified view. It never
	// affects size or alignment, only assignability.
	Const bool
}

// Field is a named member of an aggregate type.
type Field struct {
	Name string
	Type *Type
}

// Primitive descriptor singletons. These are the canonical descriptors for
// scalar kinds; aggregate and pointer descriptors are built per type.
var (
	Void   = &Type{Kind: KindVoid, Name: "void"}
	S8     = &Type{Kind: KindS8, Name: "s8"}
	S16    = &Type{Kind: KindS16, Name: "s16"}
	S32    = &Type{Kind: KindS32, Name: "s32"}
	S64    = &Type{Kind: KindS64, Name: "s64"}
	U8     = &Type{Kind: KindU8, Name: "u8"}
	U16    = &Type{Kind: KindU16, Name: "u16"}
	U32    = &Type{Kind: KindU32, Name: "u32"}
	U64    = &Type{Kind: KindU64, Name: "u64"}
	F32    = &Type{Kind: KindF32, Name: "f32"}
	F64    = &Type{Kind: KindF64, Name: "f64"}
	NInt   = &Type{Kind: KindNInt, Name: "nint"}
	NUInt  = &Type{Kind: KindNUInt, Name: "nuint"}
	NFloat = &Type{Kind: KindNFloat, Name: "nfloat"}
)

// PointerTo returns a pointer descriptor with the given element type.
func PointerTo(elem *Type) *Type {
	name := "ptr"
	if elem != nil {
		name = "ptr<" + elem.Name + ">"
	}
	return &Type{Kind: KindPtr, Name: name, Elem: elem}
}

// FuncPtrTo returns a function pointer descriptor. The pointed-to
// signature lives in the dispatch layer; for layout purposes a function
// pointer is a single address slot.
func FuncPtrTo(name string) *Type {
	if name == "" {
		name = "funcptr"
	}
	return &Type{Kind: KindFuncPtr, Name: name}
}

// Struct returns an aggregate descriptor with natural alignment.
func Struct(name string, fields ...Field) *Type {
	return &Type{Kind: KindAggregate, Name: name, Fields: fields}
}

// PackedStruct returns an aggregate descriptor whose alignment is forced
// to align, overriding the natural (max-field) alignment. The override is
// honored verbatim; it may be below the natural alignment.
func PackedStruct(name string, align uint32, fields ...Field) *Type {
	return &Type{Kind: KindAggregate, Name: name, Fields: fields, AlignOverride: align}
}

// ReferenceTo returns a descriptor for a non-value (handle) type. A
// reference is always laid out as one native-width slot regardless of the
// referenced type's own layout, so argument buffers can treat handles
// uniformly as addresses.
func ReferenceTo(name string) *Type {
	if name == "" {
		name = "reference"
	}
	return &Type{Kind: KindReference, Name: name}
}

// Const returns a const-qualified view of t. Layout is unchanged; only
// assignability is constrained.
func Const(t *Type) *Type {
	if t == nil || t.Const {
		return t
	}
	c := *t
	c.Const = true
	return &c
}

// Unqualified strips the const qualifier for layout and identity checks.
func (t *Type) Unqualified() *Type {
	if t == nil || !t.Const {
		return t
	}
	u := *t
	u.Const = false
	return &u
}

// CanAssign reports whether a value of type src may flow into a slot of
// type dst. Kinds must match; a non-const value may always flow into a
// const-qualified slot, while the converse requires the explicit
// allowConstCast override.
func CanAssign(src, dst *Type, allowConstCast bool) bool {
	if src == nil || dst == nil {
		return false
	}
	if src.Kind != dst.Kind {
		return false
	}
	if src.Const && !dst.Const && !allowConstCast {
		return false
	}
	return true
}
