package keys

// Builder concatenates key components.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder { return &Builder{} }

// Uint64 appends an unsigned 64-bit component.
func (b *Builder) Uint64(v uint64) *Builder {
	b.buf = AppendUint64(b.buf, v)
	return b
}

// Uint32 appends an unsigned 32-bit component.
func (b *Builder) Uint32(v uint32) *Builder {
	b.buf = AppendUint32(b.buf, v)
	return b
}

// Int64 appends a signed 64-bit component.
func (b *Builder) Int64(v int64) *Builder {
	b.buf = AppendInt64(b.buf, v)
	return b
}

// Int32 appends a signed 32-bit component.
func (b *Builder) Int32(v int32) *Builder {
	b.buf = AppendInt32(b.buf, v)
	return b
}

// String appends a string component.
func (b *Builder) String(s string) *Builder {
	b.buf = AppendString(b.buf, s)
	return b
}

// Len returns the encoded length so far.
func (b *Builder) Len() int { return len(b.buf) }

// Key returns a copy of the encoded key. The Builder stays usable.
func (b *Builder) Key() []byte { return append([]byte(nil), b.buf...) }

// Reset clears the Builder, keeping its buffer.
func (b *Builder) Reset() { b.buf = b.buf[:0] }
