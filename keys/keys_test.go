package keys

import (
	"bytes"
	"math"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertOrdered(t *testing.T, encoded [][]byte) {
	t.Helper()
	for i := 1; i < len(encoded); i++ {
		assert.Negative(t, bytes.Compare(encoded[i-1], encoded[i]), "%x !< %x", encoded[i-1], encoded[i])
	}
}

func assertPrefixFree(t *testing.T, encoded [][]byte) {
	t.Helper()
	for i, a := range encoded {
		for j, b := range encoded {
			if i != j && len(a) < len(b) {
				assert.False(t, bytes.HasPrefix(b, a), "%x is a prefix of %x", a, b)
			}
		}
	}
}

func TestInt64_Order(t *testing.T) {
	vals := []int64{math.MinInt64, -1 << 40, -256, -1, 0, 1, 255, 1 << 40, math.MaxInt64}
	var enc [][]byte
	for _, v := range vals {
		k := Int64(v)
		enc = append(enc, k)

		got, rest, err := DecodeInt64(k)
		require.NoError(t, err)
		assert.Equal(t, v, got)
		assert.Empty(t, rest)
	}
	assertOrdered(t, enc)
}

func TestInt32_Order(t *testing.T) {
	vals := []int32{math.MinInt32, -70000, -1, 0, 1, 70000, math.MaxInt32}
	var enc [][]byte
	for _, v := range vals {
		enc = append(enc, Int32(v))
	}
	assertOrdered(t, enc)

	got, _, err := DecodeInt32(Int32(-70000))
	require.NoError(t, err)
	assert.Equal(t, int32(-70000), got)
}

func TestUnsigned(t *testing.T) {
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 1, 0}, Uint64(256))
	assert.Equal(t, []byte{0, 0, 1, 0}, Uint32(256))
	assertOrdered(t, [][]byte{Uint64(0), Uint64(255), Uint64(256), Uint64(math.MaxUint64)})

	v, rest, err := DecodeUint32(append(Uint32(7), 0xAA))
	require.NoError(t, err)
	assert.Equal(t, uint32(7), v)
	assert.Equal(t, []byte{0xAA}, rest)

	_, _, err = DecodeUint64([]byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrShortKey)
}

func TestString_OrderAndPrefixFree(t *testing.T) {
	strs := []string{"", "\x00", "\x00\x00", "\x00a", "a", "a\x00", "a\x00b", "a\x01", "ab", "abc", "b", "\xff"}
	require.True(t, sort.StringsAreSorted(strs))

	var enc [][]byte
	for _, s := range strs {
		k := String(s)
		enc = append(enc, k)

		got, rest, err := DecodeString(k)
		require.NoError(t, err)
		assert.Equal(t, s, got)
		assert.Empty(t, rest)
	}
	assertOrdered(t, enc)
	assertPrefixFree(t, enc)
}

func TestDecodeString_Errors(t *testing.T) {
	_, _, err := DecodeString([]byte("abc"))
	assert.ErrorIs(t, err, ErrShortKey)

	_, _, err = DecodeString([]byte{'a', 0x00})
	assert.ErrorIs(t, err, ErrShortKey)

	_, _, err = DecodeString([]byte{'a', 0x00, 0x07})
	assert.ErrorIs(t, err, ErrBadEscape)
}

func TestBuilder_Composite(t *testing.T) {
	type row struct {
		tenant int64
		name   string
		seq    uint32
	}
	rows := []row{
		{-5, "zeta", 9},
		{-5, "zeta", 10},
		{0, "", 0},
		{0, "a", 3},
		{0, "a\x00", 1},
		{0, "ab", 0},
		{12, "a", 0},
	}

	b := NewBuilder()
	var enc [][]byte
	for _, r := range rows {
		b.Reset()
		enc = append(enc, b.Int64(r.tenant).String(r.name).Uint32(r.seq).Key())
	}
	assertOrdered(t, enc)
	assertPrefixFree(t, enc)

	tenant, rest, err := DecodeInt64(enc[4])
	require.NoError(t, err)
	name, rest, err := DecodeString(rest)
	require.NoError(t, err)
	seq, rest, err := DecodeUint32(rest)
	require.NoError(t, err)
	assert.Equal(t, rows[4], row{tenant, name, seq})
	assert.Empty(t, rest)
}

func TestBuilder_KeyIsCopy(t *testing.T) {
	b := NewBuilder().Uint32(1)
	k := b.Key()
	b.Reset()
	b.Uint32(2)
	assert.Equal(t, Uint32(1), k)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 8, NewBuilder().Int32(1).Int32(2).Len())
	assert.Equal(t, Uint64(3), NewBuilder().Uint64(3).Key())
}

func TestPrefixEnd(t *testing.T) {
	assert.Equal(t, []byte("abd"), PrefixEnd([]byte("abc")))
	assert.Equal(t, []byte{0x01, 0x03}, PrefixEnd([]byte{0x01, 0x02, 0xFF, 0xFF}))
	assert.Nil(t, PrefixEnd([]byte{0xFF, 0xFF}))
	assert.Nil(t, PrefixEnd(nil))

	p := []byte("ab")
	end := PrefixEnd(p)
	assert.Equal(t, []byte("ab"), p)
	for _, k := range [][]byte{[]byte("ab"), []byte("ab\xff\xff"), []byte("abzzz")} {
		assert.Negative(t, bytes.Compare(k, end))
	}
	assert.False(t, slices.Equal(end, p))
}
