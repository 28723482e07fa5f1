package art

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leafNode(key ...byte) *node {
	return newLeaf(key, 0).self()
}

func keysOf(refs []childRef) []byte {
	out := make([]byte, 0, len(refs))
	for _, r := range refs {
		out = append(out, r.key)
	}
	return out
}

func TestZeroBytes(t *testing.T) {
	for b := 0; b < 256; b++ {
		x := uint64(b) << 24
		m := zeroBytes(x)
		for i := 0; i < 8; i++ {
			set := m&(0x80<<(8*i)) != 0
			want := i != 3 || b == 0
			assert.Equal(t, want, set, "byte %d value %#x", i, b)
		}
	}
}

func TestNode4_SortedInsertAndRemove(t *testing.T) {
	a := newAllocator()
	in := a.newInner(KindN4, nil, 0)

	children := map[byte]*node{}
	for _, k := range []byte{9, 3, 200, 0} {
		c := leafNode(k)
		children[k] = c
		in.insertChild(k, c)
	}
	assert.True(t, in.isFull())
	assert.Equal(t, []byte{0, 3, 9, 200}, keysOf(in.appendChildren(0, 255, nil)))
	for k, c := range children {
		assert.Same(t, c, in.findChild(k))
	}
	assert.Nil(t, in.findChild(4))
	assert.Equal(t, []byte{3, 9}, keysOf(in.appendChildren(1, 199, nil)))

	repl := leafNode(3)
	in.changeChild(3, repl)
	assert.Same(t, repl, in.findChild(3))

	in.removeChild(3)
	assert.Equal(t, uint32(3), in.count.Load())
	assert.Nil(t, in.findChild(3))
	assert.Equal(t, []byte{0, 9, 200}, keysOf(in.appendChildren(0, 255, nil)))
	assert.False(t, in.isUnderfull())

	second, key := in.secondChild(0)
	assert.Same(t, children[9], second)
	assert.Equal(t, byte(9), key)
}

func TestNode16_Search(t *testing.T) {
	a := newAllocator()
	in := a.newInner(KindN16, nil, 0)

	// Zero keys beyond count must not match a search for 0.
	in.insertChild(5, leafNode(5))
	in.insertChild(7, leafNode(7))
	assert.Nil(t, in.findChild(0))

	for _, k := range []byte{255, 0, 128, 127, 1, 64, 10, 11, 12, 13, 14, 15, 16, 17} {
		in.insertChild(k, leafNode(k))
	}
	require.True(t, in.isFull())

	got := keysOf(in.appendChildren(0, 255, nil))
	assert.Equal(t, []byte{0, 1, 5, 7, 10, 11, 12, 13, 14, 15, 16, 17, 64, 127, 128, 255}, got)
	for _, k := range got {
		c := in.findChild(k)
		require.NotNil(t, c, "key %d", k)
		assert.Equal(t, []byte{k}, c.leaf().key)
	}
	assert.Nil(t, in.findChild(2))
	assert.Nil(t, in.findChild(254))

	in.removeChild(0)
	in.removeChild(255)
	assert.Nil(t, in.findChild(0))
	assert.Nil(t, in.findChild(255))
	assert.Equal(t, uint32(14), in.count.Load())
}

func TestNode48_HolesAreReused(t *testing.T) {
	a := newAllocator()
	in := a.newInner(KindN48, nil, 0)
	n := in.n48()

	for k := 0; k < 48; k++ {
		in.insertChild(byte(k*5), leafNode(byte(k*5)))
	}
	require.True(t, in.isFull())

	in.removeChild(50)
	in.removeChild(100)
	assert.Equal(t, emptyMarker, n.slot(50))
	assert.Nil(t, in.findChild(50))

	in.insertChild(51, leafNode(51))
	in.insertChild(101, leafNode(101))
	assert.True(t, in.isFull())
	assert.Equal(t, []byte{51}, in.findChild(51).leaf().key)
	assert.Equal(t, []byte{101}, in.findChild(101).leaf().key)

	kids := in.appendChildren(0, 255, nil)
	assert.Len(t, kids, 48)
	for i := 1; i < len(kids); i++ {
		assert.Less(t, kids[i-1].key, kids[i].key)
	}
}

func TestNode256_Underfull(t *testing.T) {
	a := newAllocator()
	in := a.newInner(KindN256, nil, 0)
	for k := 0; k < 38; k++ {
		in.insertChild(byte(k), leafNode(byte(k)))
	}
	assert.False(t, in.isFull())
	assert.False(t, in.isUnderfull())
	in.removeChild(0)
	assert.True(t, in.isUnderfull())
}

func TestAppendChildren_BoundsAndReuse(t *testing.T) {
	a := newAllocator()
	for _, k := range []Kind{KindN4, KindN16, KindN48, KindN256} {
		t.Run(k.String(), func(t *testing.T) {
			in := a.newInner(k, nil, 0)
			for _, b := range []byte{200, 2, 51, 50} {
				in.insertChild(b, leafNode(b))
			}

			head := []childRef{{key: 1}}
			got := in.appendChildren(50, 200, head)
			assert.Equal(t, []byte{1, 50, 51, 200}, keysOf(got))
			assert.Equal(t, []byte{2}, keysOf(in.appendChildren(0, 49, nil)))
			assert.Empty(t, in.appendChildren(201, 255, nil))

			a.release(in)
			again := a.newInner(k, nil, 0)
			assert.Empty(t, again.appendChildren(0, 255, nil))
			assert.Nil(t, again.findChild(50))
		})
	}
}

func TestCopyToAcrossVariants(t *testing.T) {
	a := newAllocator()
	kinds := []Kind{KindN4, KindN16, KindN48, KindN256}

	src := a.newInner(KindN4, []byte("ab"), 2)
	for _, k := range []byte{40, 30, 20, 10} {
		src.insertChild(k, leafNode(k))
	}
	for _, k := range kinds[1:] {
		p, pl := src.loadPrefix()
		dst := a.newInner(k, p[:pl], pl)
		src.copyTo(dst)
		assert.Equal(t, keysOf(src.appendChildren(0, 255, nil)), keysOf(dst.appendChildren(0, 255, nil)), "%s", k)
		dp, dl := dst.loadPrefix()
		assert.Equal(t, "ab", string(dp[:dl]))
		src = dst
	}
}

func TestPrefix_StoreAndAddBefore(t *testing.T) {
	a := newAllocator()
	parent := a.newInner(KindN4, []byte("abc"), 3)
	child := a.newInner(KindN4, []byte("xyz"), 3)

	child.addPrefixBefore(parent, 'k')
	p, pl := child.loadPrefix()
	assert.Equal(t, 7, pl)
	assert.Equal(t, "abckxyz", string(p[:pl]))

	long := a.newInner(KindN4, []byte("0123456789AB"), 20)
	p, pl = long.loadPrefix()
	assert.Equal(t, 20, pl)
	assert.Equal(t, "0123456789A", string(p[:maxPrefixLen]))

	child.addPrefixBefore(long, 'q')
	p, pl = child.loadPrefix()
	assert.Equal(t, 20+1+7, pl)
	assert.Equal(t, "0123456789A", string(p[:maxPrefixLen]))
}

func TestCheckPrefix(t *testing.T) {
	a := newAllocator()
	in := a.newInner(KindN4, []byte("bcd"), 3)

	level := 1
	assert.Equal(t, prefixMatch, in.checkPrefix([]byte("abcde"), &level))
	assert.Equal(t, 4, level)

	level = 1
	assert.Equal(t, prefixNoMatch, in.checkPrefix([]byte("abxde"), &level))

	level = 1
	assert.Equal(t, prefixNoMatch, in.checkPrefix([]byte("abcd"), &level), "key ends inside prefix")

	long := a.newInner(KindN4, []byte("bbbbbbbbbbbbbbb"), 15)
	level = 0
	key := []byte("bbbbbbbbbbbZZZZZ!")
	assert.Equal(t, prefixOptimistic, long.checkPrefix(key, &level))
	assert.Equal(t, 15, level)
}

func TestAllocator_ReleaseAndReuse(t *testing.T) {
	a := newAllocator()
	in := a.newInner(KindN48, []byte("p"), 1)
	in.insertChild(1, leafNode(1))
	assert.Equal(t, int64(1), a.live(KindN48))

	in.lock.WriteLockOrRestart()
	in.lock.WriteUnlockObsolete()
	a.release(in)
	assert.Equal(t, int64(0), a.live(KindN48))

	again := a.newInner(KindN48, nil, 0)
	assert.False(t, again.lock.Obsolete())
	assert.Equal(t, KindN48, again.kind())
	assert.Equal(t, uint32(0), again.count.Load())
	assert.Nil(t, again.findChild(1))
	assert.Positive(t, a.liveBytes())
}
