package olc

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLock_Init(t *testing.T) {
	for typ := uint8(0); typ < 4; typ++ {
		var l Lock
		l.Init(typ)
		assert.Equal(t, typ, l.Type())
		assert.False(t, l.Locked())
		assert.False(t, l.Obsolete())
		assert.Equal(t, uint64(1), Counter(l.Version()))
	}
}

func TestLock_ReadValidate(t *testing.T) {
	var l Lock
	l.Init(2)

	v, restart := l.ReadLockOrRestart()
	require.False(t, restart)
	assert.False(t, l.CheckOrRestart(v))
	assert.False(t, l.ReadUnlockOrRestart(v))

	require.False(t, l.WriteLockOrRestart())
	_, restart = l.ReadLockOrRestart()
	assert.True(t, restart, "locked word must force a restart")
	assert.True(t, l.CheckOrRestart(v))

	l.WriteUnlock()
	assert.True(t, l.CheckOrRestart(v), "completed write must invalidate old versions")

	v2, restart := l.ReadLockOrRestart()
	require.False(t, restart)
	assert.Equal(t, Counter(v)+1, Counter(v2))
	assert.Equal(t, uint8(2), l.Type())
}

func TestLock_UpgradeFailsAfterWrite(t *testing.T) {
	var l Lock
	l.Init(0)

	v, _ := l.ReadLockOrRestart()
	require.False(t, l.WriteLockOrRestart())
	l.WriteUnlock()

	assert.True(t, l.UpgradeToWriteLockOrRestart(v))
	assert.False(t, l.Locked())
}

func TestLock_Obsolete(t *testing.T) {
	var l Lock
	l.Init(3)

	v, _ := l.ReadLockOrRestart()
	require.False(t, l.UpgradeToWriteLockOrRestart(v))
	l.WriteUnlockObsolete()

	assert.True(t, l.Obsolete())
	assert.False(t, l.Locked())
	assert.Equal(t, uint8(3), l.Type())

	_, restart := l.ReadLockOrRestart()
	assert.True(t, restart)
	assert.True(t, l.WriteLockOrRestart())
}

func TestLock_MutualExclusion(t *testing.T) {
	var l Lock
	l.Init(1)

	const workers = 8
	const iterations = 2000

	counter := 0
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				restarts := 0
				for l.WriteLockOrRestart() {
					restarts++
					Backoff(restarts)
				}
				counter++
				l.WriteUnlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, workers*iterations, counter)
	assert.Equal(t, uint64(1+workers*iterations), Counter(l.Version()))
}
