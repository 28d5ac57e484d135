package sync

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShardedMutexLockUnlock(t *testing.T) {
	m := NewShardedMutex()
	m.Lock("alice")
	m.Unlock("alice")

	m.Lock("")
	m.Unlock("")
}

func TestShardedMutexSameKeySerializes(t *testing.T) {
	m := NewShardedMutex()
	counter := 0
	var wg sync.WaitGroup
	for range 100 {
		wg.Go(func() {
			m.Lock("alice")
			counter++
			m.Unlock("alice")
		})
	}
	wg.Wait()
	assert.Equal(t, 100, counter)
}

func TestShardedMutexShardIsStable(t *testing.T) {
	m := NewShardedMutex()
	assert.Equal(t, m.shardFor("pocket-1"), m.shardFor("pocket-1"))
	assert.Equal(t, 0, m.shardFor(""))
	assert.Less(t, m.shardFor("pocket-2"), 32)
}
