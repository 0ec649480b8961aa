// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lockmap

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ava-labs/musicvm/state"
)

func TestLockUnlock(t *testing.T) {
	require := require.New(t)
	l := New(4)

	l.Lock("a")
	l.RLock("b")
	l.RLock("b")
	require.Equal(2, l.Locks())

	l.Unlock("a")
	require.Equal(1, l.Locks())
	l.RUnlock("b")
	require.Equal(1, l.Locks())
	l.RUnlock("b")
	require.Zero(l.Locks())

	// A released key can be locked again.
	l.Lock("a")
	l.Unlock("a")
	require.Zero(l.Locks())
}

func TestWriteExcludes(t *testing.T) {
	require := require.New(t)
	l := New(1)

	l.Lock("a")
	acquired := make(chan struct{})
	go func() {
		l.Lock("a")
		close(acquired)
		l.Unlock("a")
	}()
	select {
	case <-acquired:
		require.FailNow("second writer acquired a held lock")
	case <-time.After(50 * time.Millisecond):
	}
	l.Unlock("a")
	<-acquired
	require.Eventually(func() bool { return l.Locks() == 0 }, time.Second, 10*time.Millisecond)
}

func TestLockKeys(t *testing.T) {
	require := require.New(t)
	l := New(4)

	// Overlapping key sets taken in any order must not deadlock.
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			keys := state.Keys{"x": state.All, "y": state.Read, "z": state.All}
			if i%2 == 0 {
				keys = state.Keys{"z": state.All, "x": state.All}
			}
			unlock := l.LockKeys(keys)
			counter++
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(64, counter)
	require.Zero(l.Locks())
}
