//go:build !integration

package application

import (
	"context"
	"sync"
	"testing"
)

func TestKeyedLockReleasesEntries(t *testing.T) {
	k := newKeyedLock()
	var wg sync.WaitGroup
	counter := map[int64]int{}
	var mu sync.Mutex
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := int64(i % 3)
			unlock, _ := k.Lock(context.Background(), key)
			mu.Lock()
			counter[key]++
			mu.Unlock()
			unlock()
		}(i)
	}
	wg.Wait()
	if k.size() != 0 {
		t.Errorf("expected all entries released, %d left", k.size())
	}
	if counter[0]+counter[1]+counter[2] != 50 {
		t.Errorf("unexpected counts %v", counter)
	}
}
