package keylock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapSerializesSameKey(t *testing.T) {
	var m Map[uint]
	var wg sync.WaitGroup
	counter := 0

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := m.Lock(7)
			defer unlock()
			v := counter
			v++
			counter = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, m.Len())
}

func TestMapIndependentKeys(t *testing.T) {
	var m Map[string]
	unlockA := m.Lock("a")
	done := make(chan struct{})
	go func() {
		unlock := m.Lock("b")
		unlock()
		close(done)
	}()
	<-done
	assert.Equal(t, 1, m.Len())
	unlockA()
	unlockA()
	assert.Equal(t, 0, m.Len())
}
