package infra

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicState_SetEnabledReturnsPrevious(t *testing.T) {
	s := NewAtomicState(true)

	assert.True(t, s.IsEnabled())
	assert.True(t, s.SetEnabled(false))
	assert.False(t, s.IsEnabled())
	assert.False(t, s.SetEnabled(false))
	assert.False(t, s.SetEnabled(true))
	assert.True(t, s.IsEnabled())
}

func TestAtomicState_OnChange(t *testing.T) {
	var seen []bool
	s := NewAtomicState(false, WithOnChange(func(v bool) { seen = append(seen, v) }))

	s.SetEnabled(true)
	s.SetEnabled(false)

	assert.Equal(t, []bool{false, true, false}, seen)
}

// Com N escritores trocando a flag, a soma de "previous" observados tem que
// fechar com o valor final: cada Swap é linearizável.
func TestAtomicState_ConcurrentSwapsAreLinearizable(t *testing.T) {
	s := NewAtomicState(false)

	const writers = 16
	const perWriter = 500

	var flipsToTrue, flipsToFalse atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWriter; i++ {
				v := (w+i)%2 == 0
				prev := s.SetEnabled(v)
				switch {
				case !prev && v:
					flipsToTrue.Add(1)
				case prev && !v:
					flipsToFalse.Add(1)
				}
				_ = s.IsEnabled()
			}
		}(w)
	}
	wg.Wait()

	diff := flipsToTrue.Load() - flipsToFalse.Load()
	if s.IsEnabled() {
		assert.Equal(t, int64(1), diff)
	} else {
		assert.Equal(t, int64(0), diff)
	}
}

func TestAtomicState_OnChangeEndsOnFinalValue(t *testing.T) {
	var last atomic.Bool
	s := NewAtomicState(false, WithOnChange(func(v bool) { last.Store(v) }))

	var wg sync.WaitGroup
	for w := 0; w < 16; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				s.SetEnabled((w+i)%2 == 0)
			}
		}(w)
	}
	wg.Wait()

	assert.Equal(t, s.IsEnabled(), last.Load())
}
