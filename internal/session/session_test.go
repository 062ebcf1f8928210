package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	require.Equal(t, StepNone, m.Step(1))
	require.Equal(t, State{}, m.Get(1))

	m.Set(1, State{Step: StepTaskTitle})
	require.Equal(t, StepTaskTitle, m.Step(1))

	m.Update(1, func(s *State) {
		s.Step = StepTaskPoints
		s.Title = "Ride"
	})
	state := m.Get(1)
	require.Equal(t, StepTaskPoints, state.Step)
	require.Equal(t, "Ride", state.Title)

	// Users do not share state.
	require.Equal(t, StepNone, m.Step(2))

	m.Clear(1)
	require.Equal(t, State{}, m.Get(1))
	m.Clear(1)
}

func TestManagerGetReturnsCopy(t *testing.T) {
	m := NewManager()
	m.Set(1, State{Step: StepChallengeText, SelectedTaskIDs: []int64{1, 2}})

	state := m.Get(1)
	state.Step = StepNone

	require.Equal(t, StepChallengeText, m.Step(1))
}

func TestManagerConcurrentUpdates(t *testing.T) {
	m := NewManager()
	m.Set(1, State{Step: StepChallengeText})

	var wg sync.WaitGroup
	for i := int64(0); i < 50; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			m.Update(1, func(s *State) {
				s.SelectedTaskIDs = append(s.SelectedTaskIDs, id)
			})
		}(i)
	}
	wg.Wait()

	require.Len(t, m.Get(1).SelectedTaskIDs, 50)
}
