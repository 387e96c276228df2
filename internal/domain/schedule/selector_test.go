package schedule_test

import (
	"context"
	"errors"
	"testing"

	"github.com/opencanoetiming/c123-scoring/internal/domain/schedule"
	"github.com/opencanoetiming/c123-scoring/internal/repository"
	"github.com/opencanoetiming/c123-scoring/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestSelector_AutoSelectsRunning(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	s := schedule.NewSelector(schedule.SelectorConfig{Store: store})
	s.Load(ctx)

	race, ok := s.Resolve(ctx, schedule.Project(sampleSchedule()))
	require.True(t, ok)
	require.Equal(t, "K1W_ST_BR1_8", race.RaceID)

	stored, err := store.Get(ctx, "c123-scoring-selected-race")
	require.NoError(t, err)
	require.Equal(t, "K1W_ST_BR1_8", stored)
}

func TestSelector_ExplicitSelectionWins(t *testing.T) {
	ctx := context.Background()
	s := schedule.NewSelector(schedule.SelectorConfig{Store: repository.NewMemoryStore()})
	s.Select(ctx, "K1M_ST_BR2_6")

	race, ok := s.Resolve(ctx, schedule.Project(sampleSchedule()))
	require.True(t, ok)
	require.Equal(t, "K1M_ST_BR2_6", race.RaceID)
}

func TestSelector_NoRunningRequiresSelection(t *testing.T) {
	ctx := context.Background()
	s := schedule.NewSelector(schedule.SelectorConfig{Store: repository.NewMemoryStore()})

	_, ok := s.Resolve(ctx, schedule.Project(schedule.Schedule{Races: []schedule.Race{
		{RaceID: "A", Status: schedule.StatusScheduled},
	}}))
	require.False(t, ok)
	require.Equal(t, "", s.Selected())
}

func TestSelector_MissingSelectionIsKept(t *testing.T) {
	ctx := context.Background()
	s := schedule.NewSelector(schedule.SelectorConfig{Store: repository.NewMemoryStore()})
	s.Select(ctx, "GONE")

	_, ok := s.Resolve(ctx, schedule.Project(sampleSchedule()))
	require.False(t, ok)
	require.Equal(t, "GONE", s.Selected())
}

func TestSelector_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	schedule.NewSelector(schedule.SelectorConfig{Store: store}).Select(ctx, "K1M_ST_BR1_6")

	s := schedule.NewSelector(schedule.SelectorConfig{Store: store})
	s.Load(ctx)
	require.Equal(t, "K1M_ST_BR1_6", s.Selected())

	s.Select(ctx, "")
	require.Equal(t, 0, store.Len())
}

func TestSelector_StorageFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	store := &mocks.KeyValueStore{}
	store.On("Get", ctx, mock.Anything).Return("", errors.New("storage disabled"))
	store.On("Set", ctx, mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

	s := schedule.NewSelector(schedule.SelectorConfig{Store: store})
	s.Load(ctx)
	s.Select(ctx, "A")
	require.Equal(t, "A", s.Selected())
}
