package feed_test

import (
	"testing"
	"time"

	"github.com/opencanoetiming/c123-scoring/internal/domain/schedule"
	"github.com/opencanoetiming/c123-scoring/internal/feed"
	"github.com/stretchr/testify/require"
)

var receivedAt = time.Date(2026, 6, 14, 10, 0, 0, 0, time.UTC)

func TestApply_Schedule(t *testing.T) {
	var s feed.Snapshot
	err := s.Apply([]byte(`{"type":"Schedule","data":{"races":[
		{"raceId":"K1M_ST_BR1_6","shortTitle":"K1m - 1st run","raceStatus":"running"}
	]}}`), receivedAt)
	require.NoError(t, err)
	require.Len(t, s.Schedule.Races, 1)
	require.Equal(t, schedule.StatusRunning, s.Schedule.Races[0].Status)
	require.Equal(t, receivedAt, s.LastMessage)
}

func TestApply_OnCourseReplaces(t *testing.T) {
	var s feed.Snapshot
	require.NoError(t, s.Apply([]byte(`{"type":"OnCourse","data":{"competitors":[
		{"bib":"1","raceId":"A","gates":"0 2"},{"bib":"2","raceId":"B","gates":""}
	]}}`), receivedAt))
	require.Len(t, s.OnCourse, 2)
	require.Len(t, s.OnCourseFor("A"), 1)

	require.NoError(t, s.Apply([]byte(`{"type":"OnCourse","data":{"competitors":[]}}`), receivedAt))
	require.Empty(t, s.OnCourse)
}

func TestApply_ResultsAndConfigPerRace(t *testing.T) {
	var s feed.Snapshot
	require.NoError(t, s.Apply([]byte(`{"type":"Results","data":{"raceId":"A","rows":[{"bib":"9","startOrder":1,"rank":1,"gates":"  0  2"}]}}`), receivedAt))
	require.NoError(t, s.Apply([]byte(`{"type":"Results","data":{"raceId":"B","rows":[]}}`), receivedAt))
	require.NoError(t, s.Apply([]byte(`{"type":"RaceConfig","data":{"nrGates":6,"gateConfig":"NNRNNR"}}`), receivedAt))
	require.NoError(t, s.Apply([]byte(`{"type":"RaceConfig","data":{"raceId":"B","nrGates":3,"gateConfig":"NNN"}}`), receivedAt))

	require.Len(t, s.Results, 2)
	require.Equal(t, "9", s.Results["A"].Rows[0].Bib)

	cfg, ok := s.Config("A")
	require.True(t, ok)
	require.Equal(t, "NNRNNR", cfg.GateConfig)
	cfg, ok = s.Config("B")
	require.True(t, ok)
	require.Equal(t, 3, cfg.NrGates)
}

func TestApply_MalformedLeavesSnapshot(t *testing.T) {
	var s feed.Snapshot
	require.ErrorIs(t, s.Apply([]byte(`not json`), receivedAt), feed.ErrMalformedMessage)
	require.ErrorIs(t, s.Apply([]byte(`{"type":"Schedule","data":{"races":"x"}}`), receivedAt), feed.ErrMalformedMessage)
	require.True(t, s.LastMessage.IsZero())
	require.Empty(t, s.Schedule.Races)
}

func TestApply_UnknownTypeCountsAsLife(t *testing.T) {
	var s feed.Snapshot
	err := s.Apply([]byte(`{"type":"TimeOfDay","data":{}}`), receivedAt)
	require.ErrorIs(t, err, feed.ErrUnknownType)
	require.Equal(t, receivedAt, s.LastMessage)
}

func TestSnapshot_CloneIsDeep(t *testing.T) {
	var s feed.Snapshot
	require.NoError(t, s.Apply([]byte(`{"type":"Results","data":{"raceId":"A","rows":[{"bib":"9"}]}}`), receivedAt))

	c := s.Clone()
	c.Results["A"].Rows[0].Bib = "changed"
	require.Equal(t, "9", s.Results["A"].Rows[0].Bib)
}
