package scoring_test

import (
	"encoding/json"
	"testing"

	"github.com/opencanoetiming/c123-scoring/internal/domain/gates"
	"github.com/opencanoetiming/c123-scoring/internal/domain/scoring"
	"github.com/stretchr/testify/require"
)

func TestNewPenaltyRequest(t *testing.T) {
	req, err := scoring.NewPenaltyRequest("K1M_ST_BR2_6", " 101 ", 4, gates.PenaltyTouch)
	require.NoError(t, err)
	require.Equal(t, "101", req.Bib)
	require.Equal(t, 2, *req.Value)

	blob, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"raceId":"K1M_ST_BR2_6","bib":"101","gate":4,"value":2}`, string(blob))
}

func TestNewPenaltyRequest_Delete(t *testing.T) {
	req, err := scoring.NewPenaltyRequest("", "7", 1, gates.PenaltyNone)
	require.NoError(t, err)
	require.Nil(t, req.Value)

	blob, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"bib":"7","gate":1,"value":null}`, string(blob))
}

func TestNewPenaltyRequest_Clean(t *testing.T) {
	req, err := scoring.NewPenaltyRequest("", "7", 1, gates.PenaltyClean)
	require.NoError(t, err)
	require.NotNil(t, req.Value)
	require.Equal(t, 0, *req.Value)
}

func TestNewPenaltyRequest_Invalid(t *testing.T) {
	_, err := scoring.NewPenaltyRequest("", "", 1, gates.PenaltyClean)
	require.ErrorIs(t, err, scoring.ErrInvalidInput)

	_, err = scoring.NewPenaltyRequest("", "7", 0, gates.PenaltyClean)
	require.ErrorIs(t, err, scoring.ErrInvalidInput)
}

func TestParseValue(t *testing.T) {
	p, err := scoring.ParseValue(nil)
	require.NoError(t, err)
	require.Equal(t, gates.PenaltyNone, p)

	fifty := 50
	p, err = scoring.ParseValue(&fifty)
	require.NoError(t, err)
	require.Equal(t, gates.PenaltyMissed, p)

	five := 5
	_, err = scoring.ParseValue(&five)
	require.ErrorIs(t, err, gates.ErrInvalidPenalty)
}

func TestNewRemoveFromCourseRequest(t *testing.T) {
	req, err := scoring.NewRemoveFromCourseRequest("12", scoring.ReasonDNF)
	require.NoError(t, err)
	require.Equal(t, scoring.RemoveFromCourseRequest{Bib: "12", Reason: scoring.ReasonDNF}, req)

	_, err = scoring.NewRemoveFromCourseRequest("12", "OOPS")
	require.ErrorIs(t, err, scoring.ErrInvalidInput)
	_, err = scoring.NewRemoveFromCourseRequest(" ", scoring.ReasonDNS)
	require.ErrorIs(t, err, scoring.ErrInvalidInput)
}

func TestNewTimingRequest(t *testing.T) {
	req, err := scoring.NewTimingRequest("12", scoring.ChannelSplit2)
	require.NoError(t, err)

	blob, err := json.Marshal(req)
	require.NoError(t, err)
	require.JSONEq(t, `{"bib":"12","channelPosition":"Split2"}`, string(blob))

	_, err = scoring.NewTimingRequest("12", "Split4")
	require.ErrorIs(t, err, scoring.ErrInvalidInput)
}
