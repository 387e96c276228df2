package scoring

import (
	"fmt"
	"strings"

	"github.com/opencanoetiming/c123-scoring/internal/domain/gates"
)

// PenaltyRequest sets or deletes the penalty of one gate. A nil Value
// deletes the penalty.
type PenaltyRequest struct {
	RaceID string `json:"raceId,omitempty"`
	Bib    string `json:"bib"`
	Gate   int    `json:"gate"`
	Value  *int   `json:"value"`
}

// RemoveReason is why a competitor leaves the course.
type RemoveReason string

const (
	ReasonDNS RemoveReason = "DNS"
	ReasonDNF RemoveReason = "DNF"
	ReasonDSQ RemoveReason = "DSQ"
	ReasonCAP RemoveReason = "CAP"
)

// RemoveFromCourseRequest takes a competitor off the course.
type RemoveFromCourseRequest struct {
	Bib    string       `json:"bib"`
	Reason RemoveReason `json:"reason"`
}

// ChannelPosition is a timing channel for manual impulses.
type ChannelPosition string

const (
	ChannelStart  ChannelPosition = "Start"
	ChannelFinish ChannelPosition = "Finish"
	ChannelSplit1 ChannelPosition = "Split1"
	ChannelSplit2 ChannelPosition = "Split2"
	ChannelSplit3 ChannelPosition = "Split3"
)

// TimingRequest sends a manual timing impulse for a competitor.
type TimingRequest struct {
	Bib             string          `json:"bib"`
	ChannelPosition ChannelPosition `json:"channelPosition"`
}

// NewPenaltyRequest builds a request for gate of bib. PenaltyNone produces a
// delete request.
func NewPenaltyRequest(raceID, bib string, gate int, p gates.Penalty) (PenaltyRequest, error) {
	bib = strings.TrimSpace(bib)
	if bib == "" {
		return PenaltyRequest{}, fmt.Errorf("%w: bib required", ErrInvalidInput)
	}
	if gate < 1 {
		return PenaltyRequest{}, fmt.Errorf("%w: gate %d", ErrInvalidInput, gate)
	}

	req := PenaltyRequest{RaceID: raceID, Bib: bib, Gate: gate}
	if v := p.Value(); v.Present {
		n := v.N
		req.Value = &n
	}
	return req, nil
}

// ParseValue validates a manually entered penalty; nil means delete.
func ParseValue(value *int) (gates.Penalty, error) {
	if value == nil {
		return gates.PenaltyNone, nil
	}
	return gates.ParsePenalty(*value)
}

// NewRemoveFromCourseRequest validates bib and reason.
func NewRemoveFromCourseRequest(bib string, reason RemoveReason) (RemoveFromCourseRequest, error) {
	bib = strings.TrimSpace(bib)
	if bib == "" {
		return RemoveFromCourseRequest{}, fmt.Errorf("%w: bib required", ErrInvalidInput)
	}
	switch reason {
	case ReasonDNS, ReasonDNF, ReasonDSQ, ReasonCAP:
	default:
		return RemoveFromCourseRequest{}, fmt.Errorf("%w: reason %q", ErrInvalidInput, reason)
	}
	return RemoveFromCourseRequest{Bib: bib, Reason: reason}, nil
}

// NewTimingRequest validates bib and channel.
func NewTimingRequest(bib string, channel ChannelPosition) (TimingRequest, error) {
	bib = strings.TrimSpace(bib)
	if bib == "" {
		return TimingRequest{}, fmt.Errorf("%w: bib required", ErrInvalidInput)
	}
	switch channel {
	case ChannelStart, ChannelFinish, ChannelSplit1, ChannelSplit2, ChannelSplit3:
	default:
		return TimingRequest{}, fmt.Errorf("%w: channel %q", ErrInvalidInput, channel)
	}
	return TimingRequest{Bib: bib, ChannelPosition: channel}, nil
}
