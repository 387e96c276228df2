package feed

import (
	"encoding/json"
	"fmt"
	"time"
)

// Envelope is the frame wrapping every feed message.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Apply decodes one frame into s and stamps the receive time. A malformed
// frame leaves s unchanged; an unknown type only counts as a sign of life.
func (s *Snapshot) Apply(frame []byte, at time.Time) error {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	switch env.Type {
	case TypeSchedule:
		if err := decodeData(env, &s.Schedule); err != nil {
			return err
		}
	case TypeOnCourse:
		var oc OnCourse
		if err := decodeData(env, &oc); err != nil {
			return err
		}
		s.OnCourse = oc.Competitors
	case TypeResults:
		var r Results
		if err := decodeData(env, &r); err != nil {
			return err
		}
		if s.Results == nil {
			s.Results = make(map[string]Results)
		}
		s.Results[r.RaceID] = r
	case TypeRaceConfig:
		var c RaceConfig
		if err := decodeData(env, &c); err != nil {
			return err
		}
		if s.Configs == nil {
			s.Configs = make(map[string]RaceConfig)
		}
		s.Configs[c.RaceID] = c
	default:
		s.LastMessage = at
		return fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	s.LastMessage = at
	return nil
}

func decodeData[T any](env Envelope, dst *T) error {
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedMessage, env.Type, err)
	}
	*dst = v
	return nil
}
