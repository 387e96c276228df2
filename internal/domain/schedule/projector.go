package schedule

// Projection indexes the active races of a schedule snapshot.
type Projection struct {
	Active  []ProcessedRace
	Running *ProcessedRace
	byID    map[string]int
}

// Project filters s down to its active races in schedule order. The first
// running race becomes Running. Races without an id are skipped.
func Project(s Schedule) Projection {
	p := Projection{
		Active: make([]ProcessedRace, 0, len(s.Races)),
		byID:   make(map[string]int, len(s.Races)),
	}
	for _, r := range s.Races {
		if r.RaceID == "" || !r.Status.IsActive() {
			continue
		}
		if _, dup := p.byID[r.RaceID]; dup {
			continue
		}
		p.byID[r.RaceID] = len(p.Active)
		p.Active = append(p.Active, ProcessedRace{
			RaceID:     r.RaceID,
			ShortTitle: r.ShortTitle,
			MainTitle:  r.MainTitle,
			StartTime:  r.StartTime,
			Status:     r.Status,
			IsRunning:  r.Status.IsRunning(),
			IsFinished: r.Status.IsFinished(),
		})
	}
	for i := range p.Active {
		if p.Active[i].IsRunning {
			running := p.Active[i]
			p.Running = &running
			break
		}
	}
	return p
}

// Lookup returns the active race with id.
func (p Projection) Lookup(id string) (ProcessedRace, bool) {
	i, ok := p.byID[id]
	if !ok {
		return ProcessedRace{}, false
	}
	return p.Active[i], true
}
