package gates

import "fmt"

// ParsePenalty validates a manually entered penalty value.
func ParsePenalty(n int) (Penalty, error) {
	switch n {
	case 0:
		return PenaltyClean, nil
	case 2:
		return PenaltyTouch, nil
	case 50:
		return PenaltyMissed, nil
	default:
		return PenaltyNone, fmt.Errorf("%w: %d", ErrInvalidPenalty, n)
	}
}

// penaltyFromFeed maps a decoded feed value. Values outside the valid set are
// treated like an empty field.
func penaltyFromFeed(v Value) Penalty {
	if !v.Present {
		return PenaltyNone
	}
	p, err := ParsePenalty(v.N)
	if err != nil {
		return PenaltyNone
	}
	return p
}

// ParseGateTypes decodes a race gate configuration such as "NNRNNR".
func ParseGateTypes(config string) ([]GateType, error) {
	types := make([]GateType, 0, len(config))
	for i, c := range config {
		switch c {
		case 'N':
			types = append(types, GateNormal)
		case 'R':
			types = append(types, GateReverse)
		default:
			return nil, fmt.Errorf("%w: %q at gate %d", ErrInvalidGateType, c, i+1)
		}
	}
	return types, nil
}

// BuildGateRecords combines a competitor's raw gate string with the race gate
// configuration. The configuration defines the gate count, so missing trailing
// data yields unjudged gates rather than a shorter row.
func BuildGateRecords(raw, config string) ([]GateRecord, error) {
	types, err := ParseGateTypes(config)
	if err != nil {
		return nil, err
	}

	values := Parse(raw)
	records := make([]GateRecord, len(types))
	for i, t := range types {
		rec := GateRecord{Number: i + 1, Type: t}
		if i < len(values) {
			rec.Penalty = penaltyFromFeed(values[i])
		}
		records[i] = rec
	}
	return records, nil
}

// TotalPenalty sums penalty seconds over records.
func TotalPenalty(records []GateRecord) int {
	total := 0
	for _, rec := range records {
		total += rec.Penalty.Seconds()
	}
	return total
}

// Values returns the wire values of records in gate order.
func Values(records []GateRecord) []Value {
	values := make([]Value, len(records))
	for i, rec := range records {
		values[i] = rec.Penalty.Value()
	}
	return values
}
