package gates

import (
	"strconv"
	"strings"
)

// Format is a wire encoding of the per-gate penalty string.
type Format int

const (
	FormatEmpty Format = iota
	// FormatToken is single-space separated values: "0 0 2 50 0".
	FormatToken
	// FormatFixedWidth is 3-character right-aligned blocks: "  0  0  2 50  0".
	// An intermediary may have trimmed the leading padding of the first block.
	FormatFixedWidth
)

const blockWidth = 3

func (f Format) String() string {
	switch f {
	case FormatToken:
		return "token"
	case FormatFixedWidth:
		return "fixed-width"
	default:
		return "empty"
	}
}

// DetectFormat sniffs the encoding of raw. Any run of two spaces can only come
// from right-alignment padding, so it selects the fixed-width format.
func DetectFormat(raw string) Format {
	switch {
	case raw == "":
		return FormatEmpty
	case strings.Contains(raw, "  "):
		return FormatFixedWidth
	default:
		return FormatToken
	}
}

// Parse decodes a gate penalty string into one Value per gate. Malformed
// fields decode as Absent; Parse never fails.
func Parse(raw string) []Value {
	switch DetectFormat(raw) {
	case FormatFixedWidth:
		return parseFixedWidth(raw)
	case FormatToken:
		return parseTokens(raw)
	default:
		return []Value{}
	}
}

func parseTokens(raw string) []Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return []Value{}
	}
	tokens := strings.Split(trimmed, " ")
	values := make([]Value, 0, len(tokens))
	for _, tok := range tokens {
		values = append(values, parseField(tok))
	}
	return values
}

func parseFixedWidth(raw string) []Value {
	// Restore leading padding stripped from the first block.
	if rem := len(raw) % blockWidth; rem != 0 {
		raw = strings.Repeat(" ", blockWidth-rem) + raw
	}

	values := make([]Value, 0, len(raw)/blockWidth)
	for i := 0; i < len(raw); i += blockWidth {
		values = append(values, parseField(raw[i:i+blockWidth]))
	}

	// Trailing blanks are filler up to the maximum gate count. Interior
	// blanks are deleted penalties and stay.
	end := len(values)
	for end > 0 && !values[end-1].Present {
		end--
	}
	return values[:end]
}

func parseField(field string) Value {
	field = strings.TrimSpace(field)
	if field == "" {
		return Absent
	}
	n, err := strconv.Atoi(field)
	if err != nil {
		return Absent
	}
	return Some(n)
}

// EncodeFixedWidth encodes values the way the timing system emits them:
// every field right-aligned in 3 characters, blank when absent.
func EncodeFixedWidth(values []Value) string {
	var b strings.Builder
	b.Grow(len(values) * blockWidth)
	for _, v := range values {
		field := v.String()
		if len(field) < blockWidth {
			b.WriteString(strings.Repeat(" ", blockWidth-len(field)))
		}
		b.WriteString(field)
	}
	return b.String()
}
