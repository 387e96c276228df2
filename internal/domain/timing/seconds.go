package timing

import (
	"strconv"
	"strings"
)

// FormatSeconds converts a "m:ss.cc" run time into plain seconds ("90.45").
// Times already in seconds are returned unchanged, as are unparseable values.
func FormatSeconds(t string) string {
	if t == "" {
		return ""
	}

	mins, secs, ok := strings.Cut(t, ":")
	if !ok {
		return t
	}
	m, err := strconv.Atoi(mins)
	if err != nil {
		return t
	}
	s, err := strconv.ParseFloat(secs, 64)
	if err != nil {
		return t
	}
	return strconv.FormatFloat(float64(m)*60+s, 'f', 2, 64)
}
