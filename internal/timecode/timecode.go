package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	millisPerSecond = 1000
	millisPerMinute = 60 * millisPerSecond
	millisPerHour   = 60 * millisPerMinute
)

// EncodeMillis renders a millisecond offset as HH:MM:SS.mmm. Hours are
// zero-padded to at least two digits and unbounded above.
func EncodeMillis(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / millisPerHour
	minutes := (ms / millisPerMinute) % 60
	seconds := (ms / millisPerSecond) % 60
	millis := ms % millisPerSecond
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, millis)
}

// DecodeMillis parses a HH:MM:SS.mmm timestamp back into milliseconds.
// It is the exact inverse of EncodeMillis for any non-negative offset.
func DecodeMillis(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	main, frac, ok := strings.Cut(trimmed, ".")
	if !ok {
		return 0, fmt.Errorf("timecode: missing millisecond separator in %q", value)
	}
	if len(frac) != 3 {
		return 0, fmt.Errorf("timecode: expected three millisecond digits in %q", value)
	}
	parts := strings.Split(main, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timecode: expected HH:MM:SS.mmm, got %q", value)
	}
	if len(parts[0]) < 2 || len(parts[1]) != 2 || len(parts[2]) != 2 {
		return 0, fmt.Errorf("timecode: malformed field widths in %q", value)
	}

	hours, err := parseField(parts[0], "hours")
	if err != nil {
		return 0, err
	}
	minutes, err := parseField(parts[1], "minutes")
	if err != nil {
		return 0, err
	}
	seconds, err := parseField(parts[2], "seconds")
	if err != nil {
		return 0, err
	}
	millis, err := parseField(frac, "milliseconds")
	if err != nil {
		return 0, err
	}
	if minutes > 59 || seconds > 59 {
		return 0, fmt.Errorf("timecode: minutes and seconds must be below 60 in %q", value)
	}

	return hours*millisPerHour + minutes*millisPerMinute + seconds*millisPerSecond + millis, nil
}

func parseField(raw, name string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("timecode: invalid %s %q", name, raw)
	}
	return v, nil
}
