package models

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatFrameTimestamp renders seconds as HHH:MM:SS.mmm, the key format of
// FrameDescriptionDocument. Three hour digits keep keys fixed-width so that
// string order matches time order.
func FormatFrameTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	ms := int64(math.Round(seconds * 1000))
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	frac := ms % 1000
	return fmt.Sprintf("%03d:%02d:%02d.%03d", h, m, s, frac)
}

// FormatSceneTimestamp renders seconds as HH:MM:SS.mmm, the format the scene
// detector emits. Scene documents keep their own format since they are
// attached to results verbatim.
func FormatSceneTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := int(seconds) / 3600
	m := (int(seconds) % 3600) / 60
	s := seconds - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// ParseTimestamp converts a H+:MM:SS[.mmm] timestamp back to seconds. It
// accepts both the frame (HHH:) and scene (HH:) hour widths.
func ParseTimestamp(ts string) (float64, error) {
	parts := strings.Split(ts, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid timestamp %q", ts)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	s, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}
	return float64(h*3600+m*60) + s, nil
}
