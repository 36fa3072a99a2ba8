package youtube

import (
	"errors"
	"math"
	"regexp"
	"strconv"
)

// maxDurationSeconds ist die Obergrenze; größere Angaben werden darauf gekappt.
const maxDurationSeconds = math.MaxInt32

var durationRegex = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?)?$`)

// ParseDuration wandelt ein ISO-8601-Token wie "PT1H2M3S" in Sekunden um.
// Nicht passende Tokens ergeben 0, zu große Werte maxDurationSeconds.
func ParseDuration(token string) int {
	m := durationRegex.FindStringSubmatch(token)
	if m == nil {
		return 0
	}
	units := []int{24 * 3600, 3600, 60, 1}
	total := 0
	for i, unit := range units {
		if m[i+1] == "" {
			continue
		}
		n, err := strconv.Atoi(m[i+1])
		if errors.Is(err, strconv.ErrRange) {
			return maxDurationSeconds
		}
		if err != nil {
			return 0
		}
		if n > (maxDurationSeconds-total)/unit {
			return maxDurationSeconds
		}
		total += n * unit
	}
	return total
}

// IsFullLength meldet, ob ein Video mindestens minSeconds lang ist.
func IsFullLength(token string, minSeconds int) bool {
	return ParseDuration(token) >= minSeconds
}
