package tscube

import (
	"fmt"
	"strconv"
	"time"
)

// Landsat scene IDs embed the acquisition date as YYYYDDD (four-digit year
// followed by three-digit day of year) starting at character 9, e.g.
// "LT50350322008110PAC01" was acquired on day 110 of 2008.
const (
	sceneDateOffset = 9
	sceneDateLen    = 7
)

// SceneDate extracts and parses the acquisition date embedded in a Landsat
// scene identifier.
func SceneDate(id string) (time.Time, error) {
	if len(id) < sceneDateOffset+sceneDateLen {
		return time.Time{}, fmt.Errorf("scene ID %q too short to carry a date", id)
	}
	field := id[sceneDateOffset : sceneDateOffset+sceneDateLen]

	year, err := strconv.Atoi(field[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year in scene ID %q: %w", id, err)
	}
	doy, err := strconv.Atoi(field[4:])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day of year in scene ID %q: %w", id, err)
	}
	if doy < 1 {
		return time.Time{}, fmt.Errorf("day of year %d out of range in scene ID %q", doy, id)
	}

	date := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, doy-1)
	if date.Year() != year {
		return time.Time{}, fmt.Errorf("day of year %d out of range for %d in scene ID %q", doy, year, id)
	}
	return date, nil
}
