package api

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// The NBA season starts in October and is identified by its start year:
// "2024-25" runs from October 2024 through June 2025.
const seasonStartMonth = time.October

// SeasonFromDate returns the season a date falls in, formatted YYYY-YY.
func SeasonFromDate(date time.Time) string {
	startYear := date.Year()
	if date.Month() < seasonStartMonth {
		startYear--
	}
	return fmt.Sprintf("%d-%02d", startYear, (startYear+1)%100)
}

// CurrentSeason returns the season for the current date (UTC).
func CurrentSeason() string {
	return SeasonFromDate(time.Now().UTC())
}

// SeasonStartYear extracts the start year from a YYYY-YY season string.
func SeasonStartYear(season string) (int, error) {
	start, _, ok := strings.Cut(season, "-")
	if !ok {
		return 0, fmt.Errorf("malformed season %q, want YYYY-YY", season)
	}
	year, err := strconv.Atoi(start)
	if err != nil {
		return 0, fmt.Errorf("malformed season %q: %w", season, err)
	}
	return year, nil
}

// SeasonID converts a season to the "2"+startYear identifier some
// endpoints use (the prefix 2 denotes the regular season).
func SeasonID(season string) (string, error) {
	year, err := SeasonStartYear(season)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("2%d", year), nil
}
