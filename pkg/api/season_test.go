package api

import (
	"testing"
	"time"
)

func TestSeasonFromDate(t *testing.T) {
	tests := []struct {
		name string
		date time.Time
		want string
	}{
		{"november is current start year", time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"march is previous start year", time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"october starts new season", time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC), "2025-26"},
		{"september still old season", time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC), "2024-25"},
		{"century rollover short year", time.Date(1999, 11, 1, 0, 0, 0, 0, time.UTC), "1999-00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SeasonFromDate(tt.date); got != tt.want {
				t.Errorf("SeasonFromDate(%v) = %q, want %q", tt.date, got, tt.want)
			}
		})
	}
}

func TestSeasonStartYear(t *testing.T) {
	year, err := SeasonStartYear("2024-25")
	if err != nil {
		t.Fatalf("SeasonStartYear() error: %v", err)
	}
	if year != 2024 {
		t.Errorf("SeasonStartYear() = %d, want 2024", year)
	}
}

func TestSeasonStartYear_Malformed(t *testing.T) {
	for _, season := range []string{"2024", "abcd-ef", ""} {
		if _, err := SeasonStartYear(season); err == nil {
			t.Errorf("SeasonStartYear(%q) expected error, got nil", season)
		}
	}
}

func TestSeasonID(t *testing.T) {
	id, err := SeasonID("2024-25")
	if err != nil {
		t.Fatalf("SeasonID() error: %v", err)
	}
	if id != "22024" {
		t.Errorf("SeasonID() = %q, want 22024", id)
	}
}
