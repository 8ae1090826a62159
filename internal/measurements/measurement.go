package measurements

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidMeasurement = errors.New("invalid measurement")
	ErrNoMeasurements     = errors.New("no measurements found")
)

type Measurement struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
}

// Snapshot is the set of body measurements taken on one day.
type Snapshot struct {
	ID           string        `json:"id,omitempty"`
	UserID       string        `json:"userId,omitempty"`
	Date         string        `json:"date"`
	Measurements []Measurement `json:"measurements"`
	CreatedAt    time.Time     `json:"createdAt"`
}

// Template returns the measurements a new snapshot is filled in from, with empty values.
func Template() []Measurement {
	return []Measurement{
		{Name: "Weight", Unit: "kg"},
		{Name: "Chest", Unit: "cm"},
		{Name: "Biceps (left)", Unit: "cm"},
		{Name: "Biceps (right)", Unit: "cm"},
		{Name: "Thigh (left)", Unit: "cm"},
		{Name: "Thigh (right)", Unit: "cm"},
		{Name: "Waist", Unit: "cm"},
		{Name: "Hips", Unit: "cm"},
	}
}

func (s Snapshot) Validate() error {
	if _, err := time.Parse(DateLayout, s.Date); err != nil {
		return fmt.Errorf("%w: date [%s] not in YYYY-MM-DD format", ErrInvalidMeasurement, s.Date)
	}
	if len(s.Measurements) == 0 {
		return fmt.Errorf("%w: no values", ErrInvalidMeasurement)
	}
	for _, m := range s.Measurements {
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: name is required", ErrInvalidMeasurement)
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(m.Value), 64)
		if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
			return fmt.Errorf("%w: enter a valid value for %s in %s", ErrInvalidMeasurement, m.Name, m.Unit)
		}
	}
	return nil
}

type Stats struct {
	Dates  []string             `json:"dates"`
	Series map[string][]float64 `json:"series"`
}

// ComputeStats orders the snapshots by date and collects one value series per
// measurement name. Values that do not parse are recorded as 0.
func ComputeStats(snapshots []Snapshot) Stats {
	sorted := make([]Snapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})

	stats := Stats{
		Dates:  make([]string, 0, len(sorted)),
		Series: map[string][]float64{},
	}
	for _, s := range sorted {
		stats.Dates = append(stats.Dates, s.Date)
		for _, m := range s.Measurements {
			value, _ := strconv.ParseFloat(strings.TrimSpace(m.Value), 64)
			stats.Series[m.Name] = append(stats.Series[m.Name], value)
		}
	}
	return stats
}
