package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

type fakeCounter struct {
	activity map[string][2]int // table -> {created, updated}
	broken   map[string]bool
	sent     int
	received int
	outErr   error
}

func (f *fakeCounter) CountActivityOn(_ context.Context, station models.Station, _ time.Time) (int, int, error) {
	if f.broken[station.Table] {
		return 0, 0, errors.New("no such table")
	}
	counts := f.activity[station.Table]
	return counts[0], counts[1], nil
}

func (f *fakeCounter) CountOutsourcingOn(_ context.Context, _ time.Time) (int, int, error) {
	if f.outErr != nil {
		return 0, 0, f.outErr
	}
	return f.sent, f.received, nil
}

func TestBuildDailySummary(t *testing.T) {
	counter := &fakeCounter{
		activity: map[string][2]int{
			"station_cutting":   {3, 1},
			"station_packaging": {0, 0}, // idle stations are omitted
		},
		sent:     2,
		received: 1,
	}
	registry := models.NewStationRegistry([]string{"Cutting", "Assembly", "Packaging"})
	svc := NewService(registry, counter, nil)

	day := time.Date(2024, 3, 12, 15, 30, 0, 0, time.UTC)
	summary, err := svc.BuildDailySummary(context.Background(), day)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), summary.Date)
	require.Len(t, summary.Stations, 1)
	assert.Equal(t, models.StationActivity{Station: "Cutting", Created: 3, Updated: 1}, summary.Stations[0])
	assert.Equal(t, 2, summary.OutsourcingSent)
	assert.Equal(t, 1, summary.OutsourcingReceived)
	assert.False(t, summary.CreatedAt.IsZero())
}

func TestBuildDailySummarySkipsBrokenStation(t *testing.T) {
	counter := &fakeCounter{
		activity: map[string][2]int{"station_packaging": {5, 0}},
		broken:   map[string]bool{"station_cutting": true},
	}
	registry := models.NewStationRegistry([]string{"Cutting", "Packaging"})
	svc := NewService(registry, counter, nil)

	summary, err := svc.BuildDailySummary(context.Background(), time.Now())
	require.NoError(t, err)
	require.Len(t, summary.Stations, 1)
	assert.Equal(t, "Packaging", summary.Stations[0].Station)
}

func TestBuildDailySummaryOutsourcingFailureIsNonFatal(t *testing.T) {
	counter := &fakeCounter{
		activity: map[string][2]int{"station_cutting": {1, 0}},
		outErr:   errors.New("locked"),
	}
	registry := models.NewStationRegistry([]string{"Cutting"})
	svc := NewService(registry, counter, nil)

	summary, err := svc.BuildDailySummary(context.Background(), time.Now())
	require.NoError(t, err)
	assert.Zero(t, summary.OutsourcingSent)
	assert.Zero(t, summary.OutsourcingReceived)
	require.Len(t, summary.Stations, 1)
}

func TestFormatSummary(t *testing.T) {
	svc := NewService(models.NewStationRegistry([]string{"Cutting"}), &fakeCounter{}, nil)

	summary := models.DailySummary{
		Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		Stations: []models.StationActivity{
			{Station: "Cutting", Created: 3, Updated: 1},
		},
		OutsourcingSent:     2,
		OutsourcingReceived: 1,
	}

	text := svc.FormatSummary(summary)
	assert.Equal(t,
		"Shop floor summary for 2024-03-12\n"+
			"• Cutting: 3 new, 1 repeated\n"+
			"Outsourcing: 2 sent, 1 received",
		text)
}

func TestFormatSummaryQuietDay(t *testing.T) {
	svc := NewService(models.NewStationRegistry([]string{"Cutting"}), &fakeCounter{}, nil)

	text := svc.FormatSummary(models.DailySummary{
		Date: time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "Shop floor summary for 2024-03-12\nNo scans recorded today.", text)
}
