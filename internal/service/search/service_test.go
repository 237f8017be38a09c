package search

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

type fakeRepo struct {
	observations map[string][]models.Observation // keyed by station table
	outsourcing  []models.OutsourcingRecord
	brokenTables map[string]bool
	names        map[int64]string
	outsourceErr error
}

func (f *fakeRepo) FindByPrefix(_ context.Context, station models.Station, prefix string) ([]models.Observation, error) {
	if f.brokenTables[station.Table] {
		return nil, errors.New("malformed table")
	}
	var out []models.Observation
	for _, obs := range f.observations[station.Table] {
		if len(obs.QRData) >= len(prefix) && obs.QRData[:len(prefix)] == prefix {
			out = append(out, obs)
		}
	}
	return out, nil
}

func (f *fakeRepo) FindOutsourcingByPrefix(_ context.Context, prefix string) ([]models.OutsourcingRecord, error) {
	if f.outsourceErr != nil {
		return nil, f.outsourceErr
	}
	var out []models.OutsourcingRecord
	for _, rec := range f.outsourcing {
		if len(rec.QRData) >= len(prefix) && rec.QRData[:len(prefix)] == prefix {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRepo) OperatorName(_ context.Context, id int64) string {
	if name, ok := f.names[id]; ok {
		return name
	}
	return "-"
}

func newTestService(repo *fakeRepo, stations ...string) *Service {
	if len(stations) == 0 {
		stations = []string{"Cutting", "Assembly", "Packaging"}
	}
	registry := models.NewStationRegistry(stations)
	packaging, _ := registry.Lookup("Packaging")
	return NewService(registry, packaging, repo, zap.NewNop())
}

func obs(qr string, observer int64, created string) models.Observation {
	t, _ := time.Parse(models.TimestampLayout, created)
	return models.Observation{QRData: qr, ObserverID: observer, CreatedAt: t}
}

func datePtr(value string) *time.Time {
	t, _ := time.Parse(models.TimestampLayout, value)
	return &t
}

func TestOrderHistoryGroupsByStationInRegistryOrder(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_packaging": {obs("152/1.28", 1, "2024-03-12 10:00:00")},
			"station_cutting": {
				obs("152/1.28", 1, "2024-03-01 08:00:00"),
				obs("152/1.29", 2, "2024-03-02 08:00:00"),
			},
		},
	}
	svc := newTestService(repo)

	groups, err := svc.OrderHistory(context.Background(), "152/1")
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Cutting", groups[0].Station)
	assert.Len(t, groups[0].Observations, 2)
	assert.Equal(t, "Packaging", groups[1].Station)
}

func TestOrderHistorySkipsBrokenStation(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_cutting":  {obs("500.1", 1, "2024-03-01 08:00:00")},
			"station_assembly": {obs("500.1", 1, "2024-03-03 08:00:00")},
		},
		brokenTables: map[string]bool{"station_assembly": true},
	}
	svc := newTestService(repo)

	groups, err := svc.OrderHistory(context.Background(), "500")
	require.NoError(t, err, "one broken table must not fail the scan")
	require.Len(t, groups, 1)
	assert.Equal(t, "Cutting", groups[0].Station)
}

func TestOrderHistoryOutsourcingReconciliation(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_packaging": {obs("152/1.1", 5, "2024-03-10 10:00:00")},
		},
		outsourcing: []models.OutsourcingRecord{
			{QRData: "152/1.2", Outsourcer: "GlassWorks", RequestDate: datePtr("2024-03-11 09:00:00")},
			{QRData: "152/1.3", Outsourcer: "MetalPro", RequestDate: datePtr("2024-03-05 09:00:00"), ReceiveDate: datePtr("2024-03-09 15:00:00")},
			{QRData: "152/1.4"}, // never sent: invisible
		},
	}
	svc := newTestService(repo)

	groups, err := svc.OrderHistory(context.Background(), "152/1")
	require.NoError(t, err)
	require.Len(t, groups, 2)

	// In-transit items surface under the virtual Outsourcing station.
	assert.Equal(t, models.PseudoStationOutsourcing, groups[1].Station)
	require.Len(t, groups[1].Observations, 1)
	assert.Equal(t, "152/1.2", groups[1].Observations[0].QRData)

	// Received items merge after the real packaging rows.
	assert.Equal(t, "Packaging", groups[0].Station)
	require.Len(t, groups[0].Observations, 2)
	assert.Equal(t, "152/1.1", groups[0].Observations[0].QRData)
	assert.Equal(t, "152/1.3", groups[0].Observations[1].QRData)

	// The never-sent record appears nowhere.
	for _, group := range groups {
		for _, o := range group.Observations {
			assert.NotEqual(t, "152/1.4", o.QRData)
		}
	}
}

func TestOrderHistoryReceivedWithoutPackagingRows(t *testing.T) {
	repo := &fakeRepo{
		outsourcing: []models.OutsourcingRecord{
			{QRData: "700.1", RequestDate: datePtr("2024-03-05 09:00:00"), ReceiveDate: datePtr("2024-03-09 15:00:00")},
		},
	}
	svc := newTestService(repo)

	groups, err := svc.OrderHistory(context.Background(), "700")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "Packaging", groups[0].Station)
}

func TestItemHistoryListsStations(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_cutting":  {obs("500.1", 1, "2024-03-01 08:00:00")},
			"station_assembly": {obs("500.1", 1, "2024-03-03 08:00:00")},
		},
		outsourcing: []models.OutsourcingRecord{
			{QRData: "500.1", RequestDate: datePtr("2024-03-04 09:00:00")},
		},
	}
	svc := newTestService(repo)

	matches, err := svc.ItemHistory(context.Background(), "500.1")
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "Cutting", matches[0].Station)
	assert.Equal(t, "Assembly", matches[1].Station)
	assert.Equal(t, models.PseudoStationOutsourcing, matches[2].Station)
}

func TestItemHistoryOutsourcingScanFailureIsIsolated(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_cutting": {obs("500.1", 1, "2024-03-01 08:00:00")},
		},
		outsourceErr: errors.New("table corrupted"),
	}
	svc := newTestService(repo)

	matches, err := svc.ItemHistory(context.Background(), "500.1")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Cutting", matches[0].Station)
}

func TestPackagedItemsMergesReceivedOutsourcing(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_packaging": {obs("152/1.1", 5, "2024-03-10 10:00:00")},
		},
		outsourcing: []models.OutsourcingRecord{
			{QRData: "152/1.3", RequestDate: datePtr("2024-03-05 09:00:00"), ReceiveDate: datePtr("2024-03-09 15:00:00")},
			{QRData: "152/1.2", RequestDate: datePtr("2024-03-11 09:00:00")}, // still out
		},
	}
	svc := newTestService(repo)

	items, err := svc.PackagedItems(context.Background(), "152/1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "152/1.1", items[0].QRData)
	assert.Equal(t, "152/1.3", items[1].QRData)
}
