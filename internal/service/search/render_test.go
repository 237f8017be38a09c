package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

func TestRenderTableAlignsColumns(t *testing.T) {
	out := renderTable(
		[]string{"Item", "Operator"},
		[][]string{
			{"152/1.28", "Ivan Petrov"},
			{"152/1.3", "-"},
		},
	)

	assert.True(t, strings.HasPrefix(out, "```\n"))
	assert.True(t, strings.HasSuffix(out, "\n```"))

	lines := strings.Split(strings.Trim(out, "`\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Item     │ Operator   ", lines[0])
	assert.Equal(t, "─────────┼────────────", lines[1])
	assert.Equal(t, "152/1.28 │ Ivan Petrov", lines[2])
	assert.Equal(t, "152/1.3  │ -          ", lines[3])
}

func TestRenderTableEmptyRows(t *testing.T) {
	assert.Empty(t, renderTable(itemTableHeaders, nil))
}

func TestRenderTableWidthsCountRunes(t *testing.T) {
	out := renderTable(
		[]string{"Operator"},
		[][]string{{"Мария Иванова"}}, // 13 runes, far more bytes
	)
	lines := strings.Split(strings.Trim(out, "`\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Operator     ", lines[0])
	assert.Equal(t, "Мария Иванова", lines[2])
}

func TestTruncateLongMessage(t *testing.T) {
	long := strings.Repeat("x", maxMessageLen+500)
	out := truncate(long)

	assert.LessOrEqual(t, len(out), maxMessageLen)
	assert.True(t, strings.HasSuffix(out, truncateMark))
}

func TestTruncateKeepsShortMessage(t *testing.T) {
	short := strings.Repeat("x", maxMessageLen)
	assert.Equal(t, short, truncate(short))
}

func TestTruncateRespectsRuneBoundary(t *testing.T) {
	long := strings.Repeat("я", maxMessageLen) // 2-byte runes
	out := truncate(long)

	cut := strings.TrimSuffix(out, truncateMark)
	assert.True(t, strings.HasSuffix(cut, "я"), "must not split a rune")
}

func TestOrderReportListsAllItemsSortedAndDeduped(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_cutting": {
				obs("152/1.3", 1, "2024-03-01 08:00:00"),
				obs("152/1.28", 1, "2024-03-01 09:00:00"),
			},
			"station_packaging": {obs("152/1.28", 5, "2024-03-10 10:00:00")},
		},
		names: map[int64]string{1: "Ivan Petrov", 5: "Olga Orlova"},
	}
	svc := newTestService(repo)

	report, err := svc.OrderReport(context.Background(), "152/1")
	require.NoError(t, err)

	assert.Contains(t, report, "📊 *Order 152/1:*")
	assert.Contains(t, report, "📍 *Cutting*")
	assert.Contains(t, report, "📍 *Packaging*")
	assert.Contains(t, report, "Ivan Petrov")

	// The footer lists each item once, sorted.
	footer := report[strings.Index(report, "All items"):]
	assert.Equal(t, 1, strings.Count(footer, "`152/1.28`"))
	assert.Less(t, strings.Index(footer, "152/1.28"), strings.Index(footer, "152/1.3`"))
}

func TestOrderReportEmptyHistory(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	report, err := svc.OrderReport(context.Background(), "999")
	require.NoError(t, err)
	assert.Empty(t, report)
}

func TestItemReportShowsStations(t *testing.T) {
	repo := &fakeRepo{
		observations: map[string][]models.Observation{
			"station_cutting": {obs("500.1", 7, "2024-03-01 08:00:00")},
		},
	}
	svc := newTestService(repo)

	report, err := svc.ItemReport(context.Background(), "500.1")
	require.NoError(t, err)
	assert.Contains(t, report, "🔧 *Item 500.1:*")
	assert.Contains(t, report, "Cutting")
	assert.Contains(t, report, "2024-03-01")
	assert.Contains(t, report, "-", "unknown operator falls back to a dash")
}

func TestPackagedReportEmpty(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	report, err := svc.PackagedReport(context.Background(), "152")
	require.NoError(t, err)
	assert.Empty(t, report)
}
