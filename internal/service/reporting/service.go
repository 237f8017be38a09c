package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

const dateLayout = "2006-01-02"

// ActivityCounter is the aggregation surface the daily summary reads from.
type ActivityCounter interface {
	CountActivityOn(ctx context.Context, station models.Station, day time.Time) (created, updated int, err error)
	CountOutsourcingOn(ctx context.Context, day time.Time) (sent, received int, err error)
}

// Service aggregates one day of shop-floor activity.
type Service struct {
	registry *models.StationRegistry
	counter  ActivityCounter
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(registry *models.StationRegistry, counter ActivityCounter, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		counter:  counter,
		logger:   logger,
		now:      time.Now,
	}
}

// BuildDailySummary collects per-station counts for the given day. A station
// whose table cannot be read is logged and skipped; the summary still covers
// the healthy stations.
func (s *Service) BuildDailySummary(ctx context.Context, day time.Time) (models.DailySummary, error) {
	summary := models.DailySummary{
		Date:      time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
		CreatedAt: s.now().UTC(),
	}

	for _, st := range s.registry.Stations() {
		created, updated, err := s.counter.CountActivityOn(ctx, st, day)
		if err != nil {
			s.logger.Error("daily count failed, skipping station",
				zap.String("table", st.Table), zap.Error(err))
			continue
		}
		if created == 0 && updated == 0 {
			continue
		}
		summary.Stations = append(summary.Stations, models.StationActivity{
			Station: st.Name,
			Created: created,
			Updated: updated,
		})
	}

	sent, received, err := s.counter.CountOutsourcingOn(ctx, day)
	if err != nil {
		s.logger.Error("daily outsourcing count failed", zap.Error(err))
	} else {
		summary.OutsourcingSent = sent
		summary.OutsourcingReceived = received
	}

	return summary, nil
}

// FormatSummary renders the summary as the text pushed to the supervisor chat.
func (s *Service) FormatSummary(summary models.DailySummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Shop floor summary for %s\n", summary.Date.Format(dateLayout))

	if len(summary.Stations) == 0 {
		b.WriteString("No scans recorded today.\n")
	}
	for _, st := range summary.Stations {
		fmt.Fprintf(&b, "• %s: %d new, %d repeated\n", st.Station, st.Created, st.Updated)
	}

	if summary.OutsourcingSent > 0 || summary.OutsourcingReceived > 0 {
		fmt.Fprintf(&b, "Outsourcing: %d sent, %d received\n",
			summary.OutsourcingSent, summary.OutsourcingReceived)
	}

	return strings.TrimRight(b.String(), "\n")
}
