package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

// Repository is the read-only storage surface the query path fans out over.
type Repository interface {
	FindByPrefix(ctx context.Context, station models.Station, prefix string) ([]models.Observation, error)
	FindOutsourcingByPrefix(ctx context.Context, prefix string) ([]models.OutsourcingRecord, error)
	OperatorName(ctx context.Context, telegramID int64) string
}

// Service is the query-and-reconciliation core: it scans every station
// ledger plus the outsourcing table and merges the matches into a
// per-station view.
type Service struct {
	registry  *models.StationRegistry
	packaging models.Station
	repo      Repository
	logger    *zap.Logger
}

// NewService wires the search service. packagingStation is the real station
// the received-outsourcing view merges into.
func NewService(registry *models.StationRegistry, packagingStation models.Station, repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:  registry,
		packaging: packagingStation,
		repo:      repo,
		logger:    logger,
	}
}

// OrderHistory returns the order's observations grouped by station, in
// registry order, with outsourced items reconciled in. A failing station
// table is skipped; the remaining stations still answer.
func (s *Service) OrderHistory(ctx context.Context, orderNumber string) ([]models.StationHistory, error) {
	groups := make([]models.StationHistory, 0, len(s.registry.Stations()))
	index := make(map[string]int)

	for _, st := range s.registry.Stations() {
		observations, err := s.repo.FindByPrefix(ctx, st, orderNumber)
		if err != nil {
			s.logger.Error("station scan failed, skipping table",
				zap.String("operation", "order_history"),
				zap.String("table", st.Table),
				zap.Error(err))
			continue
		}
		if len(observations) == 0 {
			continue
		}
		index[st.Name] = len(groups)
		groups = append(groups, models.StationHistory{Station: st.Name, Observations: observations})
	}

	inTransit, received := s.outsourcingMatches(ctx, "order_history", orderNumber)

	if len(inTransit) > 0 {
		groups = append(groups, models.StationHistory{
			Station:      models.PseudoStationOutsourcing,
			Observations: inTransit,
		})
	}

	// Returned items belong to the packaging view, after any rows the real
	// packaging ledger already holds.
	if len(received) > 0 {
		if i, ok := index[s.packaging.Name]; ok {
			groups[i].Observations = append(groups[i].Observations, received...)
		} else {
			groups = append(groups, models.StationHistory{
				Station:      s.packaging.Name,
				Observations: received,
			})
		}
	}

	return groups, nil
}

// ItemHistory returns every station where the item was observed, flattened,
// in registry order.
func (s *Service) ItemHistory(ctx context.Context, itemNumber string) ([]models.StationMatch, error) {
	var matches []models.StationMatch

	for _, st := range s.registry.Stations() {
		observations, err := s.repo.FindByPrefix(ctx, st, itemNumber)
		if err != nil {
			s.logger.Error("station scan failed, skipping table",
				zap.String("operation", "item_history"),
				zap.String("table", st.Table),
				zap.Error(err))
			continue
		}
		for _, obs := range observations {
			matches = append(matches, models.StationMatch{Station: st.Name, Observation: obs})
		}
	}

	inTransit, received := s.outsourcingMatches(ctx, "item_history", itemNumber)
	for _, obs := range inTransit {
		matches = append(matches, models.StationMatch{Station: models.PseudoStationOutsourcing, Observation: obs})
	}
	for _, obs := range received {
		matches = append(matches, models.StationMatch{Station: s.packaging.Name, Observation: obs})
	}

	return matches, nil
}

// PackagedItems returns the order's items that reached the packaging station,
// including items returned from outsourcing.
func (s *Service) PackagedItems(ctx context.Context, orderNumber string) ([]models.Observation, error) {
	observations, err := s.repo.FindByPrefix(ctx, s.packaging, orderNumber)
	if err != nil {
		return nil, err
	}

	_, received := s.outsourcingMatches(ctx, "packaged_items", orderNumber)
	return append(observations, received...), nil
}

// outsourcingMatches scans the outsourcing table and splits matches by
// derived status. Not-yet-sent records are invisible. A scan failure is
// logged and treated as no matches, mirroring the per-table isolation of the
// ledger fan-out.
func (s *Service) outsourcingMatches(ctx context.Context, operation, prefix string) (inTransit, received []models.Observation) {
	records, err := s.repo.FindOutsourcingByPrefix(ctx, prefix)
	if err != nil {
		s.logger.Error("outsourcing scan failed, skipping table",
			zap.String("operation", operation),
			zap.String("table", "outsourcing"),
			zap.Error(err))
		return nil, nil
	}

	for _, rec := range records {
		switch rec.Status() {
		case models.OutsourcingInTransit:
			inTransit = append(inTransit, outsourcingObservation(rec))
		case models.OutsourcingReceived:
			received = append(received, outsourcingObservation(rec))
		}
	}
	return inTransit, received
}

// outsourcingObservation projects a vendor record onto the observation shape
// used by the renderers: sent date as creation, receive date as modification.
func outsourcingObservation(rec models.OutsourcingRecord) models.Observation {
	obs := models.Observation{QRData: rec.QRData}
	if rec.RequestDate != nil {
		obs.CreatedAt = *rec.RequestDate
	}
	obs.ModifiedAt = rec.ReceiveDate
	return obs
}
