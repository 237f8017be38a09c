package ingest

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

// ErrUnknownStation indicates the station name is not in the registry.
var ErrUnknownStation = errors.New("unknown station")

// Ledger is the single write operation the ingest path needs from storage.
type Ledger interface {
	UpsertObservation(ctx context.Context, station models.Station, qrData string, observerID int64) (models.UpsertResult, error)
}

// Outsourcing covers the two-phase vendor flow writes.
type Outsourcing interface {
	MarkSent(ctx context.Context, qrData, outsourcer string) (models.UpsertResult, error)
	MarkReceived(ctx context.Context, qrData string) error
}

// Service is the ingest path: it validates and upserts scanned observations.
type Service struct {
	registry    *models.StationRegistry
	ledger      Ledger
	outsourcing Outsourcing
	logger      *zap.Logger
}

// NewService wires the ingest service.
func NewService(registry *models.StationRegistry, ledger Ledger, outsourcing Outsourcing, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry:    registry,
		ledger:      ledger,
		outsourcing: outsourcing,
		logger:      logger,
	}
}

// RecordObservation upserts one (item, station) sighting. The result reports
// whether the item was seen at the station for the first time.
func (s *Service) RecordObservation(ctx context.Context, stationName, rawID string, observerID int64) (models.UpsertResult, error) {
	station, ok := s.registry.Lookup(stationName)
	if !ok {
		return "", ErrUnknownStation
	}

	qrData, err := models.ValidateItemIdentifier(rawID)
	if err != nil {
		return "", err
	}

	result, err := s.ledger.UpsertObservation(ctx, station, qrData, observerID)
	if err != nil {
		s.logger.Error("observation upsert failed",
			zap.String("station", station.Name),
			zap.String("item", qrData),
			zap.Error(err))
		return "", err
	}

	s.logger.Info("observation recorded",
		zap.String("station", station.Name),
		zap.String("item", qrData),
		zap.String("result", string(result)),
		zap.Int64("observer", observerID))
	return result, nil
}

// SendToOutsourcing stamps the request date for an item handed to a vendor.
func (s *Service) SendToOutsourcing(ctx context.Context, rawID, outsourcer string) (models.UpsertResult, error) {
	qrData, err := models.ValidateItemIdentifier(rawID)
	if err != nil {
		return "", err
	}

	result, err := s.outsourcing.MarkSent(ctx, qrData, outsourcer)
	if err != nil {
		s.logger.Error("outsourcing send failed", zap.String("item", qrData), zap.Error(err))
		return "", err
	}

	s.logger.Info("item sent to outsourcing",
		zap.String("item", qrData),
		zap.String("outsourcer", outsourcer),
		zap.String("result", string(result)))
	return result, nil
}

// ReceiveFromOutsourcing stamps the receive date for an item coming back.
func (s *Service) ReceiveFromOutsourcing(ctx context.Context, rawID string) error {
	qrData, err := models.ValidateItemIdentifier(rawID)
	if err != nil {
		return err
	}

	if err := s.outsourcing.MarkReceived(ctx, qrData); err != nil {
		s.logger.Warn("outsourcing receive failed", zap.String("item", qrData), zap.Error(err))
		return err
	}

	s.logger.Info("item received from outsourcing", zap.String("item", qrData))
	return nil
}
