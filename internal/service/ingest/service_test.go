package ingest

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bsglab/workshoptrack/internal/domain/models"
)

type fakeLedger struct {
	result   models.UpsertResult
	err      error
	gotTable string
	gotQR    string
	gotID    int64
}

func (f *fakeLedger) UpsertObservation(_ context.Context, station models.Station, qrData string, observerID int64) (models.UpsertResult, error) {
	f.gotTable = station.Table
	f.gotQR = qrData
	f.gotID = observerID
	return f.result, f.err
}

type fakeOutsourcing struct {
	sentQR      string
	sentVendor  string
	receivedQR  string
	receiveErr  error
	sentResult  models.UpsertResult
	sentErr     error
	receiveHits int
}

func (f *fakeOutsourcing) MarkSent(_ context.Context, qrData, outsourcer string) (models.UpsertResult, error) {
	f.sentQR = qrData
	f.sentVendor = outsourcer
	return f.sentResult, f.sentErr
}

func (f *fakeOutsourcing) MarkReceived(_ context.Context, qrData string) error {
	f.receivedQR = qrData
	f.receiveHits++
	return f.receiveErr
}

func newTestService(ledger *fakeLedger, outsourcing *fakeOutsourcing) *Service {
	registry := models.NewStationRegistry([]string{"Cutting", "Packaging"})
	return NewService(registry, ledger, outsourcing, nil)
}

func TestRecordObservation(t *testing.T) {
	ledger := &fakeLedger{result: models.ResultCreated}
	svc := newTestService(ledger, &fakeOutsourcing{})

	result, err := svc.RecordObservation(context.Background(), "Cutting", " 152/1.28 ", 42)
	require.NoError(t, err)
	assert.Equal(t, models.ResultCreated, result)
	assert.Equal(t, "station_cutting", ledger.gotTable)
	assert.Equal(t, "152/1.28", ledger.gotQR, "identifier is trimmed before storage")
	assert.Equal(t, int64(42), ledger.gotID)
}

func TestRecordObservationUnknownStation(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(ledger, &fakeOutsourcing{})

	_, err := svc.RecordObservation(context.Background(), "Warehouse", "152/1.28", 42)
	assert.ErrorIs(t, err, ErrUnknownStation)
	assert.Empty(t, ledger.gotQR, "nothing reaches storage")
}

func TestRecordObservationRejectsBadIdentifier(t *testing.T) {
	ledger := &fakeLedger{}
	svc := newTestService(ledger, &fakeOutsourcing{})

	for _, raw := range []string{"", "abc", "152;DROP TABLE", "152 1"} {
		_, err := svc.RecordObservation(context.Background(), "Cutting", raw, 42)
		assert.ErrorIs(t, err, models.ErrInvalidIdentifier, "input %q", raw)
	}
	assert.Empty(t, ledger.gotQR)
}

func TestRecordObservationPropagatesStorageError(t *testing.T) {
	storageErr := errors.New("disk full")
	svc := newTestService(&fakeLedger{err: storageErr}, &fakeOutsourcing{})

	_, err := svc.RecordObservation(context.Background(), "Cutting", "152/1.28", 42)
	assert.ErrorIs(t, err, storageErr)
}

func TestSendToOutsourcing(t *testing.T) {
	outsourcing := &fakeOutsourcing{sentResult: models.ResultCreated}
	svc := newTestService(&fakeLedger{}, outsourcing)

	result, err := svc.SendToOutsourcing(context.Background(), "152/1.28", "GlassWorks")
	require.NoError(t, err)
	assert.Equal(t, models.ResultCreated, result)
	assert.Equal(t, "152/1.28", outsourcing.sentQR)
	assert.Equal(t, "GlassWorks", outsourcing.sentVendor)
}

func TestSendToOutsourcingRejectsBadIdentifier(t *testing.T) {
	outsourcing := &fakeOutsourcing{}
	svc := newTestService(&fakeLedger{}, outsourcing)

	_, err := svc.SendToOutsourcing(context.Background(), "not-an-item", "GlassWorks")
	assert.ErrorIs(t, err, models.ErrInvalidIdentifier)
	assert.Empty(t, outsourcing.sentQR)
}

func TestReceiveFromOutsourcing(t *testing.T) {
	outsourcing := &fakeOutsourcing{}
	svc := newTestService(&fakeLedger{}, outsourcing)

	require.NoError(t, svc.ReceiveFromOutsourcing(context.Background(), "152/1.28"))
	assert.Equal(t, "152/1.28", outsourcing.receivedQR)
	assert.Equal(t, 1, outsourcing.receiveHits)
}

func TestReceiveFromOutsourcingPropagatesNotSent(t *testing.T) {
	notSent := errors.New("never sent")
	outsourcing := &fakeOutsourcing{receiveErr: notSent}
	svc := newTestService(&fakeLedger{}, outsourcing)

	err := svc.ReceiveFromOutsourcing(context.Background(), "152/1.28")
	assert.ErrorIs(t, err, notSent)
}
