package service

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/licensedesk/revenue-api/internal/queue"
	"github.com/licensedesk/revenue-api/internal/repository"
)

// recordingPublisher captures lifecycle events instead of talking to the
// broker.
type recordingPublisher struct {
	signed  []queue.ContractSignedEvent
	expired []queue.ContractExpiredEvent
}

func (p *recordingPublisher) PublishContractSigned(_ context.Context, ev queue.ContractSignedEvent) error {
	p.signed = append(p.signed, ev)
	return nil
}

func (p *recordingPublisher) PublishContractExpired(_ context.Context, ev queue.ContractExpiredEvent) error {
	p.expired = append(p.expired, ev)
	return nil
}

func newSweepFixture(t *testing.T) (*ContractService, sqlmock.Sqlmock, *recordingPublisher) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	pub := &recordingPublisher{}
	svc := NewContractService(db, nil, nil, repository.NewContractRepo(db), nil, pub)
	return svc, mock, pub
}

func TestSweepExpiredCancelsAndRefunds(t *testing.T) {
	svc, mock, pub := newSweepFixture(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM contracts`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5).AddRow(9))
	// Each cancelled contract is immediately followed by the refund of its
	// outstanding payments inside the same transaction.
	for _, id := range []int64{5, 9} {
		mock.ExpectExec(`UPDATE contracts SET is_cancelled=1`).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE payments SET is_refunded=1.+is_refunded=0`).
			WithArgs(sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 2))
	}
	mock.ExpectCommit()

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, pub.expired, 2)
	assert.Equal(t, uint64(5), pub.expired[0].ContractID)
	assert.Equal(t, uint64(9), pub.expired[1].ContractID)
	assert.Empty(t, pub.signed)
}

func TestSweepExpiredNothingToCancel(t *testing.T) {
	svc, mock, pub := newSweepFixture(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM contracts`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	n, err := svc.SweepExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, pub.expired)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSweepExpiredRollsBackTheWholeBatch(t *testing.T) {
	svc, mock, pub := newSweepFixture(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM contracts`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5).AddRow(9))
	mock.ExpectExec(`UPDATE contracts SET is_cancelled=1`).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE payments SET is_refunded=1`).
		WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	n, err := svc.SweepExpired(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Empty(t, pub.expired, "no events for a rolled-back sweep")
	require.NoError(t, mock.ExpectationsWereMet())
}
