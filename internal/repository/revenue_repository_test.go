package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRevenueFixture(t *testing.T) (*RevenueRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewRevenueRepo(db), mock
}

func TestRecognizedGrosz(t *testing.T) {
	repo, mock := newRevenueFixture(t)

	// Only non-refunded payments on signed contracts count.
	mock.ExpectQuery(`(?s)SUM\(p\.amount_grosz\).+p\.is_refunded=0 AND c\.is_signed=1`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(80_000))

	sum, err := repo.RecognizedGrosz(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(80_000), sum)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecognizedGroszWithSoftwareFilter(t *testing.T) {
	repo, mock := newRevenueFixture(t)

	mock.ExpectQuery(`p\.is_refunded=0 AND c\.is_signed=1 AND c\.software_id=\?`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(30_000))

	sw := uint64(3)
	sum, err := repo.RecognizedGrosz(context.Background(), &sw)
	require.NoError(t, err)
	assert.Equal(t, int64(30_000), sum)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenContractPricesGrosz(t *testing.T) {
	repo, mock := newRevenueFixture(t)

	// Signed and cancelled contracts contribute nothing to the open total.
	mock.ExpectQuery(`(?s)SUM\(price_grosz\).+is_signed=0 AND is_cancelled=0`).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(120_000))

	sum, err := repo.OpenContractPricesGrosz(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, int64(120_000), sum)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestOpenContractPricesGroszWithSoftwareFilter(t *testing.T) {
	repo, mock := newRevenueFixture(t)

	mock.ExpectQuery(`is_signed=0 AND is_cancelled=0 AND software_id=\?`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(0))

	sw := uint64(7)
	sum, err := repo.OpenContractPricesGrosz(context.Background(), &sw)
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum)
	require.NoError(t, mock.ExpectationsWereMet())
}
