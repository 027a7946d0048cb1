package service

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRevenueSource serves fixed aggregates and remembers the filter it was
// asked for.
type fakeRevenueSource struct {
	recognized int64
	open       int64
	err        error

	lastFilter *uint64
}

func (f *fakeRevenueSource) RecognizedGrosz(_ context.Context, softwareID *uint64) (int64, error) {
	f.lastFilter = softwareID
	return f.recognized, f.err
}

func (f *fakeRevenueSource) OpenContractPricesGrosz(_ context.Context, softwareID *uint64) (int64, error) {
	f.lastFilter = softwareID
	return f.open, f.err
}

// recordingConverter applies a fixed rate and records every amount it is
// asked to convert.
type recordingConverter struct {
	rate  float64
	calls []int64
}

func (r *recordingConverter) Convert(_ context.Context, amountGrosz int64, targetCurrency string) int64 {
	r.calls = append(r.calls, amountGrosz)
	if targetCurrency == "" || targetCurrency == HomeCurrency {
		return amountGrosz
	}
	return int64(math.Round(float64(amountGrosz) * r.rate))
}

func TestCurrentRevenueExcludesOpenContracts(t *testing.T) {
	// 80 000 gr paid on signed contracts, 120 000 gr of open contract face
	// value: only the former is recognized.
	src := &fakeRevenueSource{recognized: 80_000, open: 120_000}
	svc := NewRevenueService(src, &recordingConverter{rate: 1})

	got, err := svc.Current(context.Background(), nil, "PLN")
	require.NoError(t, err)
	assert.Equal(t, int64(80_000), got)
}

func TestPredictedRevenueAddsOpenContractPrices(t *testing.T) {
	src := &fakeRevenueSource{recognized: 80_000, open: 120_000}
	svc := NewRevenueService(src, &recordingConverter{rate: 1})

	got, err := svc.Predicted(context.Background(), nil, "PLN")
	require.NoError(t, err)
	assert.Equal(t, int64(200_000), got)
}

func TestPredictedRevenueConvertsCombinedTotalOnce(t *testing.T) {
	src := &fakeRevenueSource{recognized: 80_000, open: 120_000}
	conv := &recordingConverter{rate: 0.25}
	svc := NewRevenueService(src, conv)

	got, err := svc.Predicted(context.Background(), nil, "USD")
	require.NoError(t, err)
	assert.Equal(t, int64(50_000), got)
	require.Len(t, conv.calls, 1, "both terms are summed before converting")
	assert.Equal(t, int64(200_000), conv.calls[0])
}

func TestRevenuePassesSoftwareFilterThrough(t *testing.T) {
	src := &fakeRevenueSource{recognized: 10_000}
	svc := NewRevenueService(src, &recordingConverter{rate: 1})
	sw := uint64(3)

	_, err := svc.Current(context.Background(), &sw, "PLN")
	require.NoError(t, err)
	require.NotNil(t, src.lastFilter)
	assert.Equal(t, sw, *src.lastFilter)
}

func TestRevenuePropagatesSourceErrors(t *testing.T) {
	src := &fakeRevenueSource{err: errors.New("connection lost")}
	svc := NewRevenueService(src, &recordingConverter{rate: 1})

	_, err := svc.Current(context.Background(), nil, "PLN")
	assert.Error(t, err)
	_, err = svc.Predicted(context.Background(), nil, "PLN")
	assert.Error(t, err)
}
