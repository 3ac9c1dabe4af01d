package checker

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thawtrack/thawtrack/internal/models"
	"github.com/thawtrack/thawtrack/internal/schedule"
	"github.com/thawtrack/thawtrack/internal/storage"
)

const testAddress = "addr1qtest000000000000"

type fixedQuoter struct {
	price float64
	ok    bool
}

func (q fixedQuoter) Quote(ctx context.Context, symbol string) (float64, bool) {
	return q.price, q.ok
}

func testSchedule() *schedule.RawSchedule {
	return &schedule.RawSchedule{Thaws: []map[string]any{
		{
			"amount":               float64(2000000),
			"thawing_period_start": "2024-01-01T00:00:00Z",
			"status":               "upcoming",
		},
	}}
}

func newTestChecker(t *testing.T, source schedule.Source, quoter Quoter, history storage.HistoryStore) *Checker {
	t.Helper()
	chk, err := New(Config{
		Source:     source,
		Normalizer: schedule.NewNormalizer("NIGHT", 0, nil),
		Quoter:     quoter,
		History:    history,
	})
	require.NoError(t, err)
	return chk
}

func TestCheck(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	defer store.Close()

	chk := newTestChecker(t, &schedule.StaticSource{Schedule: testSchedule()}, fixedQuoter{price: 2.5, ok: true}, store)

	result, err := chk.Check(ctx, testAddress)
	require.NoError(t, err)

	assert.Equal(t, testAddress, result.Address)
	assert.True(t, result.Priced)
	require.Len(t, result.Records, 1)
	assert.Equal(t, 2.0, result.Records[0].Amount)
	assert.Equal(t, models.StatusUnclaimed, result.Records[0].Status)

	assert.Equal(t, 2.0, result.Summary.TotalAmount)
	assert.Equal(t, 2.5, result.Summary.UnitPrice)
	assert.Equal(t, 5.0, result.Summary.TotalValue)

	// RequestID is a fresh UUID, not carried between requests
	_, err = uuid.Parse(result.RequestID)
	require.NoError(t, err)

	second, err := chk.Check(ctx, testAddress)
	require.NoError(t, err)
	assert.NotEqual(t, result.RequestID, second.RequestID)

	// both checks recorded, newest first
	snaps, err := store.History(ctx, testAddress)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 5.0, snaps[0].TotalValue)
}

func TestCheckWithoutQuote(t *testing.T) {
	chk := newTestChecker(t, &schedule.StaticSource{Schedule: testSchedule()}, fixedQuoter{}, nil)

	result, err := chk.Check(context.Background(), testAddress)
	require.NoError(t, err)

	assert.False(t, result.Priced)
	assert.Equal(t, 2.0, result.Summary.TotalAmount)
	assert.Equal(t, 0.0, result.Summary.UnitPrice)
	assert.Equal(t, 0.0, result.Summary.TotalValue)
}

func TestCheckNilQuoter(t *testing.T) {
	chk := newTestChecker(t, &schedule.StaticSource{Schedule: testSchedule()}, nil, nil)

	result, err := chk.Check(context.Background(), testAddress)
	require.NoError(t, err)
	assert.False(t, result.Priced)
}

func TestCheckSourceFailure(t *testing.T) {
	boom := errors.New("script exploded")
	chk := newTestChecker(t, &schedule.StaticSource{Err: boom}, nil, nil)

	_, err := chk.Check(context.Background(), testAddress)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestCheckEmptySchedule(t *testing.T) {
	chk := newTestChecker(t, &schedule.StaticSource{Schedule: &schedule.RawSchedule{}}, nil, nil)

	_, err := chk.Check(context.Background(), testAddress)
	assert.ErrorIs(t, err, schedule.ErrNoSchedule)
}

func TestCheckHistoryFailureIsNotFatal(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Close()) // recording will fail

	chk := newTestChecker(t, &schedule.StaticSource{Schedule: testSchedule()}, fixedQuoter{price: 1, ok: true}, store)

	result, err := chk.Check(context.Background(), testAddress)
	require.NoError(t, err)
	assert.Len(t, result.Records, 1)
}

func TestNewValidation(t *testing.T) {
	_, err := New(Config{Normalizer: schedule.NewNormalizer("NIGHT", 0, nil)})
	assert.Error(t, err)

	_, err = New(Config{Source: &schedule.StaticSource{}})
	assert.Error(t, err)
}
