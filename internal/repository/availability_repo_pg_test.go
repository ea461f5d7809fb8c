package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Julius14h/FlyNext/internal/domain"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

// fakeExecer records the nights each statement touched and reports the
// configured number of affected rows.
type fakeExecer struct {
	affected int64
	nights   []time.Time
	queries  []string
}

func (f *fakeExecer) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.queries = append(f.queries, sql)
	for _, arg := range args {
		if night, ok := arg.(time.Time); ok {
			f.nights = append(f.nights, night)
		}
	}
	if f.affected > 0 {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func TestDecrementNights(t *testing.T) {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 3)

	db := &fakeExecer{affected: 1}
	err := decrementNights(context.Background(), db, 7, start, end)
	assert.NoError(t, err)
	assert.Equal(t, domain.NightsOf(start, end), db.nights)
}

func TestDecrementNights_SoldOutNight(t *testing.T) {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	db := &fakeExecer{affected: 0}
	err := decrementNights(context.Background(), db, 7, start, start.AddDate(0, 0, 2))
	assert.ErrorIs(t, err, domain.ErrNoRoomAvailable)
	// The guard trips on the first night.
	assert.Len(t, db.nights, 1)
}

func TestIncrementNights(t *testing.T) {
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	db := &fakeExecer{affected: 0}
	err := incrementNights(context.Background(), db, 7, start, start.AddDate(0, 0, 2))
	// Restoring nights never fails on affected rows; missing ledger rows
	// simply stay missing.
	assert.NoError(t, err)
	assert.Len(t, db.nights, 2)
}
