package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecalculationScheduler_RunsOnStart(t *testing.T) {
	// GIVEN: An item whose rows were lost
	h, router := newTestHandler(t)
	seedItem(t, router)
	ctx := context.Background()
	require.NoError(t, h.Store.DeleteAllocations(ctx, "item-1"))

	// WHEN: The scheduler starts
	s := NewRecalculationScheduler(h, time.Hour, nil)
	s.Start()
	defer s.Stop()

	// THEN: The first pass rebuilds them without waiting for a tick
	require.Eventually(t, func() bool {
		rows, err := h.Store.LoadAllocations(ctx, "item-1")
		return err == nil && len(rows) == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRecalculationScheduler_RunNowFlushesReports(t *testing.T) {
	h, router := newTestHandler(t)
	seedItem(t, router)

	rec := do(t, router, http.MethodGet, "/api/revenue?year=2023&month=12", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, h.reports.ItemCount())

	s := NewRecalculationScheduler(h, time.Hour, nil)
	summary, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, h.reports.ItemCount())
	assert.WithinDuration(t, time.Now().Add(time.Hour), s.GetNextRunTime(), time.Minute)
}

func TestRecalculationScheduler_Disabled(t *testing.T) {
	h, _ := newTestHandler(t)

	s := NewRecalculationScheduler(h, 0, nil)
	assert.False(t, s.Enabled)

	s.Start()
	assert.Nil(t, s.ticker)
	s.Stop()
}

func TestRecalculationScheduler_StopIsIdempotent(t *testing.T) {
	h, _ := newTestHandler(t)

	s := NewRecalculationScheduler(h, time.Hour, nil)
	s.Start()
	s.Stop()
	s.Stop()
	assert.Nil(t, s.ticker)
}
