package mq

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"ecommerce-api/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createTestReport() *domain.ErrorReport {
	return &domain.ErrorReport{
		RequestID:    "6f1c2b9e-0d5c-4a43-9d1e-3f8e2b7a1c55",
		ErrorName:    "INTERNAL_ERROR",
		ErrorMessage: "boom",
		Method:       "GET",
		URL:          "/api/v1/products/9",
		UserAgent:    "curl/8.4.0",
		IP:           "203.0.113.7",
		OccurredAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMockReporter(t *testing.T) {
	reporter := NewMockReporter(zap.NewNop())
	ctx := context.Background()

	t.Run("records reports", func(t *testing.T) {
		require.NoError(t, reporter.Report(ctx, createTestReport()))

		reports := reporter.Reports()
		require.Len(t, reports, 1)
		assert.Equal(t, "/api/v1/products/9", reports[0].URL)
	})

	t.Run("fails on demand", func(t *testing.T) {
		reporter.FailWith(errors.New("queue unavailable"))
		assert.Error(t, reporter.Report(ctx, createTestReport()))
		assert.Len(t, reporter.Reports(), 1)
	})

	t.Run("close", func(t *testing.T) {
		assert.NoError(t, reporter.Close())
	})
}

func TestErrorReportEvent_JSON(t *testing.T) {
	event := newErrorReportEvent(createTestReport())

	assert.True(t, strings.HasPrefix(event.ID, "evt_"))
	assert.Equal(t, EventTypeErrorReported, event.Type)

	body, err := json.Marshal(event)
	require.NoError(t, err)

	var decoded ErrorReportEvent
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	require.NotNil(t, decoded.Report)
	assert.Equal(t, "6f1c2b9e-0d5c-4a43-9d1e-3f8e2b7a1c55", decoded.Report.RequestID)
	assert.Equal(t, "ecommerce-api", decoded.Metadata["source"])
}

func TestGenerateEventID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateEventID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
