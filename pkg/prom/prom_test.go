package prom

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	// recording before Create is a no-op
	InvoiceCreated()

	require.NoError(t, Create("test-host", "test", "bookkeeper_test"))
	assert.True(t, MetricSystemEnabled)

	InvoiceCreated()
	InvoiceCreated()
	InvoicePaid()
	LedgerEventProcessed("invoice.paid", 0.02)
	LedgerEventFailed("transaction.created")

	assert.Equal(t, 2.0, testutil.ToFloat64(MetricCollectionCounters[SystemInvoices+MetricInvoicesCreated]))
	assert.Equal(t, 1.0, testutil.ToFloat64(MetricCollectionCounters[SystemInvoices+MetricInvoicesPaid]))
	assert.Equal(t, 0.0, testutil.ToFloat64(MetricCollectionCounters[SystemInvoices+MetricInvoiceNumberCollisions]))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		MetricCollectionCounterVec[SystemLedger+MetricLedgerEventsProcessed].WithLabelValues("invoice.paid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(
		MetricCollectionCounterVec[SystemLedger+MetricLedgerEventsFailed].WithLabelValues("transaction.created")))

	t.Run("registering twice fails", func(t *testing.T) {
		assert.Error(t, Create("test-host", "test", "bookkeeper_test"))
	})
}
