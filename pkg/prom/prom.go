package prom

import (
	"sync"

	xhttp "github.com/nimasrn/bookkeeper/pkg/http"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const (
	SystemInvoices = "invoice"
	SystemLedger   = "ledger"
)

const (
	MetricInvoicesCreated         = "created_total"
	MetricInvoicesPaid            = "paid_total"
	MetricInvoiceNumberCollisions = "number_collisions_total"
	MetricLedgerEventsProcessed   = "events_processed_total"
	MetricLedgerEventsFailed      = "events_failed_total"
	MetricLedgerEventDuration     = "event_duration_seconds"
)

var lockCreateMetricLock = &sync.Mutex{}
var namespace = "none"

var MetricSystemEnabled = false

var MetricCollectionCounters = make(map[string]prometheus.Counter)
var MetricCollectionCounterVec = make(map[string]*prometheus.CounterVec)
var MetricCollectionHistogramVec = make(map[string]*prometheus.HistogramVec)

var defaultLabels prometheus.Labels

// Create registers the application metrics. Until it is called every recording helper is a no-op.
func Create(host string, env string, nameSpace string) error {
	defaultLabels = make(prometheus.Labels)
	defaultLabels["env"] = env
	defaultLabels["instance"] = host
	namespace = nameSpace

	var err error
	hasError := func(e error) {
		if err == nil && e != nil {
			err = e
		}
	}

	hasError(createCounter(SystemInvoices, MetricInvoicesCreated))
	hasError(createCounter(SystemInvoices, MetricInvoicesPaid))
	hasError(createCounter(SystemInvoices, MetricInvoiceNumberCollisions))
	hasError(createCounterVec(SystemLedger, MetricLedgerEventsProcessed, []string{"event"}))
	hasError(createCounterVec(SystemLedger, MetricLedgerEventsFailed, []string{"event"}))
	hasError(createHistogramVec(SystemLedger, MetricLedgerEventDuration, []string{"event"}))

	MetricSystemEnabled = err == nil
	return err
}

func ListenAndServer(port string, url string) {
	hh := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	s := xhttp.CreateServer()
	s.GET(url, hh)
	logger.Info("[metrics-server] listening...", "url", url)
	if err := s.ListenAndServe(port); err != nil {
		logger.Panic("[metrics-server] http listen error", "error", err)
	}
}

func createCounter(subsystem, name string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounters[subsystem+name] = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	})
	return prometheus.Register(MetricCollectionCounters[subsystem+name])
}

func createCounterVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionCounterVec[subsystem+name] = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
	}, labels)
	return prometheus.Register(MetricCollectionCounterVec[subsystem+name])
}

func createHistogramVec(subsystem, name string, labels []string) error {
	lockCreateMetricLock.Lock()
	defer lockCreateMetricLock.Unlock()
	MetricCollectionHistogramVec[subsystem+name] = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   namespace,
		Subsystem:   subsystem,
		Name:        name,
		Help:        "",
		ConstLabels: defaultLabels,
		Buckets:     prometheus.DefBuckets,
	}, labels)
	return prometheus.Register(MetricCollectionHistogramVec[subsystem+name])
}

func IncCounter(subsystem, name string) {
	AddCounter(subsystem, name, 1)
}

func AddCounter(subsystem, name string, number float64) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounters[subsystem+name]; ok {
		v.Add(number)
		return
	}
	logger.Warn("[metrics-server] counter not found", "subsystem", subsystem, "name", name)
}

func AddCounterVec(subsystem, name string, num float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionCounterVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Add(num)
		return
	}
	logger.Warn("[metrics-server] counter vec not found", "subsystem", subsystem, "name", name)
}

func IncCounterVec(subsystem, name string, labelValues ...string) {
	AddCounterVec(subsystem, name, 1, labelValues...)
}

func AddHistogramVec(subsystem, name string, number float64, labelValues ...string) {
	if !MetricSystemEnabled {
		return
	}
	if v, ok := MetricCollectionHistogramVec[subsystem+name]; ok {
		v.WithLabelValues(labelValues...).Observe(number)
		return
	}
	logger.Warn("[metrics-server] histogram vec not found", "subsystem", subsystem, "name", name)
}

func InvoiceCreated() {
	IncCounter(SystemInvoices, MetricInvoicesCreated)
}

func InvoicePaid() {
	IncCounter(SystemInvoices, MetricInvoicesPaid)
}

func InvoiceNumberCollision() {
	IncCounter(SystemInvoices, MetricInvoiceNumberCollisions)
}

func LedgerEventProcessed(event string, seconds float64) {
	IncCounterVec(SystemLedger, MetricLedgerEventsProcessed, event)
	AddHistogramVec(SystemLedger, MetricLedgerEventDuration, seconds, event)
}

func LedgerEventFailed(event string) {
	IncCounterVec(SystemLedger, MetricLedgerEventsFailed, event)
}
