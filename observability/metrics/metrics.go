package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	rserrors "github.com/turtacn/recordstore/common/errors"
)

const (
	namespace = "recordstore"
)

var (
	// Operations counts Store[R] calls by kind (put, get, del,
	// lookup_secondary) and outcome (ok, not_found, error).
	Operations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operations_total",
		Help:      "Total number of index store operations",
	}, []string{"op", "status"})

	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Index store operation duration in seconds",
		Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"op"})

	// Transactions counts kvstore.Txn commits and aborts per backend.
	Transactions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "transactions_total",
		Help:      "Total number of kvstore transactions",
	}, []string{"backend", "status"}) // status: commit, abort

	TransactionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "transaction_duration_seconds",
		Help:      "Transaction duration in seconds, from Begin to Commit/Abort",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend"})

	RecordsEncoded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_encoded_total",
		Help:      "Total number of records passed through serial.RecordSchema.Encode",
	})

	RecordsDecoded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "records_decoded_total",
		Help:      "Total number of records passed through serial.RecordSchema.Decode",
	})

	StorageBytes = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "storage_bytes",
		Help:      "On-disk storage size in bytes, by backend",
	}, []string{"backend"})

	ErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "errors_total",
		Help:      "Total number of errors by category",
	}, []string{"type"}) // type: not_found, io, exists, malformed_encoding, internal
)

// RecordOperation records one index store operation's outcome and latency.
func RecordOperation(op string, duration time.Duration, err error) {
	status := "ok"
	if errors.Is(err, rserrors.ErrNotFound) {
		status = "not_found"
	} else if err != nil {
		status = "error"
	}
	Operations.WithLabelValues(op, status).Inc()
	OperationDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordTransaction records one kvstore transaction's outcome and duration.
func RecordTransaction(backend, status string, duration time.Duration) {
	Transactions.WithLabelValues(backend, status).Inc()
	TransactionDuration.WithLabelValues(backend).Observe(duration.Seconds())
}

// RecordError increments the error counter for errType (typically one of
// the common/errors sentinel error names).
func RecordError(errType string) {
	ErrorsTotal.WithLabelValues(errType).Inc()
}

// UpdateStorageBytes updates the reported on-disk size for backend.
func UpdateStorageBytes(backend string, bytes int64) {
	StorageBytes.WithLabelValues(backend).Set(float64(bytes))
}
