package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"gorm.io/gorm"
)

const (
	StoreReasonDeadlineExceeded = "deadline_exceeded"
	StoreReasonCanceled         = "canceled"
	StoreReasonDuplicate        = "duplicate"
	StoreReasonNotFound         = "not_found"
	StoreReasonLockTimeout      = "db_lock_timeout"
	StoreReasonUnknown          = "unknown"
)

// StoreMetrics tracks document store round trips per adapter, collection and
// operation.
type StoreMetrics struct {
	duration *prometheus.HistogramVec
	errors   *prometheus.CounterVec
}

func NewStoreMetrics(cfg Config) (*StoreMetrics, error) {
	return newStoreMetrics(prometheus.DefaultRegisterer, cfg)
}

func newStoreMetrics(registerer prometheus.Registerer, cfg Config) (*StoreMetrics, error) {
	constLabels := constLabelsFor(cfg)
	duration, err := register(registerer, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "placements_store_operation_duration_seconds",
		Help:        "Document store operation latency.",
		Buckets:     []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		ConstLabels: constLabels,
	}, []string{"store", "collection", "operation"}))
	if err != nil {
		return nil, err
	}
	errs, err := register(registerer, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "placements_store_operation_errors_total",
		Help:        "Document store operation errors by low-cardinality reason.",
		ConstLabels: constLabels,
	}, []string{"store", "collection", "operation", "reason"}))
	if err != nil {
		return nil, err
	}
	return &StoreMetrics{duration: duration, errors: errs}, nil
}

// Observe records one store round trip. Absent documents are not errors.
func (m *StoreMetrics) Observe(store, collection, operation string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(store, collection, operation).Observe(elapsed.Seconds())
	if err == nil {
		return
	}
	reason := ClassifyStoreError(err)
	if reason == StoreReasonNotFound {
		return
	}
	m.errors.WithLabelValues(store, collection, operation, reason).Inc()
}

// ClassifyStoreError maps store failures onto a fixed reason set.
func ClassifyStoreError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return StoreReasonDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return StoreReasonCanceled
	case errors.Is(err, domain.ErrDuplicateIdentifier), errors.Is(err, gorm.ErrDuplicatedKey):
		return StoreReasonDuplicate
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return StoreReasonNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return StoreReasonDuplicate
		case "55P03":
			return StoreReasonLockTimeout
		}
	}
	return StoreReasonUnknown
}
