package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestClassifyStoreError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"deadline", context.DeadlineExceeded, StoreReasonDeadlineExceeded},
		{"canceled", fmt.Errorf("find: %w", context.Canceled), StoreReasonCanceled},
		{"domain duplicate", &domain.DuplicateError{ID: "x"}, StoreReasonDuplicate},
		{"gorm duplicate", gorm.ErrDuplicatedKey, StoreReasonDuplicate},
		{"pg unique", &pgconn.PgError{Code: "23505"}, StoreReasonDuplicate},
		{"pg lock", &pgconn.PgError{Code: "55P03"}, StoreReasonLockTimeout},
		{"not found", &domain.NotFoundError{ID: "x"}, StoreReasonNotFound},
		{"unknown", errors.New("boom"), StoreReasonUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyStoreError(tc.err))
		})
	}
}

func TestStoreMetricsObserve(t *testing.T) {
	registry := prometheus.NewRegistry()
	m, err := newStoreMetrics(registry, Config{ServiceName: "placements", Environment: "test"})
	require.NoError(t, err)

	m.Observe("memory", "risks", "save", time.Millisecond, nil)
	m.Observe("memory", "risks", "save", time.Millisecond, errors.New("boom"))
	m.Observe("memory", "placements", "find_by_id", time.Millisecond, domain.ErrNotFound)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.errors.WithLabelValues("memory", "risks", "save", StoreReasonUnknown)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.errors))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	registry := prometheus.NewRegistry()
	m, err := newHTTPMetrics(registry, Config{ServiceName: "placements", Environment: "test"})
	require.NoError(t, err)

	again, err := newHTTPMetrics(registry, Config{ServiceName: "placements", Environment: "test"})
	require.NoError(t, err)
	assert.Same(t, m.requests, again.requests)

	r := gin.New()
	r.Use(m.GinMiddleware())
	r.GET("/placements/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/placements/abc", nil))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.requests.WithLabelValues("/placements/:id", http.MethodGet, "404")))
}
