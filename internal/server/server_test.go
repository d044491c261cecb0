package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/placements/internal/config"
	obsmiddleware "github.com/smallbiznis/placements/internal/observability/logger"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/internal/ratelimit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	domain.Service

	placement *domain.Placement
	items     []domain.Placement
	market    domain.MarketResponse
	err       error

	gotBody   []byte
	gotID     string
	gotSpec   domain.QuerySpec
	gotCaller string
	gotMarket domain.MarketRequest
	gotAssign domain.ReassignRequest
}

func (f *fakeService) Submit(_ context.Context, body []byte) (*domain.Placement, error) {
	f.gotBody = body
	return f.placement, f.err
}

func (f *fakeService) Replace(_ context.Context, id string, body []byte) (*domain.Placement, error) {
	f.gotID, f.gotBody = id, body
	return f.placement, f.err
}

func (f *fakeService) FindByID(_ context.Context, id string) (*domain.Placement, error) {
	f.gotID = id
	return f.placement, f.err
}

func (f *fakeService) FindAll(context.Context) ([]domain.Placement, error) {
	return f.items, f.err
}

func (f *fakeService) DeleteByID(_ context.Context, id string) error {
	f.gotID = id
	return f.err
}

func (f *fakeService) Query(_ context.Context, spec domain.QuerySpec, caller string) ([]domain.Placement, error) {
	f.gotSpec, f.gotCaller = spec, caller
	return f.items, f.err
}

func (f *fakeService) Market(_ context.Context, req domain.MarketRequest, caller string) (domain.MarketResponse, error) {
	f.gotMarket, f.gotCaller = req, caller
	return f.market, f.err
}

func (f *fakeService) Reassign(_ context.Context, id string, req domain.ReassignRequest) (*domain.Placement, error) {
	f.gotID, f.gotAssign = id, req
	return f.placement, f.err
}

type fakeLimiter struct {
	result *ratelimit.Result
	err    error
	calls  []string
}

func (f *fakeLimiter) Enabled() bool { return true }

func (f *fakeLimiter) Allow(_ context.Context, endpoint, caller string) (*ratelimit.Result, error) {
	f.calls = append(f.calls, endpoint+"|"+caller)
	return f.result, f.err
}

func newTestServer(t *testing.T, svc *fakeService, limiter queryLimiter) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	r := NewEngine(obsmiddleware.MiddlewareConfig{CallerHeader: config.DefaultCallerHeader}, nil)
	s := NewServer(ServerParams{Gin: r, Cfg: config.Config{}, PlacementSvc: svc})
	s.queryLimiter = limiter
	s.RegisterRoutes()
	return r
}

func do(t *testing.T, r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorPayload {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func TestCreatePlacement(t *testing.T) {
	svc := &fakeService{placement: &domain.Placement{ID: "p-1", ClientName: "Acme"}}
	r := newTestServer(t, svc, nil)

	w := do(t, r, http.MethodPost, "/placements", `{"client_name":"Acme"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"client_name":"Acme"}`, string(svc.gotBody))

	var resp struct {
		Data domain.Placement `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "p-1", resp.Data.ID)
	assert.Equal(t, "Acme", resp.Data.ClientName)
}

func TestListPlacementsReturnsEmptyArray(t *testing.T) {
	r := newTestServer(t, &fakeService{}, nil)

	w := do(t, r, http.MethodGet, "/placements", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestPlacementByIDRoutes(t *testing.T) {
	svc := &fakeService{placement: &domain.Placement{ID: "p-9"}}
	r := newTestServer(t, svc, nil)

	w := do(t, r, http.MethodGet, "/placements/p-9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-9", svc.gotID)

	w = do(t, r, http.MethodPut, "/placements/p-9", `{"client_name":"Beta"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"client_name":"Beta"}`, string(svc.gotBody))

	w = do(t, r, http.MethodDelete, "/placements/p-9", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":{"deleted":true}}`, w.Body.String())
}

func TestQueryPlacementsParsesRequest(t *testing.T) {
	svc := &fakeService{items: []domain.Placement{{ID: "p-1"}}}
	r := newTestServer(t, svc, nil)

	body := `{
		"client_name": [" Acme ", ""],
		"effective_year": ["2024", 2025],
		"status": ["Bound"],
		"inception_from": "2024-01-01",
		"user_only": false,
		"order_by": "effectiveYear",
		"order_dir": "desc"
	}`
	w := do(t, r, http.MethodPost, "/placements/query", body, config.DefaultCallerHeader, "user-42")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-42", svc.gotCaller)
	assert.Equal(t, []string{"Acme"}, svc.gotSpec.ClientNames)
	assert.Equal(t, []int{2024, 2025}, svc.gotSpec.EffectiveYears)
	assert.Equal(t, []string{"Bound"}, svc.gotSpec.Statuses)
	assert.Equal(t, "2024-01-01", svc.gotSpec.InceptionFrom)
	require.NotNil(t, svc.gotSpec.UserOnly)
	assert.False(t, *svc.gotSpec.UserOnly)
	assert.Equal(t, "effectiveYear", svc.gotSpec.OrderBy)
	assert.Equal(t, "desc", svc.gotSpec.OrderDir)
}

func TestQueryPlacementsEmptyBody(t *testing.T) {
	svc := &fakeService{}
	r := newTestServer(t, svc, nil)

	w := do(t, r, http.MethodPost, "/placements/query", "", config.DefaultCallerHeader, "user-42")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, svc.gotSpec.UserOnly)
	assert.JSONEq(t, `{"data":[]}`, w.Body.String())
}

func TestQueryPlacementsRejectsBadYear(t *testing.T) {
	for _, body := range []string{
		`{"effective_year":["twenty"]}`,
		`{"effective_year":[2024.5]}`,
		`{"effective_year":[true]}`,
	} {
		t.Run(body, func(t *testing.T) {
			r := newTestServer(t, &fakeService{}, nil)

			w := do(t, r, http.MethodPost, "/placements/query", body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			payload := decodeError(t, w)
			assert.Equal(t, "validation_error", payload.Type)
			require.Len(t, payload.Errors, 1)
			assert.Equal(t, "effective_year", payload.Errors[0].Field)
		})
	}
}

func TestQueryPlacementsRejectsOutOfRangeYears(t *testing.T) {
	for _, body := range []string{
		`{"effective_year":[1e300]}`,
		`{"effective_year":["99999999999999999999"]}`,
		`{"effective_year":[12]}`,
	} {
		t.Run(body, func(t *testing.T) {
			svc := &fakeService{}
			r := newTestServer(t, svc, nil)

			w := do(t, r, http.MethodPost, "/placements/query", body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			payload := decodeError(t, w)
			require.Len(t, payload.Errors, 1)
			assert.Equal(t, "effective_year", payload.Errors[0].Field)
			assert.Equal(t, "effective_year_out_of_range", payload.Errors[0].Code)
			assert.Nil(t, svc.gotSpec.EffectiveYears)
		})
	}
}

func TestQueryPlacementsRejectsOversizedFilters(t *testing.T) {
	names := make([]string, maxFilterValues+1)
	for i := range names {
		names[i] = fmt.Sprintf("client-%d", i)
	}
	body, err := json.Marshal(map[string]any{"client_name": names})
	require.NoError(t, err)
	r := newTestServer(t, &fakeService{}, nil)

	w := do(t, r, http.MethodPost, "/placements/query", string(body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "client_name", payload.Errors[0].Field)
	assert.Equal(t, "too_many_values", payload.Errors[0].Code)
}

func TestMarketPlacementsPassesPaging(t *testing.T) {
	svc := &fakeService{market: domain.MarketResponse{PageNumber: 2, PageSize: 5, Placements: []domain.MarketPlacement{}}}
	r := newTestServer(t, svc, nil)

	w := do(t, r, http.MethodPost, "/placements/market", `{"page_number":2,"page_size":5,"owner_name":["Dana"]}`, config.DefaultCallerHeader, "user-1")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, svc.gotMarket.PageNumber)
	assert.Equal(t, 5, svc.gotMarket.PageSize)
	assert.Equal(t, []string{"Dana"}, svc.gotMarket.Spec.OwnerNames)
	assert.Equal(t, "user-1", svc.gotCaller)
}

func TestReassignPlacementBindsBody(t *testing.T) {
	svc := &fakeService{placement: &domain.Placement{ID: "p-3"}}
	r := newTestServer(t, svc, nil)

	w := do(t, r, http.MethodPost, "/placements/p-3/reassign", `{"broker_team":{"team_id":"team-7"},"broker_user":{"user_email":"a@b.co"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "p-3", svc.gotID)
	assert.Equal(t, domain.ReassignRequest{TeamID: "team-7", UserEmail: "a@b.co"}, svc.gotAssign)

	w = do(t, r, http.MethodPost, "/placements/p-3/reassign", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"schema", &domain.ValidationError{Violations: []domain.Violation{{Path: "/client_name", Message: "required"}}}, http.StatusBadRequest, "validation_error"},
		{"missing entity", &domain.MissingEntityError{Field: "user", Label: "User"}, http.StatusBadRequest, "validation_error"},
		{"malformed", fmt.Errorf("%w: trailing data", domain.ErrMalformedDocument), http.StatusBadRequest, "bad_request"},
		{"caller", domain.ErrCallerIdentityRequired, http.StatusBadRequest, "bad_request"},
		{"invalid query", fmt.Errorf("%w: bad date", domain.ErrInvalidQuery), http.StatusBadRequest, "bad_request"},
		{"duplicate", &domain.DuplicateError{ID: "p-1"}, http.StatusConflict, "conflict"},
		{"locked", fmt.Errorf("%w: busy", domain.ErrConcurrentUpdate), http.StatusConflict, "conflict"},
		{"not found", &domain.NotFoundError{Resource: domain.ResourcePlacement, ID: "p-1"}, http.StatusNotFound, "not_found"},
		{"cascade", &domain.CascadeError{Collection: domain.CollectionContracts, Err: errors.New("disk full")}, http.StatusInternalServerError, "internal_error"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestServer(t, &fakeService{err: tc.err}, nil)

			w := do(t, r, http.MethodGet, "/placements/p-1", "")

			require.Equal(t, tc.status, w.Code)
			assert.Equal(t, tc.typ, decodeError(t, w).Type)
		})
	}
}

func TestSchemaViolationPaths(t *testing.T) {
	err := &domain.ValidationError{Violations: []domain.Violation{
		{Path: "/programmes/0/contracts/0/contract_type", Message: "missing property"},
	}}
	r := newTestServer(t, &fakeService{err: err}, nil)

	w := do(t, r, http.MethodPost, "/placements", `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeError(t, w)
	require.Len(t, payload.Errors, 1)
	assert.Equal(t, "/programmes/0/contracts/0/contract_type", payload.Errors[0].Field)
	assert.Equal(t, "schema_violation", payload.Errors[0].Code)
}

func TestClassifyErrorForLog(t *testing.T) {
	typ, code := classifyErrorForLog(&domain.CascadeError{Err: errors.New("x")})
	assert.Equal(t, "internal_error", typ)
	assert.Equal(t, domain.ErrPartialCascade.Error(), code)

	typ, code = classifyErrorForLog(&domain.DuplicateError{ID: "p"})
	assert.Equal(t, "conflict", typ)
	assert.Equal(t, "conflict", code)
}

func TestQueryRateLimitDenies(t *testing.T) {
	limiter := &fakeLimiter{result: &ratelimit.Result{
		Allowed:    false,
		Limit:      10,
		Remaining:  0,
		ResetTime:  time.Unix(1_700_000_000, 0),
		RetryAfter: 1500 * time.Millisecond,
	}}
	svc := &fakeService{}
	r := newTestServer(t, svc, limiter)

	w := do(t, r, http.MethodPost, "/placements/query", `{}`, config.DefaultCallerHeader, "user-5")

	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate_limited", decodeError(t, w).Type)
	assert.Equal(t, "2", w.Header().Get("Retry-After"))
	assert.Equal(t, "10", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1700000000", w.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, []string{"/placements/query|user-5"}, limiter.calls)
	assert.Empty(t, svc.gotCaller)
}

func TestQueryRateLimitAllowsAndFailsOpen(t *testing.T) {
	limiter := &fakeLimiter{result: &ratelimit.Result{Allowed: true, Limit: 10, Remaining: 9}}
	r := newTestServer(t, &fakeService{}, limiter)

	w := do(t, r, http.MethodPost, "/placements/market", `{}`, config.DefaultCallerHeader, "user-5")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "9", w.Header().Get("X-RateLimit-Remaining"))

	limiter.result, limiter.err = nil, errors.New("redis down")
	w = do(t, r, http.MethodPost, "/placements/market", `{}`, config.DefaultCallerHeader, "user-5")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, "1", retryAfterSeconds(0))
	assert.Equal(t, "1", retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, "3", retryAfterSeconds(2100*time.Millisecond))
}

func TestHealth(t *testing.T) {
	r := newTestServer(t, &fakeService{}, nil)

	w := do(t, r, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
