package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maintledger/internal/app"
	"maintledger/internal/config"
	"maintledger/internal/core/entity"
	"maintledger/internal/core/security"
	"maintledger/internal/core/types"
	"maintledger/internal/domain/auth"
	"maintledger/pkg/logger"
)

type apiFixture struct {
	app    *app.App
	router http.Handler
	tokens map[security.Role]string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	var cfg config.Config
	cfg.Writer.CoalesceWindow = time.Millisecond
	a := app.New(cfg, app.MemoryTables())
	t.Cleanup(func() { _ = a.Close(context.Background()) })

	jwtSvc := auth.NewJWTService(auth.DefaultJWTConfig("test-secret"))
	tokens := make(map[security.Role]string)
	for _, role := range []security.Role{security.RoleAdmin, security.RoleTechnician, security.RoleViewer} {
		token, _, err := jwtSvc.GenerateAccessToken(security.NewSession("user-"+string(role), "", role))
		require.NoError(t, err)
		tokens[role] = token
	}

	router := NewRouter(RouterConfig{
		Logger:        logger.Default(),
		Validator:     jwtSvc,
		Ledger:        a.Ledger,
		Costing:       a.Costing,
		Worktime:      a.Worktime,
		WorkOrders:    a.WorkOrders,
		Projects:      a.Projects,
		Assets:        a.Assets,
		PendingWrites: a.Writer.Pending,
		Metrics:       a.Metrics.Handler(),
	})
	return &apiFixture{app: a, router: router, tokens: tokens}
}

func (f *apiFixture) call(t *testing.T, role security.Role, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token, ok := f.tokens[role]; ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type mutation[T any] struct {
	Data        T      `json:"data"`
	Persistence string `json:"persistence"`
}

type materialResult struct {
	Material  entity.Material        `json:"material"`
	Movements []entity.StockMovement `json:"movements"`
}

func TestRouter_MaterialFlow(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.call(t, security.RoleAdmin, http.MethodPost, "/api/v1/materials?wait=true", map[string]any{
		"id":        "m1",
		"code":      "FILTER-10",
		"minStock":  5,
		"locations": []map[string]any{{"name": "A", "quantity": 5}, {"name": "B", "quantity": 3}},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[mutation[materialResult]](t, rec)
	assert.Equal(t, "committed", created.Persistence)
	assert.Equal(t, types.NewQuantity(8), created.Data.Material.CurrentStock)

	rec = f.call(t, security.RoleTechnician, http.MethodPost, "/api/v1/materials/m1/consume", map[string]any{
		"quantity": 6,
		"reason":   "line maintenance",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	consumed := decode[mutation[materialResult]](t, rec)
	assert.Equal(t, "pending", consumed.Persistence)
	assert.Equal(t, []entity.LocationBalance{{Name: "A", Quantity: 0}, {Name: "B", Quantity: types.NewQuantity(2)}}, consumed.Data.Material.Locations)

	rec = f.call(t, security.RoleTechnician, http.MethodPost, "/api/v1/materials/m1/outbound", map[string]any{
		"location": "A",
		"quantity": 1,
		"reason":   "x",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "INSUFFICIENT_STOCK")

	rec = f.call(t, security.RoleViewer, http.MethodGet, "/api/v1/materials/m1/kardex?order=desc&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"kind":"OUT"`)

	rec = f.call(t, security.RoleViewer, http.MethodGet, "/api/v1/materials/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"materialId":"m1"`)

	rec = f.call(t, security.RoleViewer, http.MethodGet, "/api/v1/materials/m1/verify", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok":true`)
}

func TestRouter_Permissions(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.call(t, security.RoleViewer, http.MethodPost, "/api/v1/materials", map[string]any{"code": "X"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.call(t, "", http.MethodGet, "/api/v1/materials", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.call(t, security.RoleViewer, http.MethodGet, "/api/v1/materials/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.call(t, security.RoleAdmin, http.MethodGet, "/api/v1/materials/m1/kardex?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_WorkOrderTimeAndCost(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.call(t, security.RoleAdmin, http.MethodPut, "/api/v1/work-orders/wo-1?wait=true", map[string]any{
		"id":     "wo-1",
		"number": "1001",
		"status": "IN_PROGRESS",
		"materialLines": []map[string]any{
			{"materialId": "m1", "quantity": 2, "unitCost": "12.50"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.call(t, security.RoleAdmin, http.MethodGet, "/api/v1/work-orders/wo-1/cost", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalCost":"25"`)

	for _, action := range []string{"start", "pause", "resume", "complete"} {
		rec = f.call(t, security.RoleTechnician, http.MethodPost, "/api/v1/work-orders/wo-1/executors/tech-1/"+action, map[string]any{"reason": "parts"})
		require.Equal(t, http.StatusOK, rec.Code, action+": "+rec.Body.String())
	}

	rec = f.call(t, security.RoleTechnician, http.MethodPost, "/api/v1/work-orders/wo-1/executors/tech-1/pause", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_TRANSITION")

	rec = f.call(t, security.RoleViewer, http.MethodGet, "/api/v1/work-orders/wo-1/hours", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"executorId":"tech-1"`)

	rec = f.call(t, security.RoleAdmin, http.MethodPut, "/api/v1/work-orders/wo-2", map[string]any{"id": "other"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.call(t, security.RoleAdmin, http.MethodPut, "/api/v1/work-orders/wo-3", map[string]any{
		"id":             "wo-3",
		"executorStates": map[string]any{"e1": nil},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

	rec = f.call(t, security.RoleAdmin, http.MethodGet, "/api/v1/work-orders", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "wo-3")
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.call(t, "", http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store":"memory"`)

	rec = f.call(t, security.RoleAdmin, http.MethodPut, "/api/v1/assets/a-1?wait=true", map[string]any{
		"id": "a-1", "code": "PUMP-3", "kind": "EQUIPMENT", "costCenter": "CC-1",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.call(t, "", http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maintledger_store_writes_total")
}
