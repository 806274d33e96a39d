package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ordersvc "github.com/petalmall/membership/internal/app/service/order"
	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/types"
)

func TestRegisterOrderRoutes_RegistersEndpoints(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1")
	RegisterOrderRoutes(g, nil)
	RegisterAdminOrderRoutes(g.Group("/admin"), nil)
	RegisterPaymentWebhookRoutes(g.Group("/payment"), nil)

	routes := r.Routes()
	contains := func(target string) bool {
		for _, rt := range routes {
			if rt.Method+" "+rt.Path == target {
				return true
			}
		}
		return false
	}

	require.True(t, contains("POST /api/v1/account/orders"))
	require.True(t, contains("GET /api/v1/account/orders"))
	require.True(t, contains("POST /api/v1/account/orders/:id/cancel"))
	require.True(t, contains("POST /api/v1/account/orders/:id/refund-request"))
	require.True(t, contains("POST /api/v1/admin/orders/list"))
	require.True(t, contains("POST /api/v1/admin/orders/:id/refund"))
	require.True(t, contains("POST /api/v1/payment/webhook"))
}

// errManager fails every operation with a fixed error so the handler
// layer's status mapping can be exercised in isolation.
type errManager struct{ err error }

func (m *errManager) Create(context.Context, int64, int64, types.PaymentChannel) (*ordersvc.CreateOrderResult, error) {
	return nil, m.err
}
func (m *errManager) CancelForUser(context.Context, int64, int64) (*models.Order, error) {
	return nil, m.err
}
func (m *errManager) RequestRefundForUser(context.Context, int64, int64) (*models.Order, error) {
	return nil, m.err
}
func (m *errManager) ApproveRefundForOrder(context.Context, int64) (*models.Order, error) {
	return nil, m.err
}
func (m *errManager) MarkPaid(context.Context, string) (*models.Order, error) {
	return nil, m.err
}
func (m *errManager) ListForUser(context.Context, int64) ([]*models.Order, error) {
	return nil, m.err
}
func (m *errManager) ScanOrders(context.Context, *ordersvc.ScanOrdersRequest) (*ordersvc.ScanOrdersResponse, error) {
	return nil, m.err
}

func asIdentity(id types.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("identity", id)
		c.Next()
	}
}

func TestOrderHandlers_ErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   apperr.Code
	}{
		{"not found", apperr.New(apperr.CodeNotFound, "order not found"), http.StatusNotFound, apperr.CodeNotFound},
		{"invalid status", apperr.New(apperr.CodeInvalidStatus, "only pending orders can be canceled"), http.StatusBadRequest, apperr.CodeInvalidStatus},
		{"plan not found", apperr.New(apperr.CodePlanNotFound, "plan not found"), http.StatusNotFound, apperr.CodePlanNotFound},
		{"internal", apperr.New(apperr.CodeInternal, "boom"), http.StatusInternalServerError, apperr.CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			g := r.Group("/api/v1", asIdentity(types.Identity{UserID: 7, Role: types.RoleUser}))
			RegisterOrderRoutes(g, &errManager{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/v1/account/orders/42/cancel", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tc.wantStatus, w.Code)
			var body struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, string(tc.wantCode), body.Code)
		})
	}
}

func TestOrderHandlers_RequireIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// No identity middleware: every order route must refuse the call.
	RegisterOrderRoutes(r.Group("/api/v1"), &errManager{err: apperr.New(apperr.CodeInternal, "unreachable")})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/account/orders", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApiCreateOrder_RejectsMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1", asIdentity(types.Identity{UserID: 7, Role: types.RoleUser}))
	RegisterOrderRoutes(g, &errManager{err: apperr.New(apperr.CodeInternal, "unreachable")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/orders", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathID_RejectsNonNumeric(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/api/v1", asIdentity(types.Identity{UserID: 7, Role: types.RoleUser}))
	RegisterOrderRoutes(g, &errManager{err: apperr.New(apperr.CodeInternal, "unreachable")})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/account/orders/abc/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
