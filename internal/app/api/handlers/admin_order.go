package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	ordersvc "github.com/petalmall/membership/internal/app/service/order"
	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
)

// @Summary      List orders (Admin)
// @Description  Paginated, filterable list of all orders, newest first.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body order.ScanOrdersRequest true "Filters and pagination"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/orders/list [post]
func ApiScanOrders(mgr ordersvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ordersvc.ScanOrdersRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		res, err := mgr.ScanOrders(c.Request.Context(), &req)
		if err != nil {
			writeError(c, err)
			return
		}
		items := lo.Map(res.Items, func(o *models.Order, _ int) *OrderItem { return toOrderItem(o) })
		c.JSON(http.StatusOK, response.OKPaged(items, res.Meta))
	}
}

// @Summary      Approve refund (Admin)
// @Description  Moves an order with a pending refund request to REFUNDED.
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/orders/{id}/refund [post]
func ApiApproveRefund(mgr ordersvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, ok := pathID(c, "id")
		if !ok {
			return
		}
		o, err := mgr.ApproveRefundForOrder(c.Request.Context(), orderID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toOrderItem(o)))
	}
}

func RegisterAdminOrderRoutes(admin gin.IRouter, mgr ordersvc.Manager) {
	admin.POST("/orders/list", ApiScanOrders(mgr))
	admin.POST("/orders/:id/refund", ApiApproveRefund(mgr))
}
