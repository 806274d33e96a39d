package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	mw "github.com/petalmall/membership/internal/app/api/middleware"
	ordersvc "github.com/petalmall/membership/internal/app/service/order"
	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
	"github.com/petalmall/membership/pkg/types"
)

type CreateOrderRequest struct {
	PlanID int64 `json:"plan_id"`
	// PaymentChannel is optional; the configured default applies when
	// it is empty.
	PaymentChannel types.PaymentChannel `json:"payment_channel"`
}

type OrderItem struct {
	ID             int64                `json:"id"`
	OrderNo        string               `json:"order_no"`
	UserID         int64                `json:"user_id"`
	PlanID         int64                `json:"plan_id"`
	PlanName       string               `json:"plan_name"`
	Amount         int64                `json:"amount"`
	Currency       string               `json:"currency"`
	Status         types.OrderStatus    `json:"status"`
	PaymentChannel types.PaymentChannel `json:"payment_channel"`
	PaidAt         *time.Time           `json:"paid_at"`
	CreatedAt      time.Time            `json:"created_at"`
}

type CreateOrderResponse struct {
	Order      *OrderItem `json:"order"`
	PaymentURL string     `json:"payment_url"`
}

func toOrderItem(o *models.Order) *OrderItem {
	item := &OrderItem{
		ID:             o.ID,
		OrderNo:        o.OrderNo,
		UserID:         o.UserID,
		PlanID:         o.PlanID,
		Amount:         o.Amount,
		Currency:       o.Currency,
		Status:         o.Status,
		PaymentChannel: o.PaymentChannel,
		PaidAt:         o.PaidAt,
		CreatedAt:      o.CreatedAt,
	}
	if snap := o.GetPlanSnapshot(); snap != nil {
		item.PlanName = snap.Name
	}
	return item
}

// @Summary      Create order
// @Description  Creates a PENDING order for an active plan and returns a payment URL.
// @Tags         Orders
// @Accept       json
// @Produce      json
// @Param        request body CreateOrderRequest true "Create order request"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/account/orders [post]
func ApiCreateOrder(mgr ordersvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mw.IdentityFrom(c)
		if !ok {
			writeError(c, apperr.New(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		var req CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		res, err := mgr.Create(c.Request.Context(), id.UserID, req.PlanID, req.PaymentChannel)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(&CreateOrderResponse{
			Order:      toOrderItem(res.Order),
			PaymentURL: res.PaymentURL,
		}))
	}
}

// @Summary      List my orders
// @Description  Returns the caller's orders, newest first.
// @Tags         Orders
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/account/orders [get]
func ApiListMyOrders(mgr ordersvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mw.IdentityFrom(c)
		if !ok {
			writeError(c, apperr.New(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		rows, err := mgr.ListForUser(c.Request.Context(), id.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		items := lo.Map(rows, func(o *models.Order, _ int) *OrderItem { return toOrderItem(o) })
		c.JSON(http.StatusOK, response.OKT(items))
	}
}

// @Summary      Cancel order
// @Description  Cancels one of the caller's PENDING orders.
// @Tags         Orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/account/orders/{id}/cancel [post]
func ApiCancelOrder(mgr ordersvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mw.IdentityFrom(c)
		if !ok {
			writeError(c, apperr.New(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		orderID, ok := pathID(c, "id")
		if !ok {
			return
		}
		o, err := mgr.CancelForUser(c.Request.Context(), orderID, id.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toOrderItem(o)))
	}
}

// @Summary      Request refund
// @Description  Records refund intent on one of the caller's PAID orders.
// @Tags         Orders
// @Produce      json
// @Param        id path int true "Order ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/account/orders/{id}/refund-request [post]
func ApiRequestRefund(mgr ordersvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mw.IdentityFrom(c)
		if !ok {
			writeError(c, apperr.New(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		orderID, ok := pathID(c, "id")
		if !ok {
			return
		}
		o, err := mgr.RequestRefundForUser(c.Request.Context(), orderID, id.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toOrderItem(o)))
	}
}

func RegisterOrderRoutes(authed gin.IRouter, mgr ordersvc.Manager) {
	authed.POST("/account/orders", ApiCreateOrder(mgr))
	authed.GET("/account/orders", ApiListMyOrders(mgr))
	authed.POST("/account/orders/:id/cancel", ApiCancelOrder(mgr))
	authed.POST("/account/orders/:id/refund-request", ApiRequestRefund(mgr))
}
