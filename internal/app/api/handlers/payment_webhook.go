package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersvc "github.com/petalmall/membership/internal/app/service/order"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
)

type PaymentWebhookRequest struct {
	OrderNo string `json:"order_no"`
}

// @Summary      Payment webhook
// @Description  Stub gateway callback confirming payment for an order. Applies the PENDING to PAID edge.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        request body PaymentWebhookRequest true "Payment confirmation"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/payment/webhook [post]
func ApiPaymentWebhook(mgr ordersvc.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req PaymentWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.OrderNo == "" {
			writeError(c, apperr.New(apperr.CodeInvalidInput, "missing order_no"))
			return
		}
		o, err := mgr.MarkPaid(c.Request.Context(), req.OrderNo)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(toOrderItem(o)))
	}
}

func RegisterPaymentWebhookRoutes(r gin.IRouter, mgr ordersvc.Manager) {
	r.POST("/webhook", ApiPaymentWebhook(mgr))
}
