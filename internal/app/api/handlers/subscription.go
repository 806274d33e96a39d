package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/petalmall/membership/internal/app/api/middleware"
	subsvc "github.com/petalmall/membership/internal/app/service/subscription"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
)

// @Summary      List my subscriptions
// @Description  Returns the caller's entitlement periods, newest first.
// @Tags         Subscriptions
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/account/subscriptions [get]
func ApiListMySubscriptions(svc *subsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mw.IdentityFrom(c)
		if !ok {
			writeError(c, apperr.New(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		rows, err := svc.ListForUser(c.Request.Context(), id.UserID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

func RegisterSubscriptionRoutes(authed gin.IRouter, svc *subsvc.Service) {
	authed.GET("/account/subscriptions", ApiListMySubscriptions(svc))
}
