package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/petalmall/membership/internal/app/service/statistics"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
)

// @Summary      Get Dashboard Statistics (Admin)
// @Description  Retrieves daily order, revenue and membership statistics.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body statistics.DashboardStatisticRequest true "Statistic request parameters"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/statistics [post]
func ApiGetDashboardStatistic(svc *statistics.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statistics.DashboardStatisticRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		res, err := svc.GetDashboardStatistic(c.Request.Context(), &req)
		if err != nil {
			writeError(c, apperr.Wrap(apperr.CodeInternal, "failed to compute statistics", err))
			return
		}
		c.JSON(http.StatusOK, response.OKT(res))
	}
}

func RegisterAdminStatisticsRoutes(admin gin.IRouter, svc *statistics.Service) {
	admin.POST("/statistics", ApiGetDashboardStatistic(svc))
}
