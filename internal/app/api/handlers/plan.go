package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	plansvc "github.com/petalmall/membership/internal/app/service/plan"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
)

// @Summary      List purchasable plans
// @Description  Returns active membership plans, cheapest first.
// @Tags         Plans
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/plans [get]
func ApiListActivePlans(svc *plansvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.ListActive(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      List all plans (Admin)
// @Tags         Admin
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/plans [get]
func ApiListAllPlans(svc *plansvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := svc.ListAll(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(rows))
	}
}

// @Summary      Create plan (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body plan.CreatePlanInput true "Plan fields"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/plans [post]
func ApiCreatePlan(svc *plansvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in plansvc.CreatePlanInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		p, err := svc.Create(c.Request.Context(), &in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Update plan (Admin)
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id      path int                  true "Plan ID"
// @Param        request body plan.UpdatePlanInput true "Fields to update"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/plans/{id} [patch]
func ApiUpdatePlan(svc *plansvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in plansvc.UpdatePlanInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		p, err := svc.Update(c.Request.Context(), id, &in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(p))
	}
}

// @Summary      Delete plan (Admin)
// @Tags         Admin
// @Produce      json
// @Param        id path int true "Plan ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/plans/{id} [delete]
func ApiDeletePlan(svc *plansvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), id); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterPlanRoutes(public gin.IRouter, svc *plansvc.Service) {
	public.GET("/plans", ApiListActivePlans(svc))
}

func RegisterAdminPlanRoutes(admin gin.IRouter, svc *plansvc.Service) {
	admin.GET("/plans", ApiListAllPlans(svc))
	admin.POST("/plans", ApiCreatePlan(svc))
	admin.PATCH("/plans/:id", ApiUpdatePlan(svc))
	admin.DELETE("/plans/:id", ApiDeletePlan(svc))
}
