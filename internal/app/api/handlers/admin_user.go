package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	mw "github.com/petalmall/membership/internal/app/api/middleware"
	usersvc "github.com/petalmall/membership/internal/app/service/user"
	"github.com/petalmall/membership/pkg/apperr"
	"github.com/petalmall/membership/pkg/response"
)

// @Summary      List users (Admin)
// @Description  Paginated user list with order/subscription summaries.
// @Tags         Admin
// @Produce      json
// @Param        page      query int false "Page (1-indexed)"
// @Param        page_size query int false "Page size"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/users [get]
func ApiListUsers(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
		pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
		res, err := svc.List(c.Request.Context(), page, pageSize)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKPaged(res.Items, res.Meta))
	}
}

// @Summary      Update user (Admin)
// @Description  Updates a user's role and/or name.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        id      path int                  true "User ID"
// @Param        request body user.UpdateUserInput true "Fields to update"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/users/{id} [patch]
func ApiUpdateUser(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := pathID(c, "id")
		if !ok {
			return
		}
		var in usersvc.UpdateUserInput
		if err := c.ShouldBindJSON(&in); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		u, err := svc.Update(c.Request.Context(), userID, &in)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(u))
	}
}

// @Summary      Delete user (Admin)
// @Description  Deletes a user and cascades orders and subscriptions. Refused while an active subscription exists.
// @Tags         Admin
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/admin/users/{id} [delete]
func ApiDeleteUser(svc *usersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := mw.IdentityFrom(c)
		if !ok {
			writeError(c, apperr.New(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		userID, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), caller, userID); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

func RegisterAdminUserRoutes(admin gin.IRouter, svc *usersvc.Service) {
	admin.GET("/users", ApiListUsers(svc))
	admin.PATCH("/users/:id", ApiUpdateUser(svc))
	admin.DELETE("/users/:id", ApiDeleteUser(svc))
}
