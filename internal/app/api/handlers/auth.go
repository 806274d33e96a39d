package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	mw "github.com/petalmall/membership/internal/app/api/middleware"
	authsvc "github.com/petalmall/membership/internal/app/service/auth"
	"github.com/petalmall/membership/pkg/apperr"
	cfgpkg "github.com/petalmall/membership/pkg/config"
	"github.com/petalmall/membership/pkg/response"
)

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// @Summary      Register
// @Description  Creates a user account.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration request"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/auth/register [post]
func ApiRegister(svc *authsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		u, err := svc.Register(c.Request.Context(), req.Email, req.Password, req.Name)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(u))
	}
}

// @Summary      Login
// @Description  Verifies credentials and sets the auth cookie.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Login request"
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/auth/login [post]
func ApiLogin(svc *authsvc.Service, cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, apperr.New(apperr.CodeInvalidInput, err.Error()))
			return
		}
		res, err := svc.Login(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.SetCookie(cfg.Auth.CookieName, res.Token, int(cfg.Auth.TokenTTL.Seconds()), "/", "", cfg.Env == cfgpkg.EnvProd, true)
		c.JSON(http.StatusOK, response.OKT(res.User))
	}
}

// @Summary      Logout
// @Description  Clears the auth cookie.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/auth/logout [post]
func ApiLogout(cfg *cfgpkg.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.SetCookie(cfg.Auth.CookieName, "", -1, "/", "", cfg.Env == cfgpkg.EnvProd, true)
		c.JSON(http.StatusOK, response.OKT[any](nil))
	}
}

// @Summary      Current account
// @Description  Returns the signed-in account.
// @Tags         Auth
// @Produce      json
// @Success      200  {object}  response.APIResponse[any]
// @Router       /api/v1/auth/me [get]
func ApiMe(svc *authsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := mw.IdentityFrom(c)
		if !ok {
			writeError(c, apperr.New(apperr.CodeUnauthorized, "not signed in"))
			return
		}
		u, err := svc.Me(c.Request.Context(), id)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, response.OKT(u))
	}
}

func RegisterAuthRoutes(public gin.IRouter, authed gin.IRouter, svc *authsvc.Service, cfg *cfgpkg.Config) {
	public.POST("/auth/register", ApiRegister(svc))
	public.POST("/auth/login", ApiLogin(svc, cfg))
	public.POST("/auth/logout", ApiLogout(cfg))
	authed.GET("/auth/me", ApiMe(svc))
}
