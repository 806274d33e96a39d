package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/petalmall/membership/docs"
	"github.com/petalmall/membership/internal/app/api/handlers"
	mw "github.com/petalmall/membership/internal/app/api/middleware"
	authsvc "github.com/petalmall/membership/internal/app/service/auth"
	ordersvc "github.com/petalmall/membership/internal/app/service/order"
	plansvc "github.com/petalmall/membership/internal/app/service/plan"
	statsvc "github.com/petalmall/membership/internal/app/service/statistics"
	subsvc "github.com/petalmall/membership/internal/app/service/subscription"
	usersvc "github.com/petalmall/membership/internal/app/service/user"
	cfgpkg "github.com/petalmall/membership/pkg/config"
	metrics "github.com/petalmall/membership/pkg/metrics"
)

func newEngine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	// Add request tracing middleware only; request logger & access log are attached per group in registerRoutes
	r.Use(mw.TraceMiddleware())
	return r
}

func registerRoutes(
	r *gin.Engine,
	log *zap.SugaredLogger,
	cfg *cfgpkg.Config,
	issuer *authsvc.TokenIssuer,
	authSvc *authsvc.Service,
	planSvc *plansvc.Service,
	userSvc *usersvc.Service,
	orderMgr ordersvc.Manager,
	subSvc *subsvc.Service,
	statSvc *statsvc.Service,
) {
	// Prometheus metrics
	if cfg != nil && cfg.MetricsAddr != "" {
		p := metrics.NewPrometheus(metrics.NewPrometheusOptions{
			ReqCntURLLabelMappingFn: func(c *gin.Context) string {
				if fp := c.FullPath(); fp != "" {
					return fp
				}
				return c.Request.URL.Path
			},
			Logger: log,
		})
		p.SetListenAddress(cfg.MetricsAddr)
		p.Use(r)

		log.Infow("metrics started", "addr", cfg.MetricsAddr)
	}

	// Public group: request logger + access log
	pub := r.Group("/")
	pub.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterHealthRoutes(pub)
	// Swagger UI
	docs.SwaggerInfo.BasePath = "/"
	pub.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	apiV1 := r.Group("/api/v1")
	apiV1.Use(mw.RequestLoggerMiddleware(log), mw.AccessLogMiddleware())
	handlers.RegisterPlanRoutes(apiV1, planSvc)
	// Stub gateway callback; signature verification is the gateway
	// integration's concern, not modeled here.
	handlers.RegisterPaymentWebhookRoutes(apiV1.Group("/payment"), orderMgr)

	// Signed-in users
	authed := apiV1.Group("/")
	authed.Use(mw.RequireAuth(issuer, cfg))
	handlers.RegisterAuthRoutes(apiV1, authed, authSvc, cfg)
	handlers.RegisterOrderRoutes(authed, orderMgr)
	handlers.RegisterSubscriptionRoutes(authed, subSvc)

	// Admin-only
	admin := apiV1.Group("/admin")
	admin.Use(mw.RequireAuth(issuer, cfg), mw.RequireAdmin())
	handlers.RegisterAdminPlanRoutes(admin, planSvc)
	handlers.RegisterAdminOrderRoutes(admin, orderMgr)
	handlers.RegisterAdminUserRoutes(admin, userSvc)
	handlers.RegisterAdminStatisticsRoutes(admin, statSvc)
}

func runServer(lc fx.Lifecycle, log *zap.SugaredLogger, cfg *cfgpkg.Config, r *gin.Engine) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting HTTP server", "addr", addr)
			go func() {
				if err := srv.ListenAndServe(); err != nil {
					log.Errorf("server error: %v", err)
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("stopping HTTP server")
			shutdownCtx, cancel := context.WithTimeout(ctx, 120*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Options(
	fx.Provide(newEngine),
	fx.Invoke(registerRoutes),
	fx.Invoke(runServer),
)
