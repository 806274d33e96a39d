package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/petalmall/membership/internal/app/api/server"
	"github.com/petalmall/membership/internal/app/service/auth"
	"github.com/petalmall/membership/internal/app/service/order"
	"github.com/petalmall/membership/internal/app/service/plan"
	"github.com/petalmall/membership/internal/app/service/statistics"
	"github.com/petalmall/membership/internal/app/service/subscription"
	"github.com/petalmall/membership/internal/app/service/user"
	"github.com/petalmall/membership/internal/platform/db"
	"github.com/petalmall/membership/pkg/config"
	"github.com/petalmall/membership/pkg/logger"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	auth.Module,
	plan.Module,
	order.Module,
	subscription.Module,
	statistics.Module,
	user.Module,
)
