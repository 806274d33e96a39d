package subscription

import (
	"go.uber.org/fx"

	ordersvc "github.com/petalmall/membership/internal/app/service/order"
)

// Module exposes the subscription service via Fx, including the granter
// hook the order lifecycle calls on payment confirmation.
var Module = fx.Options(
	fx.Provide(NewStore),
	fx.Provide(NewService),
	fx.Provide(func(s *Service) ordersvc.SubscriptionGranter { return s }),
)
