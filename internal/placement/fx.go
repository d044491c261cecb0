package placement

import (
	"github.com/smallbiznis/placements/internal/placement/service"
	"github.com/smallbiznis/placements/internal/ratelimit"
	"go.uber.org/fx"
)

var Module = fx.Module("placement.service",
	fx.Provide(func(l *ratelimit.Locker) service.Locker { return l }),
	fx.Provide(service.New),
)
