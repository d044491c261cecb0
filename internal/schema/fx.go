package schema

import (
	"github.com/smallbiznis/placements/internal/placement/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("schema",
	fx.Provide(
		New,
		func(v *Validator) domain.Validator { return v },
	),
)
