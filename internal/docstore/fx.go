package docstore

import (
	"github.com/smallbiznis/placements/internal/config"
	"github.com/smallbiznis/placements/internal/docstore/dynamostore"
	"github.com/smallbiznis/placements/internal/docstore/gormstore"
	"github.com/smallbiznis/placements/internal/docstore/memstore"
	"github.com/smallbiznis/placements/internal/docstore/mongostore"
	"github.com/smallbiznis/placements/internal/migration"
	"github.com/smallbiznis/placements/internal/observability/metrics"
	"github.com/smallbiznis/placements/internal/placement/domain"
	"github.com/smallbiznis/placements/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Backend is the adapter selected at startup before instrumentation.
type Backend struct {
	Store domain.Store
	Kind  string
}

// Module provides domain.Store backed by kind. Only the chosen adapter's
// connections are built.
func Module(kind string) fx.Option {
	return fx.Module("docstore",
		backend(kind),
		fx.Provide(provideStore),
	)
}

func backend(kind string) fx.Option {
	switch kind {
	case config.StoreMemory:
		return fx.Provide(func(log *zap.Logger) Backend {
			log.Warn("using in-memory document store; data is lost on restart")
			return Backend{Store: memstore.New(), Kind: config.StoreMemory}
		})
	case config.StoreMongo:
		return fx.Provide(func(p mongostore.Params) (Backend, error) {
			s, err := mongostore.NewStore(p)
			return Backend{Store: s, Kind: config.StoreMongo}, err
		})
	case config.StoreDynamo:
		return fx.Provide(func(p dynamostore.Params) (Backend, error) {
			s, err := dynamostore.NewStore(p)
			return Backend{Store: s, Kind: config.StoreDynamo}, err
		})
	default:
		return fx.Options(
			db.Module,
			migration.Module,
			fx.Provide(func(p gormstore.Params) (Backend, error) {
				s, err := gormstore.NewStore(p)
				return Backend{Store: s, Kind: config.StoreGorm}, err
			}),
		)
	}
}

func provideStore(b Backend, m *metrics.StoreMetrics) domain.Store {
	return Instrument(b.Store, b.Kind, m)
}
