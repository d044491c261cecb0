package config

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// CascadeConfig tunes how the persistence cascade walks an aggregate.
type CascadeConfig struct {
	// ParallelProgrammes lets sibling programmes cascade concurrently. The
	// root is still written after every programme finishes.
	ParallelProgrammes bool `mapstructure:"parallelProgrammes"`
	MaxConcurrency     int  `mapstructure:"maxConcurrency"`
}

func DefaultCascadeConfig() CascadeConfig {
	return CascadeConfig{
		ParallelProgrammes: false,
		MaxConcurrency:     4,
	}
}

type CascadeConfigHolder struct {
	current atomic.Value // holds CascadeConfig
}

// NewStaticCascadeConfigHolder returns a holder that never reloads.
func NewStaticCascadeConfigHolder(cfg CascadeConfig) *CascadeConfigHolder {
	holder := &CascadeConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewCascadeConfigHolder(log *zap.Logger) (*CascadeConfigHolder, error) {
	log = log.Named("config.cascade")
	v := viper.New()

	v.SetConfigName("cascade")
	v.SetConfigType("yml")
	v.AddConfigPath("/etc/placements")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PLACEMENTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultCascadeConfig()
	v.SetDefault("cascade.parallelProgrammes", defaults.ParallelProgrammes)
	v.SetDefault("cascade.maxConcurrency", defaults.MaxConcurrency)

	watch := true
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
		watch = false
	}

	var cfg CascadeConfig
	if err := v.UnmarshalKey("cascade", &cfg); err != nil {
		return nil, err
	}
	if err := validateCascadeConfig(cfg); err != nil {
		return nil, err
	}

	holder := NewStaticCascadeConfigHolder(cfg)
	if !watch {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated CascadeConfig
		if err := v.UnmarshalKey("cascade", &updated); err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateCascadeConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded",
			zap.String("file", e.Name),
			zap.Bool("parallel_programmes", updated.ParallelProgrammes),
			zap.Int("max_concurrency", updated.MaxConcurrency),
		)
	})

	return holder, nil
}

func (h *CascadeConfigHolder) Get() CascadeConfig {
	return h.current.Load().(CascadeConfig)
}

func validateCascadeConfig(cfg CascadeConfig) error {
	if cfg.MaxConcurrency < 1 {
		return errors.New("cascade.maxConcurrency must be at least 1")
	}
	return nil
}
