package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/placements/internal/clock"
	"github.com/smallbiznis/placements/internal/config"
	"github.com/smallbiznis/placements/internal/docstore"
	"github.com/smallbiznis/placements/internal/observability"
	"github.com/smallbiznis/placements/internal/placement"
	"github.com/smallbiznis/placements/internal/ratelimit"
	"github.com/smallbiznis/placements/internal/schema"
	"github.com/smallbiznis/placements/internal/server"
	"go.uber.org/fx"
)

func main() {
	cfg := config.Load()

	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		clock.Module,
		docstore.Module(cfg.DocumentStore),
		ratelimit.Module,

		// Placement domain
		schema.Module,
		placement.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
