package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/iitsoft/asovec/internal/config"
	"github.com/iitsoft/asovec/internal/migration"
	"github.com/iitsoft/asovec/internal/observability"
	"github.com/iitsoft/asovec/internal/seed"
	"github.com/iitsoft/asovec/internal/server"
	"github.com/iitsoft/asovec/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		seed.Module,
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
