package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/openwater/aquabill/internal/clock"
	"github.com/openwater/aquabill/internal/config"
	"github.com/openwater/aquabill/internal/logger"
	"github.com/openwater/aquabill/internal/server"
	"github.com/openwater/aquabill/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
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
