package main

import (
	"context"
	"log"
	"os"

	"github.com/wh131462/stillalive/internal/buildinfo"
	"github.com/wh131462/stillalive/internal/client/cli"
	"github.com/wh131462/stillalive/internal/client/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	app.Run(ctx)

}
