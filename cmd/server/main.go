package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/wh131462/stillalive/internal/buildinfo"
	"github.com/wh131462/stillalive/internal/server"
	"github.com/wh131462/stillalive/internal/server/auth"
	"github.com/wh131462/stillalive/internal/server/config"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	// "token <user-id>" mints a device token instead of serving.
	if len(os.Args) > 2 && os.Args[1] == "token" {
		token, err := auth.GenerateToken(os.Args[2], []byte(cfg.SecretKey), cfg.TokenValidityDuration)
		if err != nil {
			log.Fatalf("%v", err)
		}
		fmt.Println(token)
		return
	}

	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
