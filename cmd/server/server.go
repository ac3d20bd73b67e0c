package main

import (
	"context"
	"net/http"
	"os"

	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"

	"github.com/zucenko/mazerace/config"
	"github.com/zucenko/mazerace/server"
)

type Server struct {
	router        *way.Router
	FixtureServer *server.FixtureServer
}

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Warn(err)
	}
	cfg, err := config.Load(os.Args[0], os.Args[1:], os.Getenv)
	if err != nil {
		log.Fatalln(err)
	}
	cfg.SetupLogging()

	fixtures, err := server.Load(cfg.Fixtures)
	if err != nil {
		log.Fatalf("loading fixtures from %s: %v", cfg.Fixtures, err)
	}
	Server := Server{
		FixtureServer: server.NewFixtureServer(fixtures),
	}
	go Server.FixtureServer.Loop(context.Background())
	Server.routes()
	log.Printf("Serving fixtures on port %s", cfg.Port)
	log.Fatalln(http.ListenAndServe(":"+cfg.Port, Server.router))
}
