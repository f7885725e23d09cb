// Command server exposes the outcome engine over HTTP.
package main

import (
	"flag"
	"log"
	"net/http"
	"os"

	"github.com/glitchplay/chance-engine-go/internal/api"
	"github.com/glitchplay/chance-engine-go/internal/config"
	"github.com/glitchplay/chance-engine-go/internal/store"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "listen address")
		dbPath     = flag.String("db", "chance-engine.db", "SQLite database path, empty disables persistence")
		configPath = flag.String("config", "", "optional YAML game configuration")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			logger.Fatalf("load config: %v", err)
		}
		if err := cfg.Apply(); err != nil {
			logger.Fatalf("apply config: %v", err)
		}
	}

	var db store.DB
	if *dbPath != "" {
		sqlite, err := store.NewSQLiteDB(*dbPath)
		if err != nil {
			logger.Fatalf("open database: %v", err)
		}
		defer sqlite.Close()
		if err := sqlite.Migrate(); err != nil {
			logger.Fatalf("migrate database: %v", err)
		}
		db = sqlite
	}

	server := api.NewServer(db)
	logger.Printf("listening on %s (engine %s)", *addr, api.EngineVersion)
	if err := http.ListenAndServe(*addr, server.Routes()); err != nil {
		logger.Fatalf("server: %v", err)
	}
}
