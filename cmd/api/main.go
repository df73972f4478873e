package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/Joncarre/aplicacion-de-seguimiento/internal/appconf"
)

func main() {
	// A missing .env file is fine; flags and real env vars still apply.
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "", "Path to JSON config file (overrides all other flags)")
		port       = flag.Int("port", envInt("FLEET_PORT", 4000), "API server port")
		env        = flag.String("env", envString("FLEET_ENV", "development"), "Environment (development|test|production)")
		apiKeys    = flag.String("api-keys", envString("FLEET_API_KEYS", ""), "Comma-separated admin API keys")
		rateLimit  = flag.Int("rate-limit", envInt("FLEET_RATE_LIMIT", 60), "Requests per second per client")
		dbPath     = flag.String("db-path", envString("FLEET_DB_PATH", "fleet.db"), "SQLite database path")
		natsURL    = flag.String("nats-url", envString("FLEET_NATS_URL", ""), "NATS server URL (empty disables position fan-out)")
		webUIPath  = flag.String("webui-path", envString("FLEET_WEBUI_PATH", ""), "Directory with the web UI static assets")
		gtfsPath   = flag.String("gtfs-path", envString("FLEET_GTFS_PATH", ""), "GTFS zip used to seed lines and stops on startup")
		verbose    = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	var cfg appconf.Config
	if *configPath != "" {
		jsonConfig, err := appconf.LoadFromFile(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error loading config file: %v\n", err)
			os.Exit(1)
		}
		cfg = jsonConfig.ToAppConfig()
	} else {
		cfg = appconf.Config{
			Port:      *port,
			Env:       appconf.EnvFlagToEnvironment(*env),
			ApiKeys:   ParseAPIKeys(*apiKeys),
			Verbose:   *verbose,
			RateLimit: *rateLimit,
			DBPath:    *dbPath,
			NATSURL:   *natsURL,
			WebUIPath: *webUIPath,
			GTFSPath:  *gtfsPath,
		}
	}

	coreApp, err := BuildApplication(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error building application: %v\n", err)
		os.Exit(1)
	}

	if err := Run(coreApp, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
