package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"PolyWatch/internal/di"
	"PolyWatch/pkg/config"
)

func main() {
	// Optional .env for local runs; real deployments set the environment.
	_ = godotenv.Load()

	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}

// loadConfig falls back to pure defaults plus env overrides when the
// config file is absent, so the binary runs without any setup.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default()
	}
	return config.LoadWithEnv(path)
}
