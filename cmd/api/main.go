package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"finmodel/pkg/api/analysis"
	"finmodel/pkg/api/forecast"
	"finmodel/pkg/core/engine"
	"finmodel/pkg/core/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("[WARNING] No .env file found, using system environment variables")
	}

	configPath := os.Getenv("ENGINE_CONFIG")
	if configPath == "" {
		configPath = "config/engine.yaml"
	}
	if err := engine.LoadConfig(configPath); err != nil {
		fmt.Printf("[WARNING] engine config %s not loaded (%v), using defaults\n", configPath, err)
	}

	// DB is optional: without DATABASE_URL runs are cached on disk instead.
	ctx := context.Background()
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(ctx); err != nil {
			fmt.Printf("[WARNING] database init failed (%v), falling back to file store\n", err)
		} else {
			defer store.Close()
			fmt.Println("[STARTUP] database connection pool ready")
		}
	}
	forecast.InitHandler(store.NewRunStore(store.GetPool(), os.Getenv("RUN_STORE_DIR")))

	http.HandleFunc("/api/forecast/derive", forecast.HandleDerive)
	http.HandleFunc("/api/forecast/validate", forecast.HandleValidate)
	http.HandleFunc("/api/forecast/consistency", forecast.HandleConsistency)
	http.HandleFunc("/api/forecast/report", forecast.HandleReport)
	http.HandleFunc("/api/forecast/runs", forecast.HandleGetRun)
	http.HandleFunc("/api/analysis/calculate", analysis.HandleCalculate)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("[STARTUP] forecast API listening on :%s\n", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] server failed: %v\n", err)
		os.Exit(1)
	}
}
