package main

import (
	"log"
	"net/http"
	"os"

	"tendertriage/api"

	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env if present (non-fatal if missing)
	_ = godotenv.Load()

	addr := ":8080"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	r := api.NewRouter()
	log.Printf("Starting API server on %s", addr)
	log.Println("API endpoints available:")
	log.Println("  GET  /api/health")
	log.Println("  POST /api/triage/keys")
	log.Println("  POST /api/triage/resolve")
	log.Println("  POST /api/triage/classify")
	log.Println("  POST /api/triage/score")
	log.Println("  POST /api/triage/gate")
	log.Println("  POST /api/triage/process")
	log.Println("  POST /api/feeds/refresh")

	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
