// File path: cmd/rpgbridge/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/legacyforge/rpgbridge/internal/api"
	"github.com/legacyforge/rpgbridge/internal/artifact"
	"github.com/legacyforge/rpgbridge/internal/common"
	"github.com/legacyforge/rpgbridge/internal/docstore"
	"github.com/legacyforge/rpgbridge/internal/llm"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("rpgbridge: .env file not loaded", "error", err)
	} else {
		logger.Info("rpgbridge: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	catalogPath := flag.String("catalog", "", "path to the SQLite document catalog")
	artifactDir := flag.String("artifacts", defaultArtifactDir(), "directory for generated artifacts")
	maxRounds := flag.Int("max-rounds", 0, "cap on chat tool rounds (0 uses the default)")
	flag.Parse()

	logger.Info("rpgbridge: startup initiated", "addr", *addr)

	storeCfg, err := docstore.LoadConfig()
	if err != nil {
		logger.Error("rpgbridge: catalog config load failed", "error", err)
		fmt.Println("catalog config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*catalogPath); trimmed != "" {
		storeCfg.Path = trimmed
	}
	if err := os.MkdirAll(filepath.Dir(storeCfg.Path), 0o755); err != nil {
		logger.Error("rpgbridge: catalog dir creation failed", "error", err)
		fmt.Println("catalog dir error:", err)
		os.Exit(1)
	}
	docs, err := docstore.Open(storeCfg)
	if err != nil {
		logger.Error("rpgbridge: catalog open failed", "error", err)
		fmt.Println("catalog error:", err)
		os.Exit(1)
	}
	defer docs.Close()

	artifacts, err := artifact.NewStore(*artifactDir)
	if err != nil {
		logger.Error("rpgbridge: artifact store init failed", "error", err)
		fmt.Println("artifact store error:", err)
		os.Exit(1)
	}

	provider := llm.NewProvider()
	logger.Info("rpgbridge: llm provider ready", "provider", provider.Name())

	cfg := api.DefaultConfig()
	if *maxRounds > 0 {
		cfg.MaxChatRounds = *maxRounds
	}
	server, err := api.NewServer(docs, artifacts, provider, &cfg)
	if err != nil {
		logger.Error("rpgbridge: server construction failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	fmt.Printf("Serving on %s\n", *addr)
	reachable := *addr
	if strings.HasPrefix(reachable, ":") {
		reachable = "localhost" + reachable
	}
	logger.Info("rpgbridge: server listening", "addr", *addr, "health", fmt.Sprintf("http://%s/healthz", reachable))
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("rpgbridge: server stopped", "error", err)
		fmt.Println("server stopped:", err)
	}
}

func defaultArtifactDir() string {
	if env := strings.TrimSpace(os.Getenv("RPGBRIDGE_ARTIFACT_DIR")); env != "" {
		return env
	}
	return filepath.Join("data", "artifacts")
}
