// Command flashkv starts the FlashKV server: a RESP-speaking TCP key-value
// store. Flag parsing and process wiring follow the teacher's
// cmd/main.go loadConfig/flag shape, trimmed to the flags FlashKV's core
// actually consumes (spec.md §6's CLI surface is named an external
// collaborator, not core scope).
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flashkv/flashkv/internal/config"
	"github.com/flashkv/flashkv/internal/server"
)

var version = "dev"

func main() {
	var (
		configPath string
		host       string
		port       int
		metricsAddr string
		showVersion bool
	)

	flag.StringVar(&configPath, "config", "", "path to a JSON config file")
	flag.StringVar(&host, "host", "", "listen host (overrides config)")
	flag.IntVar(&port, "port", 0, "listen port (overrides config)")
	flag.StringVar(&metricsAddr, "metrics-addr", "", "address for the optional /metrics and /healthz endpoints (empty disables)")
	flag.BoolVar(&showVersion, "version", false, "print version and exit")
	flag.Parse()

	if showVersion {
		fmt.Println("flashkv", version)
		return
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if host != "" {
		cfg.Server.Host = host
	}
	if port != 0 {
		cfg.Server.Port = port
	}
	if metricsAddr != "" {
		cfg.Metrics.Addr = metricsAddr
	}

	srv := server.New(cfg)
	if err := srv.Start(); err != nil {
		log.Printf("fatal startup error: %v", err)
		os.Exit(1)
	}
}
