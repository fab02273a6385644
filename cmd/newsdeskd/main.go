package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"newsdesk/internal/config"
	"newsdesk/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "configuration file path")
	flag.Parse()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
