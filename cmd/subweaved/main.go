// Command subweaved runs the subtitle daemon in the foreground. It is the
// entry point used by service managers; interactive use normally goes
// through `subweave daemon start` instead.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"subweave/internal/config"
	"subweave/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	logLevel := flag.String("log-level", "", "override the configured log level")
	showVersion := flag.Bool("version", false, "print the version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("subweaved", daemonrun.Version)
		return
	}

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "subweaved:", err)
		os.Exit(1)
	}

	if err := daemonrun.Run(context.Background(), cfg, daemonrun.Options{LogLevel: *logLevel}); err != nil {
		fmt.Fprintln(os.Stderr, "subweaved:", err)
		os.Exit(1)
	}
}
