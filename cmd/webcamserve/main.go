package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lilleviklofoten/webcamsweep/internal/app"
	"github.com/lilleviklofoten/webcamsweep/internal/constants"
	"github.com/lilleviklofoten/webcamsweep/internal/log"
	"github.com/lilleviklofoten/webcamsweep/pkg/config"
)

func main() {
	cfgFile := flag.String("config", "", "Path to YAML site configuration (built-in Gimsøysand site when empty)")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("webcamserve %s\n", constants.Version)
		os.Exit(0)
	}

	// Set up logging
	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	filename := *cfgFile
	if filename != "" {
		filename, _ = filepath.Abs(filename)
	}
	provider := config.NewProvider(filename)
	defer provider.Close()

	application := app.New(provider, log.Component("webcamserve"))
	if err := application.Run(context.Background()); err != nil {
		log.Errorf("Application error: %v", err)
		provider.Close()
		log.Sync()
		os.Exit(1)
	}
}
