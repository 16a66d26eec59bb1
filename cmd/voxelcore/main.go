package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/faiface/mainthread"
	"github.com/xlab/closer"

	"voxelcore/internal/config"
	"voxelcore/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $"+config.EnvConfigPath+")")
	levelPath := flag.String("level", "", "level file, overrides world.save_path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxelcore: %v\n", err)
		os.Exit(2)
	}
	if *levelPath != "" {
		cfg.World.SavePath = *levelPath
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "voxelcore: %v\n", err)
		os.Exit(2)
	}
	if err := logging.Init(level, cfg.Log.Dir); err != nil {
		fmt.Fprintf(os.Stderr, "voxelcore: %v\n", err)
		os.Exit(1)
	}
	closer.Bind(logging.Close)

	mainthread.Run(func() {
		if err := run(cfg); err != nil {
			logging.Error("%v", err)
			closer.Exit(1)
		}
	})
	closer.Close()
}
