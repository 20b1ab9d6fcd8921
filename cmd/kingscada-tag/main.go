package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/qsc20001102/KingSCADA-Tag/internal/config"
	"github.com/qsc20001102/KingSCADA-Tag/internal/system"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("kingscada-tag", pflag.ExitOnError)
	configPath := flags.StringP("config", "c", "", "YAML config file")
	listTemplates := flags.Bool("list-templates", false, "list template catalogue and exit")
	config.RegisterFlags(flags)
	flags.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	runner, err := system.NewRunner(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to create runner", zap.Error(err))
	}

	if *listTemplates {
		if err := printCatalog(runner); err != nil {
			logger.Fatal("Failed to list templates", zap.Error(err))
		}
		return
	}

	result, err := runner.Run()
	if err != nil {
		logger.Sync()
		os.Exit(1)
	}

	fmt.Printf("点表已生成: %s (%d rows, TagID %d-%d)\n",
		result.Output, result.Rows, result.FirstTagID, result.LastTagID)
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	zcfg.Level = level

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		zcfg.OutputPaths = append(zcfg.OutputPaths, cfg.File)
		zcfg.ErrorOutputPaths = append(zcfg.ErrorOutputPaths, cfg.File)
	}

	return zcfg.Build()
}

func printCatalog(runner *system.Runner) error {
	catalog := runner.Catalog()

	deviceTypes, err := catalog.DeviceTypes()
	if err != nil {
		return err
	}

	for _, deviceType := range deviceTypes {
		names, err := catalog.Templates(deviceType)
		if err != nil {
			return err
		}
		fmt.Println(deviceType)
		for _, name := range names {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}
