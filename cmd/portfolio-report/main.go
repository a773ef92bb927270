package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/iwvelando/rental-portfolio/internal/analysis"
	"github.com/iwvelando/rental-portfolio/internal/config"
	"github.com/iwvelando/rental-portfolio/internal/logging"
	"github.com/iwvelando/rental-portfolio/pkg/constants"
	"github.com/iwvelando/rental-portfolio/pkg/output"
	"github.com/iwvelando/rental-portfolio/pkg/validation"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Process command line flags first to get config location
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to configuration file")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, json")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	snapshotFlag := flag.String("snapshot", "", "portfolio snapshot override")
	periodFlag := flag.String("period", "", "report period override: month, quarter, year")
	flag.Parse()

	// PORTFOLIO_* variables from a .env file feed the configuration overrides.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load .env\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}

	conf, err := config.LoadConfiguration(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}

	logger, err := logging.New(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// CLI overrides take precedence over config
	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if err := validation.ValidateOutputFormat(outputFormat); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}
	if *snapshotFlag != "" {
		conf.Portfolio.File = *snapshotFlag
	}
	if *periodFlag != "" {
		conf.Report.Period = *periodFlag
		conf.Report.CustomStart, conf.Report.CustomEnd = "", ""
	}

	for _, warning := range conf.ValidateConfiguration() {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	snapshot, err := conf.LoadSnapshot()
	if err != nil {
		logger.Fatal("failed to load portfolio snapshot",
			zap.String("op", "main"),
			zap.String("file", conf.ResolvePath(conf.Portfolio.File)),
			zap.Error(err),
		)
	}

	settings, err := analysis.SettingsFromConfiguration(conf)
	if err != nil {
		logger.Fatal("invalid analysis settings",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	engine, err := analysis.NewEngine(logger, settings)
	if err != nil {
		logger.Fatal("failed to initialize analysis engine",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	report, err := engine.Run(snapshot, conf.Report, time.Now())
	if err != nil {
		logger.Fatal("failed to compute report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if err := output.Write(os.Stdout, outputFormat, report); err != nil {
		logger.Fatal("failed to write report",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
