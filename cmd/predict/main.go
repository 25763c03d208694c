package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/rewired-gh/predict/internal/config"
	"github.com/rewired-gh/predict/internal/logger"
	"github.com/rewired-gh/predict/internal/models"
	"github.com/rewired-gh/predict/internal/storage"
	"github.com/rewired-gh/predict/internal/tracker"
)

const version = "0.3.0"

var (
	cfg        *config.Config
	configPath string

	// clock is the source of "now" for every command.
	clock = time.Now
)

// errActionRequired makes the process exit non-zero while predictions are
// waiting to be solved. It carries no message of its own.
var errActionRequired = eris.New("predictions waiting to be solved")

// errInvalidInput reports rejected input that has already been explained on
// stderr. It exits with code 2.
var errInvalidInput = eris.New("invalid input")

var rootCmd = &cobra.Command{
	Use:           "predict",
	Short:         "Note and test the accuracy of your predictions",
	Long:          "Records forecasts with a confidence and a due date, reminds you to resolve them once due, and scores your calibration with the Brier score.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return eris.Wrap(err, "invalid configuration")
		}
		cfg = c

		if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
			return eris.Wrap(err, "init logger")
		}
		logger.Debug("Configuration loaded, data file %s", cfg.Storage.FilePath)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	RunE: runSummary,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to configuration file (default: ./predict.yaml if present)")
}

// reportInvalid prints the reasons of a validation error and replaces it with
// errInvalidInput. Other errors pass through unchanged.
func reportInvalid(cmd *cobra.Command, err error) error {
	var verr *models.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for _, reason := range verr.Reasons {
		fmt.Fprintln(cmd.ErrOrStderr(), reason)
	}
	return errInvalidInput
}

// openTracker loads the prediction store named by the configuration.
func openTracker() (*tracker.Tracker, error) {
	st, err := storage.Open(cfg.Storage.FilePath, cfg.Storage.FilePermissions, cfg.Storage.DirPermissions)
	if err != nil {
		return nil, err
	}
	return tracker.New(st), nil
}

func main() {
	err := rootCmd.Execute()
	switch {
	case err == nil:
	case errors.Is(err, errInvalidInput):
		os.Exit(2)
	case errors.Is(err, errActionRequired):
		os.Exit(1)
	default:
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
