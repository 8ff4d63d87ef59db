package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"
)

var version = "dev"

func main() {
	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	rootCmd := &cobra.Command{
		Use:   "mutagate",
		Short: "Mutagate - mutation score gate for CI pipelines",
		Long: `Mutagate runs an external mutation testing tool against your project,
parses its output, and fails the pipeline when too many mutants survive.`,
		Version: version,
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(parseCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setupFileLogging mirrors console logs into a rotating file under the
// log directory, so CI runs keep a record after the console scrolls away.
func setupFileLogging(logDir string) {
	if logDir == "" {
		return
	}
	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(logDir, "mutagate.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}
	log.Logger = log.Output(zerolog.MultiLevelWriter(
		zerolog.ConsoleWriter{Out: os.Stderr},
		fileWriter,
	))
}
