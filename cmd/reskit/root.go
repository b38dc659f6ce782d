package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/reskit/internal/logger"
)

var (
	// Global flags
	verbose      bool
	quiet        bool
	jsonOut      bool
	profileID    string
	profilesFile string
	logLevel     string
	logJSON      bool

	stdout io.Writer = os.Stdout
)

var rootCmd = &cobra.Command{
	Use:   "reskit",
	Short: "Inspect and edit game resource containers",
	Long: `reskit reads resource containers (a pointer table followed by text,
binary and protected records), lets you change records by index and writes the
container back with every pointer, length prefix and size field updated.

Container layouts come from profiles. Built-in profiles cover several handset
game formats; --profiles adds or overrides profiles from a YAML file.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().
		StringVarP(&profileID, "profile", "p", "", "Layout profile id (see 'reskit profiles')")
	rootCmd.PersistentFlags().
		StringVar(&profilesFile, "profiles", "", "YAML file with additional profiles")
	rootCmd.PersistentFlags().
		StringVar(&logLevel, "log-level", "", "Log level for diagnostics on stderr (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Write diagnostics as JSON")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

func setupLogging() error {
	if logLevel == "" {
		logger.Init(logger.Options{})
		return nil
	}
	level, err := logger.ParseLevel(logLevel)
	if err != nil {
		return err
	}
	logger.Init(logger.Options{Enabled: true, Level: level, JSON: logJSON})
	return nil
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
