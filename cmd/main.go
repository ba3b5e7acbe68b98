package main

import (
	"fmt"
	"os"

	"github.com/1F47E/nato-grid/pkg/config"
	"github.com/1F47E/nato-grid/pkg/gridcode"
	"github.com/1F47E/nato-grid/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configFile string
	jsonOutput bool
	verbose    bool
	alphabet   string
	codeLength int

	cfg   *config.Config
	codec *gridcode.Codec
	log   *zap.Logger
	out   *printer
)

var rootCmd = &cobra.Command{
	Use:   "natogrid",
	Short: "Spell coordinates as NATO phonetic grid codes",
	Long: `natogrid turns a latitude/longitude inside a bounding box into a sequence of
phonetic alphabet words and back, and reads loosely written coordinates.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Config file path (default ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
	rootCmd.PersistentFlags().StringVarP(&alphabet, "alphabet", "a", "", "Override the configured alphabet (nato, raf, letters)")
	rootCmd.PersistentFlags().IntVarP(&codeLength, "length", "l", 0, "Override the configured code length")

	rootCmd.AddCommand(encodeCmd, decodeCmd, parseCmd, shortCmd, shareCmd, linksCmd,
		placesCmd, serveCmd, benchCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configFile)
	if err != nil {
		return err
	}

	if alphabet != "" {
		cfg.Grid.Alphabet = alphabet
	}
	if codeLength != 0 {
		cfg.Grid.CodeLength = codeLength
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err = logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}

	codec, err = cfg.Codec()
	if err != nil {
		return err
	}
	log.Debug("codec ready",
		zap.String("alphabet", codec.Alphabet().Name()),
		zap.Int("length", codec.Length()),
		zap.Any("bounds", codec.Bounds()),
	)

	out = newPrinter(os.Stdout, jsonOutput)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(err.Error()))
		os.Exit(1)
	}
}
