// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the ebook-converter CLI: one-shot
// conversions from the terminal and the interactive web shell.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/ebook-converter/internal/convert"
	"github.com/pdiddy/ebook-converter/internal/logging"
	"github.com/pdiddy/ebook-converter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the ebook-converter CLI.
var rootCmd = &cobra.Command{
	Use:   "ebook-converter",
	Short: "Convert ebooks between EPUB, MOBI and AZW3",
	Long: `ebook-converter converts ebooks between EPUB, MOBI and AZW3 using
calibre's ebook-convert, run either from the host or from a container image.

Use "convert" for a single file from the terminal, or "serve" to start the
web page where a file can be uploaded, converted and downloaded.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./ebook-converter.yaml or ~/.config/ebook-converter/config.yaml)")
	rootCmd.PersistentFlags().String("backend", "", "where ebook-convert runs: local or container")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("conversion.backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("ebook-converter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "ebook-converter"))
		}
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix("EBOOK_CONVERTER")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the wiring shared by the convert and serve commands.
type app struct {
	cfg        types.Config
	log        *zap.Logger
	backend    *convert.LazyBackend
	dispatcher *convert.Dispatcher
}

// newApp builds the logger and dispatcher from the loaded configuration.
// The conversion backend is resolved on the first conversion that needs it.
func newApp() (*app, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return nil, err
	}
	backend := convert.NewLazyBackend(cfg.Conversion)
	d := convert.NewDispatcher(backend,
		convert.WithTempDir(cfg.Conversion.TempDir),
		convert.WithLogger(log),
	)
	return &app{cfg: cfg, log: log, backend: backend, dispatcher: d}, nil
}
