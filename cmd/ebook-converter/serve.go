package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/ebook-converter/internal/shell"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web page for interactive conversions",
	Long: `Serve starts an HTTP server with a single page: upload an ebook, pick
the output format, enter a file name, and download the converted file.
POST /api/convert accepts the same multipart form and returns the converted
file directly, or a JSON error.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer func() { _ = a.log.Sync() }()

	// Same-format copies still work without a backend; report it early.
	if b, err := a.backend.Resolve(); err != nil {
		a.log.Warn("conversion backend unavailable", zap.Error(err))
	} else {
		a.log.Info("conversion backend ready", zap.String("backend", b.Name()))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := shell.NewHandler(a.dispatcher, a.cfg.Server, a.log)
	srv := shell.NewServer(h.Routes(),
		shell.WithAddress(a.cfg.Server.Addr),
		shell.WithServerLogger(a.log),
	)
	a.log.Info("serving", zap.String("addr", a.cfg.Server.Addr), zap.String("version", version))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		h.Run(ctx)
		return nil
	})
	g.Go(func() error {
		defer stop()
		return srv.Run(ctx)
	})
	return g.Wait()
}
