package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"coderag/internal/port"
	"coderag/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP query service",
	Long: `Serve GET /, GET /health and POST /query until interrupted.

Examples:
  coderag serve
  coderag serve --addr 127.0.0.1:9000`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	log := GetLogger()
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer st.Close()

	log.Info("connecting to vector store",
		zap.String("backend", cfg.Store.Backend),
		zap.String("url", cfg.Store.URL),
		zap.Int("port", cfg.Store.Port),
	)

	queryUC, err := newQueryUseCase(ctx, cfg, st, log)
	if err != nil {
		return err
	}

	router := server.NewRouter(cfg.Server, queryUC, log)
	srv := server.New(cfg.Server, router, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})
	g.Go(func() error {
		reportCollection(gctx, st, cfg.Store.CollectionName, log)
		return nil
	})
	return g.Wait()
}

// reportCollection logs the size of the collection being served, or warns
// when it cannot be read.
func reportCollection(ctx context.Context, st port.VectorStore, collection string, log *zap.Logger) {
	info, err := st.CollectionInfo(ctx, collection)
	if err != nil {
		log.Warn("collection not readable, queries will fail until it is indexed",
			zap.String("collection", collection),
			zap.Error(err),
		)
		return
	}
	log.Info("serving collection",
		zap.String("collection", collection),
		zap.Int("dimension", info.Dimension),
		zap.Int("points", info.Points),
	)
}
