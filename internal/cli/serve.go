package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"bankassist/internal/api"
	"bankassist/internal/worker"
)

const shutdownTimeout = 10 * time.Second

type serveCommander struct {
	addr string
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the chat over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmder.run(cmd.Context(), opts)
		},
	}
	cmd.Flags().StringVar(&cmder.addr, "addr", "", "Listen address, overrides basic_config.server_address")
	return cmd
}

func (c *serveCommander) run(ctx context.Context, opts *rootOptions) error {
	rt, err := bootstrap(ctx, opts)
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	manager := worker.NewManager(rt.gateway, worker.Config{
		QueueSize:     rt.cfg.BasicConfig.QueueSize,
		HistoryWindow: rt.cfg.LLM.HistoryWindow,
		Temperature:   rt.cfg.LLM.Temperature,
		IdleTimeout:   time.Duration(rt.cfg.BasicConfig.SessionIdleTimeout) * time.Minute,
	}, rt.logger)
	defer manager.Shutdown()

	router := newRouter(manager, rt.cfg.LLM.Model, opts.debug || rt.cfg.Log.Debug, rt.logger)

	addr := c.addr
	if addr == "" {
		addr = rt.cfg.BasicConfig.ServerAddress
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	manager.StartJanitor(ctx)

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("listening", zap.String("addr", addr), zap.String("model", rt.cfg.LLM.Model))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newRouter(manager api.SessionManager, modelName string, debug bool, logger *zap.Logger) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), api.RequestLogger(logger))
	api.NewHandler(manager, modelName, logger).RegisterRoutes(router)
	return router
}
