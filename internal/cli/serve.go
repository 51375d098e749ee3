package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"invoice-ledger-backend/internal/logger"
	"invoice-ledger-backend/internal/repository"
	"invoice-ledger-backend/internal/routes"
	"invoice-ledger-backend/internal/services/ledger"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Bool("migrate", true, "Run migrations before serving")
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	defer rt.close()

	if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
		if err := repository.Migrate(rt.db); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(gin.Recovery(), logger.GinMiddleware(rt.log))
	// CORS config
	r.Use(cors.New(cors.Config{
		AllowOrigins:     rt.cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Owner-Id", logger.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", logger.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, rt.db, rt.cfg, rt.log)

	if rt.cfg.SweepInterval > 0 {
		sweeper := ledger.NewSweeper(repository.NewGormRepository(rt.db), rt.log, rt.cfg.SweepInterval)
		go sweeper.RunForever(ctx)
	}

	srv := &http.Server{
		Addr:              rt.cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	rt.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
