package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/Zachkp/greek-portfolio/internal/config"
	"github.com/Zachkp/greek-portfolio/internal/content"
	"github.com/Zachkp/greek-portfolio/internal/glyph"
	"github.com/Zachkp/greek-portfolio/internal/store"
)

var (
	verbose bool
	logger  *zap.Logger

	// glyphs flags
	documentHeight float64
	viewportHeight float64
	compactLayout  bool
	glyphSeed      int64
)

var rootCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Greek-themed personal portfolio server",
	Long: `portfolio serves a single-page personal site with a parallax field
of Greek glyphs, scroll-revealed project cards and a contact form.

Run without a subcommand to start the web server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var glyphsCmd = &cobra.Command{
	Use:   "glyphs",
	Short: "Print one generated glyph batch as JSON",
	Long: `glyphs runs the background generator once and prints the batch.
Useful for eyeballing layer density and cluster placement.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var opts []glyph.Option
		if cmd.Flags().Changed("seed") {
			opts = append(opts, glyph.WithSeed(glyphSeed))
		}
		batch := glyph.NewGenerator(opts...).Generate(documentHeight, viewportHeight, compactLayout)
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(batch)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	glyphsCmd.Flags().Float64Var(&documentHeight, "document-height", 0, "Document height in px (0 uses the fallback)")
	glyphsCmd.Flags().Float64Var(&viewportHeight, "viewport-height", glyph.DefaultViewportHeight, "Viewport height in px")
	glyphsCmd.Flags().BoolVar(&compactLayout, "compact", false, "Use the compact (mobile) layout")
	glyphsCmd.Flags().Int64Var(&glyphSeed, "seed", 0, "Seed for a reproducible batch")

	rootCmd.AddCommand(serveCmd, glyphsCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if !verbose && os.Getenv(gin.EnvGinMode) == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	profile, err := content.Load(cfg.ContentPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		logger.Info("no content file, using built-in profile", zap.String("path", cfg.ContentPath))
		profile = content.Default()
	case err != nil:
		return fmt.Errorf("loading content: %w", err)
	}
	profiles := content.NewStore(profile)

	srv := newServer(cfg, logger, st, profiles, cfg.Sender())
	defer srv.close()

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server listening", zap.String("addr", httpServer.Addr), zap.String("contact_mode", cfg.ContactMode))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return httpServer.Shutdown(shutdownCtx)
	})
	g.Go(func() error {
		// Hot reload is a convenience; the site keeps serving without it.
		if err := content.NewWatcher(cfg.ContentPath, profiles, logger.Named("content")).Run(ctx); err != nil {
			logger.Warn("content watcher stopped", zap.Error(err))
		}
		return nil
	})
	g.Go(func() error {
		return srv.runRetention(ctx)
	})
	return g.Wait()
}
