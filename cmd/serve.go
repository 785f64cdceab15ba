package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/imagetranslator/internal/detect"
	"github.com/lehigh-university-libraries/imagetranslator/internal/handlers"
)

func newServeCmd(a *app) *cobra.Command {
	var staticDir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long: `Starts the Image Translator HTTP API on the specified port.

Upload an image, extract its text, translate it into the selected language
and optionally improve the translation. Files under the static directory
are served at /.`,
		Example: `  # Start server on default port 8888
  imagetranslator serve

  # Start server on custom port with language detection
  imagetranslator serve --port 3000 --detect`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			ctx := cmd.Context()

			svc, err := buildServices(ctx, cfg)
			if err != nil {
				return err
			}
			defer svc.close()

			store, closePrefs, err := buildI18n(ctx, cfg)
			if err != nil {
				return err
			}
			defer closePrefs()

			opts := handlers.Options{
				Extractor:  svc.ocr,
				Translator: svc.translation,
				I18n:       store,
				StaticDir:  staticDir,
			}
			if cfg.Detect.Enabled {
				slog.Info("Building language detector")
				opts.Detector = detect.New()
			}
			handler := handlers.New(opts)

			addr := ":" + cfg.Server.Port
			server := &http.Server{
				Addr:              addr,
				Handler:           handler.Routes(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			// Start server in goroutine
			serverErr := make(chan error, 1)
			go func() {
				slog.Info("Image Translator available", "addr", addr, "url", "http://localhost"+addr, "provider", cfg.Provider)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					serverErr <- err
				}
			}()

			// Wait for context cancellation (Ctrl+C) or server error
			select {
			case <-ctx.Done():
				slog.Info("Shutting down server...")
				// Give server 5 seconds to shut down gracefully
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					slog.Error("Server shutdown failed", "err", err)
					return err
				}
				slog.Info("Server stopped")
				return nil
			case err := <-serverErr:
				return err
			}
		},
	}

	cmd.Flags().StringP("port", "p", "8888", "Port to listen on")
	cmd.Flags().Bool("detect", false, "Detect the language of extracted text")
	cmd.Flags().StringVar(&staticDir, "static", "static", "Directory of static files served at /")

	return cmd
}
