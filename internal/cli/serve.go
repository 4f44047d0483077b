package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/quarryql/quarry/internal/engine"
	"github.com/quarryql/quarry/internal/eventbus"
	"github.com/quarryql/quarry/internal/otel"
	"github.com/quarryql/quarry/internal/server"
	"github.com/quarryql/quarry/internal/source"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve queries over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, src, closeSource, err := buildEngine()
		if err != nil {
			return err
		}
		defer closeSource()

		eventbus.Use(eventbus.New())
		if cfg.Tracing.Endpoint != "" {
			shutdown, err := otel.Setup(cfg.Tracing.Endpoint, cfg.Tracing.Service)
			if err != nil {
				return fmt.Errorf("setting up tracing: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = shutdown(ctx)
			}()
		}

		opts := []server.Option{server.WithTimeout(cfg.Server.Timeout.Value())}
		if cfg.Server.Pretty {
			opts = append(opts, server.WithPretty())
		}
		if cfg.Server.MaxBodyBytes > 0 {
			opts = append(opts, server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes))
		}
		if len(cfg.Server.AllowedOrigins) > 0 {
			opts = append(opts, server.WithCORS(cfg.Server.AllowedOrigins...))
		}

		mux := http.NewServeMux()
		mux.Handle("/query", server.New(eng, src, opts...))
		srv := &http.Server{Addr: cfg.Server.Addr, Handler: mux}

		errCh := make(chan error, 1)
		go func() {
			fmt.Printf("Listening on %s\n", cfg.Server.Addr)
			errCh <- srv.ListenAndServe()
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sigCh:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

// buildEngine loads the schema and data source named by the resolved config.
func buildEngine() (*engine.Engine, source.Source, func(), error) {
	sch, err := loadSchema()
	if err != nil {
		return nil, nil, nil, err
	}
	eng := engine.New(sch)

	closeSource := func() {}
	var src source.Source
	switch {
	case cfg.Data.SQLite != "":
		db, err := source.OpenSQLite(cfg.Data.SQLite, eng.Schema())
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening database: %w", err)
		}
		src = db
		closeSource = func() { _ = db.Close() }
	case cfg.Data.File != "":
		mem, err := source.LoadFile(cfg.Data.File)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading data: %w", err)
		}
		src = mem
	default:
		src = source.NewMemory(map[string]any{})
	}
	return eng, src, closeSource, nil
}
