package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"yunion.io/x/log"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/app"
	"github.com/zexi/garage-status/pkg/handlers"
	"github.com/zexi/garage-status/pkg/options"
)

const shutdownTimeout = 10 * time.Second

var (
	configPath string
	addr       string
	port       int
	backend    string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "garage-status",
		Short:         "HTTP status store for the garage door",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve,
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&addr, "addr", "", "HTTP server listen address (overrides config)")
	rootCmd.Flags().IntVar(&port, "port", 0, "HTTP server listen port (overrides config)")
	rootCmd.Flags().StringVar(&backend, "store", "", "store backend: dynamodb, sqlite or memory (overrides config)")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func loadOptions() (*options.Options, error) {
	opts, err := options.Load(configPath)
	if err != nil {
		return nil, errors.Wrap(err, "load options")
	}
	if addr != "" {
		opts.Server.Address = addr
	}
	if port != 0 {
		opts.Server.Port = port
	}
	if backend != "" {
		opts.Store.Backend = backend
	}
	return opts, opts.Validate()
}

func serve(cmd *cobra.Command, args []string) error {
	log.Infof("============= GARAGE STATUS ==========")
	opts, err := loadOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, opts)
	if err != nil {
		return errors.Wrap(err, "init service")
	}
	defer a.Close()

	srv := &http.Server{
		Handler:      handlers.NewRouter(a.Service),
		Addr:         fmt.Sprintf("%s:%d", opts.Server.Address, opts.Server.Port),
		WriteTimeout: opts.Server.WriteTimeout,
		ReadTimeout:  opts.Server.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "listen and serve")
	case <-ctx.Done():
	}

	log.Infof("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return nil
}
