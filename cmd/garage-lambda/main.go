package main

import (
	"context"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambdaurl"
	"github.com/spf13/cobra"
	"yunion.io/x/log"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/app"
	"github.com/zexi/garage-status/pkg/handlers"
	"github.com/zexi/garage-status/pkg/options"
)

const (
	handlerCombined = "combined"
	handlerGet      = "get"
	handlerUpdate   = "update"
)

var (
	configPath  string
	handlerName string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "garage-lambda",
		Short:         "Serve one garage status handler behind a Lambda function URL",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	rootCmd.Flags().StringVar(&handlerName, "handler", envOr("GARAGE_STATUS_HANDLER", handlerCombined), "handler to serve: combined, get or update")

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("%v", err)
	}
}

func selectHandler(name string, svc handlers.StatusService) (http.Handler, error) {
	switch name {
	case handlerCombined:
		return handlers.NewStatusController(svc), nil
	case handlerGet:
		return handlers.NewGetStatusController(svc), nil
	case handlerUpdate:
		return handlers.NewSetStatusController(svc), nil
	}
	return nil, errors.Errorf("unknown handler %q", name)
}

func run(cmd *cobra.Command, args []string) error {
	opts, err := options.Load(configPath)
	if err != nil {
		return errors.Wrap(err, "load options")
	}

	// built once per process, reused by every invocation it serves
	a, err := app.New(context.Background(), opts)
	if err != nil {
		return errors.Wrap(err, "init service")
	}

	h, err := selectHandler(handlerName, a.Service)
	if err != nil {
		return err
	}
	log.Infof("Serving %s handler", handlerName)
	lambdaurl.Start(handlers.WithRequestLog(handlerName, h))
	return nil
}

func envOr(name, def string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return def
}
