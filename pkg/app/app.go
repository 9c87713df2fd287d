// Package app turns loaded options into a ready status service. Both the
// HTTP server and the Lambda binary start from here.
package app

import (
	"context"

	"yunion.io/x/log"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/metrics"
	"github.com/zexi/garage-status/pkg/notify"
	"github.com/zexi/garage-status/pkg/options"
	"github.com/zexi/garage-status/pkg/status"
	"github.com/zexi/garage-status/pkg/store"
	"github.com/zexi/garage-status/pkg/store/dynamo"
	"github.com/zexi/garage-status/pkg/store/memory"
	"github.com/zexi/garage-status/pkg/store/sqlite"
)

// App owns the service and whatever it needs released on shutdown.
type App struct {
	Service *status.Service
	closers []func()
}

func New(ctx context.Context, opts *options.Options) (*App, error) {
	if err := log.SetLogLevelByString(log.Logger(), opts.Log.Level); err != nil {
		return nil, errors.Wrapf(err, "set log level %q", opts.Log.Level)
	}

	a := &App{}
	st, err := a.openStore(ctx, opts.Store)
	if err != nil {
		a.Close()
		return nil, err
	}

	svcOpts := []status.Option{status.WithTable(opts.Store.Table)}
	if opts.MQTT.Enabled {
		pub, err := notify.Connect(notify.Options{
			Broker:      opts.MQTT.Broker,
			ClientID:    opts.MQTT.ClientID,
			Username:    opts.MQTT.Username,
			Password:    opts.MQTT.Password,
			TopicPrefix: opts.MQTT.TopicPrefix,
			QoS:         byte(opts.MQTT.QoS),
		})
		if err != nil {
			a.Close()
			return nil, errors.Wrap(err, "connect mqtt publisher")
		}
		a.closers = append(a.closers, pub.Close)
		svcOpts = append(svcOpts, status.WithPublisher(pub))
	}

	a.Service = status.NewService(metrics.InstrumentStore(st), svcOpts...)
	log.Infof("Garage status service using %s store, table %q", opts.Store.Backend, opts.Store.Table)
	return a, nil
}

func (a *App) openStore(ctx context.Context, opts options.StoreOptions) (store.RecordStore, error) {
	switch opts.Backend {
	case store.BackendDynamoDB:
		client, err := dynamo.SharedClient(ctx, dynamo.ClientOptions{
			Region:   opts.Region,
			Endpoint: opts.Endpoint,
		})
		if err != nil {
			return nil, errors.Wrap(err, "dynamodb client")
		}
		return dynamo.New(client), nil
	case store.BackendSQLite:
		s, err := sqlite.Open(opts.SQLitePath)
		if err != nil {
			return nil, errors.Wrapf(err, "open sqlite store %s", opts.SQLitePath)
		}
		a.closers = append(a.closers, func() {
			if err := s.Close(); err != nil {
				log.Errorf("close sqlite store: %v", err)
			}
		})
		return s, nil
	case store.BackendMemory:
		log.Warningf("Using in-memory store, status is lost on restart")
		return memory.New(), nil
	}
	return nil, errors.Wrapf(options.ErrInvalidConfig, "unknown store backend %q", opts.Backend)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
