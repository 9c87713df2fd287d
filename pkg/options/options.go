// Package options loads the service configuration.
//
// Values are layered: built-in defaults, then an optional YAML file, then
// GARAGE_STATUS_* environment variables. Command-line flags are applied last
// by the binaries themselves.
package options

import (
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/status"
	"github.com/zexi/garage-status/pkg/store"
)

const envPrefix = "GARAGE_STATUS_"

const (
	ErrInvalidConfig = errors.Error("InvalidConfig")
)

type Options struct {
	Server ServerOptions `yaml:"server"`
	Store  StoreOptions  `yaml:"store"`
	MQTT   MQTTOptions   `yaml:"mqtt"`
	Log    LogOptions    `yaml:"log"`
}

type ServerOptions struct {
	Address      string        `yaml:"address"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type StoreOptions struct {
	// Backend is one of dynamodb, sqlite or memory.
	Backend string `yaml:"backend"`
	Table   string `yaml:"table"`

	// DynamoDB only. Empty values use the AWS SDK defaults.
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`

	// SQLite only.
	SQLitePath string `yaml:"sqlite_path"`
}

type MQTTOptions struct {
	Enabled     bool   `yaml:"enabled"`
	Broker      string `yaml:"broker"`
	ClientID    string `yaml:"client_id"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	TopicPrefix string `yaml:"topic_prefix"`
	QoS         int    `yaml:"qos"`
}

type LogOptions struct {
	Level string `yaml:"level"`
}

func Default() *Options {
	return &Options{
		Server: ServerOptions{
			Address:      "127.0.0.1",
			Port:         8080,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Store: StoreOptions{
			Backend:    store.BackendDynamoDB,
			Table:      status.DefaultTableName,
			SQLitePath: "./data/garage-status.db",
		},
		MQTT: MQTTOptions{
			Broker:      "tcp://localhost:1883",
			ClientID:    "garage-status",
			TopicPrefix: "garage",
			QoS:         1,
		},
		Log: LogOptions{
			Level: "info",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped
// when path is empty) and the environment.
func Load(path string) (*Options, error) {
	opts := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "read config file")
		}
		if err := yaml.Unmarshal(data, opts); err != nil {
			return nil, errors.Wrap(err, "parse config file")
		}
	}
	if err := opts.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

func (o *Options) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"ADDRESS":           &o.Server.Address,
		"STORE_BACKEND":     &o.Store.Backend,
		"TABLE":             &o.Store.Table,
		"AWS_REGION":        &o.Store.Region,
		"DYNAMODB_ENDPOINT": &o.Store.Endpoint,
		"SQLITE_PATH":       &o.Store.SQLitePath,
		"MQTT_BROKER":       &o.MQTT.Broker,
		"MQTT_CLIENT_ID":    &o.MQTT.ClientID,
		"MQTT_USERNAME":     &o.MQTT.Username,
		"MQTT_PASSWORD":     &o.MQTT.Password,
		"MQTT_TOPIC_PREFIX": &o.MQTT.TopicPrefix,
		"LOG_LEVEL":         &o.Log.Level,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"PORT":     &o.Server.Port,
		"MQTT_QOS": &o.MQTT.QoS,
	}
	for name, dst := range ints {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return errors.Wrapf(ErrInvalidConfig, "%s%s=%q is not a number", envPrefix, name, v)
			}
			*dst = n
		}
	}

	if v, ok := lookup(envPrefix + "MQTT_ENABLED"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%sMQTT_ENABLED=%q is not a boolean", envPrefix, v)
		}
		o.MQTT.Enabled = b
	}
	return nil
}

func (o *Options) Validate() error {
	switch strings.ToLower(o.Store.Backend) {
	case store.BackendDynamoDB, store.BackendSQLite, store.BackendMemory:
		o.Store.Backend = strings.ToLower(o.Store.Backend)
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown store backend %q", o.Store.Backend)
	}
	if o.Store.Table == "" {
		return errors.Wrap(ErrInvalidConfig, "store table must not be empty")
	}
	if o.Store.Backend == store.BackendSQLite && o.Store.SQLitePath == "" {
		return errors.Wrap(ErrInvalidConfig, "sqlite backend needs sqlite_path")
	}
	if o.Server.Port < 1 || o.Server.Port > 65535 {
		return errors.Wrapf(ErrInvalidConfig, "port %d out of range", o.Server.Port)
	}
	if o.MQTT.Enabled {
		if o.MQTT.Broker == "" {
			return errors.Wrap(ErrInvalidConfig, "mqtt enabled without broker")
		}
		if o.MQTT.QoS < 0 || o.MQTT.QoS > 2 {
			return errors.Wrapf(ErrInvalidConfig, "mqtt qos %d must be 0, 1 or 2", o.MQTT.QoS)
		}
	}
	return nil
}
