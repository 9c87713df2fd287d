// Package notify publishes recorded garage door statuses to an MQTT broker so
// that other systems can follow the door without polling the HTTP endpoint.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"yunion.io/x/log"
	"yunion.io/x/pkg/errors"

	"github.com/zexi/garage-status/pkg/status"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 250 // milliseconds
)

const (
	ErrPublishTimeout = errors.Error("PublishTimeout")
	ErrConnectTimeout = errors.Error("ConnectTimeout")
)

type Options struct {
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	QoS         byte
}

// publisher is the part of pahomqtt.Client used once connected.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTTPublisher sends each status as a retained message, so a subscriber that
// connects later still receives the latest one.
type MQTTPublisher struct {
	client publisher
	topic  string
	qos    byte
	close  func()
}

// Topic returns the state topic for the garage under prefix.
func Topic(prefix string) string {
	return fmt.Sprintf("%s/%s/status", prefix, status.DefaultGarage)
}

func Connect(opts Options) (*MQTTPublisher, error) {
	co := pahomqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectTimeout(connectTimeout)
	if opts.Username != "" {
		co.SetUsername(opts.Username)
		co.SetPassword(opts.Password)
	}
	co.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		log.Warningf("MQTT connection to %s lost: %v", opts.Broker, err)
	})

	client := pahomqtt.NewClient(co)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, errors.Wrapf(ErrConnectTimeout, "connect %s", opts.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, errors.Wrapf(err, "connect %s", opts.Broker)
	}
	log.Infof("Connected to MQTT broker %s", opts.Broker)

	p := newPublisher(client, opts.TopicPrefix, opts.QoS)
	p.close = func() { client.Disconnect(disconnectQuiesce) }
	return p, nil
}

func newPublisher(client publisher, prefix string, qos byte) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: Topic(prefix), qos: qos}
}

func (p *MQTTPublisher) Publish(ctx context.Context, gs status.GarageDoorStatus) error {
	payload, err := json.Marshal(gs)
	if err != nil {
		return errors.Wrap(err, "encode status")
	}

	timeout := publishTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline); left < timeout {
			timeout = left
		}
	}

	token := p.client.Publish(p.topic, p.qos, true, payload)
	if !token.WaitTimeout(timeout) {
		return errors.Wrapf(ErrPublishTimeout, "publish %s after %s", p.topic, timeout)
	}
	if err := token.Error(); err != nil {
		return errors.Wrapf(err, "publish %s", p.topic)
	}
	log.Debugf("Published %s to %s", payload, p.topic)
	return nil
}

func (p *MQTTPublisher) Close() {
	if p.close != nil {
		p.close()
	}
}
