// Package report publishes the board's status JSON to an MQTT broker.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	mqtt "github.com/soypat/natiu-mqtt"
)

const connectRetries = 50

var pubFlags, _ = mqtt.NewPublishFlags(mqtt.QoS0, false, false)

// Publisher sends a status payload on Topic every Interval.
type Publisher struct {
	ClientID string
	Topic    string
	Interval time.Duration
	// Timeout bounds each broker exchange on connections that support deadlines.
	Timeout time.Duration
	Logger  *slog.Logger
}

type deadliner interface {
	SetDeadline(t time.Time) error
}

// Run connects over conn and publishes status() right away and then on
// every tick until ctx ends. conn is not closed.
func (p *Publisher) Run(ctx context.Context, conn io.ReadWriteCloser, status func() string) error {
	log := p.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if p.Topic == "" || p.Interval <= 0 {
		return errors.New("report: topic and interval are required")
	}
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	setDeadline := func() {
		if d, ok := conn.(deadliner); ok {
			_ = d.SetDeadline(time.Now().Add(timeout))
		}
	}

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1024)},
		OnPub: func(_ mqtt.Header, varPub mqtt.VariablesPublish, _ io.Reader) error {
			log.Debug("mqtt:received", slog.String("topic", string(varPub.TopicName)))
			return nil
		},
	})
	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(p.ClientID))

	setDeadline()
	if err := client.StartConnect(conn, &varconn); err != nil {
		return fmt.Errorf("report: mqtt connect: %w", err)
	}
	for i := 0; i < connectRetries && !client.IsConnected(); i++ {
		if err := client.HandleNext(); err != nil {
			return fmt.Errorf("report: mqtt connack: %w", err)
		}
	}
	if !client.IsConnected() {
		return errors.New("report: mqtt connect timed out")
	}
	log.Info("mqtt:connected", slog.String("client_id", p.ClientID), slog.String("topic", p.Topic))

	pubVar := mqtt.VariablesPublish{TopicName: []byte(p.Topic)}
	publish := func() error {
		setDeadline()
		payload := status()
		if err := client.PublishPayload(pubFlags, pubVar, []byte(payload)); err != nil {
			return fmt.Errorf("report: publish: %w", err)
		}
		log.Debug("mqtt:published", slog.Int("bytes", len(payload)))
		return nil
	}

	if err := publish(); err != nil {
		return err
	}
	t := time.NewTicker(p.Interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			setDeadline()
			if err := client.Disconnect(ctx.Err()); err != nil {
				log.Debug("mqtt:disconnect", slog.Any("err", err))
			}
			return nil
		case <-t.C:
			if err := publish(); err != nil {
				return err
			}
		}
	}
}
