// Package bridge subscribes to the cistern sensors' MQTT topics and
// forwards each level report to the API service's internal ingestion
// endpoint.
package bridge

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.BridgeService/client"
	logger "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Logger"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

// levelReport is one queued MQTT level message.
type levelReport struct {
	SensorID   string
	RawValue   float64
	Topic      string
	ReceivedAt time.Time
}

type Bridge struct {
	cfg        cismodels.BridgeConfig
	apiClient  *client.APIClient
	mqttClient mqtt.Client
	msgCh      chan levelReport
	wg         sync.WaitGroup
	logger     *logger.Logger
}

func New(cfg cismodels.BridgeConfig, apiClient *client.APIClient, logger *logger.Logger) *Bridge {
	return &Bridge{
		cfg:       cfg,
		apiClient: apiClient,
		msgCh:     make(chan levelReport, 4096),
		logger:    logger,
	}
}

func (b *Bridge) Start(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(b.brokerURL()).
		SetClientID(b.cfg.ClientID).
		SetOrderMatters(false).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetCleanSession(false)

	if b.cfg.BrokerUser != "" {
		opts.SetUsername(b.cfg.BrokerUser)
		opts.SetPassword(b.cfg.BrokerPass)
	}

	if b.cfg.UseTLS {
		tlsCfg, err := b.tlsConfig(b.cfg.CACertPath)
		if err != nil {
			return err
		}
		opts.SetTLSConfig(tlsCfg)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		b.logger.Logger.Error().Err(err).Msg("MQTT connection lost")
	}
	opts.OnConnect = func(c mqtt.Client) {
		topic := b.cfg.Topic
		if b.cfg.SharedGroup != "" {
			topic = fmt.Sprintf("$share/%s/%s", b.cfg.SharedGroup, b.cfg.Topic)
		}
		b.logger.Logger.Info().Str("topic", topic).Msg("MQTT connected, subscribing to topic")
		if token := c.Subscribe(topic, 1, b.onMessage); token.Wait() && token.Error() != nil {
			b.logger.Logger.Error().Err(token.Error()).Str("topic", topic).Msg("Failed to subscribe to MQTT topic")
		}
	}

	b.mqttClient = mqtt.NewClient(opts)
	if tk := b.mqttClient.Connect(); tk.Wait() && tk.Error() != nil {
		return tk.Error()
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.forwarder(ctx)
	}()

	return nil
}

func (b *Bridge) Stop() {
	if b.mqttClient != nil && b.mqttClient.IsConnected() {
		b.mqttClient.Disconnect(500)
	}
	close(b.msgCh)
	b.wg.Wait()
}

func (b *Bridge) IsConnected() bool {
	return b.mqttClient != nil && b.mqttClient.IsConnected()
}

// onMessage parses one level report. Expected topic format:
// cistern/<sensor_id>/level; the payload is either a JSON object with a
// "level" field or a bare number.
func (b *Bridge) onMessage(_ mqtt.Client, m mqtt.Message) {
	b.logger.Logger.Debug().Str("topic", m.Topic()).Str("payload", string(m.Payload())).Msg("Received MQTT message")

	parts := strings.Split(m.Topic(), "/")
	if len(parts) < 3 || parts[2] != "level" {
		b.logger.Logger.Warn().Str("topic", m.Topic()).Str("expected", "cistern/<sensor_id>/level").Msg("Invalid topic format")
		return
	}
	sensorID := parts[1]

	rawValue, err := parseLevelPayload(m.Payload())
	if err != nil {
		b.logger.Logger.Warn().Err(err).Str("topic", m.Topic()).Msg("Unparseable level payload")
		b.publishError(sensorID, "invalid_payload", err.Error())
		return
	}

	b.logger.Logger.Debug().Str("sensor_id", sensorID).Float64("raw_value", rawValue).Msg("Queuing level report")
	b.msgCh <- levelReport{
		SensorID:   sensorID,
		RawValue:   rawValue,
		Topic:      m.Topic(),
		ReceivedAt: time.Now().UTC(),
	}
}

// parseLevelPayload accepts {"level": 42.5} or a bare number. A missing
// reading may arrive as the -1 sentinel; it is forwarded as-is.
func parseLevelPayload(payload []byte) (float64, error) {
	var body struct {
		Level *float64 `json:"level"`
	}
	if err := json.Unmarshal(payload, &body); err == nil && body.Level != nil {
		return *body.Level, nil
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(string(payload)), 64)
	if err != nil {
		return 0, fmt.Errorf("payload %q is neither a level object nor a number", string(payload))
	}
	return value, nil
}

// forwarder drains the message queue and pushes each report to the API
// service. Failures are reported back over MQTT and the loop goes on.
func (b *Bridge) forwarder(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-b.msgCh:
			if !ok {
				return
			}
			if err := b.apiClient.CreateReading(ctx, report.SensorID, report.RawValue, report.ReceivedAt); err != nil {
				b.logger.Logger.Error().Err(err).Str("sensor_id", report.SensorID).Msg("Error forwarding reading to API")
				b.publishError(report.SensorID, "forward_error", fmt.Sprintf("Failed to forward reading: %v", err))
			}
		}
	}
}

func (b *Bridge) brokerURL() string {
	scheme := "tcp"
	if b.cfg.UseTLS {
		scheme = "tcps"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, b.cfg.BrokerHost, b.cfg.BrokerPort)
}

func (b *Bridge) tlsConfig(caFile string) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if caFile == "" {
		return cfg, nil
	}
	ca, err := os.ReadFile(caFile)
	if err != nil {
		return nil, err
	}
	cp := x509.NewCertPool()
	if !cp.AppendCertsFromPEM(ca) {
		return nil, fmt.Errorf("bad CA file")
	}
	cfg.RootCAs = cp
	return cfg, nil
}

// publishError publishes an error message to the error topic for sensor feedback
func (b *Bridge) publishError(sensorID, errorType, message string) {
	if b.mqttClient == nil || !b.mqttClient.IsConnected() {
		return
	}

	errorPayload := map[string]interface{}{
		"error_type": errorType,
		"message":    message,
		"sensor_id":  sensorID,
		"timestamp":  time.Now().UTC(),
	}

	payloadJSON, err := json.Marshal(errorPayload)
	if err != nil {
		b.logger.Logger.Error().Err(err).Msg("Failed to marshal error payload")
		return
	}

	errorTopic := fmt.Sprintf("bridge/errors/%s", sensorID)
	token := b.mqttClient.Publish(errorTopic, 1, false, payloadJSON)

	if token.Wait() && token.Error() != nil {
		b.logger.Logger.Error().Err(token.Error()).Str("topic", errorTopic).Msg("Failed to publish error")
	}
}
