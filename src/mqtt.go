package dump1030

/*------------------------------------------------------------------
 *
 * Purpose:	Publish cycle statistics to an MQTT broker.
 *
 * Description:	Each finished cycle becomes one JSON message on the
 *		configured topic, for dashboards that would rather
 *		subscribe than scrape.
 *
 *------------------------------------------------------------------*/

import (
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type CyclePayload struct {
	RunID      string `json:"run_id"`
	Cycle      int    `json:"cycle"`
	Timestamp  int64  `json:"timestamp"`
	Samples    int    `json:"samples"`
	Bypassed   bool   `json:"bypassed,omitempty"`
	Counts     Counts `json:"counts"`
	Cumulative Counts `json:"cumulative"`
}

func newCyclePayload(runID string, res CycleResult) CyclePayload {
	return CyclePayload{
		RunID:      runID,
		Cycle:      res.Index,
		Timestamp:  res.Time.Unix(),
		Samples:    res.RawBytes / 2,
		Bypassed:   res.Bypassed,
		Counts:     res.Scan.Counts,
		Cumulative: res.Stats.Cumulative,
	}
}

// Publisher is the part of an MQTT client the cycle publisher needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

type MQTTSink struct {
	client Publisher
	topic  string
	runID  string
}

func NewMQTTSink(client Publisher, topic string, runID string) *MQTTSink {
	return &MQTTSink{client: client, topic: topic, runID: runID}
}

func (s *MQTTSink) Cycle(res CycleResult) {
	var data, err = json.Marshal(newCyclePayload(s.runID, res))
	if err != nil {
		logger.Error("MQTT: encoding payload", "err", err)

		return
	}

	var token = s.client.Publish(s.topic, 0, false, data)

	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			logger.Warn("MQTT: publish failed", "err", token.Error())
		}
	}()
}

// ConnectMQTT connects to broker.  The caller disconnects.
func ConnectMQTT(broker string, runID string) (mqtt.Client, error) {
	var opts = mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID("dump1030_" + runID)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	opts.SetOnConnectHandler(func(_ mqtt.Client) {
		logger.Info("MQTT: connected", "broker", broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		logger.Warn("MQTT: connection lost", "err", err)
	})

	var client = mqtt.NewClient(opts)

	if err := waitConnected(client, broker, mqttConnectTimeout); err != nil {
		return nil, err
	}

	return client, nil
}

var mqttConnectTimeout = 10 * time.Second

// waitConnected waits for the first connection.  On failure the client is
// disconnected, otherwise it would go on retrying in the background.
func waitConnected(client mqtt.Client, broker string, timeout time.Duration) error {
	var token = client.Connect()

	if !token.WaitTimeout(timeout) {
		client.Disconnect(0)

		return fmt.Errorf("connecting to MQTT broker %s: %w", broker, ErrMQTTTimeout)
	}

	if token.Error() != nil {
		client.Disconnect(0)

		return fmt.Errorf("connecting to MQTT broker %s: %w", broker, token.Error())
	}

	return nil
}

func newRunID() string {
	return uuid.NewString()
}
