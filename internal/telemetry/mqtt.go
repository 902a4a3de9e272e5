// Package telemetry mirrors motion events, haptic cues and state snapshots to
// an MQTT broker.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ble-pulse.klederson.com/internal/config"
	"ble-pulse.klederson.com/internal/feedback"
	"ble-pulse.klederson.com/internal/motion"
	"ble-pulse.klederson.com/internal/state"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// publisher is the part of mqtt.Client we use.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Options configures the broker connection and topics.
type Options struct {
	Broker        string // e.g. tcp://localhost:1883
	ClientID      string // a random suffix is appended
	TopicPrefix   string
	QoS           byte
	StateInterval time.Duration // minimum spacing of state publishes
	PublishWait   time.Duration
	CueQueue      int // cues waiting for Run; more are dropped
}

// DefaultOptions returns options for a broker on localhost.
func DefaultOptions() Options {
	return Options{
		Broker:        "tcp://localhost:1883",
		ClientID:      config.MQTTClientID,
		TopicPrefix:   config.TopicPrefix,
		StateInterval: time.Second,
		PublishWait:   time.Second,
		CueQueue:      8,
	}
}

// EventMessage is the payload on <prefix>/events/<axis>.
type EventMessage struct {
	ID         string      `json:"id"`
	Axis       motion.Axis `json:"axis"`
	Delta      float64     `json:"delta"`
	DetectedAt time.Time   `json:"detected_at"`
}

// CueMessage is the payload on <prefix>/haptics.
type CueMessage struct {
	Cue feedback.Cue `json:"cue"`
	At  time.Time    `json:"at"`
}

// Publisher sends telemetry to one broker.
type Publisher struct {
	opts   Options
	logger *zap.SugaredLogger

	cues chan CueMessage

	mu     sync.Mutex
	client mqtt.Client
	pub    publisher
}

// NewPublisher creates an unconnected publisher.
func NewPublisher(opts Options, logger *zap.SugaredLogger) *Publisher {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.PublishWait <= 0 {
		opts.PublishWait = time.Second
	}
	if opts.CueQueue <= 0 {
		opts.CueQueue = 1
	}
	return &Publisher{
		opts:   opts,
		logger: logger,
		cues:   make(chan CueMessage, opts.CueQueue),
	}
}

// Connect dials the broker.
func (p *Publisher) Connect() error {
	clientID := fmt.Sprintf("%s-%s", p.opts.ClientID, uuid.NewString()[:8])
	mqttOpts := mqtt.NewClientOptions().
		AddBroker(p.opts.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true)

	client := mqtt.NewClient(mqttOpts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect to %s: %w", p.opts.Broker, token.Error())
	}

	p.mu.Lock()
	p.client = client
	p.pub = client
	p.mu.Unlock()

	p.logger.Infof("Connected to MQTT broker %s as %s", p.opts.Broker, clientID)
	return nil
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	p.mu.Lock()
	client := p.client
	p.client, p.pub = nil, nil
	p.mu.Unlock()

	if client != nil {
		client.Disconnect(config.MQTTDisconnect)
	}
}

// Topic joins the prefix and parts with slashes.
func (p *Publisher) Topic(parts ...string) string {
	t := p.opts.TopicPrefix
	for _, part := range parts {
		t += "/" + part
	}
	return t
}

func (p *Publisher) publish(topic string, retained bool, v any) error {
	p.mu.Lock()
	pub := p.pub
	p.mu.Unlock()
	if pub == nil {
		return ErrNotConnected
	}

	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}

	token := pub.Publish(topic, p.opts.QoS, retained, payload)
	if !token.WaitTimeout(p.opts.PublishWait) {
		return fmt.Errorf("publish %s: timed out after %s", topic, p.opts.PublishWait)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// PublishEvent sends one motion event.
func (p *Publisher) PublishEvent(ev motion.Event) error {
	return p.publish(p.Topic("events", ev.Axis.String()), false, EventMessage{
		ID:         uuid.NewString(),
		Axis:       ev.Axis,
		Delta:      ev.Delta,
		DetectedAt: ev.DetectedAt,
	})
}

// HandleEvent is a motion.Handler that logs publish failures.
func (p *Publisher) HandleEvent(ev motion.Event) {
	if err := p.PublishEvent(ev); err != nil {
		p.logger.Warnf("MQTT event: %v", err)
	}
}

// PublishState sends a retained snapshot so late subscribers see the latest.
func (p *Publisher) PublishState(s state.Snapshot) error {
	return p.publish(p.Topic("state"), true, s)
}

// PublishCue sends one haptic cue.
func (p *Publisher) PublishCue(msg CueMessage) error {
	return p.publish(p.Topic("haptics"), false, msg)
}

// Play implements feedback.Haptics for a remote actuator listening on
// <prefix>/haptics. It only queues the cue for Run and never waits on the
// broker; a full queue drops the cue.
func (p *Publisher) Play(c feedback.Cue) {
	select {
	case p.cues <- CueMessage{Cue: c, At: time.Now()}:
	default:
		p.logger.Debugf("MQTT haptic queue full, dropped %s cue", c)
	}
}

// Run publishes queued haptic cues and store snapshots until ctx ends.
// Snapshots go out at most once per StateInterval and the newest pending
// one always wins.
func (p *Publisher) Run(ctx context.Context, store *state.Store) {
	snaps, cancel := store.Subscribe(1)
	defer cancel()

	var (
		pending  state.Snapshot
		dirty    bool
		lastSent time.Time
	)
	interval := p.opts.StateInterval
	ticker := time.NewTicker(max(interval, 10*time.Millisecond))
	defer ticker.Stop()

	flush := func(now time.Time) {
		if !dirty || now.Sub(lastSent) < interval {
			return
		}
		if err := p.PublishState(pending); err != nil {
			p.logger.Warnf("MQTT state: %v", err)
		}
		dirty = false
		lastSent = now
	}

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-snaps:
			if !ok {
				return
			}
			pending, dirty = snap, true
			flush(time.Now())
		case msg := <-p.cues:
			if err := p.PublishCue(msg); err != nil {
				p.logger.Warnf("MQTT haptic cue: %v", err)
			}
		case now := <-ticker.C:
			flush(now)
		}
	}
}
