package mqtt

import (
	"log/slog"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/pkg/errors"
	"github.com/sweeney/eye-badge/internal/badge"
)

const (
	queueSize      = 64
	bufferSize     = 256
	publishTimeout = 5 * time.Second
)

// Options configures a RealPublisher.
type Options struct {
	Broker   string
	ClientID string
	Logger   *slog.Logger

	// OnConnectionChange, if set, is called whenever the broker connection
	// comes up or goes down.
	OnConnectionChange func(connected bool)

	// OnDropped, if set, is called with the running total whenever a
	// message is lost. It is called with the publisher's lock held and
	// must not call back into the publisher.
	OnDropped func(total int)

	// Now stamps payloads. Defaults to time.Now.
	Now func() time.Time
}

// RealPublisher publishes to an actual MQTT broker.
//
// Loop events are formatted on the caller's goroutine and handed to a
// worker over a bounded queue; a full queue drops the event. While the
// broker is unreachable messages wait in a ring buffer and are replayed
// on reconnect.
type RealPublisher struct {
	client    paho.Client
	logger    *slog.Logger
	now       func() time.Time
	onChange  func(bool)
	onDropped func(int)

	queue chan bufferedMsg
	done  chan struct{}

	mu            sync.Mutex
	closed        bool
	pending       *ringBuffer
	connectedOnce bool
	dropped       int
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting in the background. It does not wait for the broker: the badge
// runs the same with or without one.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.Broker == "" {
		return nil, errors.New("mqtt: no broker configured")
	}

	p := newPublisher(o)

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: p.now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, errors.Wrap(err, "format will payload")
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(TopicSystem, string(will), 1, false).
		SetOnConnectHandler(p.handleConnect).
		SetConnectionLostHandler(p.handleConnectionLost)

	p.client = paho.NewClient(opts)
	p.client.Connect()
	p.start()

	p.logger.Info("mqtt connecting", "broker", o.Broker, "client_id", o.ClientID)
	return p, nil
}

func newPublisher(o Options) *RealPublisher {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := o.Now
	if now == nil {
		now = time.Now
	}
	return &RealPublisher{
		logger:    logger,
		now:       now,
		onChange:  o.OnConnectionChange,
		onDropped: o.OnDropped,
		queue:     make(chan bufferedMsg, queueSize),
		done:      make(chan struct{}),
		pending:   newRingBuffer(bufferSize, logger),
	}
}

func (p *RealPublisher) start() {
	go p.run()
}

func (p *RealPublisher) run() {
	defer close(p.done)
	for msg := range p.queue {
		p.send(msg, 0)
	}
}

// send publishes msg, or buffers it if the broker is unreachable.
func (p *RealPublisher) send(msg bufferedMsg, qos byte) {
	if !p.client.IsConnected() {
		p.buffer(msg)
		return
	}

	token := p.client.Publish(msg.topic, qos, msg.retained, msg.payload)
	if !token.WaitTimeout(publishTimeout) {
		p.logger.Warn("mqtt publish timeout", "topic", msg.topic)
		p.buffer(msg)
		return
	}
	if err := token.Error(); err != nil {
		p.logger.Warn("mqtt publish failed", "topic", msg.topic, "err", err)
		p.buffer(msg)
	}
}

func (p *RealPublisher) buffer(msg bufferedMsg) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending.push(msg) {
		p.dropLocked()
	}
}

// dropLocked counts a lost message. Callers hold p.mu.
func (p *RealPublisher) dropLocked() {
	p.dropped++
	if p.onDropped != nil {
		p.onDropped(p.dropped)
	}
}

// Dropped returns how many messages were lost to a full queue or buffer.
func (p *RealPublisher) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Event queues a loop event for publishing. Never blocks.
func (p *RealPublisher) Event(e badge.Event) {
	payload, err := FormatPayload(e, p.now())
	if err != nil {
		p.logger.Error("mqtt format payload", "err", err)
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	select {
	case p.queue <- bufferedMsg{topic: Topic, payload: payload}:
	default:
		p.logger.Warn("mqtt queue full, dropping event", "event", e.Type)
		p.dropLocked()
	}
}

// Tick does nothing; ticks are visible through the status page only.
func (p *RealPublisher) Tick(badge.Counters) {}

// PublishSystem sends a lifecycle event synchronously with QoS 1.
// When disconnected the event is buffered and nil is returned.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return errors.Wrap(err, "format system payload")
	}
	msg := bufferedMsg{topic: TopicSystem, payload: payload, retained: event.Retained}

	if !p.client.IsConnected() {
		p.buffer(msg)
		return nil
	}

	token := p.client.Publish(TopicSystem, 1, event.Retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return errors.New("publish system timeout")
	}
	return errors.Wrap(token.Error(), "publish system")
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnected()
}

// Close stops the worker after it has drained the queue, then disconnects.
func (p *RealPublisher) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	<-p.done
	p.client.Disconnect(1000)
	return nil
}

func (p *RealPublisher) handleConnect(c paho.Client) {
	p.mu.Lock()
	reconnect := p.connectedOnce
	p.connectedOnce = true
	backlog := p.pending.drainAll()
	dropped := p.dropped
	p.mu.Unlock()

	p.logger.Info("mqtt connected", "replaying", len(backlog), "dropped", dropped)
	if p.onChange != nil {
		p.onChange(true)
	}

	if reconnect {
		payload, err := FormatSystemPayload(SystemEvent{Timestamp: p.now(), Event: "RECONNECTED"})
		if err == nil {
			c.Publish(TopicSystem, 0, false, payload)
		}
	}
	for _, msg := range backlog {
		c.Publish(msg.topic, 0, msg.retained, msg.payload)
	}
}

func (p *RealPublisher) handleConnectionLost(_ paho.Client, err error) {
	p.logger.Warn("mqtt connection lost", "err", err)
	if p.onChange != nil {
		p.onChange(false)
	}
}
