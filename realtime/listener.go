// ABOUTME: Websocket listener for server-pushed call events
// ABOUTME: Re-emits named events to subscribers with capped-backoff reconnect
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	// Reconnect policy: 1s doubling to a 30s cap, five attempts, then give
	// up silently.
	initialReconnectDelay = time.Second
	maxReconnectDelay     = 30 * time.Second
	maxReconnectAttempts  = 5
)

// Handler receives one event. Handlers run on the listener goroutine and
// must not block.
type Handler func(Event)

// Listener holds one connection to the backend's event channel.
type Listener struct {
	url    string
	token  string
	log    *logrus.Entry
	dialer *websocket.Dialer

	reconnectInitial  time.Duration
	reconnectMax      time.Duration
	reconnectAttempts uint64

	mu      sync.Mutex
	conn    *websocket.Conn
	subs    map[string]map[int]Handler
	nextSub int
	rooms   map[int]struct{}
	closed  bool
	cancel  context.CancelFunc
}

type Option func(*Listener)

// WithToken authenticates the connection upgrade.
func WithToken(token string) Option {
	return func(l *Listener) { l.token = token }
}

// WithLogger attaches a log entry; silent otherwise.
func WithLogger(log *logrus.Entry) Option {
	return func(l *Listener) { l.log = log }
}

// WithReconnectPolicy overrides the backoff schedule, mainly for tests.
func WithReconnectPolicy(initial, max time.Duration, attempts uint64) Option {
	return func(l *Listener) {
		l.reconnectInitial = initial
		l.reconnectMax = max
		l.reconnectAttempts = attempts
	}
}

func NewListener(url string, opts ...Option) *Listener {
	l := &Listener{
		url:               url,
		dialer:            websocket.DefaultDialer,
		subs:              make(map[string]map[int]Handler),
		rooms:             make(map[int]struct{}),
		reconnectInitial:  initialReconnectDelay,
		reconnectMax:      maxReconnectDelay,
		reconnectAttempts: maxReconnectAttempts,
		log:               logrus.NewEntry(discardLogger()),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func discardLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

// Subscribe registers a handler for one event name. "*" matches every
// event. The returned func unsubscribes.
func (l *Listener) Subscribe(event string, h Handler) func() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSub++
	id := l.nextSub
	if l.subs[event] == nil {
		l.subs[event] = make(map[int]Handler)
	}
	l.subs[event][id] = h

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.subs[event], id)
	}
}

// Connect dials the event channel and starts the read loop. It returns once
// the first connection is established; later disconnects reconnect in the
// background.
func (l *Listener) Connect(ctx context.Context) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)

	l.mu.Lock()
	l.conn = conn
	l.cancel = cancel
	l.closed = false
	l.mu.Unlock()

	go l.run(ctx)
	return nil
}

func (l *Listener) dial(ctx context.Context) (*websocket.Conn, error) {
	header := http.Header{}
	if l.token != "" {
		header.Set("Authorization", "Bearer "+l.token)
	}

	conn, resp, err := l.dialer.DialContext(ctx, l.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	return conn, err
}

// Close disconnects and stops any reconnect in flight.
func (l *Listener) Close() error {
	l.mu.Lock()
	l.closed = true
	if l.cancel != nil {
		l.cancel()
	}
	conn := l.conn
	l.conn = nil
	l.mu.Unlock()

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeWait))
		return conn.Close()
	}
	return nil
}

// JoinCallRoom subscribes this connection to one call's event stream. Rooms
// are rejoined automatically after a reconnect.
func (l *Listener) JoinCallRoom(callID int) error {
	l.mu.Lock()
	l.rooms[callID] = struct{}{}
	l.mu.Unlock()
	return l.send(eventJoinCallRoom, roomPayload{CallID: callID})
}

func (l *Listener) LeaveCallRoom(callID int) error {
	l.mu.Lock()
	delete(l.rooms, callID)
	l.mu.Unlock()
	return l.send(eventLeaveCallRoom, roomPayload{CallID: callID})
}

func (l *Listener) send(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return websocket.ErrCloseSent
	}
	_ = l.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return l.conn.WriteJSON(Envelope{Event: event, Data: payload})
}

func (l *Listener) run(ctx context.Context) {
	for {
		l.readLoop(ctx)

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed || ctx.Err() != nil {
			return
		}

		if err := l.reconnect(ctx); err != nil {
			// Out of attempts: give up without escalation
			l.log.WithError(err).Debug("realtime reconnect abandoned")
			return
		}
	}
}

func (l *Listener) readLoop(ctx context.Context) {
	l.mu.Lock()
	conn := l.conn
	l.mu.Unlock()
	if conn == nil {
		return
	}

	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	stopPing := make(chan struct{})
	go l.pingLoop(conn, stopPing)
	defer close(stopPing)

	for {
		var env Envelope
		if err := conn.ReadJSON(&env); err != nil {
			if ctx.Err() == nil && websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				l.log.WithError(err).Debug("realtime read error")
			}
			return
		}
		l.dispatch(Event{Name: env.Event, Data: env.Data, ReceivedAt: time.Now()})
	}
}

func (l *Listener) pingLoop(conn *websocket.Conn, stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-stop:
			return
		}
	}
}

func (l *Listener) dispatch(ev Event) {
	l.mu.Lock()
	handlers := make([]Handler, 0, len(l.subs[ev.Name])+len(l.subs["*"]))
	for _, h := range l.subs[ev.Name] {
		handlers = append(handlers, h)
	}
	for _, h := range l.subs["*"] {
		handlers = append(handlers, h)
	}
	l.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

// reconnect retries the dial on the capped exponential schedule. Successful
// reconnects rejoin every room the caller was in.
func (l *Listener) reconnect(ctx context.Context) error {
	policy := l.newBackoff()

	attempt := 0
	op := func() error {
		attempt++
		l.log.WithField("attempt", attempt).Debug("realtime reconnecting")

		conn, err := l.dial(ctx)
		if err != nil {
			return err
		}

		l.mu.Lock()
		if l.closed {
			l.mu.Unlock()
			_ = conn.Close()
			return backoff.Permanent(ctx.Err())
		}
		l.conn = conn
		rooms := make([]int, 0, len(l.rooms))
		for id := range l.rooms {
			rooms = append(rooms, id)
		}
		l.mu.Unlock()

		for _, id := range rooms {
			_ = l.send(eventJoinCallRoom, roomPayload{CallID: id})
		}
		return nil
	}

	return backoff.Retry(op, backoff.WithContext(policy, ctx))
}

func (l *Listener) newBackoff() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.reconnectInitial
	policy.Multiplier = 2
	policy.MaxInterval = l.reconnectMax
	policy.RandomizationFactor = 0
	policy.MaxElapsedTime = 0
	return backoff.WithMaxRetries(policy, l.reconnectAttempts)
}
