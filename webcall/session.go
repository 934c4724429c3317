// ABOUTME: Web-call session against the backend's audio websocket
// ABOUTME: One pinned contract: PCM frames as binary, JSON control messages as text
package webcall

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/fleetcall/dispatchctl/models"
)

// State is the session's connection state as reflected in the UI.
type State string

const (
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateEnded      State = "ended"
	StateError      State = "error"
)

const (
	connectTimeout = 15 * time.Second
	writeTimeout   = 10 * time.Second
	// 20ms of 16kHz mono s16 PCM per upstream frame
	micFrameBytes = micSampleRateHz / 50 * 2
)

// Control messages the server sends as text frames. `ready` is the only
// thing that moves the session to connected; there is no timer-based
// success assumption.
type controlMessage struct {
	Event   string `json:"event"` // ready | ended | error
	Message string `json:"message,omitempty"`
}

// StateFunc observes state changes. err is non-nil only for StateError.
type StateFunc func(state State, err error)

// Session is one web call: mic upstream, agent audio downstream.
type Session struct {
	callID  int
	url     string
	token   string
	audio   Audio
	log     *logrus.Entry
	onState StateFunc

	mu    sync.Mutex
	conn  *websocket.Conn
	state State
	done  chan struct{}
}

type Option func(*Session)

func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) { s.log = log }
}

// WithStateFunc registers the UI callback.
func WithStateFunc(fn StateFunc) Option {
	return func(s *Session) { s.onState = fn }
}

// NewSession wires a web-call grant from the API to an audio device pair.
func NewSession(grant *models.WebCallSession, audio Audio, opts ...Option) *Session {
	s := &Session{
		callID: grant.Call.ID,
		url:    grant.AudioWSURL,
		token:  grant.AccessToken,
		audio:  audio,
		state:  StateConnecting,
		done:   make(chan struct{}),
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Done closes when the session reaches ended or error.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start dials the audio websocket and runs the stream pumps. It returns
// after the connection is up; the session then runs until the server ends
// the call, an error occurs, or Close is called.
func (s *Session) Start(ctx context.Context) error {
	s.setState(StateConnecting, nil)

	dialer := *websocket.DefaultDialer
	dialer.HandshakeTimeout = connectTimeout

	header := http.Header{}
	header.Set("Authorization", "Bearer "+s.token)

	conn, resp, err := dialer.DialContext(ctx, s.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		s.setState(StateError, err)
		return err
	}

	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()

	go s.readLoop()
	go s.micLoop(ctx)
	return nil
}

// Close hangs up locally.
func (s *Session) Close() error {
	s.mu.Lock()
	conn := s.conn
	s.conn = nil
	s.mu.Unlock()

	s.finish(StateEnded, nil)

	if conn != nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		return conn.Close()
	}
	return nil
}

func (s *Session) setState(state State, err error) {
	s.mu.Lock()
	if s.state == state || s.state == StateEnded || s.state == StateError {
		s.mu.Unlock()
		return
	}
	s.state = state
	onState := s.onState
	s.mu.Unlock()

	if onState != nil {
		onState(state, err)
	}
}

// finish moves to a terminal state and releases Done waiters once.
func (s *Session) finish(state State, err error) {
	s.setState(state, err)
	s.mu.Lock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
	s.mu.Unlock()
}

func (s *Session) readLoop() {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return
	}

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.finish(StateEnded, nil)
			} else {
				s.finish(StateError, err)
			}
			return
		}

		switch msgType {
		case websocket.BinaryMessage:
			if _, err := s.audio.Write(data); err != nil {
				s.log.WithError(err).Warn("speaker write failed")
			}
		case websocket.TextMessage:
			s.handleControl(data)
		}
	}
}

func (s *Session) handleControl(data []byte) {
	var msg controlMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.log.WithError(err).Debug("unparseable control message")
		return
	}

	switch msg.Event {
	case "ready":
		s.log.WithField("call_id", s.callID).Info("call connected")
		s.setState(StateConnected, nil)
	case "ended":
		s.finish(StateEnded, nil)
	case "error":
		s.finish(StateError, &CallError{Message: msg.Message})
	default:
		s.log.WithField("event", msg.Event).Debug("ignoring control message")
	}
}

func (s *Session) micLoop(ctx context.Context) {
	frame := make([]byte, micFrameBytes)
	for {
		select {
		case <-ctx.Done():
			_ = s.Close()
			return
		case <-s.done:
			return
		default:
		}

		n, err := s.audio.Read(frame)
		if err != nil {
			if err != io.EOF {
				s.finish(StateError, err)
			}
			return
		}
		if n == 0 {
			continue
		}

		s.mu.Lock()
		conn := s.conn
		s.mu.Unlock()
		if conn == nil {
			return
		}

		_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteMessage(websocket.BinaryMessage, frame[:n]); err != nil {
			// readLoop reports the disconnect; just stop pumping
			return
		}
	}
}

// CallError is a server-reported call failure.
type CallError struct {
	Message string
}

func (e *CallError) Error() string {
	if e.Message == "" {
		return "call failed"
	}
	return "call failed: " + e.Message
}
