// ABOUTME: Microphone capture and speaker playback for web calls
// ABOUTME: malgo for capture, oto for playback, fixed PCM rates per the call contract
package webcall

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/gen2brain/malgo"
)

// The audio websocket carries 16 kHz mono signed-16 PCM upstream and
// 24 kHz mono signed-16 PCM downstream. These rates are part of the call
// contract, not tunables.
const (
	micSampleRateHz     = 16000
	speakerSampleRateHz = 24000
	channels            = 1
)

// Audio is the device pair one call session runs on. Tests substitute an
// in-memory implementation.
type Audio interface {
	io.Reader // mic PCM frames
	io.Writer // speaker PCM frames
	Close() error
}

type deviceAudio struct {
	malgoCtx *malgo.AllocatedContext
	mic      *micReader
	speaker  *speakerWriter
}

// OpenAudio claims the default capture and playback devices.
func OpenAudio() (Audio, error) {
	cfg := malgo.ContextConfig{}
	cfg.ThreadPriority = malgo.ThreadPriorityRealtime

	malgoCtx, err := malgo.InitContext(nil, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("init audio context: %w", err)
	}

	mic, err := newMicReader(malgoCtx.Context)
	if err != nil {
		_ = malgoCtx.Uninit()
		return nil, err
	}

	speaker, err := newSpeakerWriter()
	if err != nil {
		mic.Close()
		_ = malgoCtx.Uninit()
		return nil, err
	}

	return &deviceAudio{malgoCtx: malgoCtx, mic: mic, speaker: speaker}, nil
}

func (d *deviceAudio) Read(p []byte) (int, error)  { return d.mic.Read(p) }
func (d *deviceAudio) Write(p []byte) (int, error) { return d.speaker.Write(p) }

func (d *deviceAudio) Close() error {
	d.mic.Close()
	d.speaker.Close()
	return d.malgoCtx.Uninit()
}

// MicGuidance turns a device error into something an operator can act on,
// the way browser getUserMedia failures map to tailored messages.
func MicGuidance(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "no device"), strings.Contains(msg, "no backend"):
		return "No microphone found. Plug in a microphone and try again."
	case strings.Contains(msg, "busy"), strings.Contains(msg, "in use"), strings.Contains(msg, "access denied"):
		return "Microphone is in use by another application or blocked. Close other apps using it and check OS permissions."
	default:
		return "Could not open the microphone. Check audio permissions and devices."
	}
}

type micReader struct {
	device *malgo.Device
	buf    []byte
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
}

func newMicReader(ctx malgo.Context) (*micReader, error) {
	m := &micReader{buf: make([]byte, 0, micSampleRateHz*2)}
	m.cond = sync.NewCond(&m.mu)

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = channels
	deviceConfig.SampleRate = micSampleRateHz
	deviceConfig.PeriodSizeInMilliseconds = 20

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, input []byte, _ uint32) {
			m.mu.Lock()
			m.buf = append(m.buf, input...)
			m.mu.Unlock()
			m.cond.Signal()
		},
	}

	device, err := malgo.InitDevice(ctx, deviceConfig, callbacks)
	if err != nil {
		return nil, fmt.Errorf("init microphone: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return nil, fmt.Errorf("start microphone: %w", err)
	}

	m.device = device
	return m, nil
}

func (m *micReader) Read(p []byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for len(m.buf) == 0 && !m.closed {
		m.cond.Wait()
	}
	if m.closed {
		return 0, io.EOF
	}

	n := copy(p, m.buf)
	m.buf = m.buf[n:]
	return n, nil
}

func (m *micReader) Close() {
	m.mu.Lock()
	m.closed = true
	m.cond.Broadcast()
	m.mu.Unlock()

	if m.device != nil {
		_ = m.device.Stop()
		m.device.Uninit()
	}
}

type speakerWriter struct {
	otoCtx  *oto.Context
	player  *oto.Player
	buf     []byte
	mu      sync.Mutex
	cond    *sync.Cond
	playing bool
	closed  bool
}

func newSpeakerWriter() (*speakerWriter, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   speakerSampleRateHz,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
		// Low latency without glitching
		BufferSize: 100 * time.Millisecond,
	}
	otoCtx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, fmt.Errorf("init speaker: %w", err)
	}
	<-ready

	s := &speakerWriter{otoCtx: otoCtx, buf: make([]byte, 0, speakerSampleRateHz*4)}
	s.cond = sync.NewCond(&s.mu)
	return s, nil
}

func (s *speakerWriter) Write(data []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, io.ErrClosedPipe
	}
	s.buf = append(s.buf, data...)

	// Lazy-start playback on the first frame
	if !s.playing {
		s.playing = true
		s.player = s.otoCtx.NewPlayer(s)
		s.player.Play()
	}
	s.cond.Signal()
	return len(data), nil
}

// Read feeds oto's pull loop; silence once closed so playback drains.
func (s *speakerWriter) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.buf) == 0 && !s.closed {
		s.cond.Wait()
	}
	if s.closed && len(s.buf) == 0 {
		for i := range p {
			p[i] = 0
		}
		return len(p), nil
	}

	n := copy(p, s.buf)
	s.buf = s.buf[n:]
	return n, nil
}

func (s *speakerWriter) Close() {
	s.mu.Lock()
	s.closed = true
	s.cond.Broadcast()
	s.mu.Unlock()

	if s.player != nil {
		s.player.Close()
	}
}
