package midiin

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// Handler receives raw messages on the listener goroutine. Handlers
// must not block; hand off to the owner's locking discipline instead.
type Handler func(msg midi.Message, timestampms int32)

type portConfig struct {
	logger *slog.Logger
}

// Option configures a Port.
type Option func(*portConfig) error

// WithLogger routes port lifecycle and protocol warnings to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *portConfig) error {
		if logger == nil {
			return fmt.Errorf("midiin logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// Port is one owned MIDI input. Incoming channel and system messages,
// including MTC quarter frames, are fanned out to every subscriber in
// subscription order.
type Port struct {
	logger *slog.Logger

	mu       sync.Mutex
	handlers []Handler

	drv    *rtmididrv.Driver
	in     drivers.In
	stop   func()
	active bool
	name   string
}

// Open connects to the first input whose name contains wantName
// (case-insensitive); an empty wantName takes the first available
// input. An unavailable driver or device is not an error: the returned
// Port is inactive and subscribers simply never fire. The error return
// covers option misuse only.
func Open(wantName string, opts ...Option) (*Port, error) {
	cfg := portConfig{logger: slog.Default()}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	p := &Port{logger: cfg.logger}

	drv, err := rtmididrv.New()
	if err != nil {
		p.logger.Warn("midi driver unavailable, input disabled", "error", err)
		return p, nil
	}
	ins, err := drv.Ins()
	if err != nil {
		p.logger.Warn("midi input scan failed, input disabled", "error", err)
		drv.Close()
		return p, nil
	}

	var found drivers.In
	for _, in := range ins {
		if wantName == "" || strings.Contains(strings.ToLower(in.String()), strings.ToLower(wantName)) {
			found = in
			break
		}
	}
	if found == nil {
		p.logger.Warn("midi input not found, input disabled", "device", wantName, "available", len(ins))
		drv.Close()
		return p, nil
	}
	if err := found.Open(); err != nil {
		p.logger.Warn("midi input open failed, input disabled", "device", found.String(), "error", err)
		drv.Close()
		return p, nil
	}

	stop, err := midi.ListenTo(found, p.dispatch, midi.UseTimeCode(), midi.HandleError(func(listenErr error) {
		p.logger.Warn("midi listener error", "device", found.String(), "error", listenErr)
	}))
	if err != nil {
		p.logger.Warn("midi listener start failed, input disabled", "device", found.String(), "error", err)
		found.Close()
		drv.Close()
		return p, nil
	}

	p.drv = drv
	p.in = found
	p.stop = stop
	p.active = true
	p.name = found.String()
	p.logger.Info("midi input connected", "device", p.name)
	return p, nil
}

// Subscribe registers a handler for every incoming message. Safe while
// the listener is running.
func (p *Port) Subscribe(h Handler) {
	if h == nil {
		return
	}
	p.mu.Lock()
	p.handlers = append(p.handlers, h)
	p.mu.Unlock()
}

// Active reports whether a device connection is live.
func (p *Port) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

// Name returns the connected device name, or "" when inactive.
func (p *Port) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

func (p *Port) dispatch(msg midi.Message, timestampms int32) {
	p.mu.Lock()
	handlers := make([]Handler, len(p.handlers))
	copy(handlers, p.handlers)
	p.mu.Unlock()
	for _, h := range handlers {
		h(msg, timestampms)
	}
}

// Close stops the listener and releases the device. Safe on an
// inactive port and safe to call more than once.
func (p *Port) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.active {
		return nil
	}
	p.active = false
	if p.stop != nil {
		p.stop()
		p.stop = nil
	}
	var err error
	if p.in != nil {
		err = p.in.Close()
		p.in = nil
	}
	if p.drv != nil {
		if cerr := p.drv.Close(); err == nil {
			err = cerr
		}
		p.drv = nil
	}
	p.logger.Info("midi input closed", "device", p.name)
	return err
}
