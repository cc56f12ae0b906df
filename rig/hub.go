package rig

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/cwbudde/algo-rig/audioin"
	"github.com/cwbudde/algo-rig/automate"
	"github.com/cwbudde/algo-rig/config"
	"github.com/cwbudde/algo-rig/graph"
	"github.com/cwbudde/algo-rig/midiin"
	"github.com/cwbudde/algo-rig/oscin"
	"github.com/cwbudde/algo-rig/timing"
)

const defaultTransitionFrames = 30

// MIDIInput is the hub's view of an owned MIDI port.
type MIDIInput interface {
	Subscribe(h midiin.Handler)
	Close() error
}

// OSCInput is the hub's view of an owned OSC receiver.
type OSCInput interface {
	SubscribeAll(h oscin.Handler)
	Close() error
}

// AudioInput is the hub's view of an owned capture stream.
type AudioInput interface {
	Snapshot(channel int, dst []float64) int
	SampleRate() float64
	Close()
}

// ConfigSource is the hub's view of an owned configuration watcher.
type ConfigSource interface {
	Drain() (*config.Document, bool)
	Close() error
}

type hubConfig struct {
	logger           *slog.Logger
	hrcc             bool
	transitionFrames uint64
	midi             MIDIInput
	osc              OSCInput
	audio            AudioInput
	watcher          ConfigSource
	randSeed         int64
	seeded           bool
}

// Option configures a Hub.
type Option func(*hubConfig) error

// WithLogger routes hub warnings and lifecycle logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *hubConfig) error {
		if logger == nil {
			return fmt.Errorf("rig logger must not be nil")
		}
		cfg.logger = logger
		return nil
	}
}

// WithHRCC enables high-resolution CC pairing: CC n below 32 carries
// the most significant 7 bits and CC n+32 the least significant.
func WithHRCC(enabled bool) Option {
	return func(cfg *hubConfig) error {
		cfg.hrcc = enabled
		return nil
	}
}

// WithTransitionFrames sets how many frames snapshot recalls tween
// over. Zero applies recalls immediately.
func WithTransitionFrames(frames uint64) Option {
	return func(cfg *hubConfig) error {
		cfg.transitionFrames = frames
		return nil
	}
}

// WithMIDIInput hands the hub a MIDI port to route Control Change
// messages from. The hub owns it and closes it on Close.
func WithMIDIInput(in MIDIInput) Option {
	return func(cfg *hubConfig) error {
		cfg.midi = in
		return nil
	}
}

// WithOSCServer hands the hub an OSC receiver. The hub owns it and
// closes it on Close.
func WithOSCServer(in OSCInput) Option {
	return func(cfg *hubConfig) error {
		cfg.osc = in
		return nil
	}
}

// WithAudioInput hands the hub a capture stream for audio controls. The
// hub owns it and closes it on Close.
func WithAudioInput(in AudioInput) Option {
	return func(cfg *hubConfig) error {
		cfg.audio = in
		return nil
	}
}

// WithWatcher hands the hub a configuration watcher drained once per
// Update. The hub owns it and closes it on Close.
func WithWatcher(w ConfigSource) Option {
	return func(cfg *hubConfig) error {
		cfg.watcher = w
		return nil
	}
}

// WithRandSeed fixes the Randomize sequence, for reproducible shows and
// tests. Unset, the hub seeds from the clock.
func WithRandSeed(seed int64) Option {
	return func(cfg *hubConfig) error {
		cfg.randSeed = seed
		cfg.seeded = true
		return nil
	}
}

// Hub resolves named parameter values for a render loop. Update and the
// getters must run on one goroutine; everything the background inputs
// touch is guarded inside the collections and the midi/osc index locks.
type Hub struct {
	logger           *slog.Logger
	src              timing.Source
	hrcc             bool
	transitionFrames uint64

	frame uint64
	beats float64

	doc     *config.Document
	states  map[string]*controlState
	aliases map[string]string
	bypass  map[string]float64
	graph   *graph.Graph
	cache   *graph.Cache
	eval    *automate.Evaluator
	rng     *rand.Rand

	sliders *Collection[*config.SliderSpec, float64]
	checks  *Collection[*config.CheckboxSpec, bool]
	selects *Collection[*config.SelectSpec, string]
	midi    *Collection[*config.MIDISpec, float64]
	osc     *Collection[*config.OSCSpec, float64]
	audio   *Collection[*config.AudioSpec, float64]

	midiIn  MIDIInput
	oscIn   OSCInput
	audioIn AudioInput
	watcher ConfigSource

	analyzer *audioin.Analyzer
	audioBuf []float64

	// Listener-side state: the MIDI callback and the main loop both
	// touch these.
	midiMu      sync.Mutex
	ccIndex     map[uint16][]string
	pendingMSB  map[uint16]uint8
	learnTarget string
	mappings    map[string]*learnedMapping

	oscMu    sync.Mutex
	oscIndex map[string][]string

	snapshots    map[string]*snapshot
	transition   *transition
	endCallbacks []func(id string)

	warned      map[string]struct{}
	lastChanged map[string]struct{}
}

// New builds a hub over an initial configuration document and a timing
// source. The initial document must be valid; later watcher reloads
// that fail are logged and skipped instead.
func New(doc *config.Document, src timing.Source, opts ...Option) (*Hub, error) {
	if doc == nil {
		return nil, fmt.Errorf("rig document must not be nil")
	}
	if src == nil {
		return nil, fmt.Errorf("rig timing source must not be nil")
	}

	cfg := hubConfig{
		logger:           slog.Default(),
		transitionFrames: defaultTransitionFrames,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	seed := cfg.randSeed
	if !cfg.seeded {
		seed = time.Now().UnixNano()
	}

	eval, err := automate.NewEvaluator(automate.WithEvaluatorLogger(cfg.logger))
	if err != nil {
		return nil, err
	}

	h := &Hub{
		logger:           cfg.logger,
		src:              src,
		hrcc:             cfg.hrcc,
		transitionFrames: cfg.transitionFrames,
		cache:            graph.NewCache(),
		eval:             eval,
		rng:              rand.New(rand.NewSource(seed)),
		sliders:          NewCollection[*config.SliderSpec, float64](),
		checks:           NewCollection[*config.CheckboxSpec, bool](),
		selects:          NewCollection[*config.SelectSpec, string](),
		midi:             NewCollection[*config.MIDISpec, float64](),
		osc:              NewCollection[*config.OSCSpec, float64](),
		audio:            NewCollection[*config.AudioSpec, float64](),
		midiIn:           cfg.midi,
		oscIn:            cfg.osc,
		audioIn:          cfg.audio,
		watcher:          cfg.watcher,
		audioBuf:         make([]float64, analysisBlock),
		ccIndex:          make(map[uint16][]string),
		pendingMSB:       make(map[uint16]uint8),
		mappings:         make(map[string]*learnedMapping),
		oscIndex:         make(map[string][]string),
		snapshots:        make(map[string]*snapshot),
		warned:           make(map[string]struct{}),
		lastChanged:      make(map[string]struct{}),
	}

	if err := h.ApplyConfig(doc); err != nil {
		return nil, err
	}

	if h.midiIn != nil {
		h.midiIn.Subscribe(h.handleMIDI)
	}
	if h.oscIn != nil {
		h.oscIn.SubscribeAll(h.handleOSC)
	}

	h.beats = src.Beats()

	return h, nil
}

// Close releases the inputs the hub was constructed with.
func (h *Hub) Close() {
	if h.watcher != nil {
		if err := h.watcher.Close(); err != nil {
			h.logger.Warn("close config watcher", "err", err)
		}
		h.watcher = nil
	}
	if h.midiIn != nil {
		if err := h.midiIn.Close(); err != nil {
			h.logger.Warn("close midi input", "err", err)
		}
		h.midiIn = nil
	}
	if h.oscIn != nil {
		if err := h.oscIn.Close(); err != nil {
			h.logger.Warn("close osc input", "err", err)
		}
		h.oscIn = nil
	}
	if h.audioIn != nil {
		h.audioIn.Close()
		h.audioIn = nil
	}
}

// Frame returns the current frame number.
func (h *Hub) Frame() uint64 { return h.frame }

// Beats returns the musical position captured by the last Update.
func (h *Hub) Beats() float64 { return h.beats }

// Names returns the configured control names in document order.
func (h *Hub) Names() []string { return h.doc.Names() }

// Document returns the active configuration.
func (h *Hub) Document() *config.Document { return h.doc }

// Changed reports whether any stored control value changed during the
// previous frame.
func (h *Hub) Changed() bool { return len(h.lastChanged) > 0 }

// AnyChangedIn reports whether any of the named controls changed during
// the previous frame.
func (h *Hub) AnyChangedIn(names []string) bool {
	for _, name := range names {
		if target, ok := h.aliases[name]; ok {
			name = target
		}
		if _, ok := h.lastChanged[name]; ok {
			return true
		}
	}
	return false
}

// warnOnce logs one warning per key for conditions that would otherwise
// spam every frame.
func (h *Hub) warnOnce(key, msg string, args ...any) {
	if _, ok := h.warned[key]; ok {
		return
	}
	h.warned[key] = struct{}{}
	h.logger.Warn(msg, args...)
}
