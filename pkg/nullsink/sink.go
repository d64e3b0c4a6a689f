// Package nullsink implements a graph audio node that consumes buffers
// and discards them while keeping exact statistics. It is useful for
// testing pipelines without hardware, measuring scheduling overhead, and
// silently terminating unwanted streams, and it doubles as the reference
// implementation of the node protocol: format negotiation, lifecycle
// commands, I/O binding, and the real-time processing contract.
package nullsink

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/graphnode-go/graphnode/pkg/event"
	"github.com/graphnode-go/graphnode/pkg/format"
	"github.com/graphnode-go/graphnode/pkg/graphio"
	"github.com/graphnode-go/graphnode/pkg/node"
)

// State is the node's lifecycle phase, derived from the published
// configuration.
type State int32

const (
	// StateUnconfigured means no format has been accepted
	StateUnconfigured State = iota
	// StateConfigured means a format is accepted but processing is halted
	StateConfigured
	// StateStarted means the node accepts processing quanta
	StateStarted
)

// config is the control-plane state published to the real-time plane. It
// is immutable once stored; every change swaps in a fresh snapshot.
type config struct {
	format  *format.Descriptor
	started bool
}

// Sink is a null sink node. The zero value is not usable; construct with
// New. Control-plane methods may be called from any goroutine; Process
// belongs to the single real-time goroutine.
type Sink struct {
	id  string
	log *slog.Logger

	// mu serializes control-plane mutations. The real-time plane never
	// takes it; it reads the atomic snapshots below.
	mu        sync.Mutex
	cfg       atomic.Pointer[config]
	queue     atomic.Pointer[graphio.Queue]
	rateMatch atomic.Pointer[graphio.RateMatch]

	listeners event.Notifier[*node.Events]

	frames  atomic.Uint64
	buffers atomic.Uint64
	faults  atomic.Uint64

	info node.Info
	port node.PortInfo
}

var _ node.Node = (*Sink)(nil)

// New creates a null sink. logger may be nil, in which case the process
// default is used.
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Sink{
		id: uuid.NewString(),
		info: node.Info{
			MaxInputPorts:  1,
			MaxOutputPorts: 0,
			Flags:          node.FlagRT,
			Params:         []node.ParamID{node.ParamFormat},
		},
		port: node.PortInfo{
			Direction: node.DirectionInput,
			Name:      "input",
			Flags:     node.PortFlagNoRef,
		},
	}
	s.log = logger.With("node", s.id)
	s.cfg.Store(&config{})
	s.log.Info("null sink initialized")
	return s
}

// ID returns the node's instance identifier, used to correlate logs and
// metrics.
func (s *Sink) ID() string { return s.id }

// Info implements node.Node.
func (s *Sink) Info() node.Info { return s.info }

// State reports the current lifecycle phase. A node halted by Pause or
// Suspend with its format retained reports StateConfigured; the phases
// are not distinguishable by observable behavior.
func (s *Sink) State() State {
	cfg := s.cfg.Load()
	switch {
	case cfg.format == nil:
		return StateUnconfigured
	case cfg.started:
		return StateStarted
	default:
		return StateConfigured
	}
}

// AddListener implements node.Node. The node's current info is delivered
// to the new listener before AddListener returns.
func (s *Sink) AddListener(callbacks *node.Events, data any) (*event.Registration, error) {
	if callbacks == nil {
		return nil, fmt.Errorf("%w: nil callbacks", node.ErrInvalidArgument)
	}
	reg := s.listeners.Subscribe(callbacks, data)
	if callbacks.Info != nil {
		callbacks.Info(data, &s.info)
	}
	return reg, nil
}

// RemoveListener implements node.Node.
func (s *Sink) RemoveListener(reg *event.Registration) {
	s.listeners.Unsubscribe(reg)
}

// SetParameter implements node.Node. Only ParamFormat is configurable: a
// nil descriptor clears the format and halts processing; a non-nil
// descriptor is validated and replaces the stored format without
// changing the started flag. Every successful change emits ParamChanged.
func (s *Sink) SetParameter(id node.ParamID, desc *format.Descriptor) error {
	if id != node.ParamFormat {
		return fmt.Errorf("%w: parameter %d", node.ErrUnsupported, id)
	}

	s.mu.Lock()
	if desc == nil {
		s.cfg.Store(&config{})
		s.mu.Unlock()
		s.log.Info("format cleared")
		return s.emitParamChanged(id, nil)
	}

	if err := format.Validate(desc); err != nil {
		s.mu.Unlock()
		s.log.Error("format rejected", "error", err)
		return err
	}

	accepted := *desc
	prev := s.cfg.Load()
	s.cfg.Store(&config{format: &accepted, started: prev.started})
	s.mu.Unlock()

	s.log.Info("format set", "format", accepted.String())
	return s.emitParamChanged(id, &accepted)
}

func (s *Sink) emitParamChanged(id node.ParamID, desc *format.Descriptor) error {
	return s.listeners.Publish(func(cb *node.Events, data any) error {
		if cb.ParamChanged != nil {
			cb.ParamChanged(data, id, desc)
		}
		return nil
	})
}

// SendCommand implements node.Node. Start requires an accepted format;
// Pause and Suspend halt processing unconditionally and are idempotent. A
// halt takes effect at the next quantum boundary — an in-flight Process
// runs to completion.
func (s *Sink) SendCommand(cmd node.Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg.Load()
	switch cmd {
	case node.CommandStart:
		if cfg.format == nil {
			return fmt.Errorf("%w: start without format", node.ErrNotConfigured)
		}
		s.cfg.Store(&config{format: cfg.format, started: true})
		s.log.Info("started")
	case node.CommandPause, node.CommandSuspend:
		s.cfg.Store(&config{format: cfg.format, started: false})
		s.log.Info("suspended")
	default:
		s.log.Warn("unknown command", "command", int32(cmd))
		return fmt.Errorf("%w: command %d", node.ErrUnsupported, cmd)
	}
	return nil
}

// BindIO implements node.Node. The region must be the area type matching
// kind; a nil region or one smaller than the area's minimum layout size
// clears the binding.
func (s *Sink) BindIO(kind node.IOKind, region any, size uintptr) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch kind {
	case node.IOBufferQueue:
		if region == nil || size < graphio.QueueAreaSize {
			s.queue.Store(nil)
			return nil
		}
		q, ok := region.(*graphio.Queue)
		if !ok {
			return fmt.Errorf("%w: buffer queue region must be *graphio.Queue", node.ErrInvalidArgument)
		}
		s.queue.Store(q)
	case node.IORateMatch:
		if region == nil || size < graphio.RateMatchAreaSize {
			s.rateMatch.Store(nil)
			return nil
		}
		rm, ok := region.(*graphio.RateMatch)
		if !ok {
			return fmt.Errorf("%w: rate match region must be *graphio.RateMatch", node.ErrInvalidArgument)
		}
		s.rateMatch.Store(rm)
	default:
		return fmt.Errorf("%w: io kind %d", node.ErrUnsupported, kind)
	}
	return nil
}

// EnumerateParameters implements node.Node. Pages of advertised values
// are delivered through each listener's Result callback tagged with seq;
// the direct return value is only the delivered count. Unknown parameter
// IDs yield an empty enumeration.
func (s *Sink) EnumerateParameters(seq int, id node.ParamID, start, max uint32, filter *format.Descriptor) (int, error) {
	if max == 0 {
		return 0, fmt.Errorf("%w: zero max", node.ErrInvalidArgument)
	}
	if id != node.ParamFormat {
		return 0, nil
	}

	page, next := format.Enumerate(start, max)
	count := 0
	for i := range page {
		if !page[i].Matches(filter) {
			continue
		}
		result := node.ParamsResult{
			ID:         id,
			Index:      start + uint32(i),
			Next:       next,
			Descriptor: page[i],
		}
		err := s.listeners.Publish(func(cb *node.Events, data any) error {
			if cb.Result != nil {
				return cb.Result(data, seq, result)
			}
			return nil
		})
		count++
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// EnumeratePorts implements node.Node. The null sink exposes exactly one
// input port and no output ports.
func (s *Sink) EnumeratePorts(dir node.Direction, start, max uint32) ([]uint32, uint32) {
	if dir != node.DirectionInput || start > 0 || max == 0 {
		return nil, start
	}
	return []uint32{0}, start + 1
}

// PortInfo implements node.Node.
func (s *Sink) PortInfo(dir node.Direction, port uint32) (*node.PortInfo, error) {
	if dir != node.DirectionInput || port != 0 {
		return nil, fmt.Errorf("%w: port %d/%d", node.ErrNotFound, dir, port)
	}
	return &s.port, nil
}

// Stats is a snapshot of the node's processing counters. The counters are
// monotonic telemetry values that wrap at the uint64 bound.
type Stats struct {
	Frames  uint64
	Buffers uint64
}

// Stats returns the counters accumulated by Process. Safe to call from
// any goroutine.
func (s *Sink) Stats() Stats {
	return Stats{
		Frames:  s.frames.Load(),
		Buffers: s.buffers.Load(),
	}
}
