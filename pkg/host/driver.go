// Package host drives a node the way a graph engine does: it owns the
// buffer-queue area, offers one buffer per quantum, and invokes the
// node's process entry point on a dedicated goroutine.
package host

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/graphnode-go/graphnode/pkg/format"
	"github.com/graphnode-go/graphnode/pkg/graphio"
	"github.com/graphnode-go/graphnode/pkg/node"
)

// Config sets up a Driver.
type Config struct {
	// Format is negotiated with the node before starting.
	Format format.Descriptor
	// Buffers is the number of buffer references granted to the node.
	Buffers int
	// BufferFrames is the payload size of each buffer in frames.
	BufferFrames int
	// Quantum is the interval between process invocations.
	Quantum time.Duration
	// Tone, when non-zero, fills the buffers with a sine of that
	// frequency instead of silence.
	Tone float64
	// Logger may be nil; the process default is used.
	Logger *slog.Logger
}

// Driver owns the graph side of the buffer exchange protocol for a single
// node. Create with NewDriver, then Run on the goroutine that plays the
// real-time role.
type Driver struct {
	node   node.Node
	queue  *graphio.Queue
	cfg    Config
	log    *slog.Logger
	quanta atomic.Uint64
}

// NewDriver allocates the buffer set and queue area for n.
func NewDriver(n node.Node, cfg Config) (*Driver, error) {
	if n == nil {
		return nil, fmt.Errorf("%w: nil node", node.ErrInvalidArgument)
	}
	if cfg.Buffers <= 0 {
		cfg.Buffers = 4
	}
	if cfg.Buffers > graphio.MaxBuffers {
		cfg.Buffers = graphio.MaxBuffers
	}
	if cfg.BufferFrames <= 0 {
		cfg.BufferFrames = 1024
	}
	if cfg.Quantum <= 0 {
		cfg.Quantum = 10 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if err := format.Validate(&cfg.Format); err != nil {
		return nil, err
	}

	buffers := make([]*graphio.Buffer, cfg.Buffers)
	for i := range buffers {
		var payload []byte
		if cfg.Tone > 0 {
			payload = TestTone(cfg.Format, cfg.BufferFrames, cfg.Tone)
		} else {
			payload = Silence(cfg.Format, cfg.BufferFrames)
		}
		buffers[i] = &graphio.Buffer{
			Datas: []graphio.Data{{
				Bytes: payload,
				Chunk: &graphio.Chunk{Size: uint32(len(payload))},
			}},
		}
	}

	return &Driver{
		node:  n,
		queue: graphio.NewQueue(buffers),
		cfg:   cfg,
		log:   cfg.Logger,
	}, nil
}

// Queue exposes the buffer-queue area, mainly for tests.
func (d *Driver) Queue() *graphio.Queue { return d.queue }

// Quanta returns the number of process invocations issued so far.
func (d *Driver) Quanta() uint64 { return d.quanta.Load() }

// Configure negotiates the format, binds the queue area, and starts the
// node.
func (d *Driver) Configure() error {
	desc := d.cfg.Format
	if err := d.node.SetParameter(node.ParamFormat, &desc); err != nil {
		return fmt.Errorf("set format: %w", err)
	}
	if err := d.node.BindIO(node.IOBufferQueue, d.queue, graphio.QueueAreaSize); err != nil {
		return fmt.Errorf("bind buffer queue: %w", err)
	}
	if err := d.node.SendCommand(node.CommandStart); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	return nil
}

// Run configures the node and then drives one quantum per interval until
// ctx is cancelled, at which point the node is paused and unbound. The
// calling goroutine acts as the real-time context: Run never invokes
// Process concurrently with itself.
func (d *Driver) Run(ctx context.Context) error {
	if err := d.Configure(); err != nil {
		return err
	}
	d.log.Info("driver running",
		"format", d.cfg.Format.String(),
		"buffers", d.cfg.Buffers,
		"quantum", d.cfg.Quantum)

	ticker := time.NewTicker(d.cfg.Quantum)
	defer ticker.Stop()

	next := uint32(0)
	for {
		select {
		case <-ctx.Done():
			_ = d.node.SendCommand(node.CommandPause)
			_ = d.node.BindIO(node.IOBufferQueue, nil, 0)
			d.log.Info("driver stopped", "quanta", d.quanta.Load())
			return ctx.Err()
		case <-ticker.C:
			// Recycle buffers round-robin: a slot is offered only once
			// the node signaled completion of the previous one.
			if d.queue.Offer(next) {
				next = (next + 1) % uint32(d.queue.Len())
			}
			if status := d.node.Process(); status == node.StatusError {
				return fmt.Errorf("node reported processing error after %d quanta", d.quanta.Load())
			}
			d.quanta.Add(1)
		}
	}
}
