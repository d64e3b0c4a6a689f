package nullsink

import (
	"github.com/graphnode-go/graphnode/pkg/graphio"
	"github.com/graphnode-go/graphnode/pkg/node"
)

// Diagnostic intervals for the real-time path. Logging from Process is
// gated to keep the steady path allocation-free and the log volume
// bounded.
const (
	faultLogInterval = 256
	traceInterval    = 1000
)

// Process implements node.Node. It runs once per quantum on the dedicated
// real-time goroutine and consumes at most one buffer reference:
//
//  1. load the published config snapshot; halted or unconfigured nodes
//     are a no-op,
//  2. resolve the pending buffer through the queue area,
//  3. account its frames against the accepted format,
//  4. store InvalidID back as the completion signal.
//
// Faults on this path (out-of-range ID, missing buffer) are recovered by
// resetting the queue to InvalidID and are never reported to the host as
// errors: a misbehaving peer must not abort the graph. Every branch is
// O(1) and the steady path does not allocate or block.
func (s *Sink) Process() node.Status {
	cfg := s.cfg.Load()
	if !cfg.started || cfg.format == nil {
		return node.StatusOK
	}

	queue := s.queue.Load()
	if queue == nil {
		return node.StatusOK
	}

	id := queue.CurrentID()
	if id == graphio.InvalidID {
		return node.StatusOK
	}

	if id >= uint32(queue.Len()) {
		s.fault("buffer id out of range", id)
		queue.Complete()
		return node.StatusOK
	}

	buf := queue.Buffer(id)
	if buf == nil {
		s.fault("missing buffer reference", id)
		queue.Complete()
		return node.StatusOK
	}

	if len(buf.Datas) > 0 && buf.Datas[0].Chunk != nil {
		frameSize := cfg.format.FrameSize()
		frames := uint64(buf.Datas[0].Chunk.Size / frameSize)
		total := s.frames.Add(frames)
		n := s.buffers.Add(1)
		if n%traceInterval == 0 {
			s.log.Debug("dropped buffers", "buffers", n, "frames", total)
		}
	}

	// Completion signal: ownership of the buffer returns to the host for
	// recycling on the next quantum.
	queue.Complete()

	if s.rateMatch.Load() != nil {
		// A resampling node would update the timing adjustment here; the
		// null sink consumes at the graph rate and leaves it untouched.
	}

	return node.StatusOK
}

// fault records a defensive recovery on the real-time path, logging the
// first occurrence and then every faultLogInterval-th.
func (s *Sink) fault(msg string, id uint32) {
	n := s.faults.Add(1)
	if n == 1 || n%faultLogInterval == 0 {
		s.log.Warn(msg, "buffer_id", id, "faults", n)
	}
}
