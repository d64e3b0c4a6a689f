// Package node defines the contract between a host graph and an audio
// processing node: the control-plane operations, the real-time process
// entry point, and the event callbacks through which a node reports back.
package node

import (
	"github.com/graphnode-go/graphnode/pkg/event"
	"github.com/graphnode-go/graphnode/pkg/format"
)

// Direction distinguishes input from output ports.
type Direction int32

const (
	// DirectionInput is a port consuming data from the graph
	DirectionInput Direction = 0
	// DirectionOutput is a port producing data into the graph
	DirectionOutput Direction = 1
)

// IOKind names the shared memory areas a host may bind to a node.
type IOKind int32

const (
	// IOBufferQueue is the buffer exchange area (graphio.Queue)
	IOBufferQueue IOKind = iota
	// IORateMatch is the timing adjustment area (graphio.RateMatch)
	IORateMatch
)

// Command is a lifecycle command sent by the host.
type Command int32

const (
	// CommandStart begins per-quantum processing
	CommandStart Command = iota
	// CommandPause halts processing, configuration retained
	CommandPause
	// CommandSuspend halts processing, configuration retained
	CommandSuspend
)

// ParamID names a configurable node parameter.
type ParamID int32

const (
	// ParamFormat is the negotiated audio format (format.Descriptor)
	ParamFormat ParamID = iota
	// ParamProps is reserved for node properties
	ParamProps
)

// Status is the result of one Process invocation.
type Status int32

const (
	// StatusOK means the quantum completed, nothing further to do
	StatusOK Status = 0
	// StatusNeedData means the node can accept more input
	StatusNeedData Status = 1
	// StatusHaveData means the node produced output
	StatusHaveData Status = 2
	// StatusError means the node is in an unrecoverable processing state
	StatusError Status = -1
)

// Node flags reported through Info.
const (
	// FlagRT marks a node whose Process runs on the real-time thread
	FlagRT uint64 = 1 << 0
)

// Port flags reported through PortInfo.
const (
	// PortFlagNoRef marks a port that never holds buffer references
	// across quanta
	PortFlagNoRef uint64 = 1 << 0
)

// Info describes a node's static capabilities.
type Info struct {
	MaxInputPorts  uint32
	MaxOutputPorts uint32
	Flags          uint64
	Params         []ParamID
}

// PortInfo describes one port.
type PortInfo struct {
	Direction Direction
	Name      string
	Flags     uint64
}

// ParamsResult is the payload delivered through Events.Result for one
// enumerated parameter. Next is the index enumeration resumes from.
type ParamsResult struct {
	ID         ParamID
	Index      uint32
	Next       uint32
	Descriptor format.Descriptor
}

// Events is the callback set a listener registers with AddListener. Any
// callback may be nil. Callbacks run synchronously on the control thread
// that triggered them, in listener registration order, and must not
// block.
type Events struct {
	// Info is emitted when the node's static info becomes available or
	// changes.
	Info func(data any, info *Info)
	// ParamChanged is emitted after a parameter was successfully set or
	// cleared. desc is nil when the parameter was cleared.
	ParamChanged func(data any, id ParamID, desc *format.Descriptor)
	// Result delivers sequence-numbered asynchronous-style results, such
	// as pages produced by EnumerateParameters.
	Result func(data any, seq int, result any) error
}

// Node is the interface a host graph holds for every processing node. The
// host never sees the concrete type. All methods except Process belong to
// the control plane and may be called from any thread; Process is invoked
// once per quantum on the dedicated real-time thread and is never
// re-entered concurrently with itself.
type Node interface {
	// AddListener registers an event listener. The callback set must
	// outlive the registration.
	AddListener(callbacks *Events, data any) (*event.Registration, error)

	// RemoveListener detaches a previously registered listener.
	RemoveListener(reg *event.Registration)

	// Info returns the node's static capabilities.
	Info() Info

	// EnumerateParameters pages through the values advertised for a
	// parameter, beginning at start and yielding at most max entries.
	// Results are delivered through each listener's Result callback,
	// tagged with seq, rather than returned directly, so hosts can
	// pipeline requests. It returns the number of entries delivered.
	EnumerateParameters(seq int, id ParamID, start, max uint32, filter *format.Descriptor) (int, error)

	// SetParameter configures a parameter. A nil descriptor clears it.
	SetParameter(id ParamID, desc *format.Descriptor) error

	// BindIO grants or revokes access to a shared I/O area. A nil region
	// or one smaller than the area's minimum layout size clears the
	// binding.
	BindIO(kind IOKind, region any, size uintptr) error

	// SendCommand applies a lifecycle command.
	SendCommand(cmd Command) error

	// EnumeratePorts pages through the node's port indices for one
	// direction, returning the page and the resume index.
	EnumeratePorts(dir Direction, start, max uint32) ([]uint32, uint32)

	// PortInfo describes one port, or fails with ErrNotFound.
	PortInfo(dir Direction, port uint32) (*PortInfo, error)

	// Process runs one quantum. It must not block, allocate, or perform
	// unbounded-latency system calls.
	Process() Status
}
