package nullsink

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphnode-go/graphnode/pkg/format"
	"github.com/graphnode-go/graphnode/pkg/graphio"
	"github.com/graphnode-go/graphnode/pkg/node"
)

func stereo48k() format.Descriptor {
	return format.Descriptor{
		Media:    format.MediaAudio,
		Subtype:  format.SubtypeRaw,
		Encoding: format.EncodingF32LE,
		Channels: 2,
		Rate:     48000,
	}
}

func TestNewSinkInfo(t *testing.T) {
	s := newTestSink()

	info := s.Info()
	assert.Equal(t, uint32(1), info.MaxInputPorts)
	assert.Equal(t, uint32(0), info.MaxOutputPorts)
	assert.Equal(t, node.FlagRT, info.Flags&node.FlagRT)
	assert.Contains(t, info.Params, node.ParamFormat)
	assert.Equal(t, StateUnconfigured, s.State())
	assert.NotEmpty(t, s.ID())
}

func TestSetFormat(t *testing.T) {
	s := newTestSink()
	desc := stereo48k()

	require.NoError(t, s.SetParameter(node.ParamFormat, &desc))
	assert.Equal(t, StateConfigured, s.State())
}

func TestSetFormatInvalid(t *testing.T) {
	s := newTestSink()

	tests := []format.Descriptor{
		{Encoding: format.EncodingF32LE, Channels: 0, Rate: 48000},
		{Encoding: format.EncodingF32LE, Channels: 65, Rate: 48000},
		{Encoding: format.EncodingF32LE, Channels: 2, Rate: 0},
		{Encoding: format.EncodingF32LE, Channels: 2, Rate: 192001},
		{Media: format.MediaVideo, Channels: 2, Rate: 48000},
	}
	for _, desc := range tests {
		err := s.SetParameter(node.ParamFormat, &desc)
		require.ErrorIs(t, err, node.ErrInvalidFormat, "descriptor %+v", desc)
		// Prior state untouched.
		assert.Equal(t, StateUnconfigured, s.State())
	}
}

func TestSetFormatNilClearsFromAnyState(t *testing.T) {
	s := newTestSink()
	desc := stereo48k()

	require.NoError(t, s.SetParameter(node.ParamFormat, &desc))
	require.NoError(t, s.SendCommand(node.CommandStart))
	require.Equal(t, StateStarted, s.State())

	require.NoError(t, s.SetParameter(node.ParamFormat, nil))
	assert.Equal(t, StateUnconfigured, s.State())

	// started was forced false: restarting needs a format again.
	assert.ErrorIs(t, s.SendCommand(node.CommandStart), node.ErrNotConfigured)
}

func TestSetFormatReplaceKeepsStarted(t *testing.T) {
	s := newTestSink()
	desc := stereo48k()
	require.NoError(t, s.SetParameter(node.ParamFormat, &desc))
	require.NoError(t, s.SendCommand(node.CommandStart))

	mono := stereo48k()
	mono.Channels = 1
	require.NoError(t, s.SetParameter(node.ParamFormat, &mono))
	assert.Equal(t, StateStarted, s.State(), "replacing the format must not halt a started node")
}

func TestSetParameterUnsupported(t *testing.T) {
	s := newTestSink()
	desc := stereo48k()
	assert.ErrorIs(t, s.SetParameter(node.ParamProps, &desc), node.ErrUnsupported)
}

func TestSendCommand(t *testing.T) {
	s := newTestSink()

	err := s.SendCommand(node.CommandStart)
	require.ErrorIs(t, err, node.ErrNotConfigured)
	assert.Equal(t, StateUnconfigured, s.State())

	desc := stereo48k()
	require.NoError(t, s.SetParameter(node.ParamFormat, &desc))
	require.NoError(t, s.SendCommand(node.CommandStart))
	assert.Equal(t, StateStarted, s.State())

	// Pause and Suspend are idempotent.
	require.NoError(t, s.SendCommand(node.CommandPause))
	require.NoError(t, s.SendCommand(node.CommandPause))
	assert.Equal(t, StateConfigured, s.State())
	require.NoError(t, s.SendCommand(node.CommandSuspend))
	assert.Equal(t, StateConfigured, s.State())

	assert.ErrorIs(t, s.SendCommand(node.Command(99)), node.ErrUnsupported)
}

func TestBindIO(t *testing.T) {
	s := newTestSink()
	q := graphio.NewQueue([]*graphio.Buffer{{}})

	require.NoError(t, s.BindIO(node.IOBufferQueue, q, graphio.QueueAreaSize))
	require.NoError(t, s.BindIO(node.IOBufferQueue, nil, 0))
	require.NoError(t, s.BindIO(node.IORateMatch, &graphio.RateMatch{}, graphio.RateMatchAreaSize))
	require.NoError(t, s.BindIO(node.IORateMatch, nil, 0))

	// Undersized regions are treated as absent, not as errors.
	require.NoError(t, s.BindIO(node.IOBufferQueue, q, graphio.QueueAreaSize-1))

	assert.ErrorIs(t, s.BindIO(node.IOBufferQueue, "not a queue", graphio.QueueAreaSize), node.ErrInvalidArgument)
	assert.ErrorIs(t, s.BindIO(node.IOKind(42), q, graphio.QueueAreaSize), node.ErrUnsupported)
}

func TestAddListener(t *testing.T) {
	s := newTestSink()

	_, err := s.AddListener(nil, nil)
	assert.ErrorIs(t, err, node.ErrInvalidArgument)

	var gotInfo *node.Info
	reg, err := s.AddListener(&node.Events{
		Info: func(_ any, info *node.Info) { gotInfo = info },
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, gotInfo, "current node info is delivered on registration")
	assert.Equal(t, uint32(1), gotInfo.MaxInputPorts)

	s.RemoveListener(reg)
}

func TestParamChangedEventOrdering(t *testing.T) {
	s := newTestSink()
	var order []string

	listener := func(tag string) *node.Events {
		return &node.Events{
			ParamChanged: func(_ any, _ node.ParamID, _ *format.Descriptor) {
				order = append(order, tag)
			},
		}
	}
	for _, tag := range []string{"A", "B", "C"} {
		_, err := s.AddListener(listener(tag), nil)
		require.NoError(t, err)
	}

	desc := stereo48k()
	require.NoError(t, s.SetParameter(node.ParamFormat, &desc))
	assert.Equal(t, []string{"A", "B", "C"}, order)

	order = nil
	require.NoError(t, s.SetParameter(node.ParamFormat, nil))
	assert.Equal(t, []string{"A", "B", "C"}, order, "clearing also notifies, in order")
}

func TestEnumerateParameters(t *testing.T) {
	s := newTestSink()

	type received struct {
		seq    int
		result node.ParamsResult
	}
	var got []received
	_, err := s.AddListener(&node.Events{
		Result: func(_ any, seq int, result any) error {
			got = append(got, received{seq, result.(node.ParamsResult)})
			return nil
		},
	}, nil)
	require.NoError(t, err)

	count, err := s.EnumerateParameters(7, node.ParamFormat, 0, 8, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	require.Len(t, got, 1)
	assert.Equal(t, 7, got[0].seq)
	assert.Equal(t, uint32(0), got[0].result.Index)
	assert.Equal(t, uint32(1), got[0].result.Next)
	assert.Equal(t, format.Default(), got[0].result.Descriptor)

	// Resumed enumeration is empty, repeatably.
	for i := 0; i < 2; i++ {
		got = nil
		count, err = s.EnumerateParameters(8, node.ParamFormat, 1, 8, nil)
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Empty(t, got)
	}

	// Filter that the advertised descriptor cannot satisfy.
	got = nil
	count, err = s.EnumerateParameters(9, node.ParamFormat, 0, 8, &format.Descriptor{Channels: 6})
	require.NoError(t, err)
	assert.Zero(t, count)

	// Unknown parameter IDs enumerate nothing.
	count, err = s.EnumerateParameters(10, node.ParamProps, 0, 8, nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = s.EnumerateParameters(11, node.ParamFormat, 0, 0, nil)
	assert.ErrorIs(t, err, node.ErrInvalidArgument)
}

func TestEnumerateParametersListenerError(t *testing.T) {
	s := newTestSink()

	errBoom := fmt.Errorf("listener rejected result")
	var otherDelivered bool
	_, err := s.AddListener(&node.Events{
		Result: func(any, int, any) error { return errBoom },
	}, nil)
	require.NoError(t, err)
	_, err = s.AddListener(&node.Events{
		Result: func(any, int, any) error { otherDelivered = true; return nil },
	}, nil)
	require.NoError(t, err)

	count, err := s.EnumerateParameters(1, node.ParamFormat, 0, 8, nil)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, 1, count)
	assert.True(t, otherDelivered, "fan-out reaches remaining listeners before the error surfaces")
}

func TestEnumeratePorts(t *testing.T) {
	s := newTestSink()

	ports, next := s.EnumeratePorts(node.DirectionInput, 0, 8)
	require.Equal(t, []uint32{0}, ports)
	assert.Equal(t, uint32(1), next)

	ports, _ = s.EnumeratePorts(node.DirectionInput, 1, 8)
	assert.Empty(t, ports)
	ports, _ = s.EnumeratePorts(node.DirectionOutput, 0, 8)
	assert.Empty(t, ports)
	ports, _ = s.EnumeratePorts(node.DirectionInput, 0, 0)
	assert.Empty(t, ports)
}

func TestPortInfo(t *testing.T) {
	s := newTestSink()

	info, err := s.PortInfo(node.DirectionInput, 0)
	require.NoError(t, err)
	assert.Equal(t, node.DirectionInput, info.Direction)
	assert.Equal(t, node.PortFlagNoRef, info.Flags&node.PortFlagNoRef)

	_, err = s.PortInfo(node.DirectionInput, 1)
	assert.ErrorIs(t, err, node.ErrNotFound)
	_, err = s.PortInfo(node.DirectionOutput, 0)
	assert.ErrorIs(t, err, node.ErrNotFound)
}
