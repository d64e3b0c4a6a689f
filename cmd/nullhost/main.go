// Command nullhost runs a null sink node under a simulated graph host:
// it negotiates a format, binds a buffer queue, and drives processing
// quanta at a fixed interval while exporting the node's statistics.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/graphnode-go/graphnode/pkg/format"
	"github.com/graphnode-go/graphnode/pkg/host"
	"github.com/graphnode-go/graphnode/pkg/node"
	"github.com/graphnode-go/graphnode/pkg/nullsink"
	"github.com/graphnode-go/graphnode/pkg/telemetry"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "nullhost",
		Short:        "Drive a null sink audio node like a graph host",
		SilenceUsage: true,
		RunE:         run,
	}

	flags := cmd.Flags()
	flags.Uint32("channels", 2, "channel count of the negotiated format")
	flags.Uint32("rate", 48000, "sample rate of the negotiated format in Hz")
	flags.String("encoding", "f32le", "sample encoding (s16le, s24le, s32le, f32le, f64le)")
	flags.Int("buffers", 4, "number of buffers granted to the node")
	flags.Int("buffer-frames", 1024, "frames per buffer")
	flags.Duration("quantum", 10*time.Millisecond, "processing quantum interval")
	flags.Duration("duration", 0, "how long to run; 0 runs until interrupted")
	flags.Float64("tone", 0, "test tone frequency in Hz; 0 fills buffers with silence")
	flags.String("metrics-addr", "", "address to serve Prometheus metrics on; empty disables")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	viper.SetEnvPrefix("NULLHOST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func run(cmd *cobra.Command, _ []string) error {
	logger := newLogger(viper.GetString("log-level"))

	enc, err := format.ParseEncoding(viper.GetString("encoding"))
	if err != nil {
		return err
	}
	desc := format.Descriptor{
		Media:    format.MediaAudio,
		Subtype:  format.SubtypeRaw,
		Encoding: enc,
		Channels: viper.GetUint32("channels"),
		Rate:     viper.GetUint32("rate"),
	}

	sink := nullsink.New(logger)
	reg, err := sink.AddListener(&node.Events{
		ParamChanged: func(_ any, id node.ParamID, d *format.Descriptor) {
			if d == nil {
				logger.Info("parameter cleared", "param", int32(id))
				return
			}
			logger.Info("parameter changed", "param", int32(id), "format", d.String())
		},
	}, nil)
	if err != nil {
		return err
	}
	defer sink.RemoveListener(reg)

	driver, err := host.NewDriver(sink, host.Config{
		Format:       desc,
		Buffers:      viper.GetInt("buffers"),
		BufferFrames: viper.GetInt("buffer-frames"),
		Quantum:      viper.GetDuration("quantum"),
		Tone:         viper.GetFloat64("tone"),
		Logger:       logger,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if d := viper.GetDuration("duration"); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	g, ctx := errgroup.WithContext(ctx)

	if addr := viper.GetString("metrics-addr"); addr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(telemetry.NewSinkCollector(sink))
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

		g.Go(func() error {
			logger.Info("serving metrics", "addr", addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	g.Go(func() error {
		return driver.Run(ctx)
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}

	stats := sink.Stats()
	logger.Info("run finished",
		"quanta", driver.Quanta(),
		"buffers_dropped", stats.Buffers,
		"frames_dropped", stats.Frames)
	return err
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
