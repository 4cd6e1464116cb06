package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/schierlm/mnemonifier/pkg/codec"
	"github.com/schierlm/mnemonifier/pkg/config"
	"github.com/schierlm/mnemonifier/pkg/observability"
	"github.com/schierlm/mnemonifier/pkg/version"
)

// session is the per-invocation state of a command: the resolved
// configuration, the codec built from it, and the telemetry providers.
type session struct {
	cfg       *config.Config
	codec     *codec.Codec
	logger    *slog.Logger
	inst      observability.Instruments
	providers observability.Providers
}

// openSession loads the configuration, lets override apply command flags,
// and builds the codec and telemetry for mode.
func openSession(cmd *cobra.Command, opts *GlobalOptions, mode observability.AppMode, override func(*config.Config)) (*session, error) {
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}

	if override != nil {
		override(cfg)

		if err := config.Validate(cfg); err != nil {
			return nil, fmt.Errorf("invalid flags: %w", err)
		}
	}

	level, err := observability.ParseLogLevel(cfg.Logging.Level)
	if err != nil {
		return nil, err
	}

	if opts.Verbose {
		level = slog.LevelDebug
	}

	cdc, err := config.NewCodec(cfg.Codec)
	if err != nil {
		return nil, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Mode = mode
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.Format == "json" || mode == observability.ModeMCP
	obsCfg.LogOutput = cmd.ErrOrStderr()
	obsCfg.MetricsEnabled = mode == observability.ModeMCP && cfg.Metrics.Listen != ""

	if cfg.Logging.ASCII {
		obsCfg.LogEscape = cdc.Encode
	}

	providers, err := observability.Init(obsCfg)
	if err != nil {
		return nil, fmt.Errorf("init observability: %w", err)
	}

	sess := &session{cfg: cfg, codec: cdc, logger: providers.Logger, providers: providers}

	sess.inst, err = observability.NewInstruments(providers)
	if err != nil {
		sess.close(cmd.Context())

		return nil, err
	}

	source := cfg.Codec.Table
	if source == "" {
		source = "embedded"
	}

	sess.logger.DebugContext(cmd.Context(), "mnemonic table loaded",
		slog.String("source", source),
		slog.Int("entries", sess.codec.Table().Len()),
		slog.String("annotator", cfg.Codec.Annotator),
		slog.String("decode_mode", cfg.Codec.Mode().String()))

	return sess, nil
}

func (s *session) close(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.providers.Shutdown(ctx); err != nil {
		s.logger.Warn("observability shutdown failed", slog.Any("error", err))
	}
}

// readInput returns the text to work on: the joined arguments, or all of
// stdin when there are none. fromArgs tells the caller to end its output
// with a newline.
func readInput(cmd *cobra.Command, args []string) (text string, fromArgs bool, err error) {
	if len(args) > 0 {
		return strings.Join(args, " "), true, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", false, fmt.Errorf("read stdin: %w", err)
	}

	return string(data), false, nil
}

func writeOutput(cmd *cobra.Command, text string, newline bool) error {
	w := cmd.OutOrStdout()

	if _, err := io.WriteString(w, text); err != nil {
		return fmt.Errorf("write output: %w", err)
	}

	if newline {
		if _, err := io.WriteString(w, "\n"); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	return nil
}
