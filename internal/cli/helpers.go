package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/glorpus-work/ggufy/internal/logger"
	"github.com/glorpus-work/ggufy/pkg/auth"
	"github.com/glorpus-work/ggufy/pkg/config"
	"github.com/glorpus-work/ggufy/pkg/download"
	"github.com/glorpus-work/ggufy/pkg/errors"
	"github.com/glorpus-work/ggufy/pkg/hub"
	"github.com/glorpus-work/ggufy/pkg/integrity"
	"github.com/glorpus-work/ggufy/pkg/metrics"
	"github.com/glorpus-work/ggufy/pkg/orchestrator"
	"github.com/spf13/cobra"
)

// These variables will be set by the main package
var (
	ConfigDir   *string
	CacheDir    *string
	Verbose     *bool
	MetricsFile *string
)

func stringFlag(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// loadEnvironment resolves the config and cache directories, loads the
// config file and initializes logging from it.
func loadEnvironment() (config.Environment, *config.Config, error) {
	env, cfg, err := config.Resolve(stringFlag(ConfigDir), stringFlag(CacheDir))
	if err != nil {
		return config.Environment{}, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Settings.LogLevel
	if Verbose != nil && *Verbose {
		level = "debug"
	}
	logger.InitLogger(level)
	logger.Debug("environment resolved", logger.Fields{"config_dir": env.ConfigDir, "cache_dir": env.CacheDir})
	return env, cfg, nil
}

// session holds everything a resolving command needs.
type session struct {
	env      config.Environment
	cfg      *config.Config
	orch     *orchestrator.Orchestrator
	metrics  *metrics.Recorder
	progress *progressPrinter
}

func newSession(cmd *cobra.Command) (*session, error) {
	env, cfg, err := loadEnvironment()
	if err != nil {
		return nil, err
	}

	log := logger.GetLogger()
	client, err := hub.NewClient(cfg.Settings.Endpoint,
		hub.WithTimeout(cfg.Settings.HTTPTimeout),
		hub.WithAuthenticator(auth.FromToken(cfg.Token)),
		hub.WithUserAgent(cfg.Settings.UserAgent),
		hub.WithOrder(cfg.Order()),
		hub.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	s := &session{
		env:      env,
		cfg:      cfg,
		metrics:  metrics.NewRecorder(),
		progress: newProgressPrinter(cmd.ErrOrStderr()),
	}
	s.orch = &orchestrator.Orchestrator{
		Hub:         client,
		DL:          download.NewManager(cfg.Settings.HTTPTimeout, cfg.Settings.UserAgent, download.WithLogger(log)),
		Verifier:    integrity.New(),
		Metrics:     s.metrics,
		Log:         log,
		LockTimeout: cfg.Settings.LockTimeout,
		Progress:    s.progress.Update,
		Hooks:       orchestrator.Hooks{OnEvent: s.onEvent(cmd.ErrOrStderr())},
	}
	return s, nil
}

func (s *session) onEvent(w io.Writer) func(orchestrator.Event) {
	return func(e orchestrator.Event) {
		switch e.Phase {
		case orchestrator.PhaseDownloading:
			_, _ = fmt.Fprintf(w, "Downloading %s\n", e.ID)
		case orchestrator.PhaseVerifying:
			s.progress.Finish()
		case orchestrator.PhaseError:
			s.progress.Finish()
		}
	}
}

// close flushes metrics to --metrics-file when requested.
func (s *session) close() {
	writeMetrics(s.metrics)
}

func writeMetrics(rec *metrics.Recorder) {
	path := stringFlag(MetricsFile)
	if path == "" || rec == nil {
		return
	}
	if err := rec.WriteTextfile(path); err != nil {
		logger.Warn("failed to write metrics file", logger.Fields{"path": path, "error": err.Error()})
	}
}

// readLine reads one line from r without the trailing newline.
func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a yes/no question on w and reads the answer from r.
func confirm(r io.Reader, w io.Writer, question string) (bool, error) {
	_, _ = fmt.Fprintf(w, "%s [y/N] ", question)
	answer, err := readLine(r)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// exactArgs is cobra.ExactArgs with errors classified as invalid arguments.
func exactArgs(n int) cobra.PositionalArgs {
	return classifyArgs(cobra.ExactArgs(n))
}

func minimumArgs(n int) cobra.PositionalArgs {
	return classifyArgs(cobra.MinimumNArgs(n))
}

func maximumArgs(n int) cobra.PositionalArgs {
	return classifyArgs(cobra.MaximumNArgs(n))
}

func classifyArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return fmt.Errorf("%w: %w", errors.ErrInvalidArguments, err)
		}
		return nil
	}
}
