package demo

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/specvital/scopekit/internal/command"
	demosuite "github.com/specvital/scopekit/internal/demo"
	"github.com/specvital/scopekit/pkg/config"
	"github.com/specvital/scopekit/pkg/runner"
)

type options struct {
	configDir string
	delay     time.Duration
	failFast  bool
	naming    string
	patterns  []string
	separator string
	workers   int
}

func Command() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "demo",
		Short:        command.FormatDescription(true, description...),
		Long:         command.FormatDescription(false, description...),
		Example:      command.FormatExamples(examples...),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			return run(cmd, cfg, opts.delay)
		},
	}
	cmd.Flags().StringVar(&opts.configDir, "config", "", "Directory containing "+config.FileName)
	cmd.Flags().DurationVar(&opts.delay, "delay", demosuite.DefaultDelay, "How long the slow tests wait")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false, "Stop after the first failure")
	cmd.Flags().StringVar(&opts.naming, "naming", "", "Naming style: flat or hierarchical")
	cmd.Flags().StringSliceVarP(&opts.patterns, "pattern", "p", nil, "Run only tests whose group path matches the glob")
	cmd.Flags().StringVar(&opts.separator, "separator", "", "Separator for flat names")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of tests run concurrently")
	return cmd
}

// config loads the optional file and applies the flags that were set.
func (o *options) config(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.Default()
	if o.configDir != "" {
		loaded, err := config.Load(o.configDir)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("naming") {
		cfg.Naming = o.naming
	}
	if flags.Changed("separator") {
		cfg.Separator = o.separator
	}
	if flags.Changed("pattern") {
		cfg.Patterns = o.patterns
	}
	if flags.Changed("workers") {
		cfg.Workers = o.workers
	}
	if flags.Changed("fail-fast") {
		cfg.FailFast = o.failFast
	}
	if noColor, _ := flags.GetBool("no-color"); noColor {
		off := false
		cfg.Color = &off
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config, delay time.Duration) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	logger := slog.Default()

	opts := append(cfg.RunnerOptions(), runner.WithOutput(out), runner.WithLogger(logger))
	r := runner.New(opts...)

	session := r.Session(cfg.SessionOptions()...)
	if err := session.Validate(); err != nil {
		return err
	}

	suite := demosuite.New(out)
	suite.Delay = delay
	if err := suite.Register(session); err != nil {
		return fmt.Errorf("register demo suite: %w", err)
	}

	report, err := r.Run(ctx)
	if err != nil {
		return err
	}
	if failed := report.Counts().Failed; failed > 0 {
		return fmt.Errorf("%d tests failed", failed)
	}
	return nil
}
