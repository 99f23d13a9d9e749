package outline

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/specvital/scopekit/internal/command"
	"github.com/specvital/scopekit/pkg/domain"
	scanner "github.com/specvital/scopekit/pkg/outline"
)

type options struct {
	exclude  []string
	json     bool
	patterns []string
	workers  int
}

func Command() *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:          "outline [dir]",
		Short:        command.FormatDescription(true, description...),
		Long:         command.FormatDescription(false, description...),
		Example:      command.FormatExamples(examples...),
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}

			result, err := scanner.Scan(cmd.Context(), dir,
				scanner.WithExcludePatterns(opts.exclude),
				scanner.WithLogger(slog.Default()),
				scanner.WithPatterns(opts.patterns),
				scanner.WithWorkers(opts.workers),
			)
			if err != nil {
				return err
			}
			for _, scanErr := range result.Errors {
				fmt.Fprintln(cmd.ErrOrStderr(), scanErr)
			}

			if opts.json {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result.Inventory)
			}

			noColor, _ := cmd.Flags().GetBool("no-color")
			newPrinter(cmd.OutOrStdout(), noColor).inventory(result.Inventory)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&opts.exclude, "exclude", nil, "Additional directory names to skip")
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print the outline as JSON")
	cmd.Flags().StringSliceVarP(&opts.patterns, "pattern", "p", nil, "Only outline files matching the glob, relative to dir")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "Number of files parsed concurrently (default GOMAXPROCS)")
	return cmd
}

type printer struct {
	w       io.Writer
	file    *color.Color
	hook    *color.Color
	skipped *color.Color
	focused *color.Color
}

func newPrinter(w io.Writer, noColor bool) *printer {
	p := &printer{
		w:       w,
		file:    color.New(color.Bold),
		hook:    color.New(color.FgHiBlack),
		skipped: color.New(color.FgYellow),
		focused: color.New(color.FgCyan),
	}
	if noColor {
		for _, c := range []*color.Color{p.file, p.hook, p.skipped, p.focused} {
			c.DisableColor()
		}
	}
	return p
}

func (p *printer) inventory(inv *domain.Inventory) {
	for _, f := range inv.Files {
		header := f.Path
		if f.Package != "" {
			header += " (" + f.Package + ")"
		}
		fmt.Fprintln(p.w, p.file.Sprint(header))
		p.body(1, f.Hooks, f.Tests, f.Suites)
	}
	fmt.Fprintf(p.w, "%d tests in %d files\n", inv.CountTests(), len(inv.Files))
}

func (p *printer) body(depth int, hooks []string, tests []domain.Test, suites []domain.TestSuite) {
	indent := strings.Repeat("  ", depth)
	if len(hooks) > 0 {
		fmt.Fprintln(p.w, indent+p.hook.Sprint("hooks: "+strings.Join(hooks, ", ")))
	}
	for _, test := range tests {
		fmt.Fprintln(p.w, indent+"- "+test.Name+p.status(test.Status))
	}
	for _, suite := range suites {
		fmt.Fprintln(p.w, indent+suite.Name)
		p.body(depth+1, suite.Hooks, suite.Tests, suite.Suites)
	}
}

func (p *printer) status(s domain.TestStatus) string {
	switch s {
	case domain.TestStatusSkipped:
		return " " + p.skipped.Sprint("[skipped]")
	case domain.TestStatusFocused:
		return " " + p.focused.Sprint("[focused]")
	default:
		return ""
	}
}
