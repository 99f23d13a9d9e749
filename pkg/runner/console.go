package runner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// console prints one line per test in the form "test <name> ... <status>".
// Sequential runs print the prefix before the test starts so that output of
// the test body appears after its name. Concurrent runs print whole lines.
type console struct {
	mu     sync.Mutex
	w      io.Writer
	inline bool

	green  *color.Color
	red    *color.Color
	yellow *color.Color
	gray   *color.Color
}

func newConsole(w io.Writer, noColor, inline bool) *console {
	toggle := func(c *color.Color) *color.Color {
		if noColor {
			c.DisableColor()
		}
		return c
	}
	return &console{
		w:      w,
		inline: inline,
		green:  toggle(color.New(color.FgGreen)),
		red:    toggle(color.New(color.FgRed).Add(color.Bold)),
		yellow: toggle(color.New(color.FgYellow)),
		gray:   toggle(color.New(color.FgHiBlack)),
	}
}

func (c *console) header(count int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "running %d tests\n", count)
}

func (c *console) start(name string) {
	if !c.inline {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, "test %s ... ", name)
}

func (c *console) finish(res Result) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.inline {
		fmt.Fprintf(c.w, "test %s ... ", res.Name)
	}
	fmt.Fprintln(c.w, c.status(res))
}

func (c *console) status(res Result) string {
	switch res.Status {
	case StatusPassed:
		return c.green.Sprint("ok") + " " + c.gray.Sprint(formatDuration(res.Duration))
	case StatusFailed:
		return c.red.Sprint("FAILED") + " " + c.gray.Sprint(formatDuration(res.Duration))
	default:
		return c.yellow.Sprint("ignored")
	}
}

func (c *console) summary(report *Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if report.Failed() {
		fmt.Fprintln(c.w)
		fmt.Fprintln(c.w, "failures:")
		for _, res := range report.Results {
			if res.Status == StatusFailed {
				fmt.Fprintf(c.w, "\n%s\n%v\n", res.Name, res.Err)
			}
		}
	}

	counts := report.Counts()
	verdict := c.green.Sprint("ok")
	if counts.Failed > 0 {
		verdict = c.red.Sprint("FAILED")
	}
	fmt.Fprintf(c.w, "\ntest result: %s. %d passed; %d failed; %d ignored %s\n",
		verdict, counts.Passed, counts.Failed, counts.Skipped, c.gray.Sprint(formatDuration(report.Duration)))
}

func formatDuration(d time.Duration) string {
	return fmt.Sprintf("(%dms)", d.Milliseconds())
}
