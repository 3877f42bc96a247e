// Package term prints session snapshots as plain text cards.
package term

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/metrics"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/session"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

type Printer struct {
	w    io.Writer
	host string

	title *color.Color
	muted *color.Color
	fail  *color.Color
}

func NewPrinter(w io.Writer, host string) *Printer {
	p := &Printer{
		w:     w,
		host:  host,
		title: color.New(color.FgCyan, color.Bold),
		muted: color.New(color.FgHiBlack),
		fail:  color.New(color.FgRed),
	}

	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd())
	}
	for _, c := range []*color.Color{p.title, p.muted, p.fail} {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return p
}

func (p *Printer) Print(snap session.Snapshot) error {
	switch {
	case snap.ErrorMessage != "" && len(snap.Results) == 0:
		_, err := p.fail.Fprintln(p.w, snap.ErrorMessage)
		return err
	case len(snap.Results) == 0:
		_, err := p.muted.Fprintln(p.w, "検索したワードはヒットしませんでした。")
		return err
	}

	for i, r := range snap.Results {
		if err := p.printCard(i+1, r); err != nil {
			return err
		}
	}

	if snap.ErrorMessage != "" {
		_, err := p.fail.Fprintln(p.w, snap.ErrorMessage)
		return err
	}
	if !snap.HasMore {
		_, err := p.muted.Fprintln(p.w, "すべての結果を表示しました")
		return err
	}
	_, err := p.muted.Fprintf(p.w, "%d件表示 (続きあり)\n", len(snap.Results))
	return err
}

func (p *Printer) printCard(n int, r wiki.Result) error {
	if _, err := p.title.Fprintf(p.w, "%d. %s\n", n, r.Title); err != nil {
		return err
	}
	if r.DisplaySnippet != "" {
		if _, err := fmt.Fprintf(p.w, "   %s\n", r.DisplaySnippet); err != nil {
			return err
		}
	}
	_, err := p.muted.Fprintf(p.w, "   最終更新日：%s  %s\n\n", r.DisplayDate, wiki.PageURL(p.host, r.ID))
	return err
}

// PrintSummary writes the request statistics as an aligned table
func (p *Printer) PrintSummary(s metrics.Summary) error {
	tw := tabwriter.NewWriter(p.w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "\n=== Requests ===\n\n")
	fmt.Fprintln(tw, strings.Join([]string{"Requests", "Failures", "Cancelled", "Hits"}, "\t"))
	fmt.Fprintln(tw, strings.Join([]string{"---", "---", "---", "---"}, "\t"))
	fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", s.Requests, s.Failures, s.Cancelled, s.Hits)

	if !s.Latency.IsZero() {
		fmt.Fprintf(tw, "\nLatency\n\n")
		fmt.Fprintln(tw, strings.Join([]string{"Min", "P50", "P90", "P99", "Max", "Mean"}, "\t"))
		fmt.Fprintln(tw, strings.Join([]string{"---", "---", "---", "---", "---", "---"}, "\t"))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			fmtDuration(s.Latency.Min), fmtDuration(s.Latency.P50()), fmtDuration(s.Latency.P90()),
			fmtDuration(s.Latency.P99()), fmtDuration(s.Latency.Max), fmtDuration(s.Latency.Mean),
		)
	}

	return tw.Flush()
}

func fmtDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
