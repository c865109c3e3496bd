package tui

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ChristianF88/lsdsort/output"
	"github.com/dustin/go-humanize"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// App represents the TUI application
type App struct {
	app       *tview.Application
	pages     *tview.Pages
	progress  *tview.TextView
	summary   *tview.TextView
	results   *tview.Table
	statusBar *tview.TextView

	// Atomic flag for cross-goroutine signaling (no mutex needed)
	benchComplete atomic.Bool
}

// NewApp creates the TUI. Results arrive later through SetReport or
// ShowError, typically from the goroutine running the benchmark.
func NewApp() *App {
	a := &App{
		app:   tview.NewApplication(),
		pages: tview.NewPages(),
	}
	a.setupUI()
	return a
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.progress = tview.NewTextView().
		SetDynamicColors(true).
		SetText("[yellow]Sorting...[white]")
	a.progress.SetBorder(true).SetTitle(" lsdsort Benchmark ").SetTitleAlign(tview.AlignCenter)

	a.summary = tview.NewTextView().SetDynamicColors(true)
	a.summary.SetBorder(true).SetTitle(" Summary ").SetTitleAlign(tview.AlignLeft)

	a.results = tview.NewTable().
		SetFixed(1, 0).
		SetSelectable(true, false)
	a.results.SetBorder(true).SetTitle(" Results ").SetTitleAlign(tview.AlignLeft)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true).
		SetText("[yellow]Running benchmark...[white] | Press 'q' to quit")

	main := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.progress, 0, 1, false).
		AddItem(a.statusBar, 1, 0, false)

	results := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.summary, 5, 0, false).
		AddItem(a.results, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("progress", main, true, true)
	a.pages.AddPage("results", results, true, false)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEscape {
			a.app.Stop()
			return nil
		}
		switch event.Rune() {
		case 'q', 'Q':
			a.app.Stop()
			return nil
		}
		return event
	})

	a.app.SetRoot(a.pages, true)
}

// SetReport shows the finished report. Safe to call from any goroutine.
func (a *App) SetReport(report *output.Report) {
	a.benchComplete.Store(true)
	a.app.QueueUpdateDraw(func() {
		a.render(report)
	})
}

// ShowError replaces the progress text with an error message.
func (a *App) ShowError(message string) {
	a.app.QueueUpdateDraw(func() {
		a.progress.SetText(fmt.Sprintf("[red]Error:[white] %s\n\n[yellow]Press 'q' to quit[white]", message))
		a.statusBar.SetText("[red]Benchmark failed![white] | Press 'q' to quit")
		a.pages.SwitchToPage("progress")
	})
}

// render fills the result widgets. Must run on the UI goroutine once the
// application is running.
func (a *App) render(report *output.Report) {
	a.summary.SetText(summaryText(report))
	fillResultsTable(a.results, report)
	if report.Passed() {
		a.statusBar.SetText("[green]SUCCESS[white] | Up/Down to scroll, 'q' to quit")
	} else {
		a.statusBar.SetText("[red]FAILED[white] | Up/Down to scroll, 'q' to quit")
	}
	a.pages.SwitchToPage("results")
	a.app.SetFocus(a.results)
}

// Run starts the event loop and blocks until the user quits.
func (a *App) Run() error {
	return a.app.Run()
}

var resultHeaders = []string{"Size", "Radix", "Reference", "Ref/Radix", "Checksum", "Result"}

func fillResultsTable(table *tview.Table, report *output.Report) {
	table.Clear()
	for col, header := range resultHeaders {
		table.SetCell(0, col, tview.NewTableCell(header).
			SetTextColor(tcell.ColorYellow).
			SetAlign(tview.AlignCenter).
			SetSelectable(false))
	}

	for i, res := range report.Results {
		row := i + 1
		color := tcell.ColorGreen
		verdict := "ok"
		if !res.Passed {
			color = tcell.ColorRed
			verdict = "FAILED"
		}
		cells := []string{
			humanize.Comma(int64(res.Size)),
			time.Duration(res.RadixNS).String(),
			time.Duration(res.ReferenceNS).String(),
			fmt.Sprintf("%.2f", res.Ratio),
			res.Checksum,
			verdict,
		}
		for col, text := range cells {
			cell := tview.NewTableCell(text).SetAlign(tview.AlignRight)
			if col == len(cells)-1 {
				cell.SetTextColor(color)
			}
			table.SetCell(row, col, cell)
		}
	}
}

func summaryText(report *output.Report) string {
	s := report.Settings
	var b strings.Builder
	fmt.Fprintf(&b, "[yellow]Keys:[white] %d-bit, values %d-bit   [yellow]Trials:[white] %d   [yellow]Workers:[white] %d   [yellow]Seed:[white] %d\n",
		s.Width, s.ValueBits, s.Trials, s.Workers, s.Seed)
	if s.MemLimitBytes > 0 {
		fmt.Fprintf(&b, "[yellow]Memory limit:[white] %s\n", humanize.IBytes(s.MemLimitBytes))
	}
	fmt.Fprintf(&b, "[yellow]Duration:[white] %s   [yellow]Warnings:[white] %d   [yellow]Errors:[white] %d",
		time.Duration(report.Metadata.DurationMS)*time.Millisecond, len(report.Warnings), len(report.Errors))
	return b.String()
}
