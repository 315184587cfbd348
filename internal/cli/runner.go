package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/idilsaglam/tada/internal/alloc"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/jsonstore"
	"github.com/idilsaglam/tada/internal/tui"
	"github.com/idilsaglam/tada/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Options tune output behavior from flags.
type Options struct {
	Group bool // list grouped by pending/done
}

// ParseID parses a record id given on the command line.
func ParseID(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimPrefix(s, "#"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %s", s)
	}
	return n, nil
}

// -------------- subcommand impls ----------------

// Add creates a record through the allocator and appends it to the list.
// text is stored as given.
func (a *App) Add(ctx context.Context, text string, done *bool) int {
	items, err := a.Items.Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return ExitError
	}
	it := a.Alloc.Create(ctx, alloc.Input{Text: text, Done: done})
	items = append(items, it)
	if err := a.Items.Save(items); err != nil {
		ui.Fail("save: " + err.Error())
		return ExitError
	}
	ui.OK(fmt.Sprintf("added #%d", it.ID))
	return ExitOK
}

func (a *App) List(opt Options) int {
	items, err := a.Items.Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return ExitError
	}
	t := ui.Current()

	// Header + progress
	d, p := stats(items)
	header := fmt.Sprintf("%s  %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), d,
		t.Pending.Render(t.SymPending), p,
		t.Accent.Render("Total"), len(items),
	)

	var lines []string
	lines = append(lines, header)
	lines = append(lines, t.Muted.Render(ui.ProgressBar(d, d+p, 28)))
	lines = append(lines, "")

	if opt.Group {
		lines = append(lines, groupLines(items)...)
	} else {
		lines = append(lines, flatLines(items)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Muted.Render("Tip: add with `todo add \"Buy milk\"`"))
	ui.Panel(lines)
	return ExitOK
}

func (a *App) Toggle(id int64) int {
	return a.withItem(id, "toggled", func(items []model.Item, i int) []model.Item {
		items[i].Done = !items[i].Done
		return items
	})
}

func (a *App) Remove(id int64) int {
	return a.withItem(id, "removed", func(items []model.Item, i int) []model.Item {
		return append(items[:i], items[i+1:]...)
	})
}

func (a *App) withItem(id int64, verb string, fn func([]model.Item, int) []model.Item) int {
	items, err := a.Items.Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return ExitError
	}
	i := jsonstore.Find(items, id)
	if i < 0 {
		ui.Fail(fmt.Sprintf("no item with id %d", id))
		fmt.Fprintln(ui.Stderr, ui.Current().Muted.Render("Hint: run `todo ls` to see ids"))
		return ExitUsage
	}
	if err := a.Items.Save(fn(items, i)); err != nil {
		ui.Fail("save: " + err.Error())
		return ExitError
	}
	ui.OK(fmt.Sprintf("%s #%d", verb, id))
	return ExitOK
}

// Seq prints the last allocated id.
func (a *App) Seq() int {
	where := fmt.Sprintf("%s store, key %q", a.Backend, a.Alloc.Key())
	if !a.Alloc.Persistent() {
		where = "not persisted"
	}
	ui.Println(fmt.Sprintf("%d (%s)", a.Alloc.LastID(), where))
	return ExitOK
}

// Interactive runs the TUI and saves the list if it changed.
func (a *App) Interactive(ctx context.Context) int {
	items, err := a.Items.Load()
	if err != nil {
		ui.Fail("load: " + err.Error())
		return ExitError
	}
	m, err := tui.Run(ctx, a.Alloc, items)
	if err != nil {
		ui.Fail("tui: " + err.Error())
		return ExitError
	}
	if !m.Changed() {
		return ExitOK
	}
	if err := a.Items.Save(m.Items()); err != nil {
		ui.Fail("save: " + err.Error())
		return ExitError
	}
	ui.OK("saved")
	return ExitOK
}

// -------------- rendering helpers --------------

func stats(items []model.Item) (done, pending int) {
	for _, it := range items {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	return
}

func flatLines(items []model.Item) []string {
	t := ui.Current()
	if len(items) == 0 {
		return []string{t.Muted.Render("no items")}
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		box, style := t.BoxUnchecked, t.Muted
		if it.Done {
			box, style = t.BoxChecked, t.Success
		}
		text := ansi.Truncate(it.Text, 80, "...")
		out = append(out, fmt.Sprintf("%s %s %s",
			t.Muted.Render(fmt.Sprintf("%4s", fmt.Sprintf("#%d", it.ID))), style.Render(box), text))
	}
	return out
}

func groupLines(items []model.Item) []string {
	t := ui.Current()
	var pend, done []model.Item
	for _, it := range items {
		if it.Done {
			done = append(done, it)
		} else {
			pend = append(pend, it)
		}
	}
	var lines []string
	lines = append(lines, t.Accent.Render("Pending"))
	if len(pend) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(pend)...)
	}
	lines = append(lines, "")
	lines = append(lines, t.Accent.Render("Done"))
	if len(done) == 0 {
		lines = append(lines, t.Muted.Render("(none)"))
	} else {
		lines = append(lines, flatLines(done)...)
	}
	return lines
}
