// Package tui is the interactive todo list.
package tui

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/idilsaglam/tada/internal/alloc"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/ui"
)

// listItem adapts model.Item to bubbles/list.Item
type listItem struct {
	model.Item
}

// Implement list.Item interface
func (i listItem) FilterValue() string { return i.Text }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	t := ui.Current()

	box := t.Muted.Render(t.BoxUnchecked)
	text := it.Text
	if it.Done {
		box = t.Success.Render(t.BoxChecked)
		text = t.DoneText.Render(text)
	}
	id := t.Muted.Render(fmt.Sprintf("#%d", it.ID))

	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render("> ")
	}
	fmt.Fprintf(w, "%s%s %s %s\n", prefix, box, id, text)
}

// Model is the bubbletea model. New items get their ids from the allocator.
type Model struct {
	ctx     context.Context
	alloc   *alloc.Allocator
	list    list.Model
	changed bool

	width, height int

	// Inline add
	adding bool            // true when inline add is active
	ti     textinput.Model // shared text input model (used for add & edit)
	addErr string          // last add validation error (shown briefly)

	// Inline edit
	editing bool  // true when inline edit is active
	editID  int64 // id of item being edited
	editErr string

	// Undo support (single-level)
	canUndo   bool
	undoIndex int
	undoItem  *listItem
}

// New builds the model over items.
func New(ctx context.Context, a *alloc.Allocator, items []model.Item) Model {
	li := make([]list.Item, 0, len(items))
	for _, it := range items {
		li = append(li, listItem{it})
	}

	t := ui.Current()
	l := list.New(li, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = t.Title
	l.Styles.HelpStyle = t.Help
	l.Styles.PaginationStyle = t.Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("item", "items")

	// Extend help with Add / Edit / Undo bindings
	addBind := key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add"))
	editBind := key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit"))
	undoBind := key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo"))
	l.AdditionalShortHelpKeys = func() []key.Binding { return []key.Binding{addBind, editBind, undoBind} }
	l.AdditionalFullHelpKeys = func() []key.Binding { return []key.Binding{addBind, editBind, undoBind} }

	m := Model{
		ctx:    ctx,
		alloc:  a,
		list:   l,
		width:  80,
		height: 24,
	}
	// set up text input for inline add/edit
	m.ti = textinput.New()
	m.ti.Prompt = "> "
	m.ti.Placeholder = "New item text..."
	m.ti.CharLimit = 200

	m.refreshTitle()
	m.resize()
	return m
}

// Items is the current list in display order.
func (m Model) Items() []model.Item {
	out := make([]model.Item, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		if li, ok := it.(listItem); ok {
			out = append(out, li.Item)
		}
	}
	return out
}

// Changed reports whether anything was added, edited, toggled or removed.
func (m Model) Changed() bool { return m.changed }

// Run starts the program and returns the final model once the user quits.
func Run(ctx context.Context, a *alloc.Allocator, items []model.Item) (Model, error) {
	p := tea.NewProgram(New(ctx, a, items), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return Model{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return Model{}, fmt.Errorf("tui: unexpected model %T", final)
	}
	return fm, nil
}

func (m *Model) refreshTitle() {
	var done, pending int
	for _, it := range m.Items() {
		if it.Done {
			done++
		} else {
			pending++
		}
	}
	t := ui.Current()
	m.list.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d",
		t.Title.Render("Todos"),
		t.Success.Render(t.SymDone), done,
		t.Pending.Render(t.SymPending), pending,
		t.Accent.Render("Total"), done+pending,
	)
}

func (m *Model) resize() {
	listHeight := m.height - 4
	if m.adding || m.editing {
		listHeight = m.height - 6
	}
	m.list.SetSize(m.width-2, listHeight)
}

func (m *Model) markChanged() {
	m.changed = true
	m.refreshTitle()
}

// Update and View implement Bubble Tea's Model
func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if ws, ok := msg.(tea.WindowSizeMsg); ok {
		m.width, m.height = ws.Width, ws.Height
		m.resize()
		return m, nil
	}

	// add mode
	if m.adding {
		var cmd tea.Cmd
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				text := m.ti.Value()
				if text == "" {
					m.addErr = "Text cannot be empty"
					return m, nil
				}
				it := m.alloc.Create(m.ctx, alloc.Input{Text: text})
				pos := len(m.list.Items())
				if i, _, ok := m.selected(); ok {
					pos = i + 1
				}
				cmd = m.list.InsertItem(pos, listItem{it})
				m.markChanged()
				m.closeInput()
				return m, cmd
			case "esc":
				m.closeInput()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	// edit mode
	if m.editing {
		var cmd tea.Cmd
		if x, ok := msg.(tea.KeyMsg); ok {
			switch x.String() {
			case "enter":
				text := m.ti.Value()
				if text == "" {
					m.editErr = "Text cannot be empty"
					return m, nil
				}
				if i := m.indexOf(m.editID); i >= 0 {
					li := m.list.Items()[i].(listItem)
					li.Text = text
					cmd = m.list.SetItem(i, li)
					m.markChanged()
				}
				m.closeInput()
				return m, cmd
			case "esc":
				m.closeInput()
				return m, nil
			}
		}
		m.ti, cmd = m.ti.Update(msg)
		return m, cmd
	}

	if m.list.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "esc":
			// first esc clears an applied filter
			if m.list.FilterState() != list.FilterApplied {
				return m, tea.Quit
			}
		case " ":
			if i, li, ok := m.selected(); ok {
				li.Done = !li.Done
				cmd := m.list.SetItem(i, li)
				m.markChanged()
				return m, cmd
			}
			return m, nil
		case "d":
			if i, li, ok := m.selected(); ok {
				m.undoItem = &li
				m.undoIndex = i
				m.canUndo = true
				m.list.RemoveItem(i)
				m.markChanged()
			}
			return m, nil
		case "a":
			m.adding = true
			m.addErr = ""
			m.ti.SetValue("")
			m.ti.Placeholder = "New item text..."
			m.resize()
			return m, m.ti.Focus()
		case "e":
			if _, li, ok := m.selected(); ok {
				m.editing = true
				m.editErr = ""
				m.editID = li.ID
				m.ti.SetValue(li.Text)
				m.ti.CursorEnd()
				m.ti.Placeholder = "Edit item text..."
				m.resize()
				return m, m.ti.Focus()
			}
			return m, nil
		case "u":
			if m.canUndo && m.undoItem != nil {
				idx := m.undoIndex
				if idx < 0 {
					idx = 0
				}
				if idx > len(m.list.Items()) {
					idx = len(m.list.Items())
				}
				cmd := m.list.InsertItem(idx, *m.undoItem)
				m.markChanged()
				m.canUndo = false
				m.undoItem = nil
				return m, cmd
			}
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// selected resolves the highlighted row to its position in the full list.
// list.Index counts visible rows only, so it is wrong under a filter.
func (m Model) selected() (int, listItem, bool) {
	li, ok := m.list.SelectedItem().(listItem)
	if !ok {
		return -1, listItem{}, false
	}
	i := m.indexOf(li.ID)
	return i, li, i >= 0
}

func (m Model) indexOf(id int64) int {
	for i, it := range m.list.Items() {
		if li, ok := it.(listItem); ok && li.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) closeInput() {
	m.adding, m.editing = false, false
	m.ti.SetValue("")
	m.ti.Blur()
	m.resize()
}

func (m Model) View() string {
	content := m.list.View()
	if m.adding || m.editing {
		t := ui.Current()
		title := "Add new item"
		if m.editing {
			title = "Edit item"
		}
		if m.addErr != "" && m.adding {
			title += ": " + t.Error.Render(m.addErr)
		}
		if m.editErr != "" && m.editing {
			title += ": " + t.Error.Render(m.editErr)
		}
		content += "\n" + ui.PanelString(title+"\n"+m.ti.View())
	}
	return ui.PanelString(content)
}
