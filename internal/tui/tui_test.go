package tui

import (
	"context"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/idilsaglam/tada/internal/alloc"
	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store/kv"
)

func keys(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func send(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func newModel(t *testing.T, items []model.Item) (Model, kv.Store) {
	t.Helper()
	ctx := context.Background()
	s := kv.NewMemory()
	if n := len(items); n > 0 {
		require.NoError(t, s.Set(ctx, alloc.DefaultKey, "10"))
	}
	return New(ctx, alloc.New(ctx, s), items), s
}

func TestAddUsesAllocator(t *testing.T) {
	m, s := newModel(t, []model.Item{{ID: 10, Text: "old"}})

	m = send(t, m, keys("a"), keys("new task"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.Changed())
	assert.Equal(t, []model.Item{
		{ID: 10, Text: "old"},
		{ID: 11, Text: "new task"},
	}, m.Items())

	v, _, err := s.Get(context.Background(), alloc.DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "11", v)
}

func TestAddEmptyIsRejected(t *testing.T) {
	m, _ := newModel(t, nil)
	m = send(t, m, keys("a"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.True(t, m.adding)
	assert.NotEmpty(t, m.addErr)
	assert.Empty(t, m.Items())

	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.adding)
	assert.False(t, m.Changed())
}

func TestToggleEditDeleteUndo(t *testing.T) {
	m, _ := newModel(t, []model.Item{{ID: 1, Text: "a"}, {ID: 2, Text: "b"}})

	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.True(t, m.Items()[0].Done)

	m = send(t, m, keys("e"), keys("!"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "a!", m.Items()[0].Text)
	assert.Equal(t, int64(1), m.Items()[0].ID)

	m = send(t, m, keys("d"))
	assert.Equal(t, []model.Item{{ID: 2, Text: "b"}}, m.Items())

	m = send(t, m, keys("u"))
	assert.Equal(t, []model.Item{{ID: 1, Text: "a!", Done: true}, {ID: 2, Text: "b"}}, m.Items())
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t, nil)
	_, cmd := m.Update(keys("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView(t *testing.T) {
	m, _ := newModel(t, []model.Item{{ID: 7, Text: "render me"}})
	m = send(t, m, tea.WindowSizeMsg{Width: 60, Height: 20})
	out := m.View()
	assert.Contains(t, out, "#7")
	assert.Contains(t, out, "render me")

	m = send(t, m, keys("a"))
	assert.Contains(t, m.View(), "Add new item")
}

func fruit(t *testing.T) Model {
	t.Helper()
	m, _ := newModel(t, []model.Item{
		{ID: 1, Text: "apple"},
		{ID: 2, Text: "banana"},
		{ID: 3, Text: "cherry"},
	})
	m.list.SetFilterText("cherry")
	require.Len(t, m.list.VisibleItems(), 1)
	require.Equal(t, 0, m.list.Index())
	return m
}

func TestFilteredToggleHitsSelectedItem(t *testing.T) {
	m := send(t, fruit(t), tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	assert.Equal(t, []model.Item{
		{ID: 1, Text: "apple"},
		{ID: 2, Text: "banana"},
		{ID: 3, Text: "cherry", Done: true},
	}, m.Items())
}

func TestFilteredDeleteHitsSelectedItem(t *testing.T) {
	m := send(t, fruit(t), keys("d"))
	assert.Equal(t, []model.Item{
		{ID: 1, Text: "apple"},
		{ID: 2, Text: "banana"},
	}, m.Items())

	m = send(t, m, keys("u"))
	assert.Equal(t, int64(3), m.Items()[2].ID)
	assert.Len(t, m.Items(), 3)
}

func TestFilteredEditHitsSelectedItem(t *testing.T) {
	m := send(t, fruit(t), keys("e"), keys("s"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, "cherrys", m.Items()[2].Text)
	assert.Equal(t, "apple", m.Items()[0].Text)
}

func TestFilteredAddGoesAfterSelectedItem(t *testing.T) {
	m := send(t, fruit(t), keys("a"), keys("date"), tea.KeyMsg{Type: tea.KeyEnter})
	items := m.Items()
	require.Len(t, items, 4)
	assert.Equal(t, model.Item{ID: 11, Text: "date"}, items[3])
}

func TestEscClearsFilterBeforeQuitting(t *testing.T) {
	m := send(t, fruit(t), tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, list.Unfiltered, m.list.FilterState())
	assert.Len(t, m.list.VisibleItems(), 3)
}

func TestAddKeepsTextAsTyped(t *testing.T) {
	m, _ := newModel(t, nil)
	m = send(t, m, keys("a"), keys("  padded  "), tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, m.Items(), 1)
	assert.Equal(t, "  padded  ", m.Items()[0].Text)
}
