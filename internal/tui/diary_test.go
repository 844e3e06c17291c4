// ABOUTME: Unit tests for the diary screen bubbletea model.
// ABOUTME: Drives the model with synthetic key messages over an in-memory SQLite store.
package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/2389-research/diary/internal/diary"
	"github.com/2389-research/diary/internal/models"
	"github.com/2389-research/diary/internal/storage"
)

// gatedStore blocks DeleteByID until gate is closed.
type gatedStore struct {
	storage.EntryStore
	gate chan struct{}
}

func (g *gatedStore) DeleteByID(ctx context.Context, id string) error {
	<-g.gate
	return g.EntryStore.DeleteByID(ctx, id)
}

func newTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	store, err := storage.OpenSQLiteStore(":memory:", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedEntry(t *testing.T, store storage.EntryStore, title string) {
	t.Helper()
	require.NoError(t, store.Insert(context.Background(), models.NewDraft(title, "calm", title+" body", "")))
}

// mounted returns a screen whose initial load has completed.
func mounted(t *testing.T, store storage.EntryStore) (DiaryModel, *diary.Controller) {
	t.Helper()
	ctrl := diary.New(store, nil)
	m := NewDiaryModel(ctrl)
	updated, _ := m.Update(m.mountCmd()())
	return updated.(DiaryModel), ctrl
}

func press(t *testing.T, m DiaryModel, keys ...string) (DiaryModel, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+tab":
			msg = tea.KeyMsg{Type: tea.KeyShiftTab}
		case "ctrl+s":
			msg = tea.KeyMsg{Type: tea.KeyCtrlS}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEscape}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(DiaryModel)
	}
	return m, cmd
}

func toList(t *testing.T, m DiaryModel) DiaryModel {
	t.Helper()
	m, _ = press(t, m, "shift+tab")
	require.Equal(t, focusList, m.focus)
	return m
}

func TestDiaryModel_ShowsLoadingBeforeMount(t *testing.T) {
	m := NewDiaryModel(diary.New(newTestStore(t), nil))
	require.Contains(t, m.View(), "Loading entries...")
	require.NotNil(t, m.Init())
}

func TestDiaryModel_RendersEntriesAfterMount(t *testing.T) {
	store := newTestStore(t)
	seedEntry(t, store, "First day")
	seedEntry(t, store, "Second day")

	m, _ := mounted(t, store)
	view := m.View()
	require.NotContains(t, view, "Loading entries...")
	require.Contains(t, view, "First day")
	require.Contains(t, view, "Second day")
	require.Contains(t, view, "Mood: calm")
	require.Contains(t, view, models.FormatDate(time.Now()))
	require.Less(t, strings.Index(view, "Second day"), strings.Index(view, "First day"))
}

func TestDiaryModel_EmptyList(t *testing.T) {
	m, _ := mounted(t, newTestStore(t))
	require.Contains(t, m.View(), "No entries yet")
}

func TestDiaryModel_FailedMountShowsEmptyList(t *testing.T) {
	m, ctrl := mounted(t, storage.NewUnconfiguredStore())
	require.False(t, ctrl.Snapshot().InitialLoading)
	require.Contains(t, m.View(), "No entries yet")
}

func TestDiaryModel_TabCyclesFocus(t *testing.T) {
	m := NewDiaryModel(diary.New(newTestStore(t), nil))
	require.Equal(t, focusTitle, m.focus)

	m, _ = press(t, m, "tab")
	require.Equal(t, focusMood, m.focus)
	m, _ = press(t, m, "tab")
	require.Equal(t, focusContent, m.focus)
	m, _ = press(t, m, "tab")
	require.Equal(t, focusList, m.focus)
	m, _ = press(t, m, "tab")
	require.Equal(t, focusTitle, m.focus)
}

func TestDiaryModel_TypingGoesToFocusedInput(t *testing.T) {
	m := NewDiaryModel(diary.New(newTestStore(t), nil))
	m, _ = press(t, m, "hi", "tab", "ok", "tab", "dd")
	require.Equal(t, "hi", m.title.Value())
	require.Equal(t, "ok", m.mood.Value())
	require.Equal(t, "dd", m.content.Value())
	require.Empty(t, m.confirming)
}

func TestDiaryModel_SubmitRefusedWhileIncomplete(t *testing.T) {
	store := newTestStore(t)
	m, ctrl := mounted(t, store)
	m.title.SetValue("Only a title")

	m, cmd := press(t, m, "ctrl+s")
	require.Nil(t, cmd)
	require.False(t, m.submitting)
	require.Equal(t, "mood is required", m.formErr)
	require.Contains(t, m.View(), "mood is required")
	require.Equal(t, diary.Form{}, ctrl.Form())

	entries, err := store.ListAll(context.Background())
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDiaryModel_SubmitClearsFormAndShowsEntry(t *testing.T) {
	store := newTestStore(t)
	seedEntry(t, store, "Older")
	m, _ := mounted(t, store)

	m.title.SetValue("Today")
	m.mood.SetValue("ok")
	m.content.SetValue("hello world")
	m, cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	require.True(t, m.submitting)
	require.Contains(t, m.View(), "Saving...")

	// a second ctrl+s while saving is ignored
	_, again := press(t, m, "ctrl+s")
	require.Nil(t, again)

	msg := cmd()
	require.IsType(t, entrySubmittedMsg{}, msg)
	updated, _ := m.Update(msg)
	m = updated.(DiaryModel)

	require.False(t, m.submitting)
	require.Empty(t, m.title.Value())
	require.Empty(t, m.mood.Value())
	require.Empty(t, m.content.Value())

	view := m.View()
	require.Contains(t, view, "hello world")
	require.Less(t, strings.Index(view, "Today"), strings.Index(view, "Older"))
}

func TestDiaryModel_FailedSubmitKeepsInput(t *testing.T) {
	m, _ := mounted(t, storage.NewUnconfiguredStore())
	m.title.SetValue("T")
	m.mood.SetValue("ok")
	m.content.SetValue("hi")

	m, cmd := press(t, m, "ctrl+s")
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	m = updated.(DiaryModel)

	require.Equal(t, "T", m.title.Value())
	require.Equal(t, "ok", m.mood.Value())
	require.Equal(t, "hi", m.content.Value())
}

func TestDiaryModel_DeleteRequiresConfirmation(t *testing.T) {
	store := newTestStore(t)
	seedEntry(t, store, "Keep me")
	m, ctrl := mounted(t, store)
	m = toList(t, m)

	m, cmd := press(t, m, "d")
	require.Nil(t, cmd)
	require.NotEmpty(t, m.confirming)
	require.Contains(t, m.View(), `Delete entry "Keep me"? [y/N]`)

	m, cmd = press(t, m, "n")
	require.Nil(t, cmd)
	require.Empty(t, m.confirming)
	require.Len(t, ctrl.Snapshot().Entries, 1)
}

func TestDiaryModel_ConfirmedDeleteRemovesEntry(t *testing.T) {
	store := newTestStore(t)
	seedEntry(t, store, "Old")
	seedEntry(t, store, "Gone")
	m, _ := mounted(t, store)
	m = toList(t, m)

	m, cmd := press(t, m, "d", "y")
	require.NotNil(t, cmd)
	msg := cmd()
	require.IsType(t, entryDeletedMsg{}, msg)
	updated, _ := m.Update(msg)
	m = updated.(DiaryModel)

	view := m.View()
	require.NotContains(t, view, "Gone")
	require.Contains(t, view, "Old")
}

func TestDiaryModel_CursorMovesAndClamps(t *testing.T) {
	store := newTestStore(t)
	seedEntry(t, store, "A")
	seedEntry(t, store, "B")
	m, _ := mounted(t, store)
	m = toList(t, m)

	m, _ = press(t, m, "down", "down", "j")
	require.Equal(t, 1, m.cursor)
	m, _ = press(t, m, "up", "k")
	require.Equal(t, 0, m.cursor)

	// delete the last entry while selected; cursor moves back onto the list
	m, _ = press(t, m, "down")
	m, cmd := press(t, m, "d", "y")
	updated, _ := m.Update(cmd())
	m = updated.(DiaryModel)
	require.Equal(t, 0, m.cursor)
}

func TestDiaryModel_DeletingEntryShowsSpinnerAndIgnoresDelete(t *testing.T) {
	inner := newTestStore(t)
	seedEntry(t, inner, "Slow")
	store := &gatedStore{EntryStore: inner, gate: make(chan struct{})}
	m, ctrl := mounted(t, store)
	m = toList(t, m)

	m, cmd := press(t, m, "d", "y")
	require.NotNil(t, cmd)
	done := make(chan tea.Msg)
	go func() { done <- cmd() }()

	id := ctrl.Snapshot().Entries[0].ID
	require.Eventually(t, func() bool { return ctrl.IsDeleting(id) }, time.Second, 5*time.Millisecond)
	require.Contains(t, m.View(), "Deleting...")

	m, cmd = press(t, m, "d")
	require.Nil(t, cmd)
	require.Empty(t, m.confirming)

	close(store.gate)
	updated, _ := m.Update(<-done)
	m = updated.(DiaryModel)
	require.NotContains(t, m.View(), "Slow")
}

func TestDiaryModel_RefreshReloadsList(t *testing.T) {
	store := newTestStore(t)
	m, _ := mounted(t, store)
	seedEntry(t, store, "Written elsewhere")
	require.NotContains(t, m.View(), "Written elsewhere")

	m = toList(t, m)
	m, cmd := press(t, m, "r")
	require.NotNil(t, cmd)
	updated, _ := m.Update(cmd())
	m = updated.(DiaryModel)
	require.Contains(t, m.View(), "Written elsewhere")
}

func TestDiaryModel_QuitCancelsContext(t *testing.T) {
	m := NewDiaryModel(diary.New(newTestStore(t), nil))
	m, cmd := press(t, m, "esc")
	require.NotNil(t, cmd)
	require.True(t, m.quitting)
	require.Error(t, m.ctx.Err())
}

func TestDiaryModel_EscCancelsConfirmation(t *testing.T) {
	store := newTestStore(t)
	seedEntry(t, store, "Stay")
	m, _ := mounted(t, store)
	m = toList(t, m)

	m, _ = press(t, m, "d", "esc")
	require.Empty(t, m.confirming)
	require.False(t, m.quitting)
}
