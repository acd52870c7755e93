// Package tui is a terminal front end for one book list workspace.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/brianhealey/booklist/internal/events"
	"github.com/brianhealey/booklist/internal/models"
)

// Controller is the workspace the terminal UI drives.
type Controller interface {
	View() models.View
	UpdateDraft(upd models.DraftUpdate) models.View
	BeginEdit(id string) models.View
	Submit() models.View
	CancelEdit() models.View
	Delete(id string) models.View
	AttachPoster(name string, data []byte) models.View
	ClearPoster() models.View
	Events() *events.Bus
}

// FileReader loads a poster file chosen in the picker.
type FileReader interface {
	ReadFile(path string) ([]byte, error)
}

// PosterTypes are the extensions the file picker offers.
var PosterTypes = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp"}

type focus int

const (
	focusTitle focus = iota
	focusAuthor
	focusDetails
	focusList
	focusCount
)

// viewMsg carries a view published by the controller.
type viewMsg models.View

// Model is the bubbletea model for the book list.
type Model struct {
	ctrl    Controller
	files   FileReader
	subID   string
	updates <-chan models.View

	title   textinput.Model
	author  textinput.Model
	details textarea.Model
	picker  filepicker.Model
	picking bool

	focus  focus
	cursor int
	view   models.View
	status string
	width  int
}

// New builds a model over ctrl. dir is where the poster picker starts.
func New(ctrl Controller, files FileReader, dir string) Model {
	title := textinput.New()
	title.Placeholder = "Title"
	title.Prompt = "Title:   "
	author := textinput.New()
	author.Placeholder = "Author"
	author.Prompt = "Author:  "

	details := textarea.New()
	details.Placeholder = "Details"
	details.ShowLineNumbers = false
	details.SetHeight(3)

	picker := filepicker.New()
	picker.AllowedTypes = PosterTypes
	picker.CurrentDirectory = dir
	picker.Height = 10

	subID := "tui-" + uuid.NewString()
	m := Model{
		ctrl:    ctrl,
		files:   files,
		subID:   subID,
		updates: ctrl.Events().Subscribe(subID),
		title:   title,
		author:  author,
		details: details,
		picker:  picker,
	}
	m.setFocus(focusTitle)
	m.setView(ctrl.View())
	return m
}

// Init starts listening for controller updates.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.listen())
}

// Close stops listening for controller updates.
func (m Model) Close() {
	m.ctrl.Events().Unsubscribe(m.subID)
}

func (m Model) listen() tea.Cmd {
	ch := m.updates
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return viewMsg(v)
	}
}

// Update handles a message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case viewMsg:
		m.setView(models.View(msg))
		return m, m.listen()

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.title.Width = max(10, msg.Width-12)
		m.author.Width = max(10, msg.Width-12)
		m.details.SetWidth(max(10, msg.Width-4))
		m.picker.Height = max(5, msg.Height-10)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.handleKey(msg)
	}

	// Directory listings and other picker internals.
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab":
		return m, m.setFocus((m.focus + 1) % focusCount)
	case "shift+tab":
		return m, m.setFocus((m.focus + focusCount - 1) % focusCount)
	case "ctrl+s":
		editing := m.view.Draft.Editing()
		m.setView(m.ctrl.Submit())
		if editing {
			m.status = "book updated"
		} else {
			m.status = "book added"
		}
		return m, m.setFocus(focusTitle)
	case "esc":
		if m.view.Draft.Editing() {
			m.setView(m.ctrl.CancelEdit())
			m.status = "edit cancelled"
		}
		return m, nil
	case "ctrl+o":
		m.picking = true
		m.status = ""
		return m, m.picker.Init()
	case "ctrl+x":
		m.setView(m.ctrl.ClearPoster())
		return m, nil
	}

	if m.focus == focusList {
		return m.handleListKey(msg)
	}
	return m, m.updateInput(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.view.Books)-1 {
			m.cursor++
		}
	case "e", "enter":
		if b, ok := m.selected(); ok {
			m.setView(m.ctrl.BeginEdit(b.ID))
			m.status = "editing " + b.Title
			return m, m.setFocus(focusTitle)
		}
	case "d", "delete", "backspace":
		if b, ok := m.selected(); ok {
			m.setView(m.ctrl.Delete(b.ID))
			m.status = "deleted " + b.Title
		}
	}
	return m, nil
}

// updateInput forwards a key to the focused field and pushes any change to
// the draft.
func (m *Model) updateInput(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd
	var upd models.DraftUpdate
	switch m.focus {
	case focusTitle:
		before := m.title.Value()
		m.title, cmd = m.title.Update(msg)
		if v := m.title.Value(); v != before {
			upd.Title = &v
		}
	case focusAuthor:
		before := m.author.Value()
		m.author, cmd = m.author.Update(msg)
		if v := m.author.Value(); v != before {
			upd.Author = &v
		}
	case focusDetails:
		before := m.details.Value()
		m.details, cmd = m.details.Update(msg)
		if v := m.details.Value(); v != before {
			upd.Details = &v
		}
	}
	if !upd.Empty() {
		m.setView(m.ctrl.UpdateDraft(upd))
	}
	return cmd
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "esc" {
		m.picking = false
		return m, nil
	}
	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		m.attachFile(path)
		return m, cmd
	}
	if ok, path := m.picker.DidSelectDisabledFile(msg); ok {
		m.status = filepath.Base(path) + " is not a supported image"
	}
	return m, cmd
}

// attachFile reads path and hands it to the controller for decoding.
func (m *Model) attachFile(path string) {
	data, err := m.files.ReadFile(path)
	if err != nil {
		m.status = fmt.Sprintf("cannot read poster: %v", err)
		return
	}
	name := filepath.Base(path)
	m.setView(m.ctrl.AttachPoster(name, data))
	m.status = "loading " + name
}

func (m *Model) setFocus(f focus) tea.Cmd {
	m.focus = f
	m.title.Blur()
	m.author.Blur()
	m.details.Blur()
	switch f {
	case focusTitle:
		return m.title.Focus()
	case focusAuthor:
		return m.author.Focus()
	case focusDetails:
		return m.details.Focus()
	}
	return nil
}

// setView adopts v unless a newer view has already been seen. Inputs are
// only rewritten when the draft differs so the cursor stays put while typing.
func (m *Model) setView(v models.View) {
	if v.Revision < m.view.Revision {
		return
	}
	m.view = v
	if m.title.Value() != v.Draft.Title {
		m.title.SetValue(v.Draft.Title)
	}
	if m.author.Value() != v.Draft.Author {
		m.author.SetValue(v.Draft.Author)
	}
	if m.details.Value() != v.Draft.Details {
		m.details.SetValue(v.Draft.Details)
	}
	if m.cursor >= len(v.Books) {
		m.cursor = max(0, len(v.Books)-1)
	}
}

func (m Model) selected() (models.Book, bool) {
	if m.cursor < 0 || m.cursor >= len(m.view.Books) {
		return models.Book{}, false
	}
	return m.view.Books[m.cursor], true
}

// Run starts the terminal UI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, ctrl Controller, files FileReader, dir string, opts ...tea.ProgramOption) error {
	m := New(ctrl, files, dir)
	defer m.Close()

	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	if _, err := tea.NewProgram(m, opts...).Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
