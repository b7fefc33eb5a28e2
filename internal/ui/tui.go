// Package ui runs the to-do list in a terminal.
package ui

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"simpletodos/internal/client"
	"simpletodos/internal/view"
)

// API is the subset of the client the terminal view needs.
type API interface {
	AppQuery(ctx context.Context) (*client.AppData, error)
	AddTask(ctx context.Context, text string) (*client.Task, error)
	DeleteTask(ctx context.Context, id string) (*client.Task, error)
	SetChecked(ctx context.Context, id string, checked bool) (*client.Task, error)
	SetPrivate(ctx context.Context, id string, private bool) (*client.Task, error)
}

const helpLine = "enter add · tab hide completed · ↑/↓ select · ctrl+x check · ctrl+p private · ctrl+d delete · ctrl+r refresh · esc quit"

type queryMsg struct {
	data *client.AppData
	err  error
}

type addedMsg struct {
	task *client.Task
	err  error
}

type updatedMsg struct {
	task *client.Task
	err  error
}

type deletedMsg struct {
	id  string
	err error
}

type Model struct {
	ctx     context.Context
	api     API
	view    *view.ListView
	timeout time.Duration
}

func NewModel(ctx context.Context, api API) *Model {
	return &Model{
		ctx:     ctx,
		api:     api,
		view:    view.New(),
		timeout: 10 * time.Second,
	}
}

func (m *Model) View() string {
	if m.view.Closed() {
		return ""
	}
	out := m.view.Render()
	if out == "" {
		return "Loading…\n"
	}
	return out + "\n" + helpLine + "\n"
}

// ListView exposes the underlying state, mainly for tests.
func (m *Model) ListView() *view.ListView { return m.view }

func (m *Model) Init() tea.Cmd {
	return m.query()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)
	case queryMsg:
		if msg.err != nil {
			m.view.ApplyQueryError(msg.err)
		} else {
			m.view.ApplyQuery(msg.data)
		}
	case addedMsg:
		if msg.err != nil {
			m.view.ApplyMutationError(msg.err)
		} else {
			m.view.ApplyAdded(*msg.task)
		}
	case updatedMsg:
		if msg.err != nil {
			m.view.ApplyMutationError(msg.err)
		} else {
			m.view.ApplyUpdated(*msg.task)
		}
	case deletedMsg:
		if msg.err != nil {
			m.view.ApplyMutationError(msg.err)
		} else {
			m.view.ApplyDeleted(msg.id)
		}
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.view.Close()
		return m, tea.Quit
	case tea.KeyEnter:
		text, ok := m.view.Submit()
		if !ok {
			return m, nil
		}
		return m, m.addTask(text)
	case tea.KeyTab:
		m.view.ToggleHideCompleted()
	case tea.KeyUp:
		m.view.MoveCursor(-1)
	case tea.KeyDown:
		m.view.MoveCursor(1)
	case tea.KeyBackspace:
		if r := []rune(m.view.Text); len(r) > 0 {
			m.view.SetText(string(r[:len(r)-1]))
		}
	case tea.KeySpace:
		m.appendText(" ")
	case tea.KeyRunes:
		m.appendText(string(msg.Runes))
	case tea.KeyCtrlR:
		return m, m.query()
	case tea.KeyCtrlX:
		if t := m.view.Selected(); t != nil {
			return m, m.setChecked(t.ID, !t.Checked)
		}
	case tea.KeyCtrlP:
		if t := m.view.Selected(); t != nil && m.view.ShowPrivateButton(*t) {
			return m, m.setPrivate(t.ID, !t.Private)
		}
	case tea.KeyCtrlD:
		if t := m.view.Selected(); t != nil {
			return m, m.deleteTask(t.ID)
		}
	}
	return m, nil
}

func (m *Model) appendText(s string) {
	if m.view.CanAdd() {
		m.view.SetText(m.view.Text + s)
	}
}

func (m *Model) query() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		data, err := m.api.AppQuery(ctx)
		return queryMsg{data: data, err: err}
	}
}

func (m *Model) addTask(text string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		t, err := m.api.AddTask(ctx, text)
		return addedMsg{task: t, err: err}
	}
}

func (m *Model) setChecked(id string, checked bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		t, err := m.api.SetChecked(ctx, id, checked)
		return updatedMsg{task: t, err: err}
	}
}

func (m *Model) setPrivate(id string, private bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		t, err := m.api.SetPrivate(ctx, id, private)
		return updatedMsg{task: t, err: err}
	}
}

func (m *Model) deleteTask(id string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(m.ctx, m.timeout)
		defer cancel()
		_, err := m.api.DeleteTask(ctx, id)
		return deletedMsg{id: id, err: err}
	}
}

// Run starts the terminal program and blocks until the user quits.
func Run(ctx context.Context, api API) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("terminal view requires a TTY")
	}
	program := tea.NewProgram(NewModel(ctx, api), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

// PrintOnce loads the list and returns a single rendering.
func PrintOnce(ctx context.Context, api API) (string, error) {
	v := view.New()
	data, err := api.AppQuery(ctx)
	if err != nil {
		v.ApplyQueryError(err)
		return v.Render(), err
	}
	v.ApplyQuery(data)
	return v.Render(), nil
}

// IsTTY reports whether f is a terminal.
func IsTTY(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
