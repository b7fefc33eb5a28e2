package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"simpletodos/internal/client"
)

type fakeAPI struct {
	data    *client.AppData
	added   []string
	checked map[string]bool
	nextID  int
	failAdd error
}

func (f *fakeAPI) AppQuery(context.Context) (*client.AppData, error) {
	return f.data, nil
}

func (f *fakeAPI) AddTask(_ context.Context, text string) (*client.Task, error) {
	if f.failAdd != nil {
		return nil, f.failAdd
	}
	f.added = append(f.added, text)
	f.nextID++
	return &client.Task{ID: fmt.Sprintf("n%d", f.nextID), Text: text, Owner: "alice"}, nil
}

func (f *fakeAPI) DeleteTask(_ context.Context, id string) (*client.Task, error) {
	return &client.Task{ID: id}, nil
}

func (f *fakeAPI) SetChecked(_ context.Context, id string, checked bool) (*client.Task, error) {
	if f.checked == nil {
		f.checked = map[string]bool{}
	}
	f.checked[id] = checked
	for _, t := range f.data.Tasks {
		if t.ID == id {
			t.Checked = checked
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) SetPrivate(_ context.Context, id string, private bool) (*client.Task, error) {
	for _, t := range f.data.Tasks {
		if t.ID == id {
			t.Private = private
			return &t, nil
		}
	}
	return nil, errors.New("not found")
}

func newAPI() *fakeAPI {
	return &fakeAPI{data: &client.AppData{
		Tasks:           []client.Task{{ID: "t1", Text: "existing", Owner: "alice"}},
		CurrentUser:     &client.User{ID: "alice", Emails: []client.Email{{Address: "alice@example.com"}}},
		IncompleteCount: 1,
	}}
}

// step feeds msg to m and then runs any command it returns, feeding the
// result back once.
func step(t *testing.T, m *Model, msg tea.Msg) {
	t.Helper()
	_, cmd := m.Update(msg)
	if cmd == nil {
		return
	}
	if out := cmd(); out != nil {
		m.Update(out)
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T, api *fakeAPI) *Model {
	t.Helper()
	m := NewModel(context.Background(), api)
	if got := m.View(); !strings.Contains(got, "Loading") {
		t.Fatalf("expected loading screen, got %q", got)
	}
	m.Update(m.Init()())
	return m
}

func TestModel_TypeAndSubmit(t *testing.T) {
	api := newAPI()
	m := loaded(t, api)

	step(t, m, runes("Buy"))
	step(t, m, tea.KeyMsg{Type: tea.KeySpace})
	step(t, m, runes("milk"))
	if m.ListView().Text != "Buy milk" {
		t.Fatalf("unexpected draft %q", m.ListView().Text)
	}
	step(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if len(api.added) != 1 || api.added[0] != "Buy milk" {
		t.Fatalf("expected one addTask call, got %v", api.added)
	}
	tasks := m.ListView().Tasks
	if len(tasks) != 2 || tasks[0].Text != "Buy milk" {
		t.Fatalf("expected new task prepended, got %+v", tasks)
	}
	if m.ListView().Text != "" {
		t.Fatal("draft should be cleared")
	}
	if !strings.Contains(m.View(), "Todo List (2)") {
		t.Fatalf("unexpected view:\n%s", m.View())
	}
}

func TestModel_AddFailureShowsError(t *testing.T) {
	api := newAPI()
	api.failAdd = errors.New("boom")
	m := loaded(t, api)

	step(t, m, runes("x"))
	step(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(m.ListView().Tasks) != 1 {
		t.Fatal("failed add must not change the list")
	}
	if !strings.Contains(m.View(), "boom") {
		t.Fatalf("expected error in view:\n%s", m.View())
	}
}

func TestModel_ToggleChecked(t *testing.T) {
	api := newAPI()
	m := loaded(t, api)

	step(t, m, tea.KeyMsg{Type: tea.KeyCtrlX})
	if !api.checked["t1"] {
		t.Fatal("expected setChecked(t1, true)")
	}
	if !m.ListView().Tasks[0].Checked || m.ListView().IncompleteCount() != 0 {
		t.Fatalf("unexpected state %+v", m.ListView().Tasks)
	}
}

func TestModel_QuitDiscardsLateResults(t *testing.T) {
	api := newAPI()
	m := NewModel(context.Background(), api)
	pending := m.Init()

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	m.Update(pending())
	if len(m.ListView().Tasks) != 0 {
		t.Fatal("result arriving after quit must be discarded")
	}
}

func TestPrintOnce(t *testing.T) {
	out, err := PrintOnce(context.Background(), newAPI())
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out, "existing") || !strings.Contains(out, "Todo List (1)") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
