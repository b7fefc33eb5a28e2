// Package view holds the to-do list screen state. Every change goes through
// a method, observers run after each change, and Render is a pure function
// of the current state.
package view

import (
	"fmt"
	"strings"

	"simpletodos/internal/client"
)

type ListView struct {
	Text          string
	HideCompleted bool
	Loading       bool
	Tasks         []client.Task
	CurrentUser   *client.User
	// Err is the last query or mutation failure, cleared by the next success.
	Err error

	cursor           int
	hasResult        bool
	serverIncomplete *int
	closed           bool
	observers        []func(*ListView)
}

// New returns a view waiting for its first query result.
func New() *ListView {
	return &ListView{Loading: true}
}

// Subscribe registers fn to run after every state change.
func (v *ListView) Subscribe(fn func(*ListView)) {
	v.observers = append(v.observers, fn)
}

// Close detaches the view. Results applied afterwards are dropped.
func (v *ListView) Close() {
	v.closed = true
	v.observers = nil
}

func (v *ListView) Closed() bool { return v.closed }

func (v *ListView) changed() {
	for _, fn := range v.observers {
		fn(v)
	}
}

func (v *ListView) SetText(s string) {
	if v.closed {
		return
	}
	v.Text = s
	v.changed()
}

func (v *ListView) ToggleHideCompleted() {
	if v.closed {
		return
	}
	v.HideCompleted = !v.HideCompleted
	v.clampCursor()
	v.changed()
}

func (v *ListView) ApplyQuery(data *client.AppData) {
	if v.closed || data == nil {
		return
	}
	v.Tasks = append([]client.Task(nil), data.Tasks...)
	v.CurrentUser = data.CurrentUser
	n := data.IncompleteCount
	v.serverIncomplete = &n
	v.Loading = false
	v.hasResult = true
	v.Err = nil
	v.clampCursor()
	v.changed()
}

// ApplyQueryError keeps the previous result visible when there is one.
func (v *ListView) ApplyQueryError(err error) {
	if v.closed {
		return
	}
	v.Err = err
	v.Loading = false
	v.changed()
}

// ApplyMutationError records a failed write without touching the list.
func (v *ListView) ApplyMutationError(err error) {
	if v.closed {
		return
	}
	v.Err = err
	v.changed()
}

// IncompleteCount prefers the server's count, patched by local updates.
func (v *ListView) IncompleteCount() int {
	if v.serverIncomplete != nil {
		return *v.serverIncomplete
	}
	n := 0
	for _, t := range v.Tasks {
		if !t.Checked {
			n++
		}
	}
	return n
}

func (v *ListView) VisibleTasks() []client.Task {
	if !v.HideCompleted {
		return v.Tasks
	}
	out := make([]client.Task, 0, len(v.Tasks))
	for _, t := range v.Tasks {
		if !t.Checked {
			out = append(out, t)
		}
	}
	return out
}

func (v *ListView) ShowPrivateButton(t client.Task) bool {
	return v.CurrentUser != nil && v.CurrentUser.ID == t.Owner
}

// CanAdd reports whether the add form is shown.
func (v *ListView) CanAdd() bool {
	return v.CurrentUser != nil
}

// Submit hands out the draft and clears it. ok is false when the user is
// not signed in; the draft is kept then.
func (v *ListView) Submit() (text string, ok bool) {
	if v.closed || !v.CanAdd() {
		return "", false
	}
	text = v.Text
	v.Text = ""
	v.changed()
	return text, true
}

// ApplyAdded prepends t unless a task with the same id is already listed.
func (v *ListView) ApplyAdded(t client.Task) {
	if v.closed {
		return
	}
	if v.indexOf(t.ID) >= 0 {
		return
	}
	v.Tasks = append([]client.Task{t}, v.Tasks...)
	if !t.Checked {
		v.adjustIncomplete(1)
	}
	v.Err = nil
	v.changed()
}

func (v *ListView) ApplyUpdated(t client.Task) {
	if v.closed {
		return
	}
	i := v.indexOf(t.ID)
	if i < 0 {
		return
	}
	if prev := v.Tasks[i]; prev.Checked != t.Checked {
		if t.Checked {
			v.adjustIncomplete(-1)
		} else {
			v.adjustIncomplete(1)
		}
	}
	v.Tasks[i] = t
	v.Err = nil
	v.clampCursor()
	v.changed()
}

func (v *ListView) ApplyDeleted(id string) {
	if v.closed {
		return
	}
	i := v.indexOf(id)
	if i < 0 {
		return
	}
	if !v.Tasks[i].Checked {
		v.adjustIncomplete(-1)
	}
	v.Tasks = append(v.Tasks[:i:i], v.Tasks[i+1:]...)
	v.Err = nil
	v.clampCursor()
	v.changed()
}

// MoveCursor moves the selection within the visible tasks.
func (v *ListView) MoveCursor(delta int) {
	if v.closed {
		return
	}
	v.cursor += delta
	v.clampCursor()
	v.changed()
}

// Selected returns the task under the cursor, or nil.
func (v *ListView) Selected() *client.Task {
	visible := v.VisibleTasks()
	if v.cursor < 0 || v.cursor >= len(visible) {
		return nil
	}
	t := visible[v.cursor]
	return &t
}

func (v *ListView) adjustIncomplete(delta int) {
	if v.serverIncomplete == nil {
		return
	}
	n := *v.serverIncomplete + delta
	if n < 0 {
		n = 0
	}
	v.serverIncomplete = &n
}

func (v *ListView) clampCursor() {
	n := len(v.VisibleTasks())
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
}

func (v *ListView) indexOf(id string) int {
	for i := range v.Tasks {
		if v.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Render draws the list as plain text. It returns "" while the first query
// is still loading.
func (v *ListView) Render() string {
	if v.Loading {
		return ""
	}
	if !v.hasResult {
		if v.Err != nil {
			return fmt.Sprintf("Could not load tasks: %v\n", v.Err)
		}
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Todo List (%d)\n", v.IncompleteCount())

	box := "[ ]"
	if v.HideCompleted {
		box = "[x]"
	}
	fmt.Fprintf(&b, "%s Hide completed tasks\n", box)

	if v.CurrentUser != nil {
		who := v.CurrentUser.ID
		if len(v.CurrentUser.Emails) > 0 {
			who = v.CurrentUser.Emails[0].Address
		}
		fmt.Fprintf(&b, "Signed in as %s\n", who)
		if v.Text == "" {
			b.WriteString("> Type to add new tasks\n")
		} else {
			fmt.Fprintf(&b, "> %s\n", v.Text)
		}
	} else {
		b.WriteString("Sign in to add tasks\n")
	}
	b.WriteString("\n")

	for i, t := range v.VisibleTasks() {
		marker := "  "
		if i == v.cursor {
			marker = "> "
		}
		check := "[ ]"
		if t.Checked {
			check = "[x]"
		}
		line := fmt.Sprintf("%s%s %s: %s", marker, check, t.Email, t.Text)
		if v.ShowPrivateButton(t) {
			if t.Private {
				line += " (private)"
			} else {
				line += " (public)"
			}
		}
		b.WriteString(line + "\n")
	}

	if v.Err != nil {
		fmt.Fprintf(&b, "\nError: %v\n", v.Err)
	}
	return b.String()
}
