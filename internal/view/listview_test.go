package view

import (
	"errors"
	"strings"
	"testing"

	"simpletodos/internal/client"
)

func alice() *client.User {
	return &client.User{ID: "alice", Emails: []client.Email{{Address: "alice@example.com"}}}
}

func seeded(user *client.User) *ListView {
	v := New()
	v.ApplyQuery(&client.AppData{
		Tasks: []client.Task{
			{ID: "t2", Text: "second", Email: "alice@example.com", Owner: "alice"},
			{ID: "t1", Text: "first", Email: "bob@example.com", Owner: "bob", Checked: true},
		},
		CurrentUser:     user,
		IncompleteCount: 1,
	})
	return v
}

func TestRender_EmptyWhileLoading(t *testing.T) {
	v := New()
	if !v.Loading {
		t.Fatal("new view should be loading")
	}
	if got := v.Render(); got != "" {
		t.Fatalf("expected empty render while loading, got %q", got)
	}
}

func TestApplyQuery_RendersHeaderAndTasks(t *testing.T) {
	v := seeded(alice())
	out := v.Render()
	for _, want := range []string{"Todo List (1)", "[ ] Hide completed tasks", "Signed in as alice@example.com", "second", "first"} {
		if !strings.Contains(out, want) {
			t.Fatalf("render missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "second") > strings.Index(out, "first") {
		t.Fatalf("expected server order preserved:\n%s", out)
	}
}

func TestHideCompleted(t *testing.T) {
	v := seeded(alice())
	v.ToggleHideCompleted()
	visible := v.VisibleTasks()
	if len(visible) != 1 || visible[0].ID != "t2" {
		t.Fatalf("expected only incomplete tasks, got %+v", visible)
	}
	if strings.Contains(v.Render(), "first") {
		t.Fatal("checked task must be hidden")
	}
	v.ToggleHideCompleted()
	if len(v.VisibleTasks()) != 2 {
		t.Fatal("toggle back should show all tasks")
	}
}

func TestShowPrivateButton(t *testing.T) {
	v := seeded(alice())
	if !v.ShowPrivateButton(v.Tasks[0]) {
		t.Fatal("owner should see the private button")
	}
	if v.ShowPrivateButton(v.Tasks[1]) {
		t.Fatal("non-owner must not see the private button")
	}

	anon := seeded(nil)
	if anon.ShowPrivateButton(anon.Tasks[0]) {
		t.Fatal("anonymous user must not see the private button")
	}
}

func TestSubmit_AnonymousRefused(t *testing.T) {
	v := seeded(nil)
	v.SetText("hello")
	if v.CanAdd() {
		t.Fatal("anonymous user cannot add")
	}
	if _, ok := v.Submit(); ok {
		t.Fatal("submit must fail when anonymous")
	}
	if v.Text != "hello" {
		t.Fatal("draft should be kept")
	}
	if !strings.Contains(v.Render(), "Sign in to add tasks") {
		t.Fatal("expected sign-in hint")
	}
}

func TestSubmitThenApplyAdded(t *testing.T) {
	v := seeded(alice())
	v.SetText("third")
	text, ok := v.Submit()
	if !ok || text != "third" {
		t.Fatalf("submit: %q %v", text, ok)
	}
	if v.Text != "" {
		t.Fatal("draft should be cleared after submit")
	}

	added := client.Task{ID: "t3", Text: "third", Email: "alice@example.com", Owner: "alice"}
	v.ApplyAdded(added)
	v.ApplyAdded(added)

	if len(v.Tasks) != 3 || v.Tasks[0].ID != "t3" {
		t.Fatalf("expected t3 prepended once, got %+v", v.Tasks)
	}
	if v.IncompleteCount() != 2 {
		t.Fatalf("expected incomplete count 2, got %d", v.IncompleteCount())
	}
}

func TestApplyUpdatedAndDeleted(t *testing.T) {
	v := seeded(alice())

	v.ApplyUpdated(client.Task{ID: "t2", Text: "second", Owner: "alice", Checked: true})
	if v.IncompleteCount() != 0 {
		t.Fatalf("expected 0 after checking, got %d", v.IncompleteCount())
	}
	v.ApplyUpdated(client.Task{ID: "t1", Text: "first", Owner: "bob", Checked: false})
	if v.IncompleteCount() != 1 {
		t.Fatalf("expected 1 after unchecking, got %d", v.IncompleteCount())
	}

	v.ApplyDeleted("t1")
	if len(v.Tasks) != 1 || v.IncompleteCount() != 0 {
		t.Fatalf("unexpected state after delete: %+v count=%d", v.Tasks, v.IncompleteCount())
	}
	v.ApplyDeleted("missing")
	if len(v.Tasks) != 1 {
		t.Fatal("deleting an unknown id must be a no-op")
	}
}

func TestIncompleteCount_ClientSideFallback(t *testing.T) {
	v := New()
	v.Tasks = []client.Task{{ID: "a"}, {ID: "b", Checked: true}, {ID: "c"}}
	if got := v.IncompleteCount(); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestQueryError_KeepsPreviousResult(t *testing.T) {
	v := seeded(alice())
	v.ApplyQueryError(errors.New("network down"))
	out := v.Render()
	if !strings.Contains(out, "second") || !strings.Contains(out, "network down") {
		t.Fatalf("expected previous list plus error:\n%s", out)
	}

	fresh := New()
	fresh.ApplyQueryError(errors.New("network down"))
	out = fresh.Render()
	if !strings.HasPrefix(out, "Could not load tasks") {
		t.Fatalf("expected error state, got %q", out)
	}
}

func TestObserversAndClose(t *testing.T) {
	v := New()
	calls := 0
	v.Subscribe(func(*ListView) { calls++ })

	v.SetText("a")
	v.ToggleHideCompleted()
	if calls != 2 {
		t.Fatalf("expected 2 notifications, got %d", calls)
	}

	v.Close()
	v.ApplyQuery(&client.AppData{Tasks: []client.Task{{ID: "x"}}})
	if calls != 2 || len(v.Tasks) != 0 || !v.Loading {
		t.Fatal("results after close must be discarded")
	}
}

func TestCursor(t *testing.T) {
	v := seeded(alice())
	if sel := v.Selected(); sel == nil || sel.ID != "t2" {
		t.Fatalf("expected first task selected, got %+v", sel)
	}
	v.MoveCursor(5)
	if sel := v.Selected(); sel == nil || sel.ID != "t1" {
		t.Fatalf("cursor should clamp to last task, got %+v", sel)
	}
	v.ToggleHideCompleted()
	if sel := v.Selected(); sel == nil || sel.ID != "t2" {
		t.Fatalf("cursor should clamp after filtering, got %+v", sel)
	}
}
