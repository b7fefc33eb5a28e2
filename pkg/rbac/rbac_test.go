package rbac

import (
	"errors"
	"testing"
)

func TestHasPermission(t *testing.T) {
	public := Resource{ID: "t1", Owner: "u1"}
	private := Resource{ID: "t2", Owner: "u1", Private: true}

	cases := []struct {
		name   string
		caller string
		perm   string
		res    Resource
		want   bool
	}{
		{"owner deletes", "u1", PermissionDeleteTask, public, true},
		{"other deletes", "u2", PermissionDeleteTask, public, false},
		{"other checks public", "u2", PermissionCheckTask, public, true},
		{"other checks private", "u2", PermissionCheckTask, private, false},
		{"owner checks private", "u1", PermissionCheckTask, private, true},
		{"owner sets private", "u1", PermissionSetPrivate, public, true},
		{"other sets private", "u2", PermissionSetPrivate, public, false},
	}
	for _, c := range cases {
		if got := HasPermission(c.caller, c.perm, c.res); got != c.want {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestCheckPermission_Error(t *testing.T) {
	err := CheckPermission("u2", PermissionDeleteTask, Resource{ID: "t1", Owner: "u1"})
	var denied *PermissionDeniedError
	if !errors.As(err, &denied) {
		t.Fatalf("expected PermissionDeniedError, got %v", err)
	}
	if denied.ResourceID != "t1" || denied.UserID != "u2" {
		t.Fatalf("unexpected denial %+v", denied)
	}
}
