package rbac

// Task permissions.
const (
	PermissionDeleteTask = "task:delete"
	PermissionCheckTask  = "task:check"
	PermissionSetPrivate = "task:set_private"
)

// Relation of the caller to a task.
const (
	RelationOwner = "owner"
	RelationOther = "other"
)

// A non-owner may only check public tasks; everything else needs ownership.
var relationPermissions = map[string][]string{
	RelationOwner: {
		PermissionDeleteTask,
		PermissionCheckTask,
		PermissionSetPrivate,
	},
	RelationOther: {
		PermissionCheckTask,
	},
}

// Resource is the subset of a task a permission check looks at.
type Resource struct {
	ID      string
	Owner   string
	Private bool
}

func relation(callerID string, res Resource) string {
	if callerID != "" && callerID == res.Owner {
		return RelationOwner
	}
	return RelationOther
}

// HasPermission reports whether callerID may perform permission on res.
func HasPermission(callerID string, permission string, res Resource) bool {
	rel := relation(callerID, res)
	if rel == RelationOther && res.Private {
		return false
	}
	for _, p := range relationPermissions[rel] {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission is HasPermission returning an error for the deny case.
func CheckPermission(callerID string, permission string, res Resource) error {
	if !HasPermission(callerID, permission, res) {
		return &PermissionDeniedError{
			UserID:     callerID,
			Permission: permission,
			ResourceID: res.ID,
		}
	}
	return nil
}

type PermissionDeniedError struct {
	UserID     string
	Permission string
	ResourceID string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions for " + e.Permission
}
