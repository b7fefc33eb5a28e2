package model

import "time"

type Task struct {
	ID        string    `json:"_id"`
	Text      string    `json:"text"`
	Email     string    `json:"email"`
	Owner     string    `json:"owner"`
	Checked   bool      `json:"checked"`
	Private   bool      `json:"private"`
	CreatedAt time.Time `json:"createdAt"`
}

// Clone returns a copy that shares no state with t.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}
