package client

type Email struct {
	Address string `json:"address"`
}

type User struct {
	ID     string  `json:"_id"`
	Emails []Email `json:"emails"`
}

type Task struct {
	ID        string `json:"_id"`
	Text      string `json:"text"`
	Email     string `json:"email"`
	Owner     string `json:"owner"`
	Checked   bool   `json:"checked"`
	Private   bool   `json:"private"`
	CreatedAt string `json:"createdAt"`
}

// AppData is the result of AppQuery.
type AppData struct {
	Tasks           []Task `json:"tasks"`
	CurrentUser     *User  `json:"currentUser"`
	IncompleteCount int    `json:"incompleteCount"`
}
