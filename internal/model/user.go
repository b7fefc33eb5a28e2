package model

import "time"

type Email struct {
	Address string `json:"address"`
}

type User struct {
	ID           string    `json:"_id"`
	Emails       []Email   `json:"emails"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// PrimaryEmail returns the first registered address, or "".
func (u *User) PrimaryEmail() string {
	if len(u.Emails) == 0 {
		return ""
	}
	return u.Emails[0].Address
}

func (u *User) Clone() *User {
	c := *u
	c.Emails = append([]Email(nil), u.Emails...)
	return &c
}
