package model

import (
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 14

// User is an identity record from the users file. Authentication and the
// user directory are deliberately outside the mission core - the core only
// ever sees the login string.
type User struct {
	Login    string `yaml:"user"`
	Password string `yaml:"password"`
	Disabled bool   `yaml:"disabled,omitempty"`
}

func (u *User) GetLogin() string {
	if u == nil {
		return ""
	}

	return u.Login
}

func (u *User) SetPassword(password string) error {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return err
	}

	u.Password = string(b)

	return nil
}

func (u *User) CheckPassword(password string) bool {
	if u == nil {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
