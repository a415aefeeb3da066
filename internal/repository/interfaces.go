package repository

import (
	"github.com/openrescue/sarcoord/internal/model"
)

type UserRepository interface {
	Start() error
	Stop()
	CheckAuth(user, password string) bool
	IsValid(user string) bool
	Get(username string) *model.User
}
