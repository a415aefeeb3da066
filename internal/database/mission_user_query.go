package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type MissionUserQuery struct {
	Query[model.MissionUser]
	mission  uint
	username string
}

func NewMissionUserQuery(db *gorm.DB) *MissionUserQuery {
	return &MissionUserQuery{
		Query: Query[model.MissionUser]{
			db:    db,
			limit: 500,
			order: "mission_users.added",
		},
	}
}

func (q *MissionUserQuery) Mission(id uint) *MissionUserQuery {
	if q == nil {
		return nil
	}

	q.mission = id
	return q
}

func (q *MissionUserQuery) Username(name string) *MissionUserQuery {
	if q == nil {
		return nil
	}

	q.username = name
	return q
}

func (q *MissionUserQuery) where() *gorm.DB {
	tx := q.db

	if q.mission != 0 {
		tx = tx.Where("mission_users.mission_id = ?", q.mission)
	}

	if q.username != "" {
		tx = tx.Where("mission_users.username = ?", q.username)
	}

	return tx
}

func (q *MissionUserQuery) Get() []*model.MissionUser {
	return q.get(q.where().Model(&model.MissionUser{}))
}

func (q *MissionUserQuery) One() *model.MissionUser {
	return q.one(q.where().Model(&model.MissionUser{}))
}

func (q *MissionUserQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.MissionUser{}), updates)
}
