package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type MissionQuery struct {
	Query[model.Mission]
	id         uint
	ids        []uint
	onlyOpen   bool
	onlyClosed bool
}

func NewMissionQuery(db *gorm.DB) *MissionQuery {
	return &MissionQuery{
		Query: Query[model.Mission]{
			db:    db,
			limit: 100,
			order: "missions.started",
		},
	}
}

func (q *MissionQuery) Id(id uint) *MissionQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *MissionQuery) Ids(ids []uint) *MissionQuery {
	if q == nil {
		return nil
	}

	q.ids = ids
	return q
}

func (q *MissionQuery) OnlyOpen() *MissionQuery {
	if q == nil {
		return nil
	}

	q.onlyOpen = true
	return q
}

func (q *MissionQuery) OnlyClosed() *MissionQuery {
	if q == nil {
		return nil
	}

	q.onlyClosed = true
	return q
}

func (q *MissionQuery) Limit(n int) *MissionQuery {
	if q == nil {
		return nil
	}

	q.limit = n
	return q
}

func (q *MissionQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("missions.id = ?", q.id)
	}

	if q.ids != nil {
		tx = tx.Where("missions.id IN ?", q.ids)
	}

	if q.onlyOpen {
		tx = tx.Where("missions.closed IS NULL")
	}

	if q.onlyClosed {
		tx = tx.Where("missions.closed IS NOT NULL")
	}

	return tx
}

func (q *MissionQuery) Get() []*model.Mission {
	return q.get(q.where().Model(&model.Mission{}))
}

func (q *MissionQuery) One() *model.Mission {
	return q.one(q.where().Model(&model.Mission{}))
}

func (q *MissionQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.Mission{}), updates)
}
