package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type MissionAssetQuery struct {
	Query[model.MissionAsset]
	id      uint
	mission uint
	asset   uint
	active  *bool
}

func NewMissionAssetQuery(db *gorm.DB) *MissionAssetQuery {
	return &MissionAssetQuery{
		Query: Query[model.MissionAsset]{
			db:    db,
			limit: 500,
			order: "mission_assets.added",
		},
	}
}

func (q *MissionAssetQuery) Id(id uint) *MissionAssetQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *MissionAssetQuery) Mission(id uint) *MissionAssetQuery {
	if q == nil {
		return nil
	}

	q.mission = id
	return q
}

func (q *MissionAssetQuery) Asset(id uint) *MissionAssetQuery {
	if q == nil {
		return nil
	}

	q.asset = id
	return q
}

func (q *MissionAssetQuery) Active(b bool) *MissionAssetQuery {
	if q == nil {
		return nil
	}

	q.active = &b
	return q
}

func (q *MissionAssetQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("mission_assets.id = ?", q.id)
	}

	if q.mission != 0 {
		tx = tx.Where("mission_assets.mission_id = ?", q.mission)
	}

	if q.asset != 0 {
		tx = tx.Where("mission_assets.asset_id = ?", q.asset)
	}

	if q.active != nil {
		if *q.active {
			tx = tx.Where("mission_assets.removed IS NULL")
		} else {
			tx = tx.Where("mission_assets.removed IS NOT NULL")
		}
	}

	return tx
}

func (q *MissionAssetQuery) Get() []*model.MissionAsset {
	return q.get(q.where().Model(&model.MissionAsset{}))
}

func (q *MissionAssetQuery) One() *model.MissionAsset {
	return q.one(q.where().Model(&model.MissionAsset{}))
}

func (q *MissionAssetQuery) Count() int64 {
	return q.count(q.where().Model(&model.MissionAsset{}))
}

func (q *MissionAssetQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.MissionAsset{}), updates)
}
