package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

// StatusQuery orders by (since DESC, id DESC) so One() is always the current
// status - the id tie-break keeps same-timestamp observations deterministic.
type StatusQuery struct {
	Query[model.MissionAssetStatus]
	missionAsset uint
}

func NewStatusQuery(db *gorm.DB) *StatusQuery {
	return &StatusQuery{
		Query: Query[model.MissionAssetStatus]{
			db:    db,
			limit: 100,
			order: "mission_asset_statuses.since DESC, mission_asset_statuses.id DESC",
		},
	}
}

func (q *StatusQuery) MissionAsset(id uint) *StatusQuery {
	if q == nil {
		return nil
	}

	q.missionAsset = id
	return q
}

func (q *StatusQuery) where() *gorm.DB {
	tx := q.db

	if q.missionAsset != 0 {
		tx = tx.Where("mission_asset_statuses.mission_asset_id = ?", q.missionAsset)
	}

	return tx
}

func (q *StatusQuery) Get() []*model.MissionAssetStatus {
	return q.get(q.where().Model(&model.MissionAssetStatus{}))
}

func (q *StatusQuery) One() *model.MissionAssetStatus {
	return q.one(q.where().Model(&model.MissionAssetStatus{}))
}

type StatusValueQuery struct {
	Query[model.AssetStatusValue]
	id   uint
	name string
}

func NewStatusValueQuery(db *gorm.DB) *StatusValueQuery {
	return &StatusValueQuery{
		Query: Query[model.AssetStatusValue]{
			db:    db,
			limit: 100,
			order: "asset_status_values.name",
		},
	}
}

func (q *StatusValueQuery) Id(id uint) *StatusValueQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *StatusValueQuery) Name(name string) *StatusValueQuery {
	if q == nil {
		return nil
	}

	q.name = name
	return q
}

func (q *StatusValueQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("asset_status_values.id = ?", q.id)
	}

	if q.name != "" {
		tx = tx.Where("asset_status_values.name = ?", q.name)
	}

	return tx
}

func (q *StatusValueQuery) Get() []*model.AssetStatusValue {
	return q.get(q.where().Model(&model.AssetStatusValue{}))
}

func (q *StatusValueQuery) One() *model.AssetStatusValue {
	return q.one(q.where().Model(&model.AssetStatusValue{}))
}

func (q *StatusValueQuery) Count() int64 {
	return q.count(q.where().Model(&model.AssetStatusValue{}))
}
