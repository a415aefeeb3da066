package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type PositionQuery struct {
	Query[model.AssetPosition]
	asset uint
}

func NewPositionQuery(db *gorm.DB) *PositionQuery {
	return &PositionQuery{
		Query: Query[model.AssetPosition]{
			db:    db,
			limit: 100,
			order: "asset_positions.at DESC, asset_positions.id DESC",
		},
	}
}

func (q *PositionQuery) Asset(id uint) *PositionQuery {
	if q == nil {
		return nil
	}

	q.asset = id
	return q
}

func (q *PositionQuery) where() *gorm.DB {
	tx := q.db

	if q.asset != 0 {
		tx = tx.Where("asset_positions.asset_id = ?", q.asset)
	}

	return tx
}

func (q *PositionQuery) Get() []*model.AssetPosition {
	return q.get(q.where().Model(&model.AssetPosition{}))
}

func (q *PositionQuery) One() *model.AssetPosition {
	return q.one(q.where().Model(&model.AssetPosition{}))
}
