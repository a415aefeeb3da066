package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

// CommandQuery orders by (issued_at DESC, id DESC): One() for an asset is the
// command currently in effect, responded or not. The id tie-break is
// load-bearing for same-millisecond writes.
type CommandQuery struct {
	Query[model.AssetCommand]
	id      uint
	asset   uint
	mission uint
}

func NewCommandQuery(db *gorm.DB) *CommandQuery {
	return &CommandQuery{
		Query: Query[model.AssetCommand]{
			db:    db,
			limit: 100,
			order: "asset_commands.issued_at DESC, asset_commands.id DESC",
		},
	}
}

func (q *CommandQuery) Id(id uint) *CommandQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *CommandQuery) Asset(id uint) *CommandQuery {
	if q == nil {
		return nil
	}

	q.asset = id
	return q
}

func (q *CommandQuery) Mission(id uint) *CommandQuery {
	if q == nil {
		return nil
	}

	q.mission = id
	return q
}

func (q *CommandQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("asset_commands.id = ?", q.id)
	}

	if q.asset != 0 {
		tx = tx.Where("asset_commands.asset_id = ?", q.asset)
	}

	if q.mission != 0 {
		tx = tx.Where("asset_commands.mission_id = ?", q.mission)
	}

	return tx
}

func (q *CommandQuery) Get() []*model.AssetCommand {
	return q.get(q.where().Model(&model.AssetCommand{}))
}

func (q *CommandQuery) One() *model.AssetCommand {
	return q.one(q.where().Model(&model.AssetCommand{}))
}

func (q *CommandQuery) Count() int64 {
	return q.count(q.where().Model(&model.AssetCommand{}))
}
