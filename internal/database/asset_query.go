package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type AssetQuery struct {
	Query[model.Asset]
	id    uint
	name  string
	owner string
}

func NewAssetQuery(db *gorm.DB) *AssetQuery {
	return &AssetQuery{
		Query: Query[model.Asset]{
			db:    db,
			limit: 500,
			order: "assets.name",
		},
	}
}

func (q *AssetQuery) Id(id uint) *AssetQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *AssetQuery) Name(name string) *AssetQuery {
	if q == nil {
		return nil
	}

	q.name = name
	return q
}

func (q *AssetQuery) Owner(owner string) *AssetQuery {
	if q == nil {
		return nil
	}

	q.owner = owner
	return q
}

func (q *AssetQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("assets.id = ?", q.id)
	}

	if q.name != "" {
		tx = tx.Where("assets.name = ?", q.name)
	}

	if q.owner != "" {
		tx = tx.Where("assets.owner = ?", q.owner)
	}

	return tx
}

func (q *AssetQuery) Get() []*model.Asset {
	return q.get(q.where().Model(&model.Asset{}))
}

func (q *AssetQuery) One() *model.Asset {
	return q.one(q.where().Model(&model.Asset{}))
}

type AssetTypeQuery struct {
	Query[model.AssetType]
	id   uint
	name string
}

func NewAssetTypeQuery(db *gorm.DB) *AssetTypeQuery {
	return &AssetTypeQuery{
		Query: Query[model.AssetType]{
			db:    db,
			limit: 100,
			order: "asset_types.name",
		},
	}
}

func (q *AssetTypeQuery) Id(id uint) *AssetTypeQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *AssetTypeQuery) Name(name string) *AssetTypeQuery {
	if q == nil {
		return nil
	}

	q.name = name
	return q
}

func (q *AssetTypeQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("asset_types.id = ?", q.id)
	}

	if q.name != "" {
		tx = tx.Where("asset_types.name = ?", q.name)
	}

	return tx
}

func (q *AssetTypeQuery) Get() []*model.AssetType {
	return q.get(q.where().Model(&model.AssetType{}))
}

func (q *AssetTypeQuery) One() *model.AssetType {
	return q.one(q.where().Model(&model.AssetType{}))
}
