package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type OrgQuery struct {
	Query[model.Organization]
	id   uint
	name string
}

func NewOrgQuery(db *gorm.DB) *OrgQuery {
	return &OrgQuery{
		Query: Query[model.Organization]{
			db:    db,
			limit: 500,
			order: "organizations.name",
		},
	}
}

func (q *OrgQuery) Id(id uint) *OrgQuery {
	if q == nil {
		return nil
	}

	q.id = id
	return q
}

func (q *OrgQuery) Name(name string) *OrgQuery {
	if q == nil {
		return nil
	}

	q.name = name
	return q
}

func (q *OrgQuery) where() *gorm.DB {
	tx := q.db

	if q.id != 0 {
		tx = tx.Where("organizations.id = ?", q.id)
	}

	if q.name != "" {
		tx = tx.Where("organizations.name = ?", q.name)
	}

	return tx
}

func (q *OrgQuery) Get() []*model.Organization {
	return q.get(q.where().Model(&model.Organization{}))
}

func (q *OrgQuery) One() *model.Organization {
	return q.one(q.where().Model(&model.Organization{}))
}

type OrgMemberQuery struct {
	Query[model.OrganizationMember]
	org      uint
	username string
	active   *bool
}

func NewOrgMemberQuery(db *gorm.DB) *OrgMemberQuery {
	return &OrgMemberQuery{
		Query: Query[model.OrganizationMember]{
			db:    db,
			limit: 500,
			order: "organization_members.added",
		},
	}
}

func (q *OrgMemberQuery) Organization(id uint) *OrgMemberQuery {
	if q == nil {
		return nil
	}

	q.org = id
	return q
}

func (q *OrgMemberQuery) Username(name string) *OrgMemberQuery {
	if q == nil {
		return nil
	}

	q.username = name
	return q
}

func (q *OrgMemberQuery) Active(b bool) *OrgMemberQuery {
	if q == nil {
		return nil
	}

	q.active = &b
	return q
}

func (q *OrgMemberQuery) where() *gorm.DB {
	tx := q.db

	if q.org != 0 {
		tx = tx.Where("organization_members.organization_id = ?", q.org)
	}

	if q.username != "" {
		tx = tx.Where("organization_members.username = ?", q.username)
	}

	if q.active != nil {
		if *q.active {
			tx = tx.Where("organization_members.removed IS NULL")
		} else {
			tx = tx.Where("organization_members.removed IS NOT NULL")
		}
	}

	return tx
}

func (q *OrgMemberQuery) Get() []*model.OrganizationMember {
	return q.get(q.where().Model(&model.OrganizationMember{}))
}

func (q *OrgMemberQuery) One() *model.OrganizationMember {
	return q.one(q.where().Model(&model.OrganizationMember{}))
}

type OrgAssetQuery struct {
	Query[model.OrganizationAsset]
	asset  uint
	orgs   []uint
	active *bool
}

func NewOrgAssetQuery(db *gorm.DB) *OrgAssetQuery {
	return &OrgAssetQuery{
		Query: Query[model.OrganizationAsset]{
			db:    db,
			limit: 500,
			order: "organization_assets.added",
		},
	}
}

func (q *OrgAssetQuery) Asset(id uint) *OrgAssetQuery {
	if q == nil {
		return nil
	}

	q.asset = id
	return q
}

func (q *OrgAssetQuery) Organizations(ids []uint) *OrgAssetQuery {
	if q == nil {
		return nil
	}

	q.orgs = ids
	return q
}

func (q *OrgAssetQuery) Active(b bool) *OrgAssetQuery {
	if q == nil {
		return nil
	}

	q.active = &b
	return q
}

func (q *OrgAssetQuery) where() *gorm.DB {
	tx := q.db

	if q.asset != 0 {
		tx = tx.Where("organization_assets.asset_id = ?", q.asset)
	}

	if q.orgs != nil {
		tx = tx.Where("organization_assets.organization_id IN ?", q.orgs)
	}

	if q.active != nil {
		if *q.active {
			tx = tx.Where("organization_assets.removed IS NULL")
		} else {
			tx = tx.Where("organization_assets.removed IS NOT NULL")
		}
	}

	return tx
}

func (q *OrgAssetQuery) Get() []*model.OrganizationAsset {
	return q.get(q.where().Model(&model.OrganizationAsset{}))
}

func (q *OrgAssetQuery) Count() int64 {
	return q.count(q.where().Model(&model.OrganizationAsset{}))
}
