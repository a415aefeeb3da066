package database

import (
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type MissionOrgQuery struct {
	Query[model.MissionOrganization]
	mission uint
	org     uint
	orgs    []uint
	active  *bool
}

func NewMissionOrgQuery(db *gorm.DB) *MissionOrgQuery {
	return &MissionOrgQuery{
		Query: Query[model.MissionOrganization]{
			db:    db,
			limit: 500,
			order: "mission_organizations.added",
		},
	}
}

func (q *MissionOrgQuery) Mission(id uint) *MissionOrgQuery {
	if q == nil {
		return nil
	}

	q.mission = id
	return q
}

func (q *MissionOrgQuery) Organization(id uint) *MissionOrgQuery {
	if q == nil {
		return nil
	}

	q.org = id
	return q
}

func (q *MissionOrgQuery) Organizations(ids []uint) *MissionOrgQuery {
	if q == nil {
		return nil
	}

	q.orgs = ids
	return q
}

func (q *MissionOrgQuery) Active(b bool) *MissionOrgQuery {
	if q == nil {
		return nil
	}

	q.active = &b
	return q
}

func (q *MissionOrgQuery) where() *gorm.DB {
	tx := q.db

	if q.mission != 0 {
		tx = tx.Where("mission_organizations.mission_id = ?", q.mission)
	}

	if q.org != 0 {
		tx = tx.Where("mission_organizations.organization_id = ?", q.org)
	}

	if q.orgs != nil {
		tx = tx.Where("mission_organizations.organization_id IN ?", q.orgs)
	}

	if q.active != nil {
		if *q.active {
			tx = tx.Where("mission_organizations.removed IS NULL")
		} else {
			tx = tx.Where("mission_organizations.removed IS NOT NULL")
		}
	}

	return tx
}

func (q *MissionOrgQuery) Get() []*model.MissionOrganization {
	return q.get(q.where().Model(&model.MissionOrganization{}))
}

func (q *MissionOrgQuery) One() *model.MissionOrganization {
	return q.one(q.where().Model(&model.MissionOrganization{}))
}

func (q *MissionOrgQuery) Update(updates map[string]any) error {
	return q.updateOrError(q.where().Model(&model.MissionOrganization{}), updates)
}
