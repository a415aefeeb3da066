package database

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/model"
)

type DatabaseManager struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB) *DatabaseManager {
	m := &DatabaseManager{
		db:     db,
		logger: slog.Default().With("logger", "dbm"),
	}

	return m
}

func (mm *DatabaseManager) DB() *gorm.DB {
	if mm == nil {
		return nil
	}

	return mm.db
}

func (mm *DatabaseManager) Create(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Create(s).Error

	if err != nil {
		mm.logger.Error("error create object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) Save(s any) error {
	if mm == nil || mm.db == nil {
		return nil
	}

	err := mm.db.Save(s).Error

	if err != nil {
		mm.logger.Error("error saving object", slog.Any("error", err))
	}

	return err
}

func (mm *DatabaseManager) MissionQuery() *MissionQuery {
	return NewMissionQuery(mm.db)
}

func (mm *DatabaseManager) MissionUserQuery() *MissionUserQuery {
	return NewMissionUserQuery(mm.db)
}

func (mm *DatabaseManager) MissionOrgQuery() *MissionOrgQuery {
	return NewMissionOrgQuery(mm.db)
}

func (mm *DatabaseManager) MissionAssetQuery() *MissionAssetQuery {
	return NewMissionAssetQuery(mm.db)
}

func (mm *DatabaseManager) AssetQuery() *AssetQuery {
	return NewAssetQuery(mm.db)
}

func (mm *DatabaseManager) AssetTypeQuery() *AssetTypeQuery {
	return NewAssetTypeQuery(mm.db)
}

func (mm *DatabaseManager) StatusQuery() *StatusQuery {
	return NewStatusQuery(mm.db)
}

func (mm *DatabaseManager) StatusValueQuery() *StatusValueQuery {
	return NewStatusValueQuery(mm.db)
}

func (mm *DatabaseManager) CommandQuery() *CommandQuery {
	return NewCommandQuery(mm.db)
}

func (mm *DatabaseManager) PositionQuery() *PositionQuery {
	return NewPositionQuery(mm.db)
}

func (mm *DatabaseManager) TimelineQuery() *TimelineQuery {
	return NewTimelineQuery(mm.db)
}

func (mm *DatabaseManager) OrgQuery() *OrgQuery {
	return NewOrgQuery(mm.db)
}

func (mm *DatabaseManager) OrgMemberQuery() *OrgMemberQuery {
	return NewOrgMemberQuery(mm.db)
}

func (mm *DatabaseManager) OrgAssetQuery() *OrgAssetQuery {
	return NewOrgAssetQuery(mm.db)
}

func (mm *DatabaseManager) Migrate() error {
	if mm == nil || mm.db == nil {
		return fmt.Errorf("no database")
	}

	if err := mm.db.AutoMigrate(
		&model.Mission{},
		&model.MissionUser{},
		&model.MissionOrganization{},
		&model.MissionAsset{},
		&model.MissionAssetStatus{},
		&model.AssetStatusValue{},
		&model.AssetType{},
		&model.Asset{},
		&model.AssetCommand{},
		&model.AssetPosition{},
		&model.Organization{},
		&model.OrganizationMember{},
		&model.OrganizationAsset{},
		&model.TimelineEntry{},
	); err != nil {
		return err
	}

	return nil
}

// AddDefaults seeds the asset status vocabulary on first start.
func (mm *DatabaseManager) AddDefaults() {
	if mm.StatusValueQuery().Count() == 0 {
		for _, v := range []*model.AssetStatusValue{
			{Name: "operational", Description: "Asset is available and operating normally"},
			{Name: "en-route", Description: "Asset is travelling to its tasking"},
			{Name: "on-scene", Description: "Asset has arrived at its tasking"},
			{Name: "returning", Description: "Asset is returning to base"},
			{Name: "inoperative", Description: "Asset is unavailable for tasking"},
		} {
			if err := mm.Create(v); err != nil {
				mm.logger.Error("error seeding status value", slog.Any("error", err))
			}
		}
	}
}
