package assets

import (
	"log/slog"
	"time"

	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/commands"
	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/membership"
	"github.com/openrescue/sarcoord/internal/model"
	"github.com/openrescue/sarcoord/internal/timeline"
)

const (
	reasonAdded   = "Added to mission"
	reasonRemoved = "Removed from Mission"
)

// Ledger tracks which asset is attached to which mission. An asset has at
// most one active attachment across all missions; everything else is history.
type Ledger struct {
	logger   *slog.Logger
	resolver *membership.Resolver
	engine   *commands.Engine
	recorder *timeline.Recorder
}

func New(resolver *membership.Resolver, engine *commands.Engine, recorder *timeline.Recorder) *Ledger {
	return &Ledger{
		logger:   slog.Default().With("logger", "assets"),
		resolver: resolver,
		engine:   engine,
		recorder: recorder,
	}
}

// Attach puts an asset under a mission's control. The active-attachment check
// and the insert run in one transaction so two concurrent attaches of the
// same asset cannot both succeed. The asset gets an initial continue command
// so its command stream always starts from a known directive.
func (l *Ledger) Attach(db *gorm.DB, missionID, assetID uint, actor string) (*model.MissionAsset, error) {
	var attachment *model.MissionAsset

	err := l.recorder.Transaction(db, func(tx *gorm.DB) error {
		mission := database.NewMissionQuery(tx).Id(missionID).One()
		if mission == nil {
			return model.ErrNotFound
		}

		if _, err := l.resolver.Resolve(tx, missionID, actor); err != nil {
			return err
		}

		if mission.IsClosed() {
			return model.ErrConflict
		}

		asset := database.NewAssetQuery(tx).Id(assetID).One()
		if asset == nil {
			return model.ErrNotFound
		}

		if database.NewMissionAssetQuery(tx).Asset(assetID).Active(true).Count() > 0 {
			return model.ErrConflict
		}

		attachment = &model.MissionAsset{
			MissionID: missionID,
			AssetID:   assetID,
			Creator:   actor,
			Added:     time.Now(),
		}

		if err := tx.Create(attachment).Error; err != nil {
			return err
		}

		if err := l.recorder.RecordMissionAssetAdd(tx, missionID, actor, asset.Name); err != nil {
			return err
		}

		_, err := l.engine.IssueSystemTx(tx, asset, actor, model.CommandContinue, reasonAdded, &missionID)

		return err
	})

	if err != nil {
		return nil, err
	}

	return attachment, nil
}

// Detach releases an asset from a mission. Allowed for mission admins, the
// asset's owner, and members of organizations holding delegated access to
// the asset.
func (l *Ledger) Detach(db *gorm.DB, missionID, assetID uint, actor string) error {
	return l.recorder.Transaction(db, func(tx *gorm.DB) error {
		mu, err := l.resolver.Resolve(tx, missionID, actor)
		if err != nil {
			return err
		}

		asset := database.NewAssetQuery(tx).Id(assetID).One()
		if asset == nil {
			return model.ErrNotFound
		}

		if !l.canActOnAsset(tx, mu, asset, actor) {
			return model.ErrForbidden
		}

		attachment := database.NewMissionAssetQuery(tx).Mission(missionID).Asset(assetID).Active(true).One()
		if attachment == nil {
			return model.ErrNotFound
		}

		return l.DetachTx(tx, attachment, asset, actor, reasonRemoved)
	})
}

// DetachTx force-detaches an attachment inside the caller's transaction. The
// mission-close cascade uses it directly, permission checks are the caller's
// problem.
func (l *Ledger) DetachTx(tx *gorm.DB, attachment *model.MissionAsset, asset *model.Asset, actor, reason string) error {
	now := time.Now()

	if err := database.NewMissionAssetQuery(tx).Id(attachment.ID).Active(true).Update(map[string]any{
		"remover": actor,
		"removed": now,
	}); err != nil {
		return err
	}

	if err := l.recorder.RecordMissionAssetRemove(tx, attachment.MissionID, actor, asset.Name); err != nil {
		return err
	}

	missionID := attachment.MissionID
	_, err := l.engine.IssueSystemTx(tx, asset, actor, model.CommandMissionClosed, reason, &missionID)

	return err
}

// CurrentForAsset returns the asset's single active attachment, or nil.
func (l *Ledger) CurrentForAsset(db *gorm.DB, assetID uint) *model.MissionAsset {
	return database.NewMissionAssetQuery(db).Asset(assetID).Active(true).One()
}

// List returns the mission's assets with their current status, active
// attachments only unless includeRemoved is set.
func (l *Ledger) List(db *gorm.DB, missionID uint, actor string, includeRemoved bool) ([]*model.MissionAssetDTO, error) {
	if _, err := l.resolver.Resolve(db, missionID, actor); err != nil {
		return nil, err
	}

	q := database.NewMissionAssetQuery(db).Mission(missionID)
	if !includeRemoved {
		q = q.Active(true)
	}

	attachments := q.Get()
	result := make([]*model.MissionAssetDTO, 0, len(attachments))

	for _, a := range attachments {
		asset := database.NewAssetQuery(db).Id(a.AssetID).One()
		if asset == nil {
			continue
		}

		dto := &model.MissionAssetDTO{
			AssetID: asset.ID,
			Name:    asset.Name,
			Owner:   asset.Owner,
			Added:   a.Added,
			Removed: a.Removed,
			Status:  model.ToAssetStatusDTO(database.NewStatusQuery(db).MissionAsset(a.ID).One(), asset.ID),
		}

		if at := database.NewAssetTypeQuery(db).Id(asset.AssetTypeID).One(); at != nil {
			dto.Type = at.Name
		}

		result = append(result, dto)
	}

	return result, nil
}

// SetStatus appends a status observation for an attached asset. Gated like
// detach: admin, owner or organization delegate.
func (l *Ledger) SetStatus(db *gorm.DB, missionID, assetID uint, actor, value, notes string) (*model.MissionAssetStatus, error) {
	var status *model.MissionAssetStatus

	err := l.recorder.Transaction(db, func(tx *gorm.DB) error {
		mu, err := l.resolver.Resolve(tx, missionID, actor)
		if err != nil {
			return err
		}

		asset := database.NewAssetQuery(tx).Id(assetID).One()
		if asset == nil {
			return model.ErrNotFound
		}

		if !l.canActOnAsset(tx, mu, asset, actor) {
			return model.ErrForbidden
		}

		attachment := database.NewMissionAssetQuery(tx).Mission(missionID).Asset(assetID).Active(true).One()
		if attachment == nil {
			return model.ErrNotFound
		}

		sv := database.NewStatusValueQuery(tx).Name(value).One()
		if sv == nil {
			return model.ErrValidation
		}

		status = &model.MissionAssetStatus{
			MissionAssetID: attachment.ID,
			ValueID:        sv.ID,
			Value:          sv.Name,
			Since:          time.Now(),
			Notes:          notes,
		}

		if err := tx.Create(status).Error; err != nil {
			return err
		}

		return l.recorder.RecordMissionAssetStatus(tx, missionID, actor, asset.Name, sv.Name)
	})

	if err != nil {
		return nil, err
	}

	return status, nil
}

// CurrentStatus returns the latest status observation for an asset's active
// attachment in the mission.
func (l *Ledger) CurrentStatus(db *gorm.DB, missionID, assetID uint, actor string) (*model.MissionAssetStatus, error) {
	if _, err := l.resolver.Resolve(db, missionID, actor); err != nil {
		return nil, err
	}

	attachment := database.NewMissionAssetQuery(db).Mission(missionID).Asset(assetID).Active(true).One()
	if attachment == nil {
		return nil, model.ErrNotFound
	}

	return database.NewStatusQuery(db).MissionAsset(attachment.ID).One(), nil
}

// StatusValues lists the status vocabulary.
func (l *Ledger) StatusValues(db *gorm.DB) []*model.AssetStatusValue {
	return database.NewStatusValueQuery(db).Get()
}

func (l *Ledger) canActOnAsset(tx *gorm.DB, mu *model.MissionUser, asset *model.Asset, actor string) bool {
	if mu.IsAdmin() || asset.Owner == actor {
		return true
	}

	orgIDs := l.resolver.ActiveOrgIDs(tx, actor)
	if len(orgIDs) == 0 {
		return false
	}

	return database.NewOrgAssetQuery(tx).Asset(asset.ID).Organizations(orgIDs).Active(true).Count() > 0
}
