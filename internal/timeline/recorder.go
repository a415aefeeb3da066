package timeline

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kdudkov/goutils/callback"
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/model"
)

// Recorder appends audit entries to a mission's timeline. Record must be
// called with the same transaction handle as the mutation it documents, so a
// rolled-back mutation never leaves an orphan entry. Entries recorded inside
// a Transaction are held back and published to live subscribers only after
// the commit.
type Recorder struct {
	logger  *slog.Logger
	cb      *callback.Callback[*model.TimelineEntry]
	mu      sync.Mutex
	pending map[*gorm.DB][]*model.TimelineEntry
}

func New() *Recorder {
	return &Recorder{
		logger:  slog.Default().With("logger", "timeline"),
		cb:      callback.New[*model.TimelineEntry](),
		pending: make(map[*gorm.DB][]*model.TimelineEntry),
	}
}

// EntryCallback is the fan-out point for live timeline subscribers.
func (r *Recorder) EntryCallback() *callback.Callback[*model.TimelineEntry] {
	return r.cb
}

// Transaction runs fn in a database transaction. Entries recorded against
// the transaction handle are collected and published after the commit; a
// rollback discards them unpublished.
func (r *Recorder) Transaction(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	var entries []*model.TimelineEntry

	err := db.Transaction(func(tx *gorm.DB) error {
		r.mu.Lock()
		r.pending[tx] = nil
		r.mu.Unlock()

		defer func() {
			r.mu.Lock()
			entries = r.pending[tx]
			delete(r.pending, tx)
			r.mu.Unlock()
		}()

		return fn(tx)
	})

	if err != nil {
		return err
	}

	for _, e := range entries {
		r.cb.AddMessage(e)
	}

	return nil
}

func (r *Recorder) Record(tx *gorm.DB, missionID uint, username, eventType, message, url string) error {
	entry := &model.TimelineEntry{
		MissionID: missionID,
		Username:  username,
		EventType: eventType,
		Message:   message,
		URL:       url,
		Timestamp: time.Now(),
	}

	if err := tx.Create(entry).Error; err != nil {
		return err
	}

	r.mu.Lock()
	if _, ok := r.pending[tx]; ok {
		r.pending[tx] = append(r.pending[tx], entry)
		r.mu.Unlock()

		return nil
	}
	r.mu.Unlock()

	r.cb.AddMessage(entry)

	return nil
}

// RecordCustom adds a user-authored free text entry.
func (r *Recorder) RecordCustom(tx *gorm.DB, missionID uint, username, message, url string) error {
	return r.Record(tx, missionID, username, model.EventUser, message, url)
}

func (r *Recorder) RecordMissionCreate(tx *gorm.DB, mission *model.Mission, username string) error {
	msg := fmt.Sprintf("%s Created Mission (%d): %s", username, mission.ID, mission.Name)

	return r.Record(tx, mission.ID, username, model.EventAdd, msg, "")
}

func (r *Recorder) RecordMissionUserAdd(tx *gorm.DB, missionID uint, actor, user string) error {
	msg := fmt.Sprintf("%s Added %s to Mission %d", actor, user, missionID)

	return r.Record(tx, missionID, actor, model.EventUserAdd, msg, "")
}

func (r *Recorder) RecordMissionUserUpdate(tx *gorm.DB, missionID uint, actor, user, permission string, value bool) error {
	msg := fmt.Sprintf("%s %s %s %s %s in Mission %d",
		actor, grantWord(value), permission, direction(value), user, missionID)

	return r.Record(tx, missionID, actor, model.EventUserUpdate, msg, "")
}

func (r *Recorder) RecordMissionOrganizationAdd(tx *gorm.DB, missionID uint, actor, org string) error {
	msg := fmt.Sprintf("%s Added %s to Mission %d", actor, org, missionID)

	return r.Record(tx, missionID, actor, model.EventOrgAdd, msg, "")
}

func (r *Recorder) RecordMissionOrganizationUpdate(tx *gorm.DB, missionID uint, actor, org, permission string, value bool) error {
	msg := fmt.Sprintf("%s %s %s %s %s in Mission %d",
		actor, grantWord(value), permission, direction(value), org, missionID)

	return r.Record(tx, missionID, actor, model.EventOrgUpdate, msg, "")
}

func (r *Recorder) RecordMissionOrganizationRemove(tx *gorm.DB, missionID uint, actor, org string) error {
	msg := fmt.Sprintf("%s Removed %s from Mission %d", actor, org, missionID)

	return r.Record(tx, missionID, actor, model.EventOrgRemove, msg, "")
}

func (r *Recorder) RecordMissionAssetAdd(tx *gorm.DB, missionID uint, actor, asset string) error {
	msg := fmt.Sprintf("%s Added Asset %s to Mission %d", actor, asset, missionID)

	return r.Record(tx, missionID, actor, model.EventAssetAdd, msg, "")
}

func (r *Recorder) RecordMissionAssetRemove(tx *gorm.DB, missionID uint, actor, asset string) error {
	msg := fmt.Sprintf("%s Removed Asset %s from Mission %d", actor, asset, missionID)

	return r.Record(tx, missionID, actor, model.EventAssetRemove, msg, "")
}

func (r *Recorder) RecordMissionAssetStatus(tx *gorm.DB, missionID uint, actor, asset, status string) error {
	msg := fmt.Sprintf("%s set the status for %s in mission %d to %s", actor, asset, missionID, status)

	return r.Record(tx, missionID, actor, model.EventAssetStatus, msg, "")
}

func (r *Recorder) RecordAssetCommandSent(tx *gorm.DB, missionID uint, actor, asset string, cmd *model.AssetCommand) error {
	msg := fmt.Sprintf("%s sent %s in mission %d: %s, with message %s",
		actor, asset, missionID, model.CommandName(cmd.Command), cmd.Reason)

	if cmd.HasPosition() {
		msg = fmt.Sprintf("%s (%.4f, %.4f)", msg, *cmd.Lat, *cmd.Lon)
	}

	return r.Record(tx, missionID, actor, model.EventAssetCommand, msg, "")
}

func (r *Recorder) RecordAssetCommandResponse(tx *gorm.DB, missionID uint, actor, asset string, cmd *model.AssetCommand) error {
	msg := fmt.Sprintf("%s (by %s) in mission %d replied to %s with %s: %s",
		asset, actor, missionID, model.CommandName(cmd.Command), cmd.ResponseType, cmd.ResponseMessage)

	return r.Record(tx, missionID, actor, model.EventAssetCommandAnswer, msg, "")
}

// List returns a mission's timeline in chronological order.
func (r *Recorder) List(db *gorm.DB, missionID uint) []*model.TimelineEntry {
	return database.NewTimelineQuery(db).Mission(missionID).Get()
}

func grantWord(value bool) string {
	if value {
		return "Granted"
	}

	return "Removed"
}

func direction(value bool) string {
	if value {
		return "to"
	}

	return "from"
}
