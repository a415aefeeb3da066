package commands

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/model"
	"github.com/openrescue/sarcoord/internal/timeline"
)

var (
	issuedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sarcoord",
		Name:      "commands_issued",
		Help:      "The total number of commands issued to assets",
	}, []string{"command"})

	answeredMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sarcoord",
		Name:      "commands_acknowledged",
		Help:      "The total number of command acknowledgements",
	}, []string{"command"})
)

// Engine issues commands to assets and records their acknowledgement. An
// asset has at most one directive in effect: the newest command by
// (issued_at, id) wins, acknowledged or not.
type Engine struct {
	logger   *slog.Logger
	recorder *timeline.Recorder
}

func New(recorder *timeline.Recorder) *Engine {
	return &Engine{
		logger:   slog.Default().With("logger", "commands"),
		recorder: recorder,
	}
}

// IssueTx validates and writes a new unanswered command with its timeline
// entry. It runs inside the caller's transaction so attach, detach and close
// cascades stay atomic with the commands they generate. Validation happens
// before any write.
func (e *Engine) IssueTx(tx *gorm.DB, asset *model.Asset, issuer, code, reason string, missionID *uint, latStr, lonStr string) (*model.AssetCommand, error) {
	return e.issueTx(tx, asset, issuer, code, reason, missionID, latStr, lonStr, true)
}

// IssueSystemTx writes a cascade-generated command without a timeline entry
// of its own. The cascade's entry covers it; the audit log carries one entry
// per mutation, not one per side effect.
func (e *Engine) IssueSystemTx(tx *gorm.DB, asset *model.Asset, issuer, code, reason string, missionID *uint) (*model.AssetCommand, error) {
	return e.issueTx(tx, asset, issuer, code, reason, missionID, "", "", false)
}

func (e *Engine) issueTx(tx *gorm.DB, asset *model.Asset, issuer, code, reason string, missionID *uint, latStr, lonStr string, record bool) (*model.AssetCommand, error) {
	if !model.ValidCommand(code) {
		return nil, model.ErrValidation
	}

	cmd := &model.AssetCommand{
		AssetID:  asset.ID,
		IssuedBy: issuer,
		IssuedAt: time.Now(),
		Command:  code,
		Reason:   reason,
	}

	if missionID != nil && *missionID != 0 {
		cmd.MissionID = missionID
	}

	if model.CommandNeedsPosition(code) {
		lat, lon, err := model.ParseLatLon(latStr, lonStr)
		if err != nil {
			return nil, err
		}

		cmd.Lat = &lat
		cmd.Lon = &lon
	}

	if err := tx.Create(cmd).Error; err != nil {
		return nil, err
	}

	if record && cmd.MissionID != nil {
		if err := e.recorder.RecordAssetCommandSent(tx, *cmd.MissionID, issuer, asset.Name, cmd); err != nil {
			return nil, err
		}
	}

	issuedMetric.WithLabelValues(code).Inc()
	e.logger.Info("command issued", slog.String("command", code), slog.String("asset", asset.Name), slog.String("by", issuer))

	return cmd, nil
}

// Issue is the standalone entry point for operator-issued commands.
func (e *Engine) Issue(db *gorm.DB, assetID uint, issuer, code, reason string, missionID *uint, latStr, lonStr string) (*model.AssetCommand, error) {
	var cmd *model.AssetCommand

	err := e.recorder.Transaction(db, func(tx *gorm.DB) error {
		asset := database.NewAssetQuery(tx).Id(assetID).One()
		if asset == nil {
			return model.ErrNotFound
		}

		var err error
		cmd, err = e.IssueTx(tx, asset, issuer, code, reason, missionID, latStr, lonStr)

		return err
	})

	if err != nil {
		return nil, err
	}

	return cmd, nil
}

// Acknowledge records an asset operator's response. A command is answered at
// most once; the check and the write share one transaction so two concurrent
// calls cannot both succeed.
func (e *Engine) Acknowledge(db *gorm.DB, commandID uint, responder, responseType, responseMessage string) (*model.AssetCommand, error) {
	if responseType == "" {
		return nil, model.ErrValidation
	}

	var cmd *model.AssetCommand

	err := e.recorder.Transaction(db, func(tx *gorm.DB) error {
		cmd = database.NewCommandQuery(tx).Id(commandID).One()
		if cmd == nil {
			return model.ErrNotFound
		}

		if cmd.Responded() {
			return model.ErrConflict
		}

		now := time.Now()
		cmd.RespondedBy = responder
		cmd.RespondedAt = &now
		cmd.ResponseType = responseType
		cmd.ResponseMessage = responseMessage

		if err := tx.Save(cmd).Error; err != nil {
			return err
		}

		if cmd.MissionID != nil {
			asset := database.NewAssetQuery(tx).Id(cmd.AssetID).One()
			if asset == nil {
				return model.ErrNotFound
			}

			return e.recorder.RecordAssetCommandResponse(tx, *cmd.MissionID, responder, asset.Name, cmd)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	answeredMetric.WithLabelValues(cmd.Command).Inc()

	return cmd, nil
}

// LastForAsset returns the command currently in effect for the asset,
// answered or not, or nil if none was ever issued.
func (e *Engine) LastForAsset(db *gorm.DB, assetID uint) *model.AssetCommand {
	return database.NewCommandQuery(db).Asset(assetID).One()
}

// History lists an asset's commands, newest first.
func (e *Engine) History(db *gorm.DB, assetID uint) []*model.AssetCommand {
	return database.NewCommandQuery(db).Asset(assetID).Get()
}
