package missions

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/assets"
	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/membership"
	"github.com/openrescue/sarcoord/internal/model"
	"github.com/openrescue/sarcoord/internal/timeline"
)

const (
	FilterAll    = "all"
	FilterActive = "active"
	FilterClosed = "closed"

	permAdminName   = "Admin"
	permAddOrgName  = "Add Organization"
	permAddUserName = "Add User"

	reasonClosed = "Mission closed"
)

var (
	createdMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sarcoord",
		Name:      "missions_created",
		Help:      "The total number of missions created",
	})

	closedMetric = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sarcoord",
		Name:      "missions_closed",
		Help:      "The total number of missions closed",
	})
)

// Manager owns the mission lifecycle and membership administration.
type Manager struct {
	logger   *slog.Logger
	resolver *membership.Resolver
	ledger   *assets.Ledger
	recorder *timeline.Recorder
}

func New(resolver *membership.Resolver, ledger *assets.Ledger, recorder *timeline.Recorder) *Manager {
	return &Manager{
		logger:   slog.Default().With("logger", "missions"),
		resolver: resolver,
		ledger:   ledger,
		recorder: recorder,
	}
}

// Create opens a new mission and makes the creator its first admin.
func (m *Manager) Create(db *gorm.DB, name, description, creator string) (*model.Mission, error) {
	if name == "" {
		return nil, model.ErrValidation
	}

	var mission *model.Mission

	err := m.recorder.Transaction(db, func(tx *gorm.DB) error {
		mission = &model.Mission{
			Name:        name,
			Description: description,
			Started:     time.Now(),
			Creator:     creator,
		}

		if err := tx.Create(mission).Error; err != nil {
			return err
		}

		mu := &model.MissionUser{
			MissionID: mission.ID,
			Username:  creator,
			Creator:   creator,
			Added:     time.Now(),
			PermAdmin: true,
		}

		if err := tx.Create(mu).Error; err != nil {
			return err
		}

		return m.recorder.RecordMissionCreate(tx, mission, creator)
	})

	if err != nil {
		return nil, err
	}

	createdMetric.Inc()
	m.logger.Info("mission created", slog.Uint64("id", uint64(mission.ID)), slog.String("name", name))

	return mission, nil
}

// Close ends a mission. Every still-attached asset gets a mission-closed
// command and a forced detach, all in one transaction with the close itself.
// Closing a closed mission is a no-op.
func (m *Manager) Close(db *gorm.DB, missionID uint, actor string) error {
	closed := false

	err := m.recorder.Transaction(db, func(tx *gorm.DB) error {
		mission := database.NewMissionQuery(tx).Id(missionID).One()
		if mission == nil {
			return model.ErrNotFound
		}

		if _, err := m.resolver.ResolveAdmin(tx, missionID, actor); err != nil {
			return err
		}

		if mission.IsClosed() {
			return nil
		}

		now := time.Now()

		if err := database.NewMissionQuery(tx).Id(missionID).Update(map[string]any{
			"closed":    now,
			"closed_by": actor,
		}); err != nil {
			return err
		}

		for _, attachment := range database.NewMissionAssetQuery(tx).Mission(missionID).Active(true).Get() {
			asset := database.NewAssetQuery(tx).Id(attachment.AssetID).One()
			if asset == nil {
				return model.ErrNotFound
			}

			if err := m.ledger.DetachTx(tx, attachment, asset, actor, reasonClosed); err != nil {
				return err
			}
		}

		closed = true

		return nil
	})

	if err == nil && closed {
		closedMetric.Inc()
	}

	return err
}

// ListForUser returns every mission the user can see, directly granted or
// reached through an organization, deduplicated preferring the direct grant's
// admin flag.
func (m *Manager) ListForUser(db *gorm.DB, username, filter string) []*model.MissionDTO {
	admin := make(map[uint]bool)

	for _, mu := range database.NewMissionUserQuery(db).Username(username).Get() {
		admin[mu.MissionID] = mu.IsAdmin()
	}

	if orgIDs := m.resolver.ActiveOrgIDs(db, username); len(orgIDs) > 0 {
		for _, link := range database.NewMissionOrgQuery(db).Organizations(orgIDs).Active(true).Get() {
			if _, ok := admin[link.MissionID]; !ok {
				admin[link.MissionID] = false
			}
		}
	}

	if len(admin) == 0 {
		return nil
	}

	ids := make([]uint, 0, len(admin))
	for id := range admin {
		ids = append(ids, id)
	}

	q := database.NewMissionQuery(db).Ids(ids)

	switch filter {
	case FilterActive:
		q = q.OnlyOpen()
	case FilterClosed:
		q = q.OnlyClosed()
	}

	missions := q.Get()
	result := make([]*model.MissionDTO, 0, len(missions))

	for _, mission := range missions {
		result = append(result, model.ToMissionDTO(mission, admin[mission.ID]))
	}

	return result
}

// Get returns the full mission view: permissions of the caller plus member,
// organization and asset sub-lists.
func (m *Manager) Get(db *gorm.DB, missionID uint, username string) (*model.MissionDetailsDTO, error) {
	mission := database.NewMissionQuery(db).Id(missionID).One()
	if mission == nil {
		return nil, model.ErrNotFound
	}

	mu, err := m.resolver.Resolve(db, missionID, username)
	if err != nil {
		return nil, err
	}

	details := &model.MissionDetailsDTO{
		MissionDTO: *model.ToMissionDTO(mission, mu.IsAdmin()),
		Permissions: model.PermissionsDTO{
			Admin:           mu.IsAdmin(),
			AddOrganization: mu.CanAddOrganization(),
			AddUser:         mu.CanAddUser(),
		},
	}

	for _, u := range database.NewMissionUserQuery(db).Mission(missionID).Get() {
		details.Users = append(details.Users, model.ToMissionUserDTO(u))
	}

	for _, link := range database.NewMissionOrgQuery(db).Mission(missionID).Active(true).Get() {
		name := ""
		if org := database.NewOrgQuery(db).Id(link.OrganizationID).One(); org != nil {
			name = org.Name
		}

		details.Organizations = append(details.Organizations, model.ToMissionOrganizationDTO(link, name))
	}

	details.Assets, err = m.ledger.List(db, missionID, username, false)
	if err != nil {
		return nil, err
	}

	return details, nil
}

// AddUser gives a user a direct membership with no permissions.
func (m *Manager) AddUser(db *gorm.DB, missionID uint, actor, username string) (*model.MissionUser, error) {
	if username == "" {
		return nil, model.ErrValidation
	}

	var mu *model.MissionUser

	err := m.recorder.Transaction(db, func(tx *gorm.DB) error {
		mission := database.NewMissionQuery(tx).Id(missionID).One()
		if mission == nil {
			return model.ErrNotFound
		}

		if _, err := m.resolver.ResolveCanAddUser(tx, missionID, actor); err != nil {
			return err
		}

		if mission.IsClosed() {
			return model.ErrConflict
		}

		if existing := database.NewMissionUserQuery(tx).Mission(missionID).Username(username).One(); existing != nil {
			return model.ErrConflict
		}

		mu = &model.MissionUser{
			MissionID: missionID,
			Username:  username,
			Creator:   actor,
			Added:     time.Now(),
		}

		if err := tx.Create(mu).Error; err != nil {
			return err
		}

		return m.recorder.RecordMissionUserAdd(tx, missionID, actor, username)
	})

	if err != nil {
		return nil, err
	}

	return mu, nil
}

// UpdateUserPermissions sets a direct member's permission bits. Admins only,
// and never on your own grant.
func (m *Manager) UpdateUserPermissions(db *gorm.DB, missionID uint, actor, username string, perms model.PermissionsDTO) (*model.MissionUser, error) {
	if actor == username {
		return nil, model.ErrForbidden
	}

	var mu *model.MissionUser

	err := m.recorder.Transaction(db, func(tx *gorm.DB) error {
		if _, err := m.resolver.ResolveAdmin(tx, missionID, actor); err != nil {
			return err
		}

		mu = database.NewMissionUserQuery(tx).Mission(missionID).Username(username).One()
		if mu == nil {
			return model.ErrNotFound
		}

		changes := []struct {
			name    string
			old     bool
			new     bool
			applyTo *bool
		}{
			{permAdminName, mu.PermAdmin, perms.Admin, &mu.PermAdmin},
			{permAddOrgName, mu.PermAddOrganization, perms.AddOrganization, &mu.PermAddOrganization},
			{permAddUserName, mu.PermAddUser, perms.AddUser, &mu.PermAddUser},
		}

		dirty := false

		for _, c := range changes {
			if c.old == c.new {
				continue
			}

			*c.applyTo = c.new
			dirty = true

			if err := m.recorder.RecordMissionUserUpdate(tx, missionID, actor, username, c.name, c.new); err != nil {
				return err
			}
		}

		if !dirty {
			return nil
		}

		return tx.Save(mu).Error
	})

	if err != nil {
		return nil, err
	}

	return mu, nil
}

// AddOrganization links an organization to the mission.
func (m *Manager) AddOrganization(db *gorm.DB, missionID uint, actor string, orgID uint, perms model.PermissionsDTO) (*model.MissionOrganization, error) {
	var link *model.MissionOrganization

	err := m.recorder.Transaction(db, func(tx *gorm.DB) error {
		mission := database.NewMissionQuery(tx).Id(missionID).One()
		if mission == nil {
			return model.ErrNotFound
		}

		if _, err := m.resolver.ResolveCanAddOrganization(tx, missionID, actor); err != nil {
			return err
		}

		if mission.IsClosed() {
			return model.ErrConflict
		}

		org := database.NewOrgQuery(tx).Id(orgID).One()
		if org == nil {
			return model.ErrNotFound
		}

		if existing := database.NewMissionOrgQuery(tx).Mission(missionID).Organization(orgID).Active(true).One(); existing != nil {
			return model.ErrConflict
		}

		link = &model.MissionOrganization{
			MissionID:           missionID,
			OrganizationID:      orgID,
			Creator:             actor,
			Added:               time.Now(),
			PermAddOrganization: perms.AddOrganization,
			PermAddUser:         perms.AddUser,
		}

		if err := tx.Create(link).Error; err != nil {
			return err
		}

		return m.recorder.RecordMissionOrganizationAdd(tx, missionID, actor, org.Name)
	})

	if err != nil {
		return nil, err
	}

	return link, nil
}

// UpdateOrganizationPermissions sets an active link's permission bits. The
// admin bit does not exist on organization links.
func (m *Manager) UpdateOrganizationPermissions(db *gorm.DB, missionID uint, actor string, orgID uint, perms model.PermissionsDTO) (*model.MissionOrganization, error) {
	var link *model.MissionOrganization

	err := m.recorder.Transaction(db, func(tx *gorm.DB) error {
		if _, err := m.resolver.ResolveAdmin(tx, missionID, actor); err != nil {
			return err
		}

		org := database.NewOrgQuery(tx).Id(orgID).One()
		if org == nil {
			return model.ErrNotFound
		}

		link = database.NewMissionOrgQuery(tx).Mission(missionID).Organization(orgID).Active(true).One()
		if link == nil {
			return model.ErrNotFound
		}

		changes := []struct {
			name    string
			old     bool
			new     bool
			applyTo *bool
		}{
			{permAddOrgName, link.PermAddOrganization, perms.AddOrganization, &link.PermAddOrganization},
			{permAddUserName, link.PermAddUser, perms.AddUser, &link.PermAddUser},
		}

		dirty := false

		for _, c := range changes {
			if c.old == c.new {
				continue
			}

			*c.applyTo = c.new
			dirty = true

			if err := m.recorder.RecordMissionOrganizationUpdate(tx, missionID, actor, org.Name, c.name, c.new); err != nil {
				return err
			}
		}

		if !dirty {
			return nil
		}

		return tx.Save(link).Error
	})

	if err != nil {
		return nil, err
	}

	return link, nil
}

// RemoveOrganization soft-deletes the active link.
func (m *Manager) RemoveOrganization(db *gorm.DB, missionID uint, actor string, orgID uint) error {
	return m.recorder.Transaction(db, func(tx *gorm.DB) error {
		if _, err := m.resolver.ResolveAdmin(tx, missionID, actor); err != nil {
			return err
		}

		org := database.NewOrgQuery(tx).Id(orgID).One()
		if org == nil {
			return model.ErrNotFound
		}

		link := database.NewMissionOrgQuery(tx).Mission(missionID).Organization(orgID).Active(true).One()
		if link == nil {
			return model.ErrNotFound
		}

		now := time.Now()

		if err := database.NewMissionOrgQuery(tx).Mission(missionID).Organization(orgID).Active(true).Update(map[string]any{
			"remover": actor,
			"removed": now,
		}); err != nil {
			return err
		}

		return m.recorder.RecordMissionOrganizationRemove(tx, missionID, actor, org.Name)
	})
}

// AddTimelineEntry appends a user-authored note to the mission timeline.
func (m *Manager) AddTimelineEntry(db *gorm.DB, missionID uint, actor, message, url string) error {
	if message == "" {
		return model.ErrValidation
	}

	return m.recorder.Transaction(db, func(tx *gorm.DB) error {
		if _, err := m.resolver.Resolve(tx, missionID, actor); err != nil {
			return err
		}

		return m.recorder.RecordCustom(tx, missionID, actor, message, url)
	})
}

// Timeline returns the mission's audit log in chronological order.
func (m *Manager) Timeline(db *gorm.DB, missionID uint, actor string) ([]*model.TimelineEntry, error) {
	if _, err := m.resolver.Resolve(db, missionID, actor); err != nil {
		return nil, err
	}

	return m.recorder.List(db, missionID), nil
}
