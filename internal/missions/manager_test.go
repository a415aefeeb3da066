package missions

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openrescue/sarcoord/internal/assets"
	"github.com/openrescue/sarcoord/internal/commands"
	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/membership"
	"github.com/openrescue/sarcoord/internal/model"
	"github.com/openrescue/sarcoord/internal/timeline"
)

func prepare() (*database.DatabaseManager, *Manager, *assets.Ledger, *commands.Engine) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		panic("failed to connect database")
	}

	dbm := database.New(db)
	if err := dbm.Migrate(); err != nil {
		panic(err)
	}

	dbm.AddDefaults()

	rec := timeline.New()
	eng := commands.New(rec)
	res := membership.New()
	ledger := assets.New(res, eng, rec)

	return dbm, New(res, ledger, rec), ledger, eng
}

func TestCreate(t *testing.T) {
	dbm, m, _, _ := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "night search", "boss")
	require.NoError(t, err)
	assert.False(t, mission.IsClosed())

	// creator becomes admin
	mu := dbm.MissionUserQuery().Mission(mission.ID).Username("boss").One()
	require.NotNil(t, mu)
	assert.True(t, mu.IsAdmin())

	assert.EqualValues(t, 1, dbm.TimelineQuery().Mission(mission.ID).EventType(model.EventAdd).Count())

	_, err = m.Create(dbm.DB(), "", "", "boss")
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestCloseCascade(t *testing.T) {
	dbm, m, ledger, eng := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "", "boss")
	require.NoError(t, err)

	require.NoError(t, dbm.Create(&model.AssetType{Name: "boat"}))
	require.NoError(t, dbm.Create(&model.Asset{Name: "rescue-1", AssetTypeID: 1, Owner: "skipper"}))
	require.NoError(t, dbm.Create(&model.Asset{Name: "rescue-2", AssetTypeID: 1, Owner: "skipper"}))

	_, err = ledger.Attach(dbm.DB(), mission.ID, 1, "boss")
	require.NoError(t, err)
	_, err = ledger.Attach(dbm.DB(), mission.ID, 2, "boss")
	require.NoError(t, err)

	beforeClose := dbm.TimelineQuery().Mission(mission.ID).Count()

	require.NoError(t, m.Close(dbm.DB(), mission.ID, "boss"))

	stored := dbm.MissionQuery().Id(mission.ID).One()
	require.True(t, stored.IsClosed())
	assert.Equal(t, "boss", stored.ClosedBy)

	// every attached asset got detached and told to return to base
	assert.EqualValues(t, 0, dbm.MissionAssetQuery().Mission(mission.ID).Active(true).Count())

	for _, assetID := range []uint{1, 2} {
		last := eng.LastForAsset(dbm.DB(), assetID)
		require.NotNil(t, last)
		assert.Equal(t, model.CommandMissionClosed, last.Command)
		assert.Equal(t, "Mission closed", last.Reason)
	}

	assert.EqualValues(t, 2, dbm.TimelineQuery().Mission(mission.ID).EventType(model.EventAssetRemove).Count())

	// exactly one entry per detached asset, the system commands stay silent
	assert.Equal(t, beforeClose+2, dbm.TimelineQuery().Mission(mission.ID).Count())
	assert.EqualValues(t, 0, dbm.TimelineQuery().Mission(mission.ID).EventType(model.EventAssetCommand).Count())

	// closing again is a no-op and leaves the timeline untouched
	before := dbm.TimelineQuery().Mission(mission.ID).Count()
	require.NoError(t, m.Close(dbm.DB(), mission.ID, "boss"))
	assert.Equal(t, before, dbm.TimelineQuery().Mission(mission.ID).Count())
}

func TestClosePermissions(t *testing.T) {
	dbm, m, _, _ := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "", "alice")
	require.NoError(t, err)

	_, err = m.AddUser(dbm.DB(), mission.ID, "alice", "bob")
	require.NoError(t, err)

	err = m.Close(dbm.DB(), mission.ID, "bob")
	assert.ErrorIs(t, err, model.ErrForbidden)

	err = m.Close(dbm.DB(), mission.ID, "stranger")
	assert.ErrorIs(t, err, model.ErrNotFound)

	err = m.Close(dbm.DB(), 99, "alice")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestAddUser(t *testing.T) {
	dbm, m, _, _ := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "", "boss")
	require.NoError(t, err)

	mu, err := m.AddUser(dbm.DB(), mission.ID, "boss", "helper")
	require.NoError(t, err)
	assert.False(t, mu.IsAdmin())
	assert.False(t, mu.CanAddUser())

	// duplicate membership
	_, err = m.AddUser(dbm.DB(), mission.ID, "boss", "helper")
	assert.ErrorIs(t, err, model.ErrConflict)

	// plain member may not add users
	_, err = m.AddUser(dbm.DB(), mission.ID, "helper", "third")
	assert.ErrorIs(t, err, model.ErrForbidden)

	// but a member with the add-user bit may
	_, err = m.UpdateUserPermissions(dbm.DB(), mission.ID, "boss", "helper", model.PermissionsDTO{AddUser: true})
	require.NoError(t, err)

	_, err = m.AddUser(dbm.DB(), mission.ID, "helper", "third")
	assert.NoError(t, err)
}

func TestUpdateUserPermissions(t *testing.T) {
	dbm, m, _, _ := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "", "boss")
	require.NoError(t, err)

	_, err = m.AddUser(dbm.DB(), mission.ID, "boss", "helper")
	require.NoError(t, err)

	mu, err := m.UpdateUserPermissions(dbm.DB(), mission.ID, "boss", "helper", model.PermissionsDTO{Admin: true})
	require.NoError(t, err)
	assert.True(t, mu.IsAdmin())
	assert.True(t, mu.CanAddUser())

	// one timeline entry per changed bit
	assert.EqualValues(t, 1, dbm.TimelineQuery().Mission(mission.ID).EventType(model.EventUserUpdate).Count())

	// no admin may touch their own grant
	_, err = m.UpdateUserPermissions(dbm.DB(), mission.ID, "boss", "boss", model.PermissionsDTO{})
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = m.UpdateUserPermissions(dbm.DB(), mission.ID, "boss", "nobody", model.PermissionsDTO{Admin: true})
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestOrganizations(t *testing.T) {
	dbm, m, _, _ := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "", "boss")
	require.NoError(t, err)

	require.NoError(t, dbm.Create(&model.Organization{Name: "coastguard", Creator: "boss", Created: time.Now()}))
	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 1, Username: "sailor", Added: time.Now()}))

	link, err := m.AddOrganization(dbm.DB(), mission.ID, "boss", 1, model.PermissionsDTO{AddUser: true})
	require.NoError(t, err)
	assert.True(t, link.Active())

	_, err = m.AddOrganization(dbm.DB(), mission.ID, "boss", 1, model.PermissionsDTO{})
	assert.ErrorIs(t, err, model.ErrConflict)

	_, err = m.AddOrganization(dbm.DB(), mission.ID, "boss", 99, model.PermissionsDTO{})
	assert.ErrorIs(t, err, model.ErrNotFound)

	// sailor reaches the mission through the link
	missions := m.ListForUser(dbm.DB(), "sailor", FilterAll)
	require.Len(t, missions, 1)
	assert.False(t, missions[0].Admin)

	_, err = m.UpdateOrganizationPermissions(dbm.DB(), mission.ID, "boss", 1, model.PermissionsDTO{AddUser: true, AddOrganization: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, dbm.TimelineQuery().Mission(mission.ID).EventType(model.EventOrgUpdate).Count())

	require.NoError(t, m.RemoveOrganization(dbm.DB(), mission.ID, "boss", 1))

	// link is history now
	assert.Empty(t, m.ListForUser(dbm.DB(), "sailor", FilterAll))

	err = m.RemoveOrganization(dbm.DB(), mission.ID, "boss", 1)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestListForUser(t *testing.T) {
	dbm, m, _, _ := prepare()

	m1, err := m.Create(dbm.DB(), "Alpha", "", "boss")
	require.NoError(t, err)
	m2, err := m.Create(dbm.DB(), "Bravo", "", "boss")
	require.NoError(t, err)
	_, err = m.Create(dbm.DB(), "Other", "", "someone")
	require.NoError(t, err)

	require.NoError(t, dbm.Create(&model.Organization{Name: "coastguard", Creator: "boss", Created: time.Now()}))
	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 1, Username: "boss", Added: time.Now()}))

	// boss is direct admin of m1 and reaches m1 via the org too - the direct
	// admin flag must win the dedup
	_, err = m.AddOrganization(dbm.DB(), m1.ID, "boss", 1, model.PermissionsDTO{})
	require.NoError(t, err)

	all := m.ListForUser(dbm.DB(), "boss", FilterAll)
	require.Len(t, all, 2)

	for _, dto := range all {
		assert.True(t, dto.Admin)
	}

	require.NoError(t, m.Close(dbm.DB(), m2.ID, "boss"))

	active := m.ListForUser(dbm.DB(), "boss", FilterActive)
	require.Len(t, active, 1)
	assert.Equal(t, m1.ID, active[0].ID)

	closed := m.ListForUser(dbm.DB(), "boss", FilterClosed)
	require.Len(t, closed, 1)
	assert.Equal(t, m2.ID, closed[0].ID)

	assert.Empty(t, m.ListForUser(dbm.DB(), "stranger", FilterAll))
}

func TestGetDetails(t *testing.T) {
	dbm, m, ledger, _ := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "big search", "boss")
	require.NoError(t, err)

	_, err = m.AddUser(dbm.DB(), mission.ID, "boss", "helper")
	require.NoError(t, err)

	require.NoError(t, dbm.Create(&model.Organization{Name: "coastguard", Creator: "boss", Created: time.Now()}))
	_, err = m.AddOrganization(dbm.DB(), mission.ID, "boss", 1, model.PermissionsDTO{})
	require.NoError(t, err)

	require.NoError(t, dbm.Create(&model.AssetType{Name: "boat"}))
	require.NoError(t, dbm.Create(&model.Asset{Name: "rescue-1", AssetTypeID: 1, Owner: "skipper"}))
	_, err = ledger.Attach(dbm.DB(), mission.ID, 1, "boss")
	require.NoError(t, err)

	details, err := m.Get(dbm.DB(), mission.ID, "boss")
	require.NoError(t, err)
	assert.True(t, details.Admin)
	assert.True(t, details.Permissions.Admin)
	assert.Len(t, details.Users, 2)
	require.Len(t, details.Organizations, 1)
	assert.Equal(t, "coastguard", details.Organizations[0].Name)
	require.Len(t, details.Assets, 1)
	assert.Equal(t, "rescue-1", details.Assets[0].Name)

	details, err = m.Get(dbm.DB(), mission.ID, "helper")
	require.NoError(t, err)
	assert.False(t, details.Admin)

	_, err = m.Get(dbm.DB(), mission.ID, "stranger")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestTimeline(t *testing.T) {
	dbm, m, _, _ := prepare()

	mission, err := m.Create(dbm.DB(), "Alpha", "", "boss")
	require.NoError(t, err)

	require.NoError(t, m.AddTimelineEntry(dbm.DB(), mission.ID, "boss", "weather turning", ""))

	entries, err := m.Timeline(dbm.DB(), mission.ID, "boss")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, model.EventAdd, entries[0].EventType)
	assert.Equal(t, "weather turning", entries[1].Message)

	err = m.AddTimelineEntry(dbm.DB(), mission.ID, "boss", "", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = m.Timeline(dbm.DB(), mission.ID, "stranger")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
