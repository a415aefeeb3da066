package assets

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openrescue/sarcoord/internal/commands"
	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/membership"
	"github.com/openrescue/sarcoord/internal/model"
	"github.com/openrescue/sarcoord/internal/timeline"
)

func prepare() (*database.DatabaseManager, *Ledger, *commands.Engine) {
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

	return dbm, New(membership.New(), eng, rec), eng
}

func seed(dbm *database.DatabaseManager) {
	now := time.Now()

	_ = dbm.Create(&model.Mission{Name: "m1", Started: now, Creator: "boss"})
	_ = dbm.Create(&model.Mission{Name: "m2", Started: now, Creator: "boss"})
	_ = dbm.Create(&model.MissionUser{MissionID: 1, Username: "boss", Creator: "boss", Added: now, PermAdmin: true})
	_ = dbm.Create(&model.MissionUser{MissionID: 2, Username: "boss", Creator: "boss", Added: now, PermAdmin: true})
	_ = dbm.Create(&model.MissionUser{MissionID: 1, Username: "helper", Creator: "boss", Added: now})
	_ = dbm.Create(&model.AssetType{Name: "boat"})
	_ = dbm.Create(&model.Asset{Name: "rescue-1", AssetTypeID: 1, Owner: "skipper"})
	_ = dbm.Create(&model.Asset{Name: "rescue-2", AssetTypeID: 1, Owner: "skipper"})
}

func TestAttachUniqueness(t *testing.T) {
	dbm, l, eng := prepare()
	seed(dbm)

	a, err := l.Attach(dbm.DB(), 1, 1, "boss")
	require.NoError(t, err)
	assert.True(t, a.Active())

	// already attached to m1, m2 must refuse
	_, err = l.Attach(dbm.DB(), 2, 1, "boss")
	assert.ErrorIs(t, err, model.ErrConflict)

	require.NoError(t, l.Detach(dbm.DB(), 1, 1, "boss"))

	_, err = l.Attach(dbm.DB(), 2, 1, "boss")
	assert.NoError(t, err)

	// attach leaves the asset with a known directive
	last := eng.LastForAsset(dbm.DB(), 1)
	require.NotNil(t, last)
	assert.Equal(t, model.CommandContinue, last.Command)
	assert.Equal(t, "Added to mission", last.Reason)

	// one aad entry per attach, no entry for the system command
	assert.EqualValues(t, 1, dbm.TimelineQuery().Mission(1).EventType(model.EventAssetAdd).Count())
	assert.EqualValues(t, 0, dbm.TimelineQuery().Mission(1).EventType(model.EventAssetCommand).Count())
}

func TestAttachErrors(t *testing.T) {
	dbm, l, _ := prepare()
	seed(dbm)

	_, err := l.Attach(dbm.DB(), 99, 1, "boss")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = l.Attach(dbm.DB(), 1, 99, "boss")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = l.Attach(dbm.DB(), 1, 1, "stranger")
	assert.ErrorIs(t, err, model.ErrNotFound)

	now := time.Now()
	require.NoError(t, dbm.DB().Model(&model.Mission{}).Where("id = ?", 1).
		Updates(map[string]any{"closed": now, "closed_by": "boss"}).Error)

	_, err = l.Attach(dbm.DB(), 1, 1, "boss")
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestDetachPermissions(t *testing.T) {
	dbm, l, eng := prepare()
	seed(dbm)

	_, err := l.Attach(dbm.DB(), 1, 1, "boss")
	require.NoError(t, err)

	// plain member, not owner, no delegation
	err = l.Detach(dbm.DB(), 1, 1, "helper")
	assert.ErrorIs(t, err, model.ErrForbidden)

	// owner may detach without being a mission member? no - membership first
	err = l.Detach(dbm.DB(), 1, 1, "skipper")
	assert.ErrorIs(t, err, model.ErrNotFound)

	require.NoError(t, dbm.Create(&model.MissionUser{MissionID: 1, Username: "skipper", Creator: "boss", Added: time.Now()}))

	require.NoError(t, l.Detach(dbm.DB(), 1, 1, "skipper"))

	last := eng.LastForAsset(dbm.DB(), 1)
	require.NotNil(t, last)
	assert.Equal(t, model.CommandMissionClosed, last.Command)
	assert.Equal(t, "Removed from Mission", last.Reason)

	// nothing left to detach
	err = l.Detach(dbm.DB(), 1, 1, "boss")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestDetachViaDelegation(t *testing.T) {
	dbm, l, _ := prepare()
	seed(dbm)

	now := time.Now()

	require.NoError(t, dbm.Create(&model.Organization{Name: "coastguard", Creator: "boss", Created: now}))
	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 1, Username: "deckhand", Added: now}))
	require.NoError(t, dbm.Create(&model.OrganizationAsset{OrganizationID: 1, AssetID: 1, Added: now}))
	require.NoError(t, dbm.Create(&model.MissionOrganization{MissionID: 1, OrganizationID: 1, Creator: "boss", Added: now}))

	_, err := l.Attach(dbm.DB(), 1, 1, "boss")
	require.NoError(t, err)

	require.NoError(t, l.Detach(dbm.DB(), 1, 1, "deckhand"))
}

func TestStatusRoundTrip(t *testing.T) {
	dbm, l, _ := prepare()
	seed(dbm)

	_, err := l.Attach(dbm.DB(), 1, 1, "boss")
	require.NoError(t, err)

	s1, err := l.SetStatus(dbm.DB(), 1, 1, "boss", "en-route", "eta 20 min")
	require.NoError(t, err)

	got, err := l.CurrentStatus(dbm.DB(), 1, 1, "boss")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s1.ID, got.ID)
	assert.Equal(t, "en-route", got.Value)
	assert.Equal(t, "eta 20 min", got.Notes)

	// second observation supersedes without deleting the first
	s2, err := l.SetStatus(dbm.DB(), 1, 1, "boss", "on-scene", "")
	require.NoError(t, err)

	got, err = l.CurrentStatus(dbm.DB(), 1, 1, "boss")
	require.NoError(t, err)
	assert.Equal(t, s2.ID, got.ID)
	assert.Equal(t, "on-scene", got.Value)

	assert.Len(t, dbm.StatusQuery().MissionAsset(1).Get(), 2)

	_, err = l.SetStatus(dbm.DB(), 1, 1, "boss", "teleporting", "")
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = l.SetStatus(dbm.DB(), 1, 1, "helper", "on-scene", "")
	assert.ErrorIs(t, err, model.ErrForbidden)
}

func TestList(t *testing.T) {
	dbm, l, _ := prepare()
	seed(dbm)

	_, err := l.Attach(dbm.DB(), 1, 1, "boss")
	require.NoError(t, err)
	_, err = l.Attach(dbm.DB(), 1, 2, "boss")
	require.NoError(t, err)

	_, err = l.SetStatus(dbm.DB(), 1, 1, "boss", "operational", "")
	require.NoError(t, err)

	require.NoError(t, l.Detach(dbm.DB(), 1, 2, "boss"))

	active, err := l.List(dbm.DB(), 1, "helper", false)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "rescue-1", active[0].Name)
	assert.Equal(t, "boat", active[0].Type)
	require.NotNil(t, active[0].Status)
	assert.Equal(t, "operational", active[0].Status.Status)

	all, err := l.List(dbm.DB(), 1, "helper", true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = l.List(dbm.DB(), 1, "stranger", false)
	assert.ErrorIs(t, err, model.ErrNotFound)
}
