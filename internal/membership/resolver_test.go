package membership

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/model"
)

func prepare() *database.DatabaseManager {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		panic("failed to connect database")
	}

	dbm := database.New(db)
	if err := dbm.Migrate(); err != nil {
		panic(err)
	}

	return dbm
}

func TestResolveDirect(t *testing.T) {
	dbm := prepare()
	r := New()

	require.NoError(t, dbm.Create(&model.Mission{Name: "m1", Started: time.Now(), Creator: "boss"}))
	require.NoError(t, dbm.Create(&model.MissionUser{MissionID: 1, Username: "boss", Creator: "boss", Added: time.Now(), PermAdmin: true}))
	require.NoError(t, dbm.Create(&model.MissionUser{MissionID: 1, Username: "helper", Creator: "boss", Added: time.Now()}))

	mu, err := r.Resolve(dbm.DB(), 1, "boss")
	require.NoError(t, err)
	assert.True(t, mu.Direct())
	assert.True(t, mu.IsAdmin())
	assert.True(t, mu.CanAddUser())
	assert.True(t, mu.CanAddOrganization())

	mu, err = r.Resolve(dbm.DB(), 1, "helper")
	require.NoError(t, err)
	assert.True(t, mu.Direct())
	assert.False(t, mu.IsAdmin())
	assert.False(t, mu.CanAddUser())
}

func TestResolveNonMember(t *testing.T) {
	dbm := prepare()
	r := New()

	require.NoError(t, dbm.Create(&model.Mission{Name: "m1", Started: time.Now(), Creator: "boss"}))

	_, err := r.Resolve(dbm.DB(), 1, "stranger")
	assert.ErrorIs(t, err, model.ErrNotFound)

	// missing mission looks exactly like a mission you are not part of
	_, err = r.Resolve(dbm.DB(), 42, "stranger")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolveViaOrganization(t *testing.T) {
	dbm := prepare()
	r := New()

	require.NoError(t, dbm.Create(&model.Mission{Name: "m1", Started: time.Now(), Creator: "boss"}))
	require.NoError(t, dbm.Create(&model.Organization{Name: "coastguard", Creator: "boss", Created: time.Now()}))
	require.NoError(t, dbm.Create(&model.Organization{Name: "heli", Creator: "boss", Created: time.Now()}))

	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 1, Username: "sailor", Added: time.Now()}))
	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 2, Username: "sailor", Added: time.Now()}))

	require.NoError(t, dbm.Create(&model.MissionOrganization{MissionID: 1, OrganizationID: 1, Creator: "boss", Added: time.Now(), PermAddUser: true}))
	require.NoError(t, dbm.Create(&model.MissionOrganization{MissionID: 1, OrganizationID: 2, Creator: "boss", Added: time.Now(), PermAddOrganization: true}))

	mu, err := r.Resolve(dbm.DB(), 1, "sailor")
	require.NoError(t, err)
	assert.False(t, mu.Direct())
	assert.False(t, mu.IsAdmin())
	assert.True(t, mu.CanAddUser())
	assert.True(t, mu.CanAddOrganization())
}

func TestResolveDirectWinsOverOrganization(t *testing.T) {
	dbm := prepare()
	r := New()

	require.NoError(t, dbm.Create(&model.Mission{Name: "m1", Started: time.Now(), Creator: "boss"}))
	require.NoError(t, dbm.Create(&model.Organization{Name: "coastguard", Creator: "boss", Created: time.Now()}))
	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 1, Username: "sailor", Added: time.Now()}))
	require.NoError(t, dbm.Create(&model.MissionOrganization{MissionID: 1, OrganizationID: 1, Creator: "boss", Added: time.Now(), PermAddUser: true, PermAddOrganization: true}))

	// direct grant with no permissions beats a generous org link
	require.NoError(t, dbm.Create(&model.MissionUser{MissionID: 1, Username: "sailor", Creator: "boss", Added: time.Now()}))

	mu, err := r.Resolve(dbm.DB(), 1, "sailor")
	require.NoError(t, err)
	assert.True(t, mu.Direct())
	assert.False(t, mu.CanAddUser())
	assert.False(t, mu.CanAddOrganization())
}

func TestResolveIgnoresInactiveLinks(t *testing.T) {
	dbm := prepare()
	r := New()

	now := time.Now()

	require.NoError(t, dbm.Create(&model.Mission{Name: "m1", Started: now, Creator: "boss"}))
	require.NoError(t, dbm.Create(&model.Organization{Name: "coastguard", Creator: "boss", Created: now}))
	require.NoError(t, dbm.Create(&model.Organization{Name: "heli", Creator: "boss", Created: now}))

	// membership ended
	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 1, Username: "sailor", Added: now, Removed: &now}))
	require.NoError(t, dbm.Create(&model.MissionOrganization{MissionID: 1, OrganizationID: 1, Creator: "boss", Added: now, PermAddUser: true}))

	// link to mission removed
	require.NoError(t, dbm.Create(&model.OrganizationMember{OrganizationID: 2, Username: "pilot", Added: now}))
	require.NoError(t, dbm.Create(&model.MissionOrganization{MissionID: 1, OrganizationID: 2, Creator: "boss", Added: now, Remover: "boss", Removed: &now}))

	_, err := r.Resolve(dbm.DB(), 1, "sailor")
	assert.ErrorIs(t, err, model.ErrNotFound)

	_, err = r.Resolve(dbm.DB(), 1, "pilot")
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestResolveGuards(t *testing.T) {
	dbm := prepare()
	r := New()

	require.NoError(t, dbm.Create(&model.Mission{Name: "m1", Started: time.Now(), Creator: "boss"}))
	require.NoError(t, dbm.Create(&model.MissionUser{MissionID: 1, Username: "boss", Creator: "boss", Added: time.Now(), PermAdmin: true}))
	require.NoError(t, dbm.Create(&model.MissionUser{MissionID: 1, Username: "recruiter", Creator: "boss", Added: time.Now(), PermAddUser: true}))

	_, err := r.ResolveAdmin(dbm.DB(), 1, "boss")
	assert.NoError(t, err)

	_, err = r.ResolveAdmin(dbm.DB(), 1, "recruiter")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = r.ResolveCanAddUser(dbm.DB(), 1, "recruiter")
	assert.NoError(t, err)

	_, err = r.ResolveCanAddOrganization(dbm.DB(), 1, "recruiter")
	assert.ErrorIs(t, err, model.ErrForbidden)

	_, err = r.ResolveAdmin(dbm.DB(), 1, "stranger")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
