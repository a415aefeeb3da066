package membership

import (
	"log/slog"

	"gorm.io/gorm"

	"github.com/openrescue/sarcoord/internal/database"
	"github.com/openrescue/sarcoord/internal/model"
)

// Resolver answers "what may this user do in this mission". A direct grant
// wins verbatim; otherwise the permissions of all active organization links
// the user reaches are OR-ed into a synthesized association. Organization
// links never yield admin. A user with neither path gets ErrNotFound, so a
// probing caller cannot tell a missing mission from one they are not part of.
type Resolver struct {
	logger *slog.Logger
}

func New() *Resolver {
	return &Resolver{
		logger: slog.Default().With("logger", "membership"),
	}
}

func (r *Resolver) Resolve(db *gorm.DB, missionID uint, username string) (*model.MissionUser, error) {
	if direct := database.NewMissionUserQuery(db).Mission(missionID).Username(username).One(); direct != nil {
		return direct, nil
	}

	orgIDs := r.ActiveOrgIDs(db, username)
	if len(orgIDs) == 0 {
		return nil, model.ErrNotFound
	}

	links := database.NewMissionOrgQuery(db).Mission(missionID).Organizations(orgIDs).Active(true).Get()
	if len(links) == 0 {
		return nil, model.ErrNotFound
	}

	mu := &model.MissionUser{
		MissionID: missionID,
		Username:  username,
	}

	for _, link := range links {
		mu.PermAddOrganization = mu.PermAddOrganization || link.PermAddOrganization
		mu.PermAddUser = mu.PermAddUser || link.PermAddUser
	}

	return mu, nil
}

// ActiveOrgIDs lists the organizations the user is currently a member of.
func (r *Resolver) ActiveOrgIDs(db *gorm.DB, username string) []uint {
	members := database.NewOrgMemberQuery(db).Username(username).Active(true).Get()

	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.OrganizationID)
	}

	return ids
}

func (r *Resolver) ResolveAdmin(db *gorm.DB, missionID uint, username string) (*model.MissionUser, error) {
	mu, err := r.Resolve(db, missionID, username)
	if err != nil {
		return nil, err
	}

	if !mu.IsAdmin() {
		return nil, model.ErrForbidden
	}

	return mu, nil
}

func (r *Resolver) ResolveCanAddUser(db *gorm.DB, missionID uint, username string) (*model.MissionUser, error) {
	mu, err := r.Resolve(db, missionID, username)
	if err != nil {
		return nil, err
	}

	if !mu.CanAddUser() {
		return nil, model.ErrForbidden
	}

	return mu, nil
}

func (r *Resolver) ResolveCanAddOrganization(db *gorm.DB, missionID uint, username string) (*model.MissionUser, error) {
	mu, err := r.Resolve(db, missionID, username)
	if err != nil {
		return nil, err
	}

	if !mu.CanAddOrganization() {
		return nil, model.ErrForbidden
	}

	return mu, nil
}
