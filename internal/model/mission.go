package model

import (
	"time"
)

// Mission groups users, organizations and assets for a single operational
// event and isolates them from other events.
type Mission struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"index"`
	Description string
	Started     time.Time
	Creator     string
	Closed      *time.Time
	ClosedBy    string
}

func (m *Mission) IsClosed() bool {
	return m != nil && m.Closed != nil
}

// MissionUser is a direct user/mission association with its permission set.
// A record synthesized by the membership resolver from organization links has
// ID == 0 and must never be persisted.
type MissionUser struct {
	ID        uint   `gorm:"primarykey"`
	MissionID uint   `gorm:"index:idx_mission_username"`
	Username  string `gorm:"index:idx_mission_username"`
	Creator   string
	Added     time.Time

	PermAdmin           bool
	PermAddOrganization bool
	PermAddUser         bool
}

func (u *MissionUser) IsAdmin() bool {
	return u != nil && u.PermAdmin
}

// CanAddOrganization reports whether this user may link organizations to the
// mission. Admin implies every other permission.
func (u *MissionUser) CanAddOrganization() bool {
	return u != nil && (u.PermAdmin || u.PermAddOrganization)
}

func (u *MissionUser) CanAddUser() bool {
	return u != nil && (u.PermAdmin || u.PermAddUser)
}

func (u *MissionUser) RoleName() string {
	if u.IsAdmin() {
		return "Admin"
	}

	return "Member"
}

// Direct reports whether this association is a stored grant rather than one
// synthesized from organization links.
func (u *MissionUser) Direct() bool {
	return u != nil && u.ID != 0
}

// MissionOrganization links an organization to a mission. Removal is a soft
// delete - Removed is set, the row stays. At most one active link may exist
// per (mission, organization). Organization links never carry the admin bit.
type MissionOrganization struct {
	ID             uint `gorm:"primarykey"`
	MissionID      uint `gorm:"index"`
	OrganizationID uint `gorm:"index"`
	Creator        string
	Added          time.Time
	Remover        string
	Removed        *time.Time

	PermAddOrganization bool
	PermAddUser         bool
}

func (o *MissionOrganization) Active() bool {
	return o != nil && o.Removed == nil
}

// MissionAsset attaches an asset to a mission. An asset has at most one
// active attachment across all missions; history is kept via soft removal.
type MissionAsset struct {
	ID        uint `gorm:"primarykey"`
	MissionID uint `gorm:"index"`
	AssetID   uint `gorm:"index"`
	Creator   string
	Added     time.Time
	Remover   string
	Removed   *time.Time
}

func (a *MissionAsset) Active() bool {
	return a != nil && a.Removed == nil
}

// AssetStatusValue is one of the well-known statuses asset operators use to
// report the state of an asset to the rest of the mission.
type AssetStatusValue struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"uniqueIndex"`
	Description string
}

// MissionAssetStatus is a single immutable status observation for an
// attached asset. The current status is the row with the greatest Since,
// ties broken by the greatest id.
type MissionAssetStatus struct {
	ID             uint `gorm:"primarykey"`
	MissionAssetID uint `gorm:"index"`
	ValueID        uint
	Value          string
	Since          time.Time `gorm:"index"`
	Notes          string
}
