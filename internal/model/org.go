package model

import "time"

// Organization is a group of users and assets that can be linked to missions
// as a whole.
type Organization struct {
	ID      uint   `gorm:"primarykey"`
	Name    string `gorm:"uniqueIndex"`
	Creator string
	Created time.Time
}

// OrganizationMember records a user's membership in an organization.
// Membership ends by setting Removed, never by deleting the row.
type OrganizationMember struct {
	ID             uint   `gorm:"primarykey"`
	OrganizationID uint   `gorm:"index"`
	Username       string `gorm:"index"`
	Role           string
	Added          time.Time
	Removed        *time.Time
}

func (m *OrganizationMember) Active() bool {
	return m != nil && m.Removed == nil
}

// OrganizationAsset delegates an asset to an organization: members of the
// organization may act on the asset (detach it from missions, report status)
// as if they were its owner.
type OrganizationAsset struct {
	ID             uint `gorm:"primarykey"`
	OrganizationID uint `gorm:"index"`
	AssetID        uint `gorm:"index"`
	Added          time.Time
	Removed        *time.Time
}
