package model

import "time"

// Timeline event types. This is a closed vocabulary - adding a type is a
// schema change, not a runtime choice.
const (
	EventAdd                = "add" // object created
	EventDelete             = "del" // object removed
	EventUpdate             = "upd" // object replaced/edited
	EventUser               = "usr" // user-authored free text entry
	EventOrgAdd             = "oad" // organization added to mission
	EventOrgUpdate          = "oup" // organization permissions changed
	EventOrgRemove          = "orm" // organization removed from mission
	EventUserAdd            = "uad" // user added to mission
	EventUserUpdate         = "uup" // user permissions changed
	EventAssetAdd           = "aad" // asset added to mission
	EventAssetRemove        = "arm" // asset removed from mission
	EventAssetStatus        = "mas" // asset status reported
	EventAssetCommand       = "acs" // command sent to asset
	EventAssetCommandAnswer = "acr" // asset responded to command
)

// TimelineEntry is one line of a mission's audit log. Entries are written in
// the same transaction as the state change they document and are never
// updated or deleted.
type TimelineEntry struct {
	ID        uint `gorm:"primarykey"`
	MissionID uint `gorm:"index"`
	Username  string
	EventType string `gorm:"size:3"`
	Message   string
	URL       string
	Timestamp time.Time `gorm:"index"`
}
