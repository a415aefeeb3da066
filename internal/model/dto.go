package model

import (
	"time"
)

type MissionDTO struct {
	ID          uint       `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Started     time.Time  `json:"started"`
	Creator     string     `json:"creator"`
	Closed      *time.Time `json:"closed,omitempty"`
	ClosedBy    string     `json:"closed_by,omitempty"`
	Admin       bool       `json:"admin"`
}

func ToMissionDTO(m *Mission, admin bool) *MissionDTO {
	if m == nil {
		return nil
	}

	return &MissionDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Started:     m.Started,
		Creator:     m.Creator,
		Closed:      m.Closed,
		ClosedBy:    m.ClosedBy,
		Admin:       admin,
	}
}

type MissionDetailsDTO struct {
	MissionDTO
	Permissions   PermissionsDTO            `json:"permissions"`
	Users         []*MissionUserDTO         `json:"users"`
	Organizations []*MissionOrganizationDTO `json:"organizations"`
	Assets        []*MissionAssetDTO        `json:"assets"`
}

type PermissionsDTO struct {
	Admin           bool `json:"admin"`
	AddOrganization bool `json:"add_organization"`
	AddUser         bool `json:"add_user"`
}

type MissionUserDTO struct {
	MissionID   uint           `json:"mission"`
	Username    string         `json:"user"`
	Creator     string         `json:"creator,omitempty"`
	Added       time.Time      `json:"added"`
	Role        string         `json:"role"`
	Direct      bool           `json:"direct"`
	Permissions PermissionsDTO `json:"permissions"`
}

func ToMissionUserDTO(u *MissionUser) *MissionUserDTO {
	if u == nil {
		return nil
	}

	return &MissionUserDTO{
		MissionID: u.MissionID,
		Username:  u.Username,
		Creator:   u.Creator,
		Added:     u.Added,
		Role:      u.RoleName(),
		Direct:    u.Direct(),
		Permissions: PermissionsDTO{
			Admin:           u.IsAdmin(),
			AddOrganization: u.CanAddOrganization(),
			AddUser:         u.CanAddUser(),
		},
	}
}

type MissionOrganizationDTO struct {
	MissionID      uint           `json:"mission"`
	OrganizationID uint           `json:"organization_id"`
	Name           string         `json:"name"`
	Creator        string         `json:"creator"`
	Added          time.Time      `json:"added"`
	Removed        *time.Time     `json:"removed,omitempty"`
	Permissions    PermissionsDTO `json:"permissions"`
}

func ToMissionOrganizationDTO(o *MissionOrganization, name string) *MissionOrganizationDTO {
	if o == nil {
		return nil
	}

	return &MissionOrganizationDTO{
		MissionID:      o.MissionID,
		OrganizationID: o.OrganizationID,
		Name:           name,
		Creator:        o.Creator,
		Added:          o.Added,
		Removed:        o.Removed,
		Permissions: PermissionsDTO{
			AddOrganization: o.PermAddOrganization,
			AddUser:         o.PermAddUser,
		},
	}
}

type AssetStatusDTO struct {
	ID      uint      `json:"id"`
	AssetID uint      `json:"asset_id"`
	Status  string    `json:"status"`
	Since   time.Time `json:"since"`
	Notes   string    `json:"notes,omitempty"`
}

func ToAssetStatusDTO(s *MissionAssetStatus, assetID uint) *AssetStatusDTO {
	if s == nil {
		return nil
	}

	return &AssetStatusDTO{
		ID:      s.ID,
		AssetID: assetID,
		Status:  s.Value,
		Since:   s.Since,
		Notes:   s.Notes,
	}
}

type MissionAssetDTO struct {
	AssetID uint            `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type,omitempty"`
	Owner   string          `json:"owner"`
	Added   time.Time       `json:"added"`
	Removed *time.Time      `json:"removed,omitempty"`
	Status  *AssetStatusDTO `json:"status,omitempty"`
}

type CommandDTO struct {
	ID        uint       `json:"id"`
	AssetID   uint       `json:"asset_id"`
	IssuedBy  string     `json:"issued_by"`
	IssuedAt  time.Time  `json:"issued_at"`
	Command   string     `json:"command"`
	Name      string     `json:"name"`
	Reason    string     `json:"reason"`
	MissionID *uint      `json:"mission,omitempty"`
	Lat       *float64   `json:"lat,omitempty"`
	Lon       *float64   `json:"lon,omitempty"`
	Responded bool       `json:"responded"`
	Response  *AnswerDTO `json:"response,omitempty"`
}

type AnswerDTO struct {
	By      string    `json:"by"`
	At      time.Time `json:"at"`
	Type    string    `json:"type"`
	Message string    `json:"message,omitempty"`
}

func ToCommandDTO(c *AssetCommand) *CommandDTO {
	if c == nil {
		return nil
	}

	dto := &CommandDTO{
		ID:        c.ID,
		AssetID:   c.AssetID,
		IssuedBy:  c.IssuedBy,
		IssuedAt:  c.IssuedAt,
		Command:   c.Command,
		Name:      CommandName(c.Command),
		Reason:    c.Reason,
		MissionID: c.MissionID,
		Lat:       c.Lat,
		Lon:       c.Lon,
		Responded: c.Responded(),
	}

	if c.Responded() {
		dto.Response = &AnswerDTO{
			By:      c.RespondedBy,
			At:      *c.RespondedAt,
			Type:    c.ResponseType,
			Message: c.ResponseMessage,
		}
	}

	return dto
}

type TimelineEntryDTO struct {
	ID        uint      `json:"id"`
	MissionID uint      `json:"mission"`
	Username  string    `json:"user"`
	EventType string    `json:"event_type"`
	Message   string    `json:"message"`
	URL       string    `json:"url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func ToTimelineEntryDTO(e *TimelineEntry) *TimelineEntryDTO {
	if e == nil {
		return nil
	}

	return &TimelineEntryDTO{
		ID:        e.ID,
		MissionID: e.MissionID,
		Username:  e.Username,
		EventType: e.EventType,
		Message:   e.Message,
		URL:       e.URL,
		Timestamp: e.Timestamp,
	}
}

type StatusValueDTO struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func ToStatusValueDTO(v *AssetStatusValue) *StatusValueDTO {
	if v == nil {
		return nil
	}

	return &StatusValueDTO{ID: v.ID, Name: v.Name, Description: v.Description}
}
