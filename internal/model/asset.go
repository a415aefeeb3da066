package model

import (
	"fmt"
	"strconv"
	"time"
)

// Command codes assets understand. The vocabulary is fixed - an unknown code
// is a validation error, not a new command type.
const (
	CommandContinue      = "RON"  // resume own navigation
	CommandCircle        = "CIR"  // circle current position
	CommandGoto          = "GOTO" // proceed to given coordinates
	CommandMissionClosed = "MC"   // mission over, return to base
)

var commandNames = map[string]string{
	CommandContinue:      "Continue",
	CommandCircle:        "Circle",
	CommandGoto:          "Goto position",
	CommandMissionClosed: "Mission Complete",
}

// CommandName returns the human-readable name for a command code, or the
// code itself if it is not part of the vocabulary.
func CommandName(code string) string {
	if n, ok := commandNames[code]; ok {
		return n
	}

	return code
}

func ValidCommand(code string) bool {
	_, ok := commandNames[code]

	return ok
}

// CommandNeedsPosition reports whether a command code requires coordinates.
func CommandNeedsPosition(code string) bool {
	return code == CommandGoto
}

// ParseLatLon validates textual coordinates. Values must parse as decimal
// degrees within range; anything else is ErrValidation.
func ParseLatLon(latStr, lonStr string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("latitude %q: %w", latStr, ErrValidation)
	}

	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("longitude %q: %w", lonStr, ErrValidation)
	}

	if lat < -90 || lat > 90 {
		return 0, 0, fmt.Errorf("latitude %v out of range: %w", lat, ErrValidation)
	}

	if lon < -180 || lon > 180 {
		return 0, 0, fmt.Errorf("longitude %v out of range: %w", lon, ErrValidation)
	}

	return lat, lon, nil
}

type AssetType struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"uniqueIndex"`
	Description string
}

// Asset is a physical resource (boat, aircraft, ground team) with an owner
// and at most one active mission attachment at any time.
type Asset struct {
	ID          uint   `gorm:"primarykey"`
	Name        string `gorm:"uniqueIndex"`
	AssetTypeID uint
	Owner       string `gorm:"index"`
}

// AssetCommand is a directive issued to an asset. A command is mutable
// exactly once: from unresponded (all response fields empty) to responded
// (all of them set together). The command in effect for an asset is the one
// with the greatest IssuedAt, ties broken by the greatest id, whether or not
// it was responded to.
type AssetCommand struct {
	ID        uint `gorm:"primarykey"`
	AssetID   uint `gorm:"index"`
	IssuedBy  string
	IssuedAt  time.Time `gorm:"index"`
	Command   string
	Reason    string
	MissionID *uint
	Lat       *float64
	Lon       *float64

	RespondedBy     string
	RespondedAt     *time.Time
	ResponseType    string
	ResponseMessage string
}

func (c *AssetCommand) Responded() bool {
	return c != nil && c.RespondedAt != nil
}

func (c *AssetCommand) HasPosition() bool {
	return c != nil && c.Lat != nil && c.Lon != nil
}

func (c *AssetCommand) String() string {
	if c == nil {
		return ""
	}

	return fmt.Sprintf("Command asset %d to %s", c.AssetID, CommandName(c.Command))
}
