package model

import "time"

// AssetPosition is a single position report from an asset. Reports are the
// asset's poll mechanism: submitting one returns the command currently in
// effect, so disconnected units pick up directives opportunistically.
type AssetPosition struct {
	ID      uint `gorm:"primarykey"`
	AssetID uint `gorm:"index"`
	Lat     float64
	Lon     float64
	At      time.Time `gorm:"index"`
}
