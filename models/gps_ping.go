package models

// GPSPing represents one GPS fix from a video's telemetry log in the
// database using GORM. It corresponds to the 'gps_pings' table. Timestamp is
// a fixed-format UTC string with millisecond precision ("2006-01-02
// 15:04:05.000"); the format sorts and compares lexicographically, which the
// route window queries rely on. Location keeps the full source row as JSON.
type GPSPing struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   uint    `gorm:"not null;index" json:"video_id"`
	Location  string  `gorm:"type:text" json:"location"`
	Timestamp string  `gorm:"not null;index" json:"timestamp"`
	Latitude  float64 `gorm:"not null" json:"latitude"`
	Longitude float64 `gorm:"not null" json:"longitude"`
	Altitude  float64 `gorm:"not null;default:0" json:"altitude"`

	Video *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (GPSPing) TableName() string {
	return "gps_pings"
}
