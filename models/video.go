package models

// Video represents one ingested source recording in the database using GORM.
// It corresponds to the 'videos' table. Rows are created once per ingested
// file and never updated. The checksum column is indexed but deliberately not
// unique: duplicate detection is an application-level gate, and disabling it
// must allow a second row with the same digest.
type Video struct {
	ID          uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Filename    string  `gorm:"not null" json:"filename"`
	Checksum    string  `gorm:"not null;index" json:"checksum"`
	Metadata    string  `gorm:"type:text" json:"metadata"`
	Duration    float64 `gorm:"not null;default:0" json:"duration"`
	GPSFilename *string `gorm:"" json:"gps_filename,omitempty"`
	CreatedAt   int64   `gorm:"not null" json:"created_at"`
}

// TableName explicitly sets the table name for GORM.
func (Video) TableName() string {
	return "videos"
}
