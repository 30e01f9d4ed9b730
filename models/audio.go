package models

// Audio represents an extracted audio track in the database using GORM.
// It corresponds to the 'audio_tracks' table. The checksum is the MD5 of the
// extracted file; when a later ingest produces an identical track the
// existing row is reused instead of inserting a duplicate.
type Audio struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	VideoID   uint   `gorm:"not null;index" json:"video_id"`
	Filename  string `gorm:"not null" json:"filename"`
	Checksum  string `gorm:"not null;index" json:"checksum"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`

	Video *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (Audio) TableName() string {
	return "audio_tracks"
}
