package models

// Transcription represents one speech-to-text run over an audio track using
// GORM. It corresponds to the 'transcriptions' table. Config holds the
// serialized runner configuration (model size, device, language) so results
// stay attributable to the settings that produced them.
type Transcription struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	AudioID   uint   `gorm:"not null;index" json:"audio_id"`
	Config    string `gorm:"type:text" json:"config"`
	CreatedAt int64  `gorm:"not null" json:"created_at"`

	Audio *Audio `gorm:"foreignKey:AudioID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (Transcription) TableName() string {
	return "transcriptions"
}
