package models

// TextSegment represents one transcribed utterance in the database using
// GORM. It corresponds to the 'text_segments' table. VideoID is a
// denormalized back-reference for search joins; the cascade path runs through
// the transcription, so the video column carries no second FK constraint.
type TextSegment struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	TranscriptionID uint    `gorm:"not null;index" json:"transcription_id"`
	VideoID         *uint   `gorm:"index" json:"video_id,omitempty"`
	Segment         string  `gorm:"type:text;not null" json:"segment"`
	TimeStart       float64 `gorm:"not null" json:"time_start"`
	TimeEnd         float64 `gorm:"not null" json:"time_end"`
	Temperature     float64 `gorm:"not null;default:0" json:"temperature"`
	Thumbnail       []byte  `gorm:"type:blob" json:"-"` // Nullable; encoded PNG

	Transcription *Transcription `gorm:"foreignKey:TranscriptionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (TextSegment) TableName() string {
	return "text_segments"
}
