package models

// WordSegment represents one normalized spoken word in the database using
// GORM. It corresponds to the 'word_segments' table. Words hang off the
// transcription, not off a text segment; tokens that normalize to the empty
// string are never persisted.
type WordSegment struct {
	ID              uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	TranscriptionID uint    `gorm:"not null;index" json:"transcription_id"`
	Word            string  `gorm:"not null;index" json:"word"`
	Probability     float64 `gorm:"not null;default:0" json:"probability"`
	TimeStart       float64 `gorm:"not null" json:"time_start"`
	TimeEnd         float64 `gorm:"not null" json:"time_end"`

	Transcription *Transcription `gorm:"foreignKey:TranscriptionID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName explicitly sets the table name for GORM.
func (WordSegment) TableName() string {
	return "word_segments"
}
