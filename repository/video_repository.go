package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fieldtrace/fieldtracebackend/models"
)

// VideoRepository handles database operations for Video entities
type VideoRepository struct {
	DB *gorm.DB
}

// NewVideoRepository creates a new instance of VideoRepository
func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{DB: db}
}

// GetByID retrieves one video by primary key
func (r *VideoRepository) GetByID(id uint) (*models.Video, error) {
	var video models.Video
	err := r.DB.First(&video, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get video %d: %w", id, err)
	}
	return &video, nil
}

// GetByChecksum returns every video row carrying the given content digest.
// Duplicate reports list all stored filenames, not just the first match.
func (r *VideoRepository) GetByChecksum(checksum string) ([]models.Video, error) {
	var videos []models.Video
	err := r.DB.Where("checksum = ?", checksum).Order("id").Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get videos by checksum %s: %w", checksum, err)
	}
	return videos, nil
}

// GetAudioByChecksum retrieves the audio row with the given content digest
func (r *VideoRepository) GetAudioByChecksum(checksum string) (*models.Audio, error) {
	var audio models.Audio
	err := r.DB.Where("checksum = ?", checksum).First(&audio).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get audio by checksum %s: %w", checksum, err)
	}
	return &audio, nil
}

// ListAll retrieves all videos ordered by id
func (r *VideoRepository) ListAll() ([]models.Video, error) {
	var videos []models.Video
	err := r.DB.Order("id").Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list videos: %w", err)
	}
	return videos, nil
}

// Delete removes a video row. Descendant rows across the audio,
// transcription, segment, word, and ping tables go with it via FK cascade.
func (r *VideoRepository) Delete(id uint) error {
	result := r.DB.Delete(&models.Video{}, id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete video %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
