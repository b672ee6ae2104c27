package db

import (
	"errors"

	"github.com/terraincognita07/cyclecast/internal/models"
	"gorm.io/gorm"
)

type PeriodRepository struct {
	database *gorm.DB
}

func NewPeriodRepository(database *gorm.DB) *PeriodRepository {
	return &PeriodRepository{database: database}
}

func (repo *PeriodRepository) ListByUser(userID uint) ([]models.PeriodEntry, error) {
	entries := make([]models.PeriodEntry, 0)
	if err := repo.database.
		Where("user_id = ?", userID).
		Order("start_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (repo *PeriodRepository) FindByUserAndID(userID uint, id string) (models.PeriodEntry, bool, error) {
	var entry models.PeriodEntry
	if err := repo.database.Where("user_id = ? AND id = ?", userID, id).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PeriodEntry{}, false, nil
		}
		return models.PeriodEntry{}, false, err
	}
	return entry, true, nil
}

func (repo *PeriodRepository) Create(entry *models.PeriodEntry) error {
	return translatePeriodWriteError(repo.database.Create(entry).Error)
}

func (repo *PeriodRepository) Save(entry *models.PeriodEntry) error {
	return translatePeriodWriteError(repo.database.Save(entry).Error)
}

func translatePeriodWriteError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return models.ErrPeriodStartTaken
	}
	return err
}

func (repo *PeriodRepository) DeleteByUserAndID(userID uint, id string) (bool, error) {
	result := repo.database.Where("user_id = ? AND id = ?", userID, id).Delete(&models.PeriodEntry{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
