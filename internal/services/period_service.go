package services

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	MaxPeriodNotesLength  = 2000
	MaxPeriodSymptomCount = 32
	MaxSymptomTagLength   = 64
)

var (
	ErrPeriodEntryNotFound     = errors.New("period entry not found")
	ErrPeriodStartConflict     = errors.New("period entry with this start date already exists")
	ErrPeriodOverlap           = errors.New("period entry overlaps an existing entry")
	ErrPeriodEntryLoadFailed   = errors.New("load period entries failed")
	ErrPeriodEntryCreateFailed = errors.New("create period entry failed")
	ErrPeriodEntryUpdateFailed = errors.New("update period entry failed")
	ErrPeriodEntryDeleteFailed = errors.New("delete period entry failed")
)

type PeriodEntryInput struct {
	StartDate time.Time
	EndDate   time.Time
	Flow      string
	Symptoms  []string
	Notes     string
}

// PeriodEntryPatch carries a partial update; nil fields are left unchanged.
type PeriodEntryPatch struct {
	StartDate *time.Time
	EndDate   *time.Time
	Flow      *string
	Symptoms  *[]string
	Notes     *string
}

type PeriodEntryRepository interface {
	ListByUser(userID uint) ([]models.PeriodEntry, error)
	FindByUserAndID(userID uint, id string) (models.PeriodEntry, bool, error)
	Create(entry *models.PeriodEntry) error
	Save(entry *models.PeriodEntry) error
	DeleteByUserAndID(userID uint, id string) (bool, error)
}

type PeriodService struct {
	entries  PeriodEntryRepository
	location *time.Location
	now      func() time.Time
	newID    func() string
}

func NewPeriodService(entries PeriodEntryRepository, location *time.Location) *PeriodService {
	if location == nil {
		location = time.UTC
	}
	return &PeriodService{
		entries:  entries,
		location: location,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

func (service *PeriodService) List(userID uint) ([]models.PeriodEntry, error) {
	entries, err := service.entries.ListByUser(userID)
	if err != nil {
		return nil, ErrPeriodEntryLoadFailed
	}
	return entries, nil
}

func (service *PeriodService) Get(userID uint, id string) (models.PeriodEntry, error) {
	entry, found, err := service.entries.FindByUserAndID(userID, strings.TrimSpace(id))
	if err != nil {
		return models.PeriodEntry{}, ErrPeriodEntryLoadFailed
	}
	if !found {
		return models.PeriodEntry{}, ErrPeriodEntryNotFound
	}
	return entry, nil
}

func (service *PeriodService) Create(userID uint, input PeriodEntryInput) (models.PeriodEntry, error) {
	normalized, err := service.normalizeInput(input)
	if err != nil {
		return models.PeriodEntry{}, err
	}

	existing, err := service.entries.ListByUser(userID)
	if err != nil {
		return models.PeriodEntry{}, ErrPeriodEntryLoadFailed
	}
	if err := checkPeriodConflicts(existing, "", normalized.StartDate, normalized.EndDate); err != nil {
		return models.PeriodEntry{}, err
	}

	entry := models.PeriodEntry{
		ID:        service.newID(),
		UserID:    userID,
		StartDate: normalized.StartDate,
		EndDate:   normalized.EndDate,
		Flow:      normalized.Flow,
		Symptoms:  normalized.Symptoms,
		Notes:     normalized.Notes,
	}
	if err := service.entries.Create(&entry); err != nil {
		if errors.Is(err, models.ErrPeriodStartTaken) {
			return models.PeriodEntry{}, ErrPeriodStartConflict
		}
		return models.PeriodEntry{}, ErrPeriodEntryCreateFailed
	}
	return entry, nil
}

func (service *PeriodService) Update(userID uint, id string, patch PeriodEntryPatch) (models.PeriodEntry, error) {
	entry, err := service.Get(userID, id)
	if err != nil {
		return models.PeriodEntry{}, err
	}

	input := PeriodEntryInput{
		StartDate: entry.StartDate,
		EndDate:   entry.EndDate,
		Flow:      entry.Flow,
		Symptoms:  entry.Symptoms,
		Notes:     entry.Notes,
	}
	if patch.StartDate != nil {
		input.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		input.EndDate = *patch.EndDate
	}
	if patch.Flow != nil {
		input.Flow = *patch.Flow
	}
	if patch.Symptoms != nil {
		input.Symptoms = *patch.Symptoms
	}
	if patch.Notes != nil {
		input.Notes = *patch.Notes
	}

	normalized, err := service.normalizeInput(input)
	if err != nil {
		return models.PeriodEntry{}, err
	}

	existing, err := service.entries.ListByUser(userID)
	if err != nil {
		return models.PeriodEntry{}, ErrPeriodEntryLoadFailed
	}
	if err := checkPeriodConflicts(existing, entry.ID, normalized.StartDate, normalized.EndDate); err != nil {
		return models.PeriodEntry{}, err
	}

	entry.StartDate = normalized.StartDate
	entry.EndDate = normalized.EndDate
	entry.Flow = normalized.Flow
	entry.Symptoms = normalized.Symptoms
	entry.Notes = normalized.Notes
	if err := service.entries.Save(&entry); err != nil {
		if errors.Is(err, models.ErrPeriodStartTaken) {
			return models.PeriodEntry{}, ErrPeriodStartConflict
		}
		return models.PeriodEntry{}, ErrPeriodEntryUpdateFailed
	}
	return entry, nil
}

func (service *PeriodService) Delete(userID uint, id string) error {
	deleted, err := service.entries.DeleteByUserAndID(userID, strings.TrimSpace(id))
	if err != nil {
		return ErrPeriodEntryDeleteFailed
	}
	if !deleted {
		return ErrPeriodEntryNotFound
	}
	return nil
}

func (service *PeriodService) normalizeInput(input PeriodEntryInput) (PeriodEntryInput, error) {
	if input.StartDate.IsZero() {
		return input, newValidationError("startDate", "is required")
	}
	if input.EndDate.IsZero() {
		input.EndDate = input.StartDate
	}
	input.StartDate = civilDate(input.StartDate)
	input.EndDate = civilDate(input.EndDate)

	if !yearSupported(input.StartDate.Year()) || !yearSupported(input.EndDate.Year()) {
		return input, newValidationError("startDate", "dates must fall between %d and %d", MinSupportedYear, MaxSupportedYear)
	}
	if input.EndDate.Before(input.StartDate) {
		return input, newValidationError("endDate", "must not be before startDate")
	}

	today := civilDate(DateAtLocation(service.now(), service.location))
	if input.StartDate.After(today) {
		return input, newValidationError("startDate", "cannot be in the future")
	}

	input.Flow = strings.ToLower(strings.TrimSpace(input.Flow))
	if input.Flow == "" {
		input.Flow = models.FlowMedium
	}
	if !models.IsValidFlow(input.Flow) {
		return input, newValidationError("flow", "must be one of light, medium, heavy")
	}

	symptoms, err := NormalizeSymptoms(input.Symptoms)
	if err != nil {
		return input, err
	}
	input.Symptoms = symptoms

	input.Notes = strings.TrimSpace(input.Notes)
	if len([]rune(input.Notes)) > MaxPeriodNotesLength {
		return input, newValidationError("notes", "must be at most %d characters", MaxPeriodNotesLength)
	}
	return input, nil
}

// NormalizeSymptoms trims tags, drops empty ones, removes case-insensitive
// duplicates and returns the set sorted.
func NormalizeSymptoms(raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	symptoms := make([]string, 0, len(raw))
	for _, value := range raw {
		tag := strings.TrimSpace(value)
		if tag == "" {
			continue
		}
		if len([]rune(tag)) > MaxSymptomTagLength {
			return nil, newValidationError("symptoms", "tags must be at most %d characters", MaxSymptomTagLength)
		}
		key := strings.ToLower(tag)
		if _, exists := seen[key]; exists {
			continue
		}
		seen[key] = struct{}{}
		symptoms = append(symptoms, tag)
	}
	if len(symptoms) > MaxPeriodSymptomCount {
		return nil, newValidationError("symptoms", "at most %d tags are allowed", MaxPeriodSymptomCount)
	}
	sort.Slice(symptoms, func(i, j int) bool {
		left, right := strings.ToLower(symptoms[i]), strings.ToLower(symptoms[j])
		if left == right {
			return symptoms[i] < symptoms[j]
		}
		return left < right
	})
	return symptoms, nil
}

func checkPeriodConflicts(existing []models.PeriodEntry, skipID string, start time.Time, end time.Time) error {
	for _, entry := range existing {
		if entry.ID == skipID {
			continue
		}
		other := PeriodRange{Start: civilDate(entry.StartDate), End: civilDate(entry.EndDate)}
		if sameDay(other.Start, start) {
			return ErrPeriodStartConflict
		}
		if !start.After(other.End) && !end.Before(other.Start) {
			return ErrPeriodOverlap
		}
	}
	return nil
}
