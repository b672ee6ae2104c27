package services

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"testing"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

type periodRepositoryStub struct {
	entries   map[string]models.PeriodEntry
	listErr   error
	createErr error
	saveErr   error
}

func newPeriodRepositoryStub(entries ...models.PeriodEntry) *periodRepositoryStub {
	stub := &periodRepositoryStub{entries: make(map[string]models.PeriodEntry)}
	for _, entry := range entries {
		stub.entries[entry.ID] = entry
	}
	return stub
}

func (stub *periodRepositoryStub) ListByUser(userID uint) ([]models.PeriodEntry, error) {
	if stub.listErr != nil {
		return nil, stub.listErr
	}
	entries := make([]models.PeriodEntry, 0)
	for _, entry := range stub.entries {
		if entry.UserID == userID {
			entries = append(entries, entry)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].StartDate.Before(entries[j].StartDate)
	})
	return entries, nil
}

func (stub *periodRepositoryStub) FindByUserAndID(userID uint, id string) (models.PeriodEntry, bool, error) {
	entry, ok := stub.entries[id]
	if !ok || entry.UserID != userID {
		return models.PeriodEntry{}, false, nil
	}
	return entry, true, nil
}

func (stub *periodRepositoryStub) Create(entry *models.PeriodEntry) error {
	if stub.createErr != nil {
		return stub.createErr
	}
	stub.entries[entry.ID] = *entry
	return nil
}

func (stub *periodRepositoryStub) Save(entry *models.PeriodEntry) error {
	if stub.saveErr != nil {
		return stub.saveErr
	}
	stub.entries[entry.ID] = *entry
	return nil
}

func (stub *periodRepositoryStub) DeleteByUserAndID(userID uint, id string) (bool, error) {
	entry, ok := stub.entries[id]
	if !ok || entry.UserID != userID {
		return false, nil
	}
	delete(stub.entries, id)
	return true, nil
}

func newTestPeriodService(t *testing.T, stub *periodRepositoryStub) *PeriodService {
	t.Helper()
	service := NewPeriodService(stub, time.UTC)
	service.now = func() time.Time { return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC) }
	sequence := 0
	service.newID = func() string {
		sequence++
		return fmt.Sprintf("entry-%d", sequence)
	}
	return service
}

func TestPeriodServiceCreateNormalizesInput(t *testing.T) {
	stub := newPeriodRepositoryStub()
	service := newTestPeriodService(t, stub)

	entry, err := service.Create(7, PeriodEntryInput{
		StartDate: time.Date(2025, time.June, 1, 18, 30, 0, 0, time.UTC),
		EndDate:   mustDate(t, "2025-06-05"),
		Flow:      " Heavy ",
		Symptoms:  []string{"  cramps", "Headache", "", "CRAMPS", "bloating"},
		Notes:     "  tired  ",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if entry.ID != "entry-1" || entry.UserID != 7 {
		t.Fatalf("unexpected identity: %+v", entry)
	}
	if !entry.StartDate.Equal(mustDate(t, "2025-06-01")) {
		t.Fatalf("expected start date truncated to the day, got %s", entry.StartDate)
	}
	if entry.Flow != models.FlowHeavy {
		t.Fatalf("expected heavy flow, got %q", entry.Flow)
	}
	if !reflect.DeepEqual(entry.Symptoms, []string{"bloating", "cramps", "Headache"}) {
		t.Fatalf("unexpected symptoms: %v", entry.Symptoms)
	}
	if entry.Notes != "tired" {
		t.Fatalf("expected trimmed notes, got %q", entry.Notes)
	}
	if _, ok := stub.entries["entry-1"]; !ok {
		t.Fatal("expected entry to be persisted")
	}
}

func TestPeriodServiceCreateDefaultsSingleDayEntry(t *testing.T) {
	service := newTestPeriodService(t, newPeriodRepositoryStub())
	entry, err := service.Create(1, PeriodEntryInput{StartDate: mustDate(t, "2025-06-10")})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if !entry.EndDate.Equal(entry.StartDate) || entry.Flow != models.FlowMedium {
		t.Fatalf("expected single medium day, got %+v", entry)
	}
}

func TestPeriodServiceCreateRejectsInvalidInput(t *testing.T) {
	service := newTestPeriodService(t, newPeriodRepositoryStub())
	testCases := []struct {
		name  string
		input PeriodEntryInput
	}{
		{name: "missing start", input: PeriodEntryInput{}},
		{name: "end before start", input: PeriodEntryInput{StartDate: mustDate(t, "2025-06-05"), EndDate: mustDate(t, "2025-06-01")}},
		{name: "future start", input: PeriodEntryInput{StartDate: mustDate(t, "2025-06-16")}},
		{name: "unknown flow", input: PeriodEntryInput{StartDate: mustDate(t, "2025-06-01"), Flow: "spotting"}},
		{name: "notes too long", input: PeriodEntryInput{StartDate: mustDate(t, "2025-06-01"), Notes: string(make([]rune, MaxPeriodNotesLength+1))}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			if _, err := service.Create(1, testCase.input); !IsValidationError(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestPeriodServiceCreateRejectsConflicts(t *testing.T) {
	stub := newPeriodRepositoryStub(models.PeriodEntry{
		ID:        "existing",
		UserID:    1,
		StartDate: mustDate(t, "2025-05-01"),
		EndDate:   mustDate(t, "2025-05-05"),
		Flow:      models.FlowMedium,
	})
	service := newTestPeriodService(t, stub)

	if _, err := service.Create(1, PeriodEntryInput{StartDate: mustDate(t, "2025-05-01")}); !errors.Is(err, ErrPeriodStartConflict) {
		t.Fatalf("expected ErrPeriodStartConflict, got %v", err)
	}
	if _, err := service.Create(1, PeriodEntryInput{StartDate: mustDate(t, "2025-04-28"), EndDate: mustDate(t, "2025-05-02")}); !errors.Is(err, ErrPeriodOverlap) {
		t.Fatalf("expected ErrPeriodOverlap, got %v", err)
	}
	if _, err := service.Create(2, PeriodEntryInput{StartDate: mustDate(t, "2025-05-01")}); err != nil {
		t.Fatalf("expected other user's entry to be independent, got %v", err)
	}
}

func TestPeriodServiceUpdateAppliesPatch(t *testing.T) {
	stub := newPeriodRepositoryStub(
		models.PeriodEntry{ID: "a", UserID: 1, StartDate: mustDate(t, "2025-04-01"), EndDate: mustDate(t, "2025-04-04"), Flow: models.FlowLight, Symptoms: []string{"cramps"}},
		models.PeriodEntry{ID: "b", UserID: 1, StartDate: mustDate(t, "2025-04-29"), EndDate: mustDate(t, "2025-05-02"), Flow: models.FlowLight},
	)
	service := newTestPeriodService(t, stub)

	end := mustDate(t, "2025-04-06")
	flow := models.FlowHeavy
	updated, err := service.Update(1, "a", PeriodEntryPatch{EndDate: &end, Flow: &flow})
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if !updated.EndDate.Equal(end) || updated.Flow != models.FlowHeavy {
		t.Fatalf("expected patched fields, got %+v", updated)
	}
	if !reflect.DeepEqual(updated.Symptoms, []string{"cramps"}) {
		t.Fatalf("expected untouched symptoms, got %v", updated.Symptoms)
	}

	overlapEnd := mustDate(t, "2025-04-30")
	if _, err := service.Update(1, "a", PeriodEntryPatch{EndDate: &overlapEnd}); !errors.Is(err, ErrPeriodOverlap) {
		t.Fatalf("expected ErrPeriodOverlap, got %v", err)
	}
	if _, err := service.Update(2, "a", PeriodEntryPatch{Flow: &flow}); !errors.Is(err, ErrPeriodEntryNotFound) {
		t.Fatalf("expected ErrPeriodEntryNotFound for foreign update, got %v", err)
	}
}

func TestPeriodServiceDelete(t *testing.T) {
	stub := newPeriodRepositoryStub(models.PeriodEntry{ID: "a", UserID: 1, StartDate: mustDate(t, "2025-04-01"), EndDate: mustDate(t, "2025-04-04")})
	service := newTestPeriodService(t, stub)

	if err := service.Delete(2, "a"); !errors.Is(err, ErrPeriodEntryNotFound) {
		t.Fatalf("expected ErrPeriodEntryNotFound, got %v", err)
	}
	if err := service.Delete(1, "a"); err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if _, err := service.Get(1, "a"); !errors.Is(err, ErrPeriodEntryNotFound) {
		t.Fatalf("expected deleted entry to be missing, got %v", err)
	}
}

func TestPeriodServiceMapsConcurrentStartCollisionToConflict(t *testing.T) {
	stub := newPeriodRepositoryStub(models.PeriodEntry{ID: "a", UserID: 1, StartDate: mustDate(t, "2025-04-01"), EndDate: mustDate(t, "2025-04-04")})
	stub.createErr = models.ErrPeriodStartTaken
	stub.saveErr = models.ErrPeriodStartTaken
	service := newTestPeriodService(t, stub)

	if _, err := service.Create(1, PeriodEntryInput{StartDate: mustDate(t, "2025-06-01")}); !errors.Is(err, ErrPeriodStartConflict) {
		t.Fatalf("expected ErrPeriodStartConflict from create, got %v", err)
	}
	flow := models.FlowHeavy
	if _, err := service.Update(1, "a", PeriodEntryPatch{Flow: &flow}); !errors.Is(err, ErrPeriodStartConflict) {
		t.Fatalf("expected ErrPeriodStartConflict from update, got %v", err)
	}
}

func TestPeriodServiceMapsStoreFailures(t *testing.T) {
	stub := newPeriodRepositoryStub()
	stub.createErr = errors.New("disk full")
	service := newTestPeriodService(t, stub)
	if _, err := service.Create(1, PeriodEntryInput{StartDate: mustDate(t, "2025-06-01")}); !errors.Is(err, ErrPeriodEntryCreateFailed) {
		t.Fatalf("expected ErrPeriodEntryCreateFailed, got %v", err)
	}

	stub.listErr = errors.New("locked")
	if _, err := service.List(1); !errors.Is(err, ErrPeriodEntryLoadFailed) {
		t.Fatalf("expected ErrPeriodEntryLoadFailed, got %v", err)
	}
}
