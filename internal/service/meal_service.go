package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/vbonduro/mealcam/internal/credential"
	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/ledger"
	"github.com/vbonduro/mealcam/internal/photostore"
	"github.com/vbonduro/mealcam/internal/report"
	"github.com/vbonduro/mealcam/internal/vision"
)

// mealLedger is the subset of ledger.Ledger that MealService requires.
type mealLedger interface {
	GetAll(ctx context.Context) []domain.MealEntry
	Append(ctx context.Context, draft domain.MealDraft) (domain.MealEntry, error)
	Remove(ctx context.Context, id string) (bool, error)
	Clear(ctx context.Context) error
	Verify(ctx context.Context) error
	Location() *time.Location
}

// photoPrefix names stored meal photos.
const photoPrefix = "meal"

type MealService struct {
	ledger     mealLedger
	creds      credential.Store
	recognizer vision.Recognizer
	photoStg   photostore.PhotoStore
	reports    *report.Formatter
	now        func() time.Time
	logger     *slog.Logger

	// analyzing admits one recognition at a time.
	analyzing sync.Mutex
}

func NewMealService(
	mealLedger mealLedger,
	creds credential.Store,
	recognizer vision.Recognizer,
	photoStg photostore.PhotoStore,
	logger *slog.Logger,
) *MealService {
	return &MealService{
		ledger:     mealLedger,
		creds:      creds,
		recognizer: recognizer,
		photoStg:   photoStg,
		reports:    report.New(mealLedger.Location()),
		now:        time.Now,
		logger:     logger,
	}
}

// Location is the time zone that defines calendar days.
func (s *MealService) Location() *time.Location {
	return s.ledger.Location()
}

// Today returns the current instant in the service's time zone.
func (s *MealService) Today() time.Time {
	return s.now().In(s.ledger.Location())
}

// Analyze estimates the meal in imageData, keeps the photo and appends the
// estimate to the ledger. Nothing is appended when recognition fails.
func (s *MealService) Analyze(ctx context.Context, imageData []byte, mimeType string) (domain.MealEntry, error) {
	if !s.analyzing.TryLock() {
		return domain.MealEntry{}, domain.ErrAnalysisInProgress
	}
	defer s.analyzing.Unlock()

	if len(imageData) == 0 {
		return domain.MealEntry{}, &domain.ValidationError{Field: "image", Msg: "must not be empty"}
	}

	cred, err := s.creds.Get(ctx)
	if err != nil {
		return domain.MealEntry{}, err
	}
	if cred == "" {
		return domain.MealEntry{}, &domain.ValidationError{Field: "credential", Msg: "recognition credential is not set"}
	}

	s.logger.Info("meal analysis started", "mime_type", mimeType, "bytes", len(imageData))
	est, err := s.recognizer.Recognize(ctx, bytes.NewReader(imageData), mimeType, cred)
	if err != nil {
		var rerr *domain.RecognitionError
		if !errors.As(err, &rerr) {
			err = &domain.RecognitionError{Backend: "unknown", Err: err}
		}
		s.logger.Error("meal analysis failed", "error", err)
		return domain.MealEntry{}, err
	}
	s.logger.Info("meal analysis complete", "name", est.Name, "calories", est.Calories)

	imageURL := ""
	storageKey, err := s.photoStg.Save(ctx, photoPrefix, mimeType, bytes.NewReader(imageData))
	if err != nil {
		s.logger.Warn("failed to save meal photo, logging without image", "error", err)
	} else {
		imageURL = photostore.URLFor(storageKey)
		s.logger.Debug("photo saved", "storage_key", storageKey)
	}

	entry, err := s.ledger.Append(ctx, est.Draft(imageURL))
	if err != nil {
		if storageKey != "" {
			s.deletePhoto(ctx, imageURL)
		}
		return domain.MealEntry{}, fmt.Errorf("failed to save meal: %w", err)
	}

	return entry, nil
}

// AddMeal appends a manually entered meal.
func (s *MealService) AddMeal(ctx context.Context, draft domain.MealDraft) (domain.MealEntry, error) {
	return s.ledger.Append(ctx, draft)
}

func (s *MealService) ListMeals(ctx context.Context) []domain.MealEntry {
	return s.ledger.GetAll(ctx)
}

// MealsByDate returns day's meals oldest-first.
func (s *MealService) MealsByDate(ctx context.Context, day time.Time) []domain.MealEntry {
	return ledger.EntriesOn(s.ledger.GetAll(ctx), day, s.ledger.Location())
}

func (s *MealService) DailyStats(ctx context.Context, day time.Time) domain.DailyStats {
	return ledger.Aggregate(s.ledger.GetAll(ctx), day, s.ledger.Location())
}

// DeleteMeal removes the meal and its photo. It reports false when no meal has
// the given id.
func (s *MealService) DeleteMeal(ctx context.Context, id string) (bool, error) {
	var imageURL string
	for _, e := range s.ledger.GetAll(ctx) {
		if e.ID == id {
			imageURL = e.ImageURL
			break
		}
	}

	removed, err := s.ledger.Remove(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete meal: %w", err)
	}
	if removed && imageURL != "" {
		s.deletePhoto(ctx, imageURL)
	}
	return removed, nil
}

// ClearHistory deletes every meal and the photos they reference.
func (s *MealService) ClearHistory(ctx context.Context) error {
	entries := s.ledger.GetAll(ctx)

	if err := s.ledger.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}

	for _, e := range entries {
		if e.ImageURL != "" {
			s.deletePhoto(ctx, e.ImageURL)
		}
	}
	return nil
}

// Report renders day's report and its file name from one ledger snapshot.
func (s *MealService) Report(ctx context.Context, day time.Time) (filename, body string) {
	all := s.ledger.GetAll(ctx)
	loc := s.ledger.Location()

	meals := ledger.EntriesOn(all, day, loc)
	stats := ledger.Aggregate(all, day, loc)
	return s.reports.Filename(day), s.reports.Generate(day, meals, stats, s.now())
}

// VerifyLedger reports whether the stored ledger is readable.
func (s *MealService) VerifyLedger(ctx context.Context) error {
	return s.ledger.Verify(ctx)
}

func (s *MealService) SetCredential(ctx context.Context, value string) error {
	return s.creds.Set(ctx, value)
}

func (s *MealService) ClearCredential(ctx context.Context) error {
	return s.creds.Clear(ctx)
}

func (s *MealService) HasCredential(ctx context.Context) (bool, error) {
	cred, err := s.creds.Get(ctx)
	if err != nil {
		return false, err
	}
	return cred != "", nil
}

// deletePhoto removes a stored photo; failures are logged only.
func (s *MealService) deletePhoto(ctx context.Context, imageURL string) {
	key, ok := photostore.KeyFromURL(imageURL)
	if !ok {
		return
	}
	if err := s.photoStg.Delete(ctx, key); err != nil {
		s.logger.Error("failed to delete photo file", "storage_key", key, "error", err)
	}
}
