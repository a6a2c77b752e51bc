package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/mealcam/internal/credential"
	"github.com/vbonduro/mealcam/internal/db"
	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/ledger"
	"github.com/vbonduro/mealcam/internal/photostore"
	"github.com/vbonduro/mealcam/internal/store"
	"github.com/vbonduro/mealcam/internal/vision"
)

var msk = time.FixedZone("MSK", 3*60*60)

// stubRecognizer is a minimal vision.Recognizer for tests.
type stubRecognizer struct {
	mu       sync.Mutex
	estimate *domain.NutritionEstimate
	err      error
	calls    int
	lastCred string
	// block, when set, holds Recognize until it is closed.
	block   chan struct{}
	started chan struct{}
}

func (s *stubRecognizer) Recognize(_ context.Context, r io.Reader, _ string, credential string) (*domain.NutritionEstimate, error) {
	_, _ = io.ReadAll(r)
	s.mu.Lock()
	s.calls++
	s.lastCred = credential
	s.mu.Unlock()
	if s.started != nil {
		close(s.started)
	}
	if s.block != nil {
		<-s.block
	}
	return s.estimate, s.err
}

// stubPhotoStore is a minimal in-memory photostore.PhotoStore for tests.
type stubPhotoStore struct {
	saved   map[string][]byte
	saveErr error
	n       int
}

func newStubPhotoStore() *stubPhotoStore {
	return &stubPhotoStore{saved: make(map[string][]byte)}
}

func (s *stubPhotoStore) Save(_ context.Context, prefix, _ string, r io.Reader) (string, error) {
	if s.saveErr != nil {
		return "", s.saveErr
	}
	data, _ := io.ReadAll(r)
	s.n++
	key := fmt.Sprintf("%s_%d.jpg", prefix, s.n)
	s.saved[key] = data
	return key, nil
}

func (s *stubPhotoStore) Get(_ context.Context, key string) (io.ReadCloser, string, error) {
	data, ok := s.saved[key]
	if !ok {
		return nil, "", domain.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), "image/jpeg", nil
}

func (s *stubPhotoStore) Delete(_ context.Context, key string) error {
	delete(s.saved, key)
	return nil
}

// failingSlots fails every write; reads see an empty store.
type failingSlots struct{}

func (failingSlots) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (failingSlots) Put(context.Context, string, []byte) error         { return errors.New("quota exceeded") }
func (failingSlots) Delete(context.Context, string) error              { return errors.New("quota exceeded") }

type testEnv struct {
	svc    *MealService
	vision *stubRecognizer
	photos *stubPhotoStore
	creds  *credential.SlotStore
}

func newTestService(t *testing.T, opts ...ledger.Option) *testEnv {
	t.Helper()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	slots := store.NewSlotStore(d)
	env := &testEnv{
		vision: &stubRecognizer{estimate: &domain.NutritionEstimate{Name: "Омлет", Calories: 320, Proteins: 21.5, Fats: 24, Carbs: 2.1}},
		photos: newStubPhotoStore(),
		creds:  credential.NewSlotStore(slots),
	}
	env.svc = NewMealService(
		ledger.New(slots, slog.Default(), append([]ledger.Option{ledger.WithLocation(msk)}, opts...)...),
		env.creds,
		env.vision,
		env.photos,
		slog.Default(),
	)
	return env
}

func withCredential(t *testing.T, env *testEnv) {
	t.Helper()
	require.NoError(t, env.svc.SetCredential(context.Background(), "sk-test"))
}

func TestMealServiceAnalyze_AppendsEstimate(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)
	ctx := context.Background()

	entry, err := env.svc.Analyze(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)

	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "Омлет", entry.Name)
	assert.Equal(t, 320, entry.Calories)
	assert.Equal(t, "sk-test", env.vision.lastCred)

	key, ok := photostore.KeyFromURL(entry.ImageURL)
	require.True(t, ok)
	assert.Equal(t, []byte{0xFF, 0xD8}, env.photos.saved[key])

	meals := env.svc.ListMeals(ctx)
	require.Len(t, meals, 1)
	assert.Equal(t, entry, meals[0])
}

func TestMealServiceAnalyze_MissingCredential(t *testing.T) {
	env := newTestService(t)

	_, err := env.svc.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "credential", verr.Field)
	assert.Zero(t, env.vision.calls, "recognizer must not be called without a credential")
}

func TestMealServiceAnalyze_EmptyImage(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)

	_, err := env.svc.Analyze(context.Background(), nil, "image/jpeg")

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "image", verr.Field)
}

func TestMealServiceAnalyze_RecognitionFailureSavesNothing(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)
	env.vision.err = &domain.RecognitionError{Backend: "openai", Err: vision.ErrNoJSON}
	ctx := context.Background()

	_, err := env.svc.Analyze(ctx, []byte{0xFF, 0xD8}, "image/jpeg")

	var rerr *domain.RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Empty(t, env.svc.ListMeals(ctx))
	assert.Empty(t, env.photos.saved)
}

func TestMealServiceAnalyze_WrapsForeignErrors(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)
	env.vision.err = errors.New("boom")

	_, err := env.svc.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	var rerr *domain.RecognitionError
	assert.ErrorAs(t, err, &rerr)
}

func TestMealServiceAnalyze_PhotoSaveFailureStillLogsMeal(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)
	env.photos.saveErr = errors.New("disk full")

	entry, err := env.svc.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	assert.Empty(t, entry.ImageURL)
}

func TestMealServiceAnalyze_PersistenceFailure(t *testing.T) {
	photos := newStubPhotoStore()
	d, err := db.OpenForTesting()
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	creds := credential.NewSlotStore(store.NewSlotStore(d))
	require.NoError(t, creds.Set(context.Background(), "sk-test"))

	svc := NewMealService(
		ledger.New(failingSlots{}, slog.Default()),
		creds,
		&stubRecognizer{estimate: &domain.NutritionEstimate{Name: "Суп", Calories: 100}},
		photos,
		slog.Default(),
	)

	_, err = svc.Analyze(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Empty(t, photos.saved, "photo must be rolled back when the meal is not saved")
}

func TestMealServiceAnalyze_OneAtATime(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)
	env.vision.block = make(chan struct{})
	env.vision.started = make(chan struct{})
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := env.svc.Analyze(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
		done <- err
	}()
	<-env.vision.started

	_, err := env.svc.Analyze(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
	assert.ErrorIs(t, err, domain.ErrAnalysisInProgress)

	close(env.vision.block)
	require.NoError(t, <-done)
	assert.Len(t, env.svc.ListMeals(ctx), 1)
}

func TestMealServiceDeleteMeal_RemovesPhoto(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)
	ctx := context.Background()

	entry, err := env.svc.Analyze(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
	require.NoError(t, err)
	require.Len(t, env.photos.saved, 1)

	removed, err := env.svc.DeleteMeal(ctx, entry.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, env.photos.saved)
	assert.Empty(t, env.svc.ListMeals(ctx))

	removed, err = env.svc.DeleteMeal(ctx, entry.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMealServiceClearHistory(t *testing.T) {
	env := newTestService(t)
	withCredential(t, env)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.svc.Analyze(ctx, []byte{0xFF, 0xD8}, "image/jpeg")
		require.NoError(t, err)
	}

	require.NoError(t, env.svc.ClearHistory(ctx))
	assert.Empty(t, env.svc.ListMeals(ctx))
	assert.Empty(t, env.photos.saved)

	stats := env.svc.DailyStats(ctx, env.svc.Today())
	assert.Zero(t, stats.Count)
	assert.Zero(t, stats.Calories)
}

func TestMealServiceStatsAndReport(t *testing.T) {
	logged := time.Date(2026, time.October, 15, 9, 30, 0, 0, msk)
	env := newTestService(t, ledger.WithClock(func() time.Time {
		logged = logged.Add(time.Hour)
		return logged
	}))
	env.svc.now = func() time.Time { return time.Date(2026, time.October, 15, 21, 0, 0, 0, msk) }
	ctx := context.Background()

	_, err := env.svc.AddMeal(ctx, domain.MealDraft{Name: "Каша", Calories: 300, Proteins: 10})
	require.NoError(t, err)
	_, err = env.svc.AddMeal(ctx, domain.MealDraft{Name: "Суп", Calories: 200, Proteins: 5.5})
	require.NoError(t, err)

	today := env.svc.Today()
	stats := env.svc.DailyStats(ctx, today)
	assert.Equal(t, 2, stats.Count)
	assert.Equal(t, 500, stats.Calories)
	assert.InDelta(t, 15.5, stats.Proteins, 1e-9)

	meals := env.svc.MealsByDate(ctx, today)
	require.Len(t, meals, 2)
	assert.Equal(t, "Каша", meals[0].Name)

	yesterday := today.AddDate(0, 0, -1)
	assert.Zero(t, env.svc.DailyStats(ctx, yesterday).Count)

	filename, body := env.svc.Report(ctx, today)
	assert.Equal(t, "отчет_2026-10-15.txt", filename)
	assert.Contains(t, body, "Каша")
	assert.Contains(t, body, "Суп")
}

func TestMealServiceCredential(t *testing.T) {
	env := newTestService(t)
	ctx := context.Background()

	has, err := env.svc.HasCredential(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, env.svc.SetCredential(ctx, "sk-1"))
	has, err = env.svc.HasCredential(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, env.svc.ClearCredential(ctx))
	has, err = env.svc.HasCredential(ctx)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestMealServiceVerifyLedger(t *testing.T) {
	env := newTestService(t)
	assert.NoError(t, env.svc.VerifyLedger(context.Background()))
}
