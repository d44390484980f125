package editor

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/imagineserve/imagine-serve/jobs"
	"github.com/imagineserve/imagine-serve/models"
	"github.com/imagineserve/imagine-serve/transform"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockImageWriter is a test fake implementing ImageWriter.
type mockImageWriter struct {
	addCalled    bool
	updateCalled bool
	lastImage    *models.Image
	addErr       error
	updateErr    error
}

func (m *mockImageWriter) AddImage(ctx context.Context, img *models.Image, userID primitive.ObjectID, path string) (*models.Image, error) {
	m.addCalled = true
	m.lastImage = img
	if m.addErr != nil {
		return nil, m.addErr
	}
	stored := *img
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	return &stored, nil
}

func (m *mockImageWriter) UpdateImage(ctx context.Context, img *models.Image, userID primitive.ObjectID, path string) (*models.Image, error) {
	m.updateCalled = true
	m.lastImage = img
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	stored := *img
	return &stored, nil
}

// mockDebitor is a test fake implementing CreditDebitor.
type mockDebitor struct {
	balance int
	calls   int
	err     error
}

func (m *mockDebitor) UpdateCredits(ctx context.Context, id primitive.ObjectID, delta int) (*models.User, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	m.balance += delta
	return &models.User{ID: id, CreditBalance: m.balance}, nil
}

func newTestSession(t *testing.T, typ transform.Type, existing *models.Image) (*Session, *mockImageWriter, *mockDebitor) {
	t.Helper()
	writer := &mockImageWriter{}
	debitor := &mockDebitor{balance: 10}

	s, err := NewSession(Params{
		Type:            typ,
		UserID:          primitive.NewObjectID(),
		Balance:         10,
		Title:           "test image",
		PublicID:        "asset_1",
		SecureURL:       "https://img.example.com/asset_1",
		Existing:        existing,
		ProviderBaseURL: "https://img.example.com/render",
		DebounceDelay:   20 * time.Millisecond,
	}, writer, debitor, &jobs.Runner{})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}
	return s, writer, debitor
}

func TestNewSessionUnknownTypeShouldFail(t *testing.T) {
	_, err := NewSession(Params{Type: transform.Type("sharpen")}, &mockImageWriter{}, &mockDebitor{}, &jobs.Runner{})
	if err != transform.ErrUnknownType {
		t.Errorf("Expected ErrUnknownType, got %v", err)
	}
}

func TestSetFieldRapidEditsShouldCoalesceIntoOnePendingUpdate(t *testing.T) {
	s, _, _ := newTestSession(t, transform.TypeRecolor, nil)

	prompts := []string{"c", "ca", "car", "carr", "car roof"}
	for _, p := range prompts {
		s.SetField(transform.Config{"recolor": map[string]any{"prompt": p}})
	}

	if s.CanApply() {
		t.Error("Expected no pending change before the debounce fires")
	}

	s.FlushEdits()

	if !s.CanApply() {
		t.Fatal("Expected pending change after flush")
	}

	s.mu.Lock()
	recolor := s.pending["recolor"].(map[string]any)
	s.mu.Unlock()
	if recolor["prompt"] != "car roof" {
		t.Errorf("Expected only the last edit's value, got %v", recolor["prompt"])
	}
}

func TestSetAspectRatioShouldBeImmediateAndSetDimensions(t *testing.T) {
	s, _, _ := newTestSession(t, transform.TypeFill, nil)

	if err := s.SetAspectRatio("3:4"); err != nil {
		t.Fatalf("SetAspectRatio failed: %v", err)
	}

	if !s.CanApply() {
		t.Error("Expected aspect-ratio selection to set a pending change immediately")
	}

	state := s.Snapshot()
	if state.Width != 1000 || state.Height != 1334 {
		t.Errorf("Expected 1000x1334, got %dx%d", state.Width, state.Height)
	}
	if state.AspectRatio != "3:4" {
		t.Errorf("Expected ratio recorded, got %q", state.AspectRatio)
	}
}

func TestSetAspectRatioOnNonFillTypeShouldFail(t *testing.T) {
	s, _, _ := newTestSession(t, transform.TypeRestore, nil)

	if err := s.SetAspectRatio("1:1"); err != ErrAspectRatioOnly {
		t.Errorf("Expected ErrAspectRatioOnly, got %v", err)
	}
}

func TestApplyWithoutPendingChangeShouldFail(t *testing.T) {
	s, _, _ := newTestSession(t, transform.TypeRestore, nil)

	if s.CanApply() {
		t.Error("Expected apply disabled with no pending change")
	}
	if _, err := s.Apply(context.Background()); err != ErrNothingToApply {
		t.Errorf("Expected ErrNothingToApply, got %v", err)
	}
}

func TestApplyShouldMergePendingAndScheduleDebit(t *testing.T) {
	s, _, debitor := newTestSession(t, transform.TypeRecolor, nil)

	s.SetField(transform.Config{"recolor": map[string]any{"prompt": "car", "to": "red"}})
	s.FlushEdits()

	url, err := s.Apply(context.Background())
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !strings.Contains(url, "e_gen_recolor:prompt_car;to-color_red") {
		t.Errorf("Expected recolor segment in preview URL, got %q", url)
	}

	if s.CanApply() {
		t.Error("Expected apply disabled while transform is in flight")
	}

	if err := s.DebitHandle().Wait(); err != nil {
		t.Fatalf("Background debit failed: %v", err)
	}
	if debitor.calls != 1 {
		t.Errorf("Expected one debit, got %d", debitor.calls)
	}
	if s.Snapshot().CreditBalance != 10-transform.Fee {
		t.Errorf("Expected balance updated from debit, got %d", s.Snapshot().CreditBalance)
	}
}

func TestDebitHandleShouldBeSafeToReadDuringApply(t *testing.T) {
	s, _, _ := newTestSession(t, transform.TypeRestore, nil)

	s.SetField(transform.Config{"restore": true})
	s.FlushEdits()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.DebitHandle()
			s.Snapshot()
		}
	}()

	if _, err := s.Apply(context.Background()); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	<-done

	handle := s.DebitHandle()
	if handle == nil {
		t.Fatal("Expected debit handle visible after apply")
	}
	if err := handle.Wait(); err != nil {
		t.Fatalf("Background debit failed: %v", err)
	}
}

func TestApplyWhileTransformInFlightShouldFail(t *testing.T) {
	s, _, _ := newTestSession(t, transform.TypeRestore, nil)

	s.SetField(transform.Config{"restore": true})
	s.FlushEdits()
	if _, err := s.Apply(context.Background()); err != nil {
		t.Fatalf("first Apply failed: %v", err)
	}

	s.SetField(transform.Config{"restore": true})
	s.FlushEdits()
	if _, err := s.Apply(context.Background()); err != ErrTransformInFlight {
		t.Errorf("Expected ErrTransformInFlight, got %v", err)
	}

	s.PreviewLoaded()
	if !s.CanApply() {
		t.Error("Expected apply re-enabled after the preview loaded")
	}
}

func TestSuccessiveAppliesShouldAccumulateTransformationTypes(t *testing.T) {
	s, _, _ := newTestSession(t, transform.TypeRestore, nil)

	s.SetField(transform.Config{"restore": true})
	s.FlushEdits()
	s.Apply(context.Background())
	s.PreviewLoaded()

	s.SetField(transform.Config{"removeBackground": true})
	s.FlushEdits()
	url, err := s.Apply(context.Background())
	if err != nil {
		t.Fatalf("second Apply failed: %v", err)
	}

	if !strings.Contains(url, "e_gen_restore") || !strings.Contains(url, "e_background_removal") {
		t.Errorf("Expected both transformations accumulated, got %q", url)
	}
}

func TestSaveNewImageShouldCallAddAndReturnDetailRoute(t *testing.T) {
	s, writer, _ := newTestSession(t, transform.TypeRestore, nil)

	s.SetField(transform.Config{"restore": true})
	s.FlushEdits()
	s.Apply(context.Background())
	s.PreviewLoaded()

	route, err := s.Save(context.Background(), "/")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !writer.addCalled || writer.updateCalled {
		t.Error("Expected AddImage for a new record")
	}
	if !strings.HasPrefix(route, "/transformations/") {
		t.Errorf("Expected detail route, got %q", route)
	}
	if writer.lastImage.Config["restore"] != true {
		t.Error("Expected accumulated config persisted")
	}
}

func TestSaveExistingImageShouldCallUpdate(t *testing.T) {
	existing := &models.Image{
		ID:                 primitive.NewObjectID(),
		Title:              "existing",
		TransformationType: transform.TypeRestore,
		PublicID:           "asset_1",
		Config:             transform.Config{"restore": true},
	}
	s, writer, _ := newTestSession(t, transform.TypeRestore, existing)

	route, err := s.Save(context.Background(), "/")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if !writer.updateCalled || writer.addCalled {
		t.Error("Expected UpdateImage for an existing record")
	}
	if route != "/transformations/"+existing.ID.Hex() {
		t.Errorf("Expected existing record's route, got %q", route)
	}
}

func TestSaveFailureShouldReturnErrorAndReenableSave(t *testing.T) {
	s, writer, _ := newTestSession(t, transform.TypeRestore, nil)
	writer.addErr = errors.New("store down")

	if _, err := s.Save(context.Background(), "/"); err == nil {
		t.Fatal("Expected save error")
	}
	if !s.CanSave() {
		t.Error("Expected save re-enabled after failure")
	}
}

func TestInsufficientCreditsShouldNotBlockEditing(t *testing.T) {
	writer := &mockImageWriter{}
	debitor := &mockDebitor{balance: 0}
	s, err := NewSession(Params{
		Type:            transform.TypeRestore,
		UserID:          primitive.NewObjectID(),
		Balance:         0,
		PublicID:        "asset_1",
		ProviderBaseURL: "https://img.example.com/render",
		DebounceDelay:   time.Millisecond,
	}, writer, debitor, &jobs.Runner{})
	if err != nil {
		t.Fatalf("NewSession failed: %v", err)
	}

	if !s.InsufficientCredits() {
		t.Error("Expected insufficient-credits indicator at zero balance")
	}

	s.SetField(transform.Config{"restore": true})
	s.FlushEdits()
	if !s.CanApply() {
		t.Error("Expected editing to remain enabled despite low balance")
	}
}
