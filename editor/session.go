package editor

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/imagineserve/imagine-serve/jobs"
	"github.com/imagineserve/imagine-serve/models"
	"github.com/imagineserve/imagine-serve/transform"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const defaultDebounceDelay = time.Second

var (
	ErrNothingToApply    = errors.New("no pending transformation change")
	ErrTransformInFlight = errors.New("transformation already in flight")
	ErrSaveInFlight      = errors.New("save already in flight")
	ErrAspectRatioOnly   = errors.New("aspect ratio applies to fill only")
	ErrUnknownRatio      = errors.New("unknown aspect ratio")
)

// ImageWriter persists the finished record; *actions.Images satisfies it.
type ImageWriter interface {
	AddImage(ctx context.Context, img *models.Image, userID primitive.ObjectID, path string) (*models.Image, error)
	UpdateImage(ctx context.Context, img *models.Image, userID primitive.ObjectID, path string) (*models.Image, error)
}

// CreditDebitor charges the transformation fee; *actions.Users satisfies it.
type CreditDebitor interface {
	UpdateCredits(ctx context.Context, id primitive.ObjectID, delta int) (*models.User, error)
}

// Params seeds a new editing session. Existing is nil when a fresh image
// is being transformed for the first time.
type Params struct {
	Type            transform.Type
	UserID          primitive.ObjectID
	Balance         int
	Title           string
	PublicID        string
	SecureURL       string
	Width           int
	Height          int
	Existing        *models.Image
	ProviderBaseURL string
	DebounceDelay   time.Duration
}

// Session is the transformation-form state machine for one image:
// idle -> editing -> previewing -> saving -> idle. Field edits land in a
// debounced pending buffer; Apply merges the buffer into the accumulated
// configuration and schedules the credit debit; Save persists.
type Session struct {
	mu sync.Mutex

	typ       transform.Type
	userID    primitive.ObjectID
	existing  *models.Image
	title     string
	publicID  string
	secureURL string
	width     int
	height    int
	ratio     string
	prompt    string
	color     string
	baseURL   string

	config       transform.Config
	pending      transform.Config
	previewURL   string
	transforming bool
	saving       bool
	balance      int

	images  ImageWriter
	credits CreditDebitor
	runner  *jobs.Runner
	deb     *Debouncer

	debit *jobs.Handle
}

func NewSession(p Params, images ImageWriter, credits CreditDebitor, runner *jobs.Runner) (*Session, error) {
	if !transform.Valid(p.Type) {
		return nil, transform.ErrUnknownType
	}
	delay := p.DebounceDelay
	if delay == 0 {
		delay = defaultDebounceDelay
	}

	s := &Session{
		typ:       p.Type,
		userID:    p.UserID,
		existing:  p.Existing,
		title:     p.Title,
		publicID:  p.PublicID,
		secureURL: p.SecureURL,
		width:     p.Width,
		height:    p.Height,
		baseURL:   p.ProviderBaseURL,
		balance:   p.Balance,
		images:    images,
		credits:   credits,
		runner:    runner,
		deb:       NewDebouncer(delay),
	}

	if p.Existing != nil {
		s.config = p.Existing.Config
		s.title = p.Existing.Title
		s.publicID = p.Existing.PublicID
		s.secureURL = p.Existing.SecureURL
		s.width = p.Existing.Width
		s.height = p.Existing.Height
		s.ratio = p.Existing.AspectRatio
		s.prompt = p.Existing.Prompt
		s.color = p.Existing.Color
		s.previewURL = p.Existing.TransformationURL
	}

	return s, nil
}

// SetTitle takes effect immediately; only transformation fields debounce.
func (s *Session) SetTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// SetField merges a partial type-specific object into the pending buffer
// after the debounce delay, so rapid keystrokes coalesce into one update.
func (s *Session) SetField(partial transform.Config) {
	s.deb.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.pending = transform.Merge(s.pending, partial)
		s.rememberPromptAndColor(partial)
	})
}

// FlushEdits forces any debounced edit through now.
func (s *Session) FlushEdits() {
	s.deb.Flush()
}

func (s *Session) rememberPromptAndColor(partial transform.Config) {
	for _, key := range []string{"remove", "recolor"} {
		nested, ok := partial[key].(map[string]any)
		if !ok {
			continue
		}
		if p, ok := nested["prompt"].(string); ok {
			s.prompt = p
		}
		if to, ok := nested["to"].(string); ok {
			s.color = to
		}
	}
}

// SetAspectRatio replaces the pending buffer immediately (not debounced)
// with the fill configuration and updates the target dimensions.
func (s *Session) SetAspectRatio(key string) error {
	if s.typ != transform.TypeFill {
		return ErrAspectRatioOnly
	}
	ratio, ok := transform.AspectRatios[key]
	if !ok {
		return ErrUnknownRatio
	}

	full, err := transform.Default(s.typ)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratio = key
	s.width = ratio.Width
	s.height = ratio.Height
	s.pending = full
	return nil
}

// CanApply reports whether the apply button is enabled: a pending change
// exists and no transform is in flight.
func (s *Session) CanApply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil && !s.transforming
}

// Apply merges the pending change into the accumulated configuration,
// requests a new preview URL, and schedules the credit debit in the
// background. The debit is deliberately not awaited and outlives the
// request context; PreviewLoaded ends the in-flight state once the
// preview has rendered.
func (s *Session) Apply(ctx context.Context) (string, error) {
	s.mu.Lock()
	if s.transforming {
		s.mu.Unlock()
		return "", ErrTransformInFlight
	}
	if s.pending == nil {
		s.mu.Unlock()
		return "", ErrNothingToApply
	}

	s.config = transform.Merge(s.config, s.pending)
	s.pending = nil
	s.transforming = true
	s.previewURL = transform.URL(s.baseURL, s.publicID, s.width, s.height, s.config)
	url := s.previewURL
	userID := s.userID

	s.debit = s.runner.Go(func() error {
		// Background context: the debit may outlive the request that
		// triggered it (the user can navigate away mid-flight).
		user, err := s.credits.UpdateCredits(context.Background(), userID, -transform.Fee)
		if err != nil {
			log.Printf("credit debit for user %s failed: %v", userID.Hex(), err)
			return err
		}
		s.mu.Lock()
		s.balance = user.CreditBalance
		s.mu.Unlock()
		return nil
	})
	s.mu.Unlock()

	return url, nil
}

// PreviewLoaded marks the in-flight transform finished.
func (s *Session) PreviewLoaded() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transforming = false
}

// CanSave reports whether the save button is enabled.
func (s *Session) CanSave() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.saving
}

// Save persists the record via add or update depending on whether the
// session edits an existing image, and returns the detail route.
func (s *Session) Save(ctx context.Context, path string) (string, error) {
	s.mu.Lock()
	if s.saving {
		s.mu.Unlock()
		return "", ErrSaveInFlight
	}
	s.saving = true
	img := s.buildImage()
	userID := s.userID
	isUpdate := s.existing != nil
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.saving = false
		s.mu.Unlock()
	}()

	var (
		stored *models.Image
		err    error
	)
	if isUpdate {
		stored, err = s.images.UpdateImage(ctx, img, userID, path)
	} else {
		stored, err = s.images.AddImage(ctx, img, userID, path)
	}
	if err != nil {
		log.Printf("saving image failed: %v", err)
		return "", err
	}

	s.mu.Lock()
	s.existing = stored
	s.mu.Unlock()

	return "/transformations/" + stored.ID.Hex(), nil
}

func (s *Session) buildImage() *models.Image {
	img := &models.Image{
		Title:              s.title,
		TransformationType: s.typ,
		PublicID:           s.publicID,
		Width:              s.width,
		Height:             s.height,
		Config:             s.config,
		SecureURL:          s.secureURL,
		TransformationURL:  s.previewURL,
		AspectRatio:        s.ratio,
		Prompt:             s.prompt,
		Color:              s.color,
	}
	if s.existing != nil {
		img.ID = s.existing.ID
	}
	return img
}

// Close stops the debounce timer. Unflushed edits are dropped; the
// session must not be used afterwards.
func (s *Session) Close() {
	s.deb.Stop()
}

// InsufficientCredits reports whether the balance no longer covers one
// apply. Editing stays enabled either way; the caller shows the modal.
func (s *Session) InsufficientCredits() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.balance < transform.Fee
}

// DebitHandle exposes the most recent background debit, nil before the
// first apply. Save never waits on it.
func (s *Session) DebitHandle() *jobs.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.debit
}

// State is a read-only snapshot for the editor status endpoint.
type State struct {
	Type                transform.Type   `json:"type"`
	Title               string           `json:"title"`
	Config              transform.Config `json:"config"`
	HasPendingChange    bool             `json:"has_pending_change"`
	PreviewURL          string           `json:"preview_url,omitempty"`
	Width               int              `json:"width,omitempty"`
	Height              int              `json:"height,omitempty"`
	AspectRatio         string           `json:"aspect_ratio,omitempty"`
	Transforming        bool             `json:"transforming"`
	Saving              bool             `json:"saving"`
	CreditBalance       int              `json:"credit_balance"`
	InsufficientCredits bool             `json:"insufficient_credits"`
}

func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State{
		Type:                s.typ,
		Title:               s.title,
		Config:              s.config,
		HasPendingChange:    s.pending != nil,
		PreviewURL:          s.previewURL,
		Width:               s.width,
		Height:              s.height,
		AspectRatio:         s.ratio,
		Transforming:        s.transforming,
		Saving:              s.saving,
		CreditBalance:       s.balance,
		InsufficientCredits: s.balance < transform.Fee,
	}
}
