// Package store persists itineraries and their activities as a single JSON document.
//
// Every mutating call rewrites the whole document before it returns, so the file
// on disk is always a complete snapshot. Calls are serialized by an internal
// mutex; the store assumes it is the only writer of its file.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/model"
	"github.com/foxtrail/planner/pkg/logger"
	"github.com/foxtrail/planner/pkg/metrics"
)

// Store is the durable source of truth for all itineraries.
type Store struct {
	path     string
	clock    clock.Clock
	location *time.Location
	logger   *logger.Logger
	newID    func() string

	mu          sync.Mutex
	itineraries []*model.Itinerary
	loaded      bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLocation sets the time zone used to lay out the seed itinerary.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) { s.location = loc }
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator replaces the UUIDv7 generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// New creates a store backed by the JSON document at path. Init must be called
// before use.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:        path,
		clock:       clock.Real{},
		location:    time.UTC,
		logger:      logger.NewNop(),
		newID:       func() string { return uuid.Must(uuid.NewV7()).String() },
		itineraries: make([]*model.Itinerary, 0),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the location of the backing document.
func (s *Store) Path() string {
	return s.path
}

// Loaded reports whether Init completed successfully.
func (s *Store) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Init loads the backing document. When it does not exist yet, a sample
// itinerary is written in its place. A document that exists but cannot be
// parsed yields ErrMalformedState.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		s.itineraries = []*model.Itinerary{seedItinerary(s.clock.Now(), s.location, s.newID)}
		if err := s.persistLocked(); err != nil {
			return err
		}
		s.loaded = true
		s.logger.Info("seeded itinerary document", zap.String("path", s.path))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read itinerary document: %w", err)
	}

	var docs []*model.Itinerary
	if err := json.Unmarshal(data, &docs); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformedState, s.path, err)
	}
	itineraries := make([]*model.Itinerary, 0, len(docs))
	for i, it := range docs {
		if it == nil || it.ID == "" {
			return fmt.Errorf("%w: %s: entry %d has no id", ErrMalformedState, s.path, i)
		}
		fillLoaded(it)
		itineraries = append(itineraries, it)
	}

	s.itineraries = itineraries
	s.loaded = true
	metrics.ItinerariesStored.Set(float64(len(itineraries)))
	s.logger.Info("loaded itinerary document",
		zap.String("path", s.path),
		zap.Int("itineraries", len(itineraries)),
	)
	return nil
}

// List returns every itinerary in insertion order.
func (s *Store) List() []model.Itinerary {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Itinerary, 0, len(s.itineraries))
	for _, it := range s.itineraries {
		out = append(out, *it.Clone())
	}
	return out
}

// Get returns the itinerary with the given ID.
func (s *Store) Get(id string) (*model.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(id)
	if it == nil {
		return nil, ErrNotFound
	}
	return it.Clone(), nil
}

// Create allocates a new itinerary from req, applying defaults for missing fields.
func (s *Store) Create(req model.CreateItineraryRequest) (*model.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	it := &model.Itinerary{
		ID:            s.newID(),
		Title:         req.Title,
		Type:          req.Type.OrDefault(model.ItineraryTypeCustom),
		Destination:   req.Destination,
		StartDate:     now,
		EndDate:       now,
		StartLocation: req.StartLocation,
		Collaborators: append([]string{}, req.Collaborators...),
		Preferences:   req.Preferences.Clone(),
		AIGenerated:   req.AIGenerated,
		CreatedAt:     now,
		UpdatedAt:     now,
		Items:         []model.Activity{},
	}
	if it.Title == "" {
		it.Title = model.DefaultItineraryTitle
	}
	if req.StartDate != nil {
		it.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		it.EndDate = req.EndDate.UTC()
	}

	s.itineraries = append(s.itineraries, it)
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return it.Clone(), nil
}

// Update merges the non-nil fields of req into the itinerary.
func (s *Store) Update(id string, req model.UpdateItineraryRequest) (*model.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(id)
	if it == nil {
		return nil, ErrNotFound
	}

	if req.Title != nil {
		it.Title = *req.Title
		if it.Title == "" {
			it.Title = model.DefaultItineraryTitle
		}
	}
	if req.Type != nil {
		it.Type = req.Type.OrDefault(model.ItineraryTypeCustom)
	}
	if req.Destination != nil {
		it.Destination = *req.Destination
	}
	if req.StartLocation != nil {
		it.StartLocation = *req.StartLocation
	}
	if req.StartDate != nil {
		it.StartDate = req.StartDate.UTC()
	}
	if req.EndDate != nil {
		it.EndDate = req.EndDate.UTC()
	}
	if req.Collaborators != nil {
		it.Collaborators = append([]string{}, req.Collaborators...)
	}
	if req.Preferences != nil {
		it.Preferences = req.Preferences.Clone()
	}
	if req.AIGenerated != nil {
		it.AIGenerated = *req.AIGenerated
	}
	s.touch(it)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return it.Clone(), nil
}

// Remove deletes the itinerary and its activities. It reports false when no
// itinerary has the given ID.
func (s *Store) Remove(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexLocked(id)
	if idx < 0 {
		return false, nil
	}
	s.itineraries = append(s.itineraries[:idx], s.itineraries[idx+1:]...)

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// AddItem appends a new activity built from req to the itinerary.
func (s *Store) AddItem(itineraryID string, req model.CreateActivityRequest) (*model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(itineraryID)
	if it == nil {
		return nil, ErrNotFound
	}

	item := model.Activity{
		ID:         s.newID(),
		Name:       req.Name,
		Category:   req.Category.OrDefault(model.CategoryGeneral),
		Location:   req.Location,
		Day:        model.PositiveDay(req.Day),
		StartTime:  utcPtr(req.StartTime),
		EndTime:    utcPtr(req.EndTime),
		TravelMode: req.TravelMode.OrDefault(model.TravelModeWalk),
		Notes:      req.Notes,
	}
	if item.Name == "" {
		item.Name = model.DefaultActivityName
	}
	it.Items = append(it.Items, item)
	s.touch(it)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	out := item.Clone()
	return &out, nil
}

// UpdateItem merges the non-nil fields of req into the activity.
func (s *Store) UpdateItem(itineraryID, itemID string, req model.UpdateActivityRequest) (*model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(itineraryID)
	if it == nil {
		return nil, ErrNotFound
	}
	idx := it.FindItem(itemID)
	if idx < 0 {
		return nil, ErrNotFound
	}

	item := &it.Items[idx]
	if req.Name != nil {
		item.Name = *req.Name
		if item.Name == "" {
			item.Name = model.DefaultActivityName
		}
	}
	if req.Category != nil {
		item.Category = req.Category.OrDefault(model.CategoryGeneral)
	}
	if req.Location != nil {
		item.Location = *req.Location
	}
	if req.Day != nil {
		item.Day = model.PositiveDay(req.Day)
	}
	if req.StartTime != nil {
		item.StartTime = utcPtr(req.StartTime)
	}
	if req.EndTime != nil {
		item.EndTime = utcPtr(req.EndTime)
	}
	if req.TravelMode != nil {
		item.TravelMode = req.TravelMode.OrDefault(model.TravelModeWalk)
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}
	if req.Sequence != nil {
		seq := *req.Sequence
		item.Sequence = &seq
	}
	s.touch(it)

	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	out := item.Clone()
	return &out, nil
}

// RemoveItem deletes an activity. It reports false when either ID is unknown.
func (s *Store) RemoveItem(itineraryID, itemID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(itineraryID)
	if it == nil {
		return false, nil
	}
	idx := it.FindItem(itemID)
	if idx < 0 {
		return false, nil
	}
	it.Items = append(it.Items[:idx], it.Items[idx+1:]...)
	s.touch(it)

	if err := s.persistLocked(); err != nil {
		return false, err
	}
	return true, nil
}

// ReplaceItems substitutes the itinerary's whole activity list. Activities
// without an ID, or repeating one already seen in items, get a fresh ID.
func (s *Store) ReplaceItems(itineraryID string, items []model.Activity) ([]model.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(itineraryID)
	if it == nil {
		return nil, ErrNotFound
	}
	if err := s.replaceItemsLocked(it, items); err != nil {
		return nil, err
	}
	return model.CloneActivities(it.Items), nil
}

// ReorderItems passes the itinerary's current items to reorder and persists
// the result. The read and the write happen under one lock, so writes from
// other callers cannot land in between.
func (s *Store) ReorderItems(itineraryID string, reorder func([]model.Activity) []model.Activity) (*model.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it := s.findLocked(itineraryID)
	if it == nil {
		return nil, ErrNotFound
	}
	if err := s.replaceItemsLocked(it, reorder(model.CloneActivities(it.Items))); err != nil {
		return nil, err
	}
	return it.Clone(), nil
}

func (s *Store) replaceItemsLocked(it *model.Itinerary, items []model.Activity) error {
	replaced := make([]model.Activity, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = item.Clone()
		if _, dup := seen[item.ID]; item.ID == "" || dup {
			item.ID = s.newID()
		}
		seen[item.ID] = struct{}{}
		normalizeActivity(&item)
		replaced = append(replaced, item)
	}
	it.Items = replaced
	s.touch(it)

	return s.persistLocked()
}

func (s *Store) findLocked(id string) *model.Itinerary {
	if idx := s.indexLocked(id); idx >= 0 {
		return s.itineraries[idx]
	}
	return nil
}

func (s *Store) indexLocked(id string) int {
	for i, it := range s.itineraries {
		if it.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) now() time.Time {
	return s.clock.Now().UTC()
}

// touch refreshes UpdatedAt, keeping it strictly increasing even when the
// clock has not moved since the previous write.
func (s *Store) touch(it *model.Itinerary) {
	now := s.now()
	if !now.After(it.UpdatedAt) {
		now = it.UpdatedAt.Add(time.Nanosecond)
	}
	it.UpdatedAt = now
}

func (s *Store) persistLocked() error {
	start := time.Now()

	data, err := json.MarshalIndent(s.itineraries, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	if err := writeFileAtomic(s.path, data, 0o644); err != nil {
		metrics.StoreWriteFailures.Inc()
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}

	metrics.RecordStoreWrite(time.Since(start).Seconds(), len(s.itineraries))
	s.logger.Debug("itinerary document written",
		zap.String("path", s.path),
		zap.Int("itineraries", len(s.itineraries)),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// fillLoaded replaces absent collections with empty ones so loaded records
// look like freshly created ones.
func fillLoaded(it *model.Itinerary) {
	if it.Collaborators == nil {
		it.Collaborators = []string{}
	}
	if it.Preferences == nil {
		it.Preferences = model.Preferences{}
	}
	if it.Items == nil {
		it.Items = []model.Activity{}
	}
}

func normalizeActivity(item *model.Activity) {
	if item.Name == "" {
		item.Name = model.DefaultActivityName
	}
	item.Category = item.Category.OrDefault(model.CategoryGeneral)
	item.TravelMode = item.TravelMode.OrDefault(model.TravelModeWalk)
	item.Day = model.PositiveDay(item.Day)
	item.StartTime = utcPtr(item.StartTime)
	item.EndTime = utcPtr(item.EndTime)
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
