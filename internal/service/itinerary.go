// Package service provides business logic for the itinerary planner.
package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/foxtrail/planner/internal/clock"
	"github.com/foxtrail/planner/internal/model"
	"github.com/foxtrail/planner/internal/optimizer"
	"github.com/foxtrail/planner/internal/store"
	"github.com/foxtrail/planner/internal/synthesizer"
	"github.com/foxtrail/planner/pkg/logger"
	"github.com/foxtrail/planner/pkg/metrics"
)

// SyncMessage is reported by the calendar sync stub.
const SyncMessage = "Calendar sync simulated successfully."

// ItineraryStore is the persistence contract the service relies on.
// *store.Store satisfies it.
type ItineraryStore interface {
	List() []model.Itinerary
	Get(id string) (*model.Itinerary, error)
	Create(req model.CreateItineraryRequest) (*model.Itinerary, error)
	Update(id string, req model.UpdateItineraryRequest) (*model.Itinerary, error)
	Remove(id string) (bool, error)
	AddItem(itineraryID string, req model.CreateActivityRequest) (*model.Activity, error)
	UpdateItem(itineraryID, itemID string, req model.UpdateActivityRequest) (*model.Activity, error)
	RemoveItem(itineraryID, itemID string) (bool, error)
	ReplaceItems(itineraryID string, items []model.Activity) ([]model.Activity, error)
	ReorderItems(itineraryID string, reorder func([]model.Activity) []model.Activity) (*model.Itinerary, error)
}

// ItineraryService handles itinerary operations.
type ItineraryService struct {
	store       ItineraryStore
	optimizer   *optimizer.Optimizer
	synthesizer *synthesizer.Synthesizer
	events      *EventNotifier
	clock       clock.Clock
	logger      *logger.Logger
	tracer      trace.Tracer
}

// NewItineraryService creates a new itinerary service. events may be nil.
func NewItineraryService(
	st ItineraryStore,
	opt *optimizer.Optimizer,
	syn *synthesizer.Synthesizer,
	events *EventNotifier,
	clk clock.Clock,
	log *logger.Logger,
) *ItineraryService {
	if log == nil {
		log = logger.Global()
	}
	return &ItineraryService{
		store:       st,
		optimizer:   opt,
		synthesizer: syn,
		events:      events,
		clock:       clk,
		logger:      log,
		tracer:      otel.Tracer("github.com/foxtrail/planner/internal/service"),
	}
}

// List returns every itinerary.
func (s *ItineraryService) List(ctx context.Context) []model.Itinerary {
	_, span := s.tracer.Start(ctx, "itinerary.list")
	defer span.End()

	list := s.store.List()
	span.SetAttributes(attribute.Int("itinerary.count", len(list)))
	return list
}

// Get retrieves an itinerary by ID.
func (s *ItineraryService) Get(ctx context.Context, id string) (*model.Itinerary, error) {
	_, span := s.tracer.Start(ctx, "itinerary.get", trace.WithAttributes(attribute.String("itinerary.id", id)))
	defer span.End()

	return s.store.Get(id)
}

// Create creates a new itinerary.
func (s *ItineraryService) Create(ctx context.Context, req *model.CreateItineraryRequest) (it *model.Itinerary, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.create")
	defer func() { s.finish(span, "create", err) }()

	it, err = s.store.Create(*req)
	if err != nil {
		return nil, s.failed("create itinerary", err)
	}

	s.logger.WithItinerary(it.ID).Info("itinerary created", zap.String("type", string(it.Type)))
	s.events.Notify(ctx, model.EventTypeCreated, it, "")
	return it, nil
}

// Update merges the provided fields into an itinerary.
func (s *ItineraryService) Update(ctx context.Context, id string, req *model.UpdateItineraryRequest) (it *model.Itinerary, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.update", trace.WithAttributes(attribute.String("itinerary.id", id)))
	defer func() { s.finish(span, "update", err) }()

	it, err = s.store.Update(id, *req)
	if err != nil {
		return nil, s.failed("update itinerary", err)
	}

	s.events.Notify(ctx, model.EventTypeUpdated, it, "")
	return it, nil
}

// Delete removes an itinerary and all of its activities. It reports false when
// the itinerary does not exist.
func (s *ItineraryService) Delete(ctx context.Context, id string) (removed bool, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.delete", trace.WithAttributes(attribute.String("itinerary.id", id)))
	defer func() { s.finish(span, "delete", missing(removed, err)) }()

	removed, err = s.store.Remove(id)
	if err != nil {
		return false, s.failed("delete itinerary", err)
	}
	if removed {
		s.logger.WithItinerary(id).Info("itinerary deleted")
		s.events.Notify(ctx, model.EventTypeDeleted, &model.Itinerary{ID: id}, "")
	}
	return removed, nil
}

// AddItem appends an activity to an itinerary.
func (s *ItineraryService) AddItem(ctx context.Context, itineraryID string, req *model.CreateActivityRequest) (item *model.Activity, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.add_item", trace.WithAttributes(attribute.String("itinerary.id", itineraryID)))
	defer func() { s.finish(span, "add_item", err) }()

	item, err = s.store.AddItem(itineraryID, *req)
	if err != nil {
		return nil, s.failed("add item", err)
	}

	s.events.Notify(ctx, model.EventTypeItemAdded, &model.Itinerary{ID: itineraryID}, item.ID)
	return item, nil
}

// UpdateItem merges the provided fields into an activity.
func (s *ItineraryService) UpdateItem(ctx context.Context, itineraryID, itemID string, req *model.UpdateActivityRequest) (item *model.Activity, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.update_item", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID),
		attribute.String("item.id", itemID),
	))
	defer func() { s.finish(span, "update_item", err) }()

	item, err = s.store.UpdateItem(itineraryID, itemID, *req)
	if err != nil {
		return nil, s.failed("update item", err)
	}

	s.events.Notify(ctx, model.EventTypeItemUpdated, &model.Itinerary{ID: itineraryID}, itemID)
	return item, nil
}

// RemoveItem deletes an activity. It reports false when either ID is unknown.
func (s *ItineraryService) RemoveItem(ctx context.Context, itineraryID, itemID string) (removed bool, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.remove_item", trace.WithAttributes(
		attribute.String("itinerary.id", itineraryID),
		attribute.String("item.id", itemID),
	))
	defer func() { s.finish(span, "remove_item", missing(removed, err)) }()

	removed, err = s.store.RemoveItem(itineraryID, itemID)
	if err != nil {
		return false, s.failed("remove item", err)
	}
	if removed {
		s.events.Notify(ctx, model.EventTypeItemRemoved, &model.Itinerary{ID: itineraryID}, itemID)
	}
	return removed, nil
}

// Optimize reorders an itinerary's activities chronologically, numbers them
// 1..n and persists the new order.
func (s *ItineraryService) Optimize(ctx context.Context, id string) (result *model.OptimizeResult, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.optimize", trace.WithAttributes(attribute.String("itinerary.id", id)))
	defer func() { s.finish(span, "optimize", err) }()

	it, err := s.store.ReorderItems(id, s.optimizer.Optimize)
	if err != nil {
		return nil, s.failed("optimize itinerary", err)
	}
	span.SetAttributes(attribute.Int("item.count", len(it.Items)))

	s.events.Notify(ctx, model.EventTypeOptimized, it, "")
	return &model.OptimizeResult{
		Message: optimizer.Message,
		Items:   model.CloneActivities(it.Items),
	}, nil
}

// Generate synthesizes an itinerary from req, commits it and returns the
// stored record.
func (s *ItineraryService) Generate(ctx context.Context, req *model.GenerateItineraryRequest) (it *model.Itinerary, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.generate", trace.WithAttributes(attribute.String("destination", req.Destination)))
	defer func() { s.finish(span, "generate", err) }()

	draft := s.synthesizer.Build(*req)

	created, err := s.store.Create(draft.Itinerary)
	if err != nil {
		return nil, s.failed("create generated itinerary", err)
	}
	if _, err := s.store.ReplaceItems(created.ID, draft.Items); err != nil {
		return nil, s.failed("attach generated items", err)
	}
	it, err = s.store.Get(created.ID)
	if err != nil {
		return nil, s.failed("reload generated itinerary", err)
	}

	for _, item := range it.Items {
		metrics.SynthesizedItemsTotal.WithLabelValues(string(item.Category)).Inc()
	}
	s.logger.Info("itinerary generated",
		zap.String("itinerary_id", it.ID),
		zap.String("destination", it.Destination),
		zap.Int("items", len(it.Items)),
	)
	s.events.Notify(ctx, model.EventTypeGenerated, it, "")
	return it, nil
}

// Sync simulates a calendar sync. No external calendar is contacted.
func (s *ItineraryService) Sync(ctx context.Context, id string) (result *model.SyncResult, err error) {
	ctx, span := s.tracer.Start(ctx, "itinerary.sync", trace.WithAttributes(attribute.String("itinerary.id", id)))
	defer func() { s.finish(span, "sync", err) }()

	it, err := s.store.Get(id)
	if err != nil {
		return nil, err
	}

	s.events.Notify(ctx, model.EventTypeSynced, it, "")
	return &model.SyncResult{
		Message:  SyncMessage,
		SyncedAt: s.clock.Now().UTC(),
	}, nil
}

// failed logs persistence problems and wraps err with the operation name.
// Not-found results pass through untouched.
func (s *ItineraryService) failed(op string, err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return err
	}
	s.logger.Error("itinerary operation failed", zap.String("operation", op), zap.Error(err))
	return fmt.Errorf("%s: %w", op, err)
}

// missing reports a boolean not-found result as ErrNotFound for metrics.
func missing(found bool, err error) error {
	if err == nil && !found {
		return store.ErrNotFound
	}
	return err
}

func (s *ItineraryService) finish(span trace.Span, op string, err error) {
	outcome := "success"
	switch {
	case errors.Is(err, store.ErrNotFound):
		outcome = "not_found"
	case err != nil:
		outcome = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.RecordOperation(op, outcome)
	span.End()
}
