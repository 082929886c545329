package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/exam-planner-api/pkg/events"
	"github.com/noah-isme/exam-planner-api/pkg/jobs"
	"github.com/noah-isme/exam-planner-api/pkg/middleware/requestid"
)

type eventQueue interface {
	Enqueue(job jobs.Job) error
}

// EventService hands exam plan events to a background queue so request
// handlers never wait on the broker.
type EventService struct {
	queue  eventQueue
	logger *zap.Logger
	now    func() time.Time
}

// NewEventService constructs the service. A nil queue disables events.
func NewEventService(queue eventQueue, logger *zap.Logger) *EventService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventService{queue: queue, logger: logger, now: time.Now}
}

// Notify enqueues an event. Enqueue failures are logged, not returned: the
// planner write has already been committed when events are emitted.
func (s *EventService) Notify(ctx context.Context, eventType, departmentID string, payload interface{}) {
	if s == nil || s.queue == nil {
		return
	}
	event := events.Event{
		ID:           uuid.NewString(),
		Type:         eventType,
		DepartmentID: departmentID,
		RequestID:    requestid.FromContext(ctx),
		OccurredAt:   s.now().UTC(),
		Payload:      payload,
	}
	if err := s.queue.Enqueue(jobs.Job{ID: event.ID, Type: eventType, Payload: event}); err != nil {
		s.logger.Sugar().Warnw("event dropped", "type", eventType, "department_id", departmentID, "error", err)
	}
}

// EventPublishHandler returns the queue handler delivering events to publisher.
func EventPublishHandler(publisher events.Publisher) jobs.Handler {
	return func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(events.Event)
		if !ok {
			return fmt.Errorf("job %s: unexpected payload %T", job.ID, job.Payload)
		}
		return publisher.Publish(ctx, event)
	}
}
