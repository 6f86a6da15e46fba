package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/unclebandit/crm-backend/internal/model"
	"github.com/unclebandit/crm-backend/internal/queue"
)

// AuditSink is what the worker needs to record an event.
type AuditSink interface {
	Append(ctx context.Context, ev model.CustomerEvent) error
}

// Worker records customer change events into the audit trail.
type Worker struct {
	Audit   AuditSink
	Log     *zap.Logger
	Timeout time.Duration
}

// Constructor
func NewWorker(audit AuditSink, log *zap.Logger) *Worker {
	return &Worker{Audit: audit, Log: log, Timeout: 10 * time.Second}
}

// Handle is a queue.Handler. Undecodable payloads are dropped; a failing
// append is returned so the queue retries it.
func (w *Worker) Handle(payload []byte) error {
	var ev model.CustomerEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		w.Log.Warn("⚠️ dropping invalid customer event", zap.Error(err))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), w.Timeout)
	defer cancel()

	if err := w.Audit.Append(ctx, ev); err != nil {
		w.Log.Error("failed to record customer event", zap.String("event_id", ev.ID), zap.Error(err))
		return err
	}
	w.Log.Debug("recorded customer event", zap.String("event_id", ev.ID), zap.String("type", ev.Type))
	return nil
}

// StartAuditWorker subscribes a Worker writing to audit on the customer
// events topic of q.
func StartAuditWorker(q queue.Queue, audit AuditSink, log *zap.Logger) error {
	return q.Subscribe(queue.TopicCustomerEvents, NewWorker(audit, log).Handle)
}
