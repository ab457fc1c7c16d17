// Package service orchestrates one chat turn: classify the utterance,
// execute the matched action, wrap the reply.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/executor"
	"github.com/granaflow/grana-assistant-go/internal/infra/observability"
	"github.com/granaflow/grana-assistant-go/internal/nlp"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("service/chat")

// replyRole is the fixed author of every assistant reply.
const replyRole = "ASSISTANT"

// Chat turns one free-text message into one reply.
type Chat struct {
	exec    *executor.Executor
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewChat creates the chat service with all dependencies injected.
func NewChat(exec *executor.Executor, metrics *observability.Metrics, logger *zap.Logger) *Chat {
	return &Chat{
		exec:    exec,
		metrics: metrics,
		logger:  logger,
	}
}

// ProcessMessage classifies the utterance and executes its action.
// It never returns a domain error to the caller: the executor already
// converts store failures into a user-facing reply, so the only errors
// left are validation ones.
func (s *Chat) ProcessMessage(ctx context.Context, tenantID string, req domain.ChatRequest) (*domain.ChatReply, error) {
	ctx, span := tracer.Start(ctx, "Chat.ProcessMessage")
	defer span.End()
	span.SetAttributes(attribute.String("tenant.id", tenantID))

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &domain.ErrValidation{Field: "message", Message: "must not be empty"}
	}

	start := time.Now()
	intent := nlp.Parse(message)
	s.metrics.RecordIntent(string(intent.Action))
	span.SetAttributes(
		attribute.String("intent.action", string(intent.Action)),
		attribute.Float64("intent.confidence", intent.Confidence),
	)

	content := s.exec.Execute(ctx, intent, tenantID)

	s.logger.Info("message processed",
		zap.String("tenant_id", tenantID),
		zap.String("action", string(intent.Action)),
		zap.Float64("confidence", intent.Confidence),
		zap.Duration("latency", time.Since(start)),
	)

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.NewString()
	}

	return &domain.ChatReply{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Role:           replyRole,
		Content:        content,
	}, nil
}
