package handler

import (
	"encoding/json"
	"net/http"

	"github.com/granaflow/grana-assistant-go/internal/domain"
	"github.com/granaflow/grana-assistant-go/internal/service"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ============================================================
// 💬 Chat — POST /v1/chat
// ============================================================

func chatHandler(svc *service.Chat, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/chat")
		defer span.End()

		tenantID := TenantIDFromContext(ctx)
		if tenantID == "" {
			writeError(w, http.StatusUnauthorized, "tenant not resolved")
			return
		}
		span.SetAttributes(attribute.String("tenant.id", tenantID))

		var req domain.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		reply, err := svc.ProcessMessage(ctx, tenantID, req)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeJSON(w, http.StatusOK, reply)
	}
}
