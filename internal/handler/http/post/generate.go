package post

import (
	"errors"
	"log/slog"
	"net/http"

	"trendscribe/internal/handler/http/respond"
	"trendscribe/internal/observability/logging"
	"trendscribe/internal/usecase/generate"
)

type GenerateHandler struct {
	Trigger Trigger
	Logger  *slog.Logger
}

// ServeHTTP runs generation synchronously and maps the outcome:
// 201 stored, 409 busy, 502 generation failed or timed out,
// 503 storage unavailable.
func (h GenerateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := generate.WithTrigger(r.Context(), generate.TriggerManual)
	logger := logging.ForRequest(ctx, h.Logger)

	p, err := h.Trigger.Trigger(ctx)
	if err == nil {
		logger.Info("post generated on demand", slog.Int64("post_id", p.ID))
		respond.JSON(w, http.StatusCreated, GenerateResponse{
			Success: true,
			Message: "post generated and saved",
			Post:    toDTO(p),
		})
		return
	}

	switch {
	case errors.Is(err, generate.ErrBusy):
		respond.Message(w, http.StatusConflict, "generation already in progress")
	case errors.Is(err, generate.ErrTimeout):
		respond.SafeAppError(w, http.StatusBadGateway,
			respond.NewAppError(http.StatusBadGateway, "generation timed out", err))
	case errors.Is(err, generate.ErrGenerationFailed):
		respond.SafeAppError(w, http.StatusBadGateway,
			respond.NewAppError(http.StatusBadGateway, "generation backend failed", err))
	case errors.Is(err, generate.ErrPersistenceFailed):
		respond.SafeAppError(w, http.StatusServiceUnavailable,
			respond.NewAppError(http.StatusServiceUnavailable, "post could not be stored", err))
	default:
		respond.SafeError(w, http.StatusInternalServerError, err)
	}
}
