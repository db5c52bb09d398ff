package httpapi

import (
	"net/http"
	"strings"

	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"go.opentelemetry.io/otel/attribute"
)

// ListResource serves one collection. Each query parameter is an exact-match
// filter on the field of the same name; repeated parameters use the first value.
func (h *Handler) ListResource(resource string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r.Context(), "httpapi.Handler.ListResource", attribute.String("http.resource", resource))
		defer span.End()

		query := r.URL.Query()
		filters := make(map[string]string, len(query))
		for name, values := range query {
			name = strings.TrimSpace(name)
			if name == "" || len(values) == 0 {
				continue
			}
			filters[name] = values[0]
		}

		rows, err := h.statsService.List(ctx, resource, filters)
		if err != nil {
			h.logger.WarnContext(ctx, "list resource failed", "resource", resource, "error", err)
			writeError(ctx, w, err)
			return
		}
		if rows == nil {
			rows = []entity.Record{}
		}

		writeSuccess(ctx, w, http.StatusOK, rows)
	}
}

func (h *Handler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Overview")
	defer span.End()

	counts, err := h.statsService.Overview(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "overview failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, counts)
}
