package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/joseph-ayodele/apl-diff/internal/common"
)

type errorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto a status code. Internal causes are logged, not returned.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := common.HTTPStatus(err)
	detail := err.Error()
	var ae *common.AppError
	if errors.As(err, &ae) {
		detail = ae.Message
	}
	if status >= http.StatusInternalServerError {
		logger.Error("http.request.failed", "path", r.URL.Path, "status", status, "error", err)
	} else {
		logger.Warn("http.request.rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeJSON(w, status, errorResponse{Detail: detail, Code: common.CodeOf(err)})
}
