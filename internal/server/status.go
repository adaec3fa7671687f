package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

type statusResponse struct {
	Status constants.TaskStatus `json:"status"`
	JSON   *entity.ScoredReport `json:"json,omitempty"`
	Error  string               `json:"error,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	task, err := s.compare.Status(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	resp := statusResponse{Status: task.Status}
	switch task.Status {
	case constants.TaskStatusCompleted:
		resp.JSON = task.Result
	case constants.TaskStatusFailed:
		resp.Error = task.Error
	}
	writeJSON(w, http.StatusOK, resp)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	task, err := s.compare.Status(r.Context(), chi.URLParam(r, "task_id"))
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	if task.Status != constants.TaskStatusCompleted || task.Result == nil {
		writeError(w, r, s.logger, common.NewAppError(common.CodeConflict,
			fmt.Sprintf("task is %s, only completed tasks can be exported", task.Status), nil))
		return
	}

	data, err := s.export.ReportXLSX(task.ID, task.Result)
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "apl-diff-"+task.ID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "APL Comparison API is running"})
}
