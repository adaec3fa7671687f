package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/apl-diff/constants"
	"github.com/joseph-ayodele/apl-diff/internal/common"
	"github.com/joseph-ayodele/apl-diff/internal/pipeline"
)

const defaultViewMode = "significance"

// compareForm holds the non-file fields of POST /api/compare.
type compareForm struct {
	QuickMode string `form:"quick_mode" validate:"omitempty,oneof=true false"`
	Model     string `form:"model" validate:"omitempty,max=100,printascii"`
	ViewMode  string `form:"view_mode" validate:"omitempty,max=64"`
}

type compareResponse struct {
	TaskID string               `json:"task_id"`
	Status constants.TaskStatus `json:"status"`
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	if err := r.ParseMultipartForm(s.maxUpload); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, r, s.logger, common.InvalidInputf("upload exceeds %d bytes", tooBig.Limit))
			return
		}
		writeError(w, r, s.logger, common.InvalidInputf("expected multipart form: %v", err))
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	form := compareForm{
		QuickMode: strings.ToLower(strings.TrimSpace(r.FormValue("quick_mode"))),
		Model:     strings.TrimSpace(r.FormValue("model")),
		ViewMode:  strings.TrimSpace(r.FormValue("view_mode")),
	}
	if err := common.ValidateStruct(form); err != nil {
		writeError(w, r, s.logger, common.NewAppError(common.CodeInvalidInput, err.Error(), common.ErrInvalidInput))
		return
	}
	if form.Model == "" {
		form.Model = s.defaultModel
	}
	if form.ViewMode == "" {
		form.ViewMode = defaultViewMode
	}

	oldDoc, err := readUpload(r, "old_apl")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	newDoc, err := readUpload(r, "new_apl")
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}

	task, err := s.compare.Submit(r.Context(), CompareRequest{
		Old:      oldDoc,
		New:      newDoc,
		Quick:    form.QuickMode == "true",
		Model:    form.Model,
		ViewMode: form.ViewMode,
	})
	if err != nil {
		writeError(w, r, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, compareResponse{TaskID: task.ID, Status: task.Status})
}

func readUpload(r *http.Request, field string) (pipeline.Document, error) {
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return pipeline.Document{}, common.InvalidInputf("missing file field %q", field)
	}
	defer func() { _ = f.Close() }()

	name := filepath.Base(hdr.Filename)
	if !constants.IsAllowedExt(filepath.Ext(name)) {
		return pipeline.Document{}, common.InvalidInputf("%s: only %s files are accepted, got %q", field, constants.PDF, name)
	}
	data, err := io.ReadAll(f)
	if err != nil {
		return pipeline.Document{}, fmt.Errorf("read %s: %w", field, err)
	}
	if len(data) == 0 {
		return pipeline.Document{}, common.InvalidInputf("%s: %q is empty", field, name)
	}
	return pipeline.Document{Name: name, Data: data}, nil
}
