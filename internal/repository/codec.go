package repository

import (
	"encoding/json"
	"fmt"

	"github.com/joseph-ayodele/apl-diff/internal/entity"
)

const tasksTable = "apl_tasks"

func encodeResult(r *entity.ScoredReport) ([]byte, error) {
	if r == nil {
		return nil, nil
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return b, nil
}

func decodeResult(b []byte) (*entity.ScoredReport, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var r entity.ScoredReport
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
