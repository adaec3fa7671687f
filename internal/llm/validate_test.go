package llm

import "testing"

func TestDiffReportSchema(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{
			name: "valid",
			doc:  `{"title":"t","summary":"","categories":{"additions":[{"bullet":"b","citations":{"APL25":{"page":1,"line":2},"APL13":null}}],"updates":[],"redactions":[]},"conclusion":""}`,
		},
		{
			name:    "missing category array",
			doc:     `{"title":"t","categories":{"additions":[],"updates":[]}}`,
			wantErr: true,
		},
		{
			name:    "citation missing line",
			doc:     `{"title":"t","categories":{"additions":[{"bullet":"b","citations":{"APL25":{"page":1}}}],"updates":[],"redactions":[]}}`,
			wantErr: true,
		},
		{
			name:    "empty bullet",
			doc:     `{"title":"t","categories":{"additions":[{"bullet":"","citations":{}}],"updates":[],"redactions":[]}}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DiffReportSchema.Validate([]byte(tt.doc))
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestScoredReportSchema(t *testing.T) {
	ok := `{"title":"t","bullets":[{"bullet_title":"a","bullet_content":"b","score":7,"revision_type":"addition","citations":{"APL25":{"page":1,"line":1}}}]}`
	if err := ScoredReportSchema.Validate([]byte(ok)); err != nil {
		t.Fatalf("expected valid: %v", err)
	}
	bad := `{"title":"t","bullets":[{"bullet_title":"a","bullet_content":"b","score":7,"revision_type":"Addition","citations":{}}]}`
	if err := ScoredReportSchema.Validate([]byte(bad)); err == nil {
		t.Fatal("expected enum violation")
	}
	frac := `{"title":"t","bullets":[{"bullet_title":"a","bullet_content":"b","score":7.5,"revision_type":"update","citations":{}}]}`
	if err := ScoredReportSchema.Validate([]byte(frac)); err == nil {
		t.Fatal("expected integer violation")
	}
}
