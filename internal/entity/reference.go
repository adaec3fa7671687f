package entity

// ReferenceID is the metadata derived from an APL filename (APL25-008.pdf).
type ReferenceID struct {
	ID          string `json:"id"`           // 25-008
	Period      string `json:"period"`       // 2025
	CitationKey string `json:"citation_key"` // APL25
}
