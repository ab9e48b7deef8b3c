package models

// Limits on multi-token request bodies
const (
	CompareMinTokens = 2
	CompareMaxTokens = 5
	BatchMaxTokens   = 20
)

// CompareRequest is the body of a comparison request
type CompareRequest struct {
	Tokens []string `json:"tokens"`
}

// BatchRequest is the body of a batch analysis request
type BatchRequest struct {
	Tokens []string `json:"tokens"`
}
