// Package models defines the record shapes handled by the PhishGuard client.
package models

import "time"

// InputType classifies what kind of content was analyzed. It is non-sensitive
// metadata and stays in the clear so records can be listed without a key.
type InputType string

const (
	InputTypeEmail InputType = "email"
	InputTypeURL   InputType = "url"
	InputTypeText  InputType = "text"
)

// MLResult is the classifier verdict for a single analysis.
type MLResult struct {
	IsPhishing          bool    `json:"isPhishing"`
	PhishingProbability float64 `json:"phishingProbability"`
}

// Analysis is the plaintext form of an analysis record. UserEmail,
// InputContent, AnalysisContext and MLResult are sensitive and exist in this
// form only in memory while the session is unlocked.
type Analysis struct {
	ID              string    `json:"id"`
	UserEmail       string    `json:"userEmail"`
	InputContent    string    `json:"inputContent"`
	AnalysisContext string    `json:"analysisContext,omitempty"`
	MLResult        *MLResult `json:"mlResult"`
	InputType       InputType `json:"inputType"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// EncryptedAnalysis mirrors Analysis with each sensitive field replaced by an
// opaque serialized ciphertext/nonce pair. ID, InputType and the timestamps
// remain in the clear for listing and sorting without decryption.
type EncryptedAnalysis struct {
	ID              string    `json:"id"`
	UserEmail       string    `json:"userEmail"`
	InputContent    string    `json:"inputContent"`
	AnalysisContext string    `json:"analysisContext,omitempty"`
	MLResult        string    `json:"mlResult"`
	InputType       InputType `json:"inputType"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}
