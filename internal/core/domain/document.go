package domain

import "time"

// RawDocument is an uploaded report before any text has been pulled out of it.
type RawDocument struct {
	ID       string `json:"id"`
	Filename string `json:"filename"`
	MimeType string `json:"mime_type"`
	Body     []byte `json:"-"`
}

type DocumentWarning struct {
	DocumentID string `json:"document_id"`
	Filename   string `json:"filename"`
	Skipped    bool   `json:"skipped"`
	Message    string `json:"message"`
}

type BatchResult struct {
	Reports  []Report          `json:"reports"`
	Warnings []DocumentWarning `json:"warnings,omitempty"`
	Skipped  int               `json:"skipped"`
}

type IngestResult struct {
	BatchResult
	Added int `json:"added"`
	Total int `json:"total"`
}

// ModelSummary describes a fitted category model.
type ModelSummary struct {
	Classes         []string `json:"classes"`
	VocabularySize  int      `json:"vocabulary_size"`
	TrainSize       int      `json:"train_size"`
	HeldOutSize     int      `json:"held_out_size"`
	HeldOutAccuracy float64  `json:"held_out_accuracy"`
}

type ClassifierState string

const (
	ClassifierIdle     ClassifierState = "idle"
	ClassifierTraining ClassifierState = "training"
	ClassifierReady    ClassifierState = "ready"
	ClassifierFailed   ClassifierState = "failed"
)

type ClassifierStatus struct {
	State     ClassifierState `json:"state"`
	Error     string          `json:"error,omitempty"`
	Model     *ModelSummary   `json:"model,omitempty"`
	TrainedAt *time.Time      `json:"trained_at,omitempty"`
}
