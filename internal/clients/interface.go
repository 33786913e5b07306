package clients

import (
	"context"

	"feed-mapper-service/internal/models"
)

// ImportResult is the marketplace's acknowledgement of an item submission
type ImportResult struct {
	TaskID   string `json:"taskId"`
	Accepted int    `json:"accepted"`
	Rejected int    `json:"rejected"`
}

// ImportStatus reports the state of a previously submitted import task
type ImportStatus struct {
	TaskID string   `json:"taskId"`
	State  string   `json:"state"`
	Errors []string `json:"errors,omitempty"`
}

// ItemImportClient submits built offers to a marketplace item-import API.
// The wire protocol behind it is marketplace-specific and out of scope here;
// implementations own auth, throttling and retries.
type ItemImportClient interface {
	// SubmitItems sends ready offers for import and returns the task handle
	SubmitItems(ctx context.Context, items []models.BuiltOffer) (*ImportResult, error)

	// GetImportStatus polls the state of a submitted task
	GetImportStatus(ctx context.Context, taskID string) (*ImportStatus, error)
}
