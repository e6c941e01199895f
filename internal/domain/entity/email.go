package entity

import (
	"time"

	"booking-sync-service/pkg/utils"
)

// Email Process Status
const (
	StatusPending   = "PENDING"
	StatusExtracted = "EXTRACTED"
	StatusFailed    = "FAILED"
)

// Email represents a booking email pulled from the mailbox
type Email struct {
	EmailID       string                 `bson:"emailId"`
	From          string                 `bson:"from"`
	To            string                 `bson:"to"`
	Subject       string                 `bson:"subject"`
	Body          string                 `bson:"body"`
	HTMLBody      string                 `bson:"htmlBody"`
	ReceivedAt    time.Time              `bson:"receivedAt"`
	Labels        []string               `bson:"labels"`
	ProcessedAt   time.Time              `bson:"processedAt"`
	ProcessStatus string                 `bson:"processStatus"`
	ProcessorType string                 `bson:"processorType"`
	ErrorDetail   string                 `bson:"errorDetail"`
	ExtractedData map[string]interface{} `bson:"extractedData"`
}

// PlainText returns the text the extractors work on
func (e *Email) PlainText() string {
	if e.Body != "" {
		return e.Body
	}
	return utils.CleanHTMLText(e.HTMLBody)
}
