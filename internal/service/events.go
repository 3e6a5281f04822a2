package service

import "quill/internal/domain/models"

// Document change event types broadcast to connected clients
const (
	EventDocumentCreated  = "document.created"
	EventDocumentUpdated  = "document.updated"
	EventDocumentDeleted  = "document.deleted"
	EventDocumentRestored = "document.restored"
)

// EventPublisher broadcasts document change events. Implementations must not
// block: services call Publish on the request path.
type EventPublisher interface {
	// PublishDocument broadcasts an event carrying the document's new state
	PublishDocument(eventType string, doc *models.Document)

	// PublishDocumentDeleted broadcasts a deletion by ID
	PublishDocumentDeleted(documentID string)
}

// noopPublisher is used when no event hub is wired up
type noopPublisher struct{}

func (noopPublisher) PublishDocument(string, *models.Document) {}
func (noopPublisher) PublishDocumentDeleted(string)            {}
