package types

import (
	"time"

	"github.com/google/uuid"
)

// IndexVersion is the format tag carried by every persisted index.
// Load rejects any other value.
const IndexVersion = 1

// IndexedDocument is one entry of the persisted document index.
// Degraded marks a document whose embedding could not be computed at
// build time; the retriever skips such entries instead of scoring them.
type IndexedDocument struct {
	ID        uuid.UUID
	Name      string
	Text      string
	Embedding []float32
	Degraded  bool
}

// DocumentIndex is the full similarity index, rebuilt as a whole by every
// indexing run and read-only afterwards. Dimension must equal the embedding
// length of every non-degraded document.
type DocumentIndex struct {
	Version   int
	Model     string
	Dimension int
	Documents []IndexedDocument
}

// Entities holds the fixed set of fields the extractor pulls from free text.
// Fields default to the empty string when their pattern does not match.
type Entities struct {
	OrderNumber string `json:"order_number"`
	PhoneNumber string `json:"phone_number"`
	Address     string `json:"address"`
}

// ChatExchange is one persisted conversation turn.
type ChatExchange struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserMessage    string    `json:"user_message"`
	AssistantReply string    `json:"assistant_reply"`
	Timestamp      time.Time `json:"timestamp"`
}

type ChatResponse struct {
	Reply     string   `json:"reply"`
	Retrieval string   `json:"retrieval"`
	Entities  Entities `json:"entities"`
}
