// Package chat coordinates the request pipeline: retrieval and entity
// extraction fan out concurrently, the retrieval result feeds the completion
// engine, and the assembled exchange lands in the history store.
package chat

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"ragchat/app/agent"
	"ragchat/store"
	"ragchat/types"
)

// entitiesMarker prefixes the trailing out-of-band frame on the stream so
// the consumer can separate it from content chunks.
const entitiesMarker = "[ENTITIES]"

// Retriever finds the best-matching indexed document for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) string
}

// Completer produces a model reply given the user message and context.
type Completer interface {
	Complete(ctx context.Context, userMessage, contextText string) (string, error)
	CompleteStream(ctx context.Context, userMessage, contextText string) (<-chan agent.StreamChunk, error)
}

// Extractor pulls structured entities out of free text.
type Extractor func(text string) types.Entities

type Orchestrator struct {
	retriever Retriever
	completer Completer
	extract   Extractor
	history   store.HistoryStorer
	logger    *slog.Logger
}

func NewOrchestrator(retriever Retriever, completer Completer, extract Extractor, history store.HistoryStorer) *Orchestrator {
	return &Orchestrator{
		retriever: retriever,
		completer: completer,
		extract:   extract,
		history:   history,
		logger:    slog.Default(),
	}
}

// Ask runs the non-streaming pipeline. Retrieval and extraction progress
// independently; completion waits on retrieval only because extraction does
// not feed it. A completion failure degrades the reply rather than the
// request: retrieval and entities are still worth returning.
func (o *Orchestrator) Ask(ctx context.Context, params types.ChatParams) (*types.ChatResponse, error) {
	retrievalCh, entitiesCh := o.fanOut(ctx, params.Message)

	retrieval := <-retrievalCh
	entities := <-entitiesCh

	reply, err := o.completer.Complete(ctx, params.Message, completionContext(params, retrieval))
	if err != nil {
		o.logger.Error("chat completion failed", "conversation_id", params.ConversationID, "error", err)
		reply = "Error in chat completion: " + err.Error()
	}

	o.persist(ctx, params.ConversationID, params.Message, reply)

	return &types.ChatResponse{
		Reply:     reply,
		Retrieval: retrieval,
		Entities:  entities,
	}, nil
}

// AskStream runs the streaming pipeline, writing server-sent-event frames to
// w and flushing after every chunk. Stream start blocks on retrieval but not
// on extraction; the entity frame goes out after the content ends. A
// provider failure mid-stream becomes an error frame and ends the stream.
func (o *Orchestrator) AskStream(ctx context.Context, params types.ChatParams, w *bufio.Writer) error {
	retrievalCh, entitiesCh := o.fanOut(ctx, params.Message)

	retrieval := <-retrievalCh

	stream, err := o.completer.CompleteStream(ctx, params.Message, completionContext(params, retrieval))
	if err != nil {
		o.logger.Error("chat completion stream failed to start", "conversation_id", params.ConversationID, "error", err)
		return writeFrame(w, "Error: "+err.Error())
	}

	var reply strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			o.logger.Error("chat completion stream failed", "conversation_id", params.ConversationID, "error", chunk.Err)
			return writeFrame(w, "Error: "+chunk.Err.Error())
		}
		reply.WriteString(chunk.Content)
		if err := writeFrame(w, chunk.Content); err != nil {
			return err
		}
	}

	entities := <-entitiesCh
	payload, err := json.Marshal(entities)
	if err != nil {
		return err
	}
	if err := writeFrame(w, entitiesMarker+string(payload)); err != nil {
		return err
	}

	o.persist(ctx, params.ConversationID, params.Message, reply.String())
	return nil
}

func (o *Orchestrator) fanOut(ctx context.Context, message string) (<-chan string, <-chan types.Entities) {
	retrievalCh := make(chan string, 1)
	entitiesCh := make(chan types.Entities, 1)

	go func() {
		retrievalCh <- o.retriever.Retrieve(ctx, message)
	}()
	go func() {
		entitiesCh <- o.extract(message)
	}()

	return retrievalCh, entitiesCh
}

// completionContext resolves the divergent historical contracts: retrieval
// always runs, but a non-empty caller-supplied context wins.
func completionContext(params types.ChatParams, retrieval string) string {
	if params.Context != "" {
		return params.Context
	}
	return retrieval
}

func (o *Orchestrator) persist(ctx context.Context, conversationID, userMessage, reply string) {
	if o.history == nil {
		return
	}
	if err := o.history.SaveExchange(ctx, conversationID, userMessage, reply); err != nil {
		o.logger.Error("failed to persist chat exchange", "conversation_id", conversationID, "error", err)
	}
}

func writeFrame(w *bufio.Writer, content string) error {
	if _, err := fmt.Fprintf(w, "data: %s\n\n", content); err != nil {
		return err
	}
	return w.Flush()
}
