package chat

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"testing"

	"ragchat/app/agent"
	"ragchat/types"
)

type mockRetriever struct {
	result string
}

func (m *mockRetriever) Retrieve(context.Context, string) string { return m.result }

type mockCompleter struct {
	reply      string
	err        error
	chunks     []string
	streamErr  error
	gotContext string
	gotMessage string
}

func (m *mockCompleter) Complete(_ context.Context, userMessage, contextText string) (string, error) {
	m.gotMessage = userMessage
	m.gotContext = contextText
	return m.reply, m.err
}

func (m *mockCompleter) CompleteStream(_ context.Context, userMessage, contextText string) (<-chan agent.StreamChunk, error) {
	m.gotMessage = userMessage
	m.gotContext = contextText
	if m.err != nil {
		return nil, m.err
	}
	ch := make(chan agent.StreamChunk, len(m.chunks)+1)
	for _, c := range m.chunks {
		ch <- agent.StreamChunk{Content: c}
	}
	if m.streamErr != nil {
		ch <- agent.StreamChunk{Err: m.streamErr}
	}
	close(ch)
	return ch, nil
}

type mockHistory struct {
	saved [][3]string
	err   error
}

func (m *mockHistory) Init(context.Context) error { return nil }

func (m *mockHistory) SaveExchange(_ context.Context, conversationID, userMessage, assistantReply string) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, [3]string{conversationID, userMessage, assistantReply})
	return nil
}

func (m *mockHistory) History(context.Context, string) ([]types.ChatExchange, error) {
	return nil, nil
}

func (m *mockHistory) Close() error { return nil }

func noEntities(string) types.Entities { return types.Entities{} }

func TestAsk(t *testing.T) {
	completer := &mockCompleter{reply: "the answer"}
	history := &mockHistory{}
	o := NewOrchestrator(&mockRetriever{result: "doc text"}, completer, noEntities, history)

	resp, err := o.Ask(context.Background(), types.ChatParams{
		ConversationID: "c1",
		Message:        "question",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}

	if resp.Reply != "the answer" {
		t.Errorf("Reply = %q", resp.Reply)
	}
	if resp.Retrieval != "doc text" {
		t.Errorf("Retrieval = %q", resp.Retrieval)
	}
	if completer.gotContext != "doc text" {
		t.Errorf("completion context = %q, want retrieval result", completer.gotContext)
	}
	if len(history.saved) != 1 || history.saved[0] != [3]string{"c1", "question", "the answer"} {
		t.Errorf("history = %v", history.saved)
	}
}

func TestAskCallerContextWins(t *testing.T) {
	completer := &mockCompleter{reply: "ok"}
	o := NewOrchestrator(&mockRetriever{result: "retrieved"}, completer, noEntities, &mockHistory{})

	_, err := o.Ask(context.Background(), types.ChatParams{
		ConversationID: "c1",
		Message:        "question",
		Context:        "caller supplied",
	})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if completer.gotContext != "caller supplied" {
		t.Errorf("completion context = %q, want caller override", completer.gotContext)
	}
}

func TestAskCompletionFailureDegrades(t *testing.T) {
	completer := &mockCompleter{err: errors.New("rate limited")}
	history := &mockHistory{}
	o := NewOrchestrator(&mockRetriever{result: "doc"}, completer, func(string) types.Entities {
		return types.Entities{OrderNumber: "123456"}
	}, history)

	resp, err := o.Ask(context.Background(), types.ChatParams{ConversationID: "c1", Message: "q"})
	if err != nil {
		t.Fatalf("Ask should not fail on completion error, got %v", err)
	}
	if resp.Reply != "Error in chat completion: rate limited" {
		t.Errorf("Reply = %q", resp.Reply)
	}
	if resp.Retrieval != "doc" || resp.Entities.OrderNumber != "123456" {
		t.Errorf("retrieval/entities should survive completion failure: %+v", resp)
	}
	if len(history.saved) != 1 {
		t.Errorf("degraded reply should still be persisted, saved = %v", history.saved)
	}
}

func TestAskStreamFrames(t *testing.T) {
	completer := &mockCompleter{chunks: []string{"Hel", "lo"}}
	var buf bytes.Buffer
	o := NewOrchestrator(&mockRetriever{}, completer, noEntities, &mockHistory{})

	err := o.AskStream(context.Background(), types.ChatParams{ConversationID: "c1", Message: "hi"}, bufio.NewWriter(&buf))
	if err != nil {
		t.Fatalf("AskStream: %v", err)
	}

	want := "data: Hel\n\ndata: lo\n\ndata: [ENTITIES]{\"order_number\":\"\",\"phone_number\":\"\",\"address\":\"\"}\n\n"
	if buf.String() != want {
		t.Errorf("stream = %q\nwant %q", buf.String(), want)
	}
}

func TestAskStreamPersistsFullReply(t *testing.T) {
	completer := &mockCompleter{chunks: []string{"Hel", "lo"}}
	history := &mockHistory{}
	o := NewOrchestrator(&mockRetriever{}, completer, noEntities, history)

	var buf bytes.Buffer
	if err := o.AskStream(context.Background(), types.ChatParams{ConversationID: "c1", Message: "hi"}, bufio.NewWriter(&buf)); err != nil {
		t.Fatalf("AskStream: %v", err)
	}
	if len(history.saved) != 1 || history.saved[0][2] != "Hello" {
		t.Errorf("history = %v, want concatenated reply", history.saved)
	}
}

func TestAskStreamStartFailure(t *testing.T) {
	completer := &mockCompleter{err: errors.New("bad key")}
	var buf bytes.Buffer
	o := NewOrchestrator(&mockRetriever{}, completer, noEntities, &mockHistory{})

	if err := o.AskStream(context.Background(), types.ChatParams{ConversationID: "c1", Message: "hi"}, bufio.NewWriter(&buf)); err != nil {
		t.Fatalf("AskStream: %v", err)
	}
	if buf.String() != "data: Error: bad key\n\n" {
		t.Errorf("stream = %q", buf.String())
	}
}

func TestAskStreamMidStreamFailure(t *testing.T) {
	completer := &mockCompleter{chunks: []string{"par"}, streamErr: errors.New("connection reset")}
	history := &mockHistory{}
	var buf bytes.Buffer
	o := NewOrchestrator(&mockRetriever{}, completer, noEntities, history)

	if err := o.AskStream(context.Background(), types.ChatParams{ConversationID: "c1", Message: "hi"}, bufio.NewWriter(&buf)); err != nil {
		t.Fatalf("AskStream: %v", err)
	}

	want := "data: par\n\ndata: Error: connection reset\n\n"
	if buf.String() != want {
		t.Errorf("stream = %q\nwant %q", buf.String(), want)
	}
	if len(history.saved) != 0 {
		t.Errorf("failed stream should not be persisted, saved = %v", history.saved)
	}
}
