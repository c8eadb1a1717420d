package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

func sseResponse(body string) *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func drain(t *testing.T, stream Stream) []Chunk {
	t.Helper()
	var chunks []Chunk
	for {
		chunk, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return chunks
			}
			t.Fatalf("Recv: %v", err)
		}
		chunks = append(chunks, chunk)
	}
}

func TestOpenAIStream_TextChunks(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"content\":\"Hello\"}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"content\":\" world\"}}]}\n\n" +
		"data: [DONE]\n\n"

	chunks := drain(t, newOpenAIStream(sseResponse(body)))
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Content+chunks[1].Content != "Hello world" {
		t.Fatalf("unexpected content %q%q", chunks[0].Content, chunks[1].Content)
	}
}

func TestOpenAIStream_AccumulatesToolCallFragments(t *testing.T) {
	body := "data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"id\":\"call-1\",\"function\":{\"name\":\"calculate\",\"arguments\":\"{\\\"expr\"}}]}}]}\n\n" +
		"data: {\"choices\":[{\"delta\":{\"tool_calls\":[{\"index\":0,\"function\":{\"arguments\":\"ession\\\":\\\"1+1\\\"}\"}}]}}]}\n\n" +
		"data: [DONE]\n\n"

	chunks := drain(t, newOpenAIStream(sseResponse(body)))
	if len(chunks) == 0 {
		t.Fatalf("expected tool call chunks")
	}
	last := chunks[len(chunks)-1]
	if len(last.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(last.ToolCalls))
	}
	call := last.ToolCalls[0]
	if call.ID != "call-1" || call.Name != "calculate" {
		t.Fatalf("unexpected call identity %+v", call)
	}
	if call.Arguments != `{"expression":"1+1"}` {
		t.Fatalf("expected accumulated arguments, got %q", call.Arguments)
	}
}

func TestAnthropicStream_TextAndToolUse(t *testing.T) {
	body := "event: content_block_start\n" +
		"data: {\"type\":\"content_block_start\",\"index\":0,\"content_block\":{\"type\":\"text\",\"text\":\"Thinking\"}}\n\n" +
		"data: {\"type\":\"content_block_delta\",\"index\":0,\"delta\":{\"text\":\" aloud.\"}}\n\n" +
		"data: {\"type\":\"content_block_start\",\"index\":1,\"content_block\":{\"type\":\"tool_use\",\"id\":\"toolu-1\",\"name\":\"get_weather\"}}\n\n" +
		"data: {\"type\":\"content_block_delta\",\"index\":1,\"delta\":{\"partial_json\":\"{\\\"city\\\":\"}}\n\n" +
		"data: {\"type\":\"content_block_delta\",\"index\":1,\"delta\":{\"partial_json\":\"\\\"Lyon\\\"}\"}}\n\n"

	chunks := drain(t, newAnthropicStream(sseResponse(body)))

	var text strings.Builder
	var lastCall ToolCall
	for _, chunk := range chunks {
		text.WriteString(chunk.Content)
		if len(chunk.ToolCalls) > 0 {
			lastCall = chunk.ToolCalls[len(chunk.ToolCalls)-1]
		}
	}
	if text.String() != "Thinking aloud." {
		t.Fatalf("unexpected text %q", text.String())
	}
	if lastCall.ID != "toolu-1" || lastCall.Name != "get_weather" {
		t.Fatalf("unexpected call %+v", lastCall)
	}
	if lastCall.Arguments != `{"city":"Lyon"}` {
		t.Fatalf("expected accumulated input, got %q", lastCall.Arguments)
	}
}

type stubProvider struct {
	chunks []Chunk
}

func (p *stubProvider) Complete(_ context.Context, _ []Message, _ []Tool) (Stream, error) {
	return &stubStream{chunks: p.chunks}, nil
}

type stubStream struct {
	chunks []Chunk
	pos    int
}

func (s *stubStream) Recv() (Chunk, error) {
	if s.pos >= len(s.chunks) {
		return Chunk{}, io.EOF
	}
	chunk := s.chunks[s.pos]
	s.pos++
	return chunk, nil
}

func (s *stubStream) Close() error { return nil }

func TestCompleteText_DrainsAndTrims(t *testing.T) {
	provider := &stubProvider{chunks: []Chunk{
		{Content: "  an answer"},
		{Content: " in parts \n"},
	}}

	text, err := CompleteText(context.Background(), provider, nil)
	if err != nil {
		t.Fatalf("CompleteText: %v", err)
	}
	if text != "an answer in parts" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestDoWithRetry_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	resp, err := doWithRetry(context.Background(), server.Client(), func() (*http.Request, error) {
		return http.NewRequest(http.MethodGet, server.URL, nil)
	})
	if err != nil {
		t.Fatalf("doWithRetry: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after retry, got %d", resp.StatusCode)
	}
	if got := attempts.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestNewProvider_UnknownProvider(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "carrier-pigeon"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}
