package notion

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spherical/question-agent/internal/domain"
)

func sampleQuestion() *domain.StructuredQuestion {
	return &domain.StructuredQuestion{
		QuestionText: "What is S3?",
		Options: []domain.AnswerOption{
			{Label: "A) Storage", IsCorrect: true, Explanation: "Es almacenamiento de objetos."},
			{Label: "B) Compute", IsCorrect: false, Explanation: "No es un servicio de computo."},
		},
	}
}

// wireBlock decodes just the parts of a sent block the tests look at.
type wireBlock struct {
	Object string `json:"object"`
	Type   string `json:"type"`
	Body   struct {
		RichText []struct {
			Type string `json:"type"`
			Text struct {
				Content string `json:"content"`
			} `json:"text"`
			Annotations *struct {
				Code  bool   `json:"code"`
				Color string `json:"color"`
			} `json:"annotations"`
		} `json:"rich_text"`
		Children []wireBlock `json:"children"`
	}
}

func (b *wireBlock) UnmarshalJSON(data []byte) error {
	var head struct {
		Object string `json:"object"`
		Type   string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	b.Object, b.Type = head.Object, head.Type
	if body, ok := raw[head.Type]; ok {
		return json.Unmarshal(body, &b.Body)
	}
	return nil
}

func decodeChildren(t *testing.T, data []byte) []wireBlock {
	t.Helper()
	var req struct {
		Children []wireBlock `json:"children"`
	}
	require.NoError(t, json.Unmarshal(data, &req))
	return req.Children
}

func TestBuildPayloadShape(t *testing.T) {
	data, err := json.Marshal(BuildPayload(sampleQuestion(), DefaultLabels()))
	require.NoError(t, err)

	blocks := decodeChildren(t, data)
	require.Len(t, blocks, 1)

	item := blocks[0]
	assert.Equal(t, "block", item.Object)
	assert.Equal(t, "numbered_list_item", item.Type)
	require.Len(t, item.Body.RichText, 1)
	assert.Equal(t, "What is S3?", item.Body.RichText[0].Text.Content)
	require.Len(t, item.Body.Children, 2)

	tests := []struct {
		label, verdict, color, explanation string
	}{
		{"A) Storage", "Correcto: ", "green", "Es almacenamiento de objetos."},
		{"B) Compute", "Incorrecto: ", "red", "No es un servicio de computo."},
	}
	for i, tt := range tests {
		toggle := item.Body.Children[i]
		assert.Equal(t, "toggle", toggle.Type)
		assert.Equal(t, tt.label, toggle.Body.RichText[0].Text.Content)
		require.Len(t, toggle.Body.Children, 1)

		para := toggle.Body.Children[0]
		assert.Equal(t, "paragraph", para.Type)
		require.Len(t, para.Body.RichText, 2)
		assert.Equal(t, "text", para.Body.RichText[0].Type)
		assert.Equal(t, tt.verdict, para.Body.RichText[0].Text.Content)
		require.NotNil(t, para.Body.RichText[0].Annotations)
		assert.True(t, para.Body.RichText[0].Annotations.Code)
		assert.Equal(t, tt.color, para.Body.RichText[0].Annotations.Color)
		assert.Equal(t, tt.explanation, para.Body.RichText[1].Text.Content)
		assert.Nil(t, para.Body.RichText[1].Annotations)
	}
}

func TestBuildPayloadCustomLabels(t *testing.T) {
	payload := BuildPayload(sampleQuestion(), Labels{Correct: "Right", Incorrect: "Wrong"})

	item, ok := payload.Children[0].(*notionapi.NumberedListItemBlock)
	require.True(t, ok)
	toggles := item.NumberedListItem.Children
	require.Len(t, toggles, 2)

	verdict := func(b notionapi.Block) string {
		toggle := b.(*notionapi.ToggleBlock)
		para := toggle.Toggle.Children[0].(*notionapi.ParagraphBlock)
		return para.Paragraph.RichText[0].Text.Content
	}
	assert.Equal(t, "Right: ", verdict(toggles[0]))
	assert.Equal(t, "Wrong: ", verdict(toggles[1]))
}

func TestPlainTextSplitsLongContent(t *testing.T) {
	long := strings.Repeat("ñ", maxTextLen+10)
	runs := plainText(long)

	require.Len(t, runs, 2)
	assert.Equal(t, maxTextLen, len([]rune(runs[0].Text.Content)))
	assert.Equal(t, 10, len([]rune(runs[1].Text.Content)))
}

func newTestPublisher(t *testing.T, srv *httptest.Server, parent string) *Publisher {
	t.Helper()
	client, err := NewClient("secret", srv.URL, "", srv.Client())
	require.NoError(t, err)
	return NewPublisher(client.Block, parent, Labels{}, nil)
}

func TestPublishSuccess(t *testing.T) {
	var calls int
	var sent []wireBlock
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		assert.Equal(t, http.MethodPatch, r.Method)
		assert.Equal(t, "/v1/blocks/parent-123/children", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "2022-06-28", r.Header.Get("Notion-Version"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		sent = decodeChildren(t, body)

		_, _ = w.Write([]byte(`{"object":"list","results":[{"object":"block","id":"blk-1","type":"paragraph","paragraph":{"rich_text":[]}}]}`))
	}))
	defer srv.Close()

	conf, err := newTestPublisher(t, srv, "parent-123").Publish(context.Background(), sampleQuestion())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, "notion", conf.Target)
	assert.Equal(t, "parent-123", conf.Location)
	assert.Equal(t, []string{"blk-1"}, conf.BlockIDs)
	require.Len(t, sent, 1)
	assert.Equal(t, "What is S3?", sent[0].Body.RichText[0].Text.Content)
}

func TestPublishAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"object":"error","status":404,"code":"object_not_found","message":"Could not find block"}`))
	}))
	defer srv.Close()

	_, err := newTestPublisher(t, srv, "missing").Publish(context.Background(), sampleQuestion())
	require.Error(t, err)

	assert.True(t, domain.IsType(err, domain.ErrorTypePublish))
	var apiErr *notionapi.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
	assert.Equal(t, "object_not_found", string(apiErr.Code))
}

func TestPublishNonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream down"))
	}))
	defer srv.Close()

	_, err := newTestPublisher(t, srv, "p").Publish(context.Background(), sampleQuestion())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypePublish))
}

func TestPublishRateLimitedIsNotRetried(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Retry-After", "1")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"object":"error","status":429,"code":"rate_limited","message":"slow down"}`))
	}))
	defer srv.Close()

	_, err := newTestPublisher(t, srv, "p").Publish(context.Background(), sampleQuestion())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypePublish))
	assert.Equal(t, 1, calls)
}

func TestPublishTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := newTestPublisher(t, srv, "p").Publish(context.Background(), sampleQuestion())
	require.Error(t, err)
	assert.True(t, domain.IsType(err, domain.ErrorTypePublish))
}

func TestNewClientRejectsBadBaseURL(t *testing.T) {
	_, err := NewClient("t", "api.notion.test", "", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidBaseURL)

	client, err := NewClient("t", "https://api.notion.com/", "", nil)
	require.NoError(t, err)
	assert.NotNil(t, client.Block)
}
