package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"textprep/internal/app"
	"textprep/internal/config"
	"textprep/internal/llm"
	"textprep/internal/logger"
	"textprep/internal/media"
	"textprep/internal/normalizer"
	"textprep/internal/processor"
	"textprep/internal/queue"
	"textprep/internal/store"
	"textprep/internal/worker"
)

func newTestDeps(t *testing.T, st store.Store, q queue.Queue, opts processor.Options) app.Deps {
	t.Helper()
	norm, err := normalizer.New(normalizer.Config{})
	require.NoError(t, err)
	opts.Log = logger.Discard()
	return app.Deps{
		Store: st,
		Queue: q,
		Config: config.Config{
			MaxUploadSize: 1024 * 1024, // 1MB for tests
			MaxTextBytes:  4096,
		},
		Log:       logger.Discard(),
		Processor: processor.New(norm, opts),
	}
}

func doJSON(t *testing.T, h http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNormalizeHandler(t *testing.T) {
	deps := newTestDeps(t, store.NewMemory(), new(queue.MockQueue), processor.Options{})
	h := newRouter(deps)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantTokens []string
	}{
		{"defaults", `{"text":"Hello, world! This is an example sentence."}`, http.StatusOK,
			[]string{"hello", ",", "world", "!", "example", "sentence", "."}},
		{"strip punctuation", `{"text":"Hello, world!","strip_punctuation":true}`, http.StatusOK,
			[]string{"hello", "world"}},
		{"stemming", `{"text":"Text preprocessing helps","stem":true}`, http.StatusOK,
			[]string{"text", "preprocess", "help"}},
		{"empty text", `{"text":""}`, http.StatusOK, []string{}},
		{"malformed", `{"text":`, http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, "/api/normalize", tt.body)
			require.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			if tt.wantTokens == nil {
				return
			}
			var resp struct {
				Tokens []string `json:"tokens"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantTokens, resp.Tokens)
		})
	}
}

func TestNormalizeHandlerRejectsOversizedText(t *testing.T) {
	deps := newTestDeps(t, store.NewMemory(), new(queue.MockQueue), processor.Options{})
	body := `{"text":"` + strings.Repeat("a", 5000) + `"}`

	w := doJSON(t, newRouter(deps), "/api/normalize", body)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestBatchHandler(t *testing.T) {
	deps := newTestDeps(t, store.NewMemory(), new(queue.MockQueue), processor.Options{})
	h := newRouter(deps)

	w := doJSON(t, h, "/api/normalize/batch", `{"texts":["The cats","","Is it?"]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Results [][]string `json:"results"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, [][]string{{"cats"}, {}, {"?"}}, resp.Results)

	w = doJSON(t, h, "/api/normalize/batch", `{"texts":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "texts")
}

func TestUploadHandler(t *testing.T) {
	validDocID := uuid.New()

	tests := []struct {
		name        string
		filename    string
		contentType string
		content     []byte
		setup       func(*store.MockStore, *queue.MockQueue)
		wantStatus  int
	}{
		{
			name:        "successful upload",
			filename:    "test.txt",
			contentType: "text/plain",
			content:     []byte("Hello"),
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("CreateDocument", mock.Anything, "test.txt", "text").
					Return(store.Document{ID: validDocID, Status: store.StatusProcessing}, nil).Once()
				q.On("Enqueue", mock.Anything, mock.MatchedBy(func(task queue.Task) bool {
					var p queue.NormalizePayload
					return task.Type == queue.TaskTypeNormalize &&
						json.Unmarshal(task.Payload, &p) == nil &&
						p.DocumentID == validDocID && len(p.Rows) == 1 && p.Rows[0] == "Hello"
				})).Return(nil).Once()
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:        "csv rows",
			filename:    "qa.csv",
			contentType: "",
			content:     []byte("question\nWhat is NLP?\n"),
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("CreateDocument", mock.Anything, "qa.csv", "csv").
					Return(store.Document{ID: validDocID, Status: store.StatusProcessing}, nil).Once()
				q.On("Enqueue", mock.Anything, mock.Anything).Return(nil).Once()
			},
			wantStatus: http.StatusAccepted,
		},
		{
			name:        "file too large",
			filename:    "large.txt",
			contentType: "text/plain",
			content:     make([]byte, 2*1024*1024), // 2MB
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "unsupported extension",
			filename:    "test.docx",
			contentType: "",
			content:     []byte("content"),
			wantStatus:  http.StatusBadRequest,
		},
		{
			name:        "invalid utf-8",
			filename:    "test.txt",
			contentType: "text/plain",
			content:     []byte{0xff, 0xfe, 0xfd},
			wantStatus:  http.StatusUnprocessableEntity,
		},
		{
			name:        "CreateDocument failure",
			filename:    "test.txt",
			contentType: "text/plain",
			content:     []byte("content"),
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("CreateDocument", mock.Anything, "test.txt", "text").
					Return(store.Document{}, errors.New("db error")).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:        "Enqueue failure marks doc failed",
			filename:    "test.txt",
			contentType: "text/plain",
			content:     []byte("content"),
			setup: func(s *store.MockStore, q *queue.MockQueue) {
				s.On("CreateDocument", mock.Anything, "test.txt", "text").
					Return(store.Document{ID: validDocID, Status: store.StatusProcessing}, nil).Once()
				q.On("Enqueue", mock.Anything, mock.Anything).Return(errors.New("queue error")).Times(3)
				s.On("UpdateDocumentStatus", mock.Anything, validDocID, store.StatusFailed).Return(nil).Once()
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockStore := new(store.MockStore)
			mockQueue := new(queue.MockQueue)
			if tt.setup != nil {
				tt.setup(mockStore, mockQueue)
			}
			h := newRouter(newTestDeps(t, mockStore, mockQueue, processor.Options{}))

			req := multipartRequest(t, "/api/documents", "file", tt.filename, tt.contentType, tt.content)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			mockStore.AssertExpectations(t)
			mockQueue.AssertExpectations(t)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		h := newRouter(newTestDeps(t, new(store.MockStore), new(queue.MockQueue), processor.Options{}))
		req := httptest.NewRequest(http.MethodPost, "/api/documents", nil)
		req.Header.Set("Content-Type", "multipart/form-data")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentLifecycle(t *testing.T) {
	st := store.NewMemory()
	q := queue.NewLocal(logger.Discard(), 8)
	deps := newTestDeps(t, st, q, processor.Options{})
	h := newRouter(deps)

	req := multipartRequest(t, "/api/documents", "file", "notes.txt", "text/plain", []byte("The geese are here."))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	var created struct {
		DocumentID string `json:"document_id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	tokensPath := "/api/documents/" + created.DocumentID + "/tokens"
	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tokensPath, nil))
	assert.Equal(t, http.StatusConflict, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	go func() {
		_ = q.Worker(ctx, queue.TaskTypeNormalize, worker.NormalizeHandler(deps.Processor, st, deps.Log))
	}()

	require.Eventually(t, func() bool {
		id, _ := uuid.Parse(created.DocumentID)
		doc, err := st.GetDocument(ctx, id)
		return err == nil && doc.Status == store.StatusReady
	}, 5*time.Second, 10*time.Millisecond)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tokensPath, nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Rows []store.TokenSet `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, []string{"geese", "."}, resp.Rows[0].Tokens)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/documents/"+created.DocumentID, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status": "ready"`)
}

func TestDocumentHandlerErrors(t *testing.T) {
	h := newRouter(newTestDeps(t, store.NewMemory(), new(queue.MockQueue), processor.Options{}))

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"invalid id", "/api/documents/not-a-uuid", http.StatusBadRequest},
		{"unknown id", "/api/documents/" + uuid.NewString(), http.StatusNotFound},
		{"unknown tokens", "/api/documents/" + uuid.NewString() + "/tokens", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestRemoteTextHandlers(t *testing.T) {
	client := new(llm.MockClient)
	client.On("Translate", mock.Anything, "Hello", "Spanish").Return("Hola", nil)
	client.On("ExtractEntities", mock.Anything, "Paris").Return([]llm.Entity{{Text: "Paris", Type: "LOC"}}, nil)
	client.On("AnalyzeSentiment", mock.Anything, "great").Return(llm.Sentiment{Label: "POSITIVE", Score: 0.9}, nil)
	client.On("Generate", mock.Anything, "Once upon").Return("", errors.New("upstream 500"))
	client.On("Chat", mock.Anything, []llm.Message{{Role: llm.RoleUser, Content: "Hi"}}, "More").Return("Sure", nil)

	h := newRouter(newTestDeps(t, store.NewMemory(), new(queue.MockQueue), processor.Options{LLM: client}))

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"translate", "/api/text/translate", `{"text":"Hello","target_lang":"Spanish"}`, http.StatusOK, "Hola"},
		{"entities", "/api/text/entities", `{"text":"Paris"}`, http.StatusOK, `"type": "LOC"`},
		{"sentiment", "/api/text/sentiment", `{"text":"great"}`, http.StatusOK, "POSITIVE"},
		{"missing text", "/api/text/sentiment", `{}`, http.StatusBadRequest, "is required"},
		{"upstream failure", "/api/text/generate", `{"prompt":"Once upon"}`, http.StatusBadGateway, "failed"},
		{"embed not configured", "/api/text/embed", `{"text":"x"}`, http.StatusNotImplemented, "not available"},
		{"chat", "/api/chat", `{"history":[{"role":"user","content":"Hi"}],"message":"More"}`, http.StatusOK, `"reply": "Sure"`},
		{"chat bad role", "/api/chat", `{"history":[{"role":"system","content":"Hi"}],"message":"More"}`, http.StatusBadRequest, "must be one of"},
		{"clean prompt", "/api/prompt/clean", `{"prompt":"A RED Fox"}`, http.StatusOK, "a red fox"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestImageHandlers(t *testing.T) {
	studio := new(media.MockStudio)
	studio.On("DescribeImage", mock.Anything, mock.Anything, media.ModeText).Return("a sign", nil)
	studio.On("GenerateImage", mock.Anything, mock.Anything, "1024x1024").Return([]byte("png-bytes"), nil)
	h := newRouter(newTestDeps(t, store.NewMemory(), new(queue.MockQueue), processor.Options{Studio: studio}))

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 40, 20))))

	t.Run("prepare", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, multipartRequest(t, "/api/images/prepare", "image", "a.png", "image/png", buf.Bytes()))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		img, err := png.Decode(bytes.NewReader(w.Body.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, 256, img.Bounds().Dx())
	})

	t.Run("prepare rejects garbage", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, multipartRequest(t, "/api/images/prepare", "image", "a.png", "image/png", []byte("nope")))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("describe", func(t *testing.T) {
		req := multipartRequest(t, "/api/images/describe?mode=text", "image", "a.png", "image/png", buf.Bytes())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Contains(t, w.Body.String(), "a sign")
	})

	t.Run("describe unknown mode", func(t *testing.T) {
		req := multipartRequest(t, "/api/images/describe?mode=poetic", "image", "a.png", "image/png", buf.Bytes())
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("generate", func(t *testing.T) {
		w := doJSON(t, h, "/api/images/generate", `{"prompt":"a fox","size":"1024x1024"}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "png-bytes", w.Body.String())
	})

	t.Run("generate bad size", func(t *testing.T) {
		w := doJSON(t, h, "/api/images/generate", `{"prompt":"a fox","size":"10x10"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestTranscribeNotConfigured(t *testing.T) {
	h := newRouter(newTestDeps(t, store.NewMemory(), new(queue.MockQueue), processor.Options{}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, multipartRequest(t, "/api/audio/transcribe", "audio", "a.mp3", "audio/mpeg", []byte("id3")))
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func multipartRequest(t *testing.T, path, field, filename, contentType string, content []byte) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	h := make(map[string][]string)
	h["Content-Disposition"] = []string{fmt.Sprintf(`form-data; name=%q; filename=%q`, field, filename)}
	if contentType != "" {
		h["Content-Type"] = []string{contentType}
	}

	part, err := writer.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}
