package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"email-triage/internal/llm"
	"email-triage/internal/middleware"
	"email-triage/internal/models"
	"email-triage/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, opts Options) *gin.Engine {
	t.Helper()
	logger := zap.NewNop()
	analyzer := service.NewAnalyzer(llm.NewChain(logger), llm.NewSuggester(logger), logger)

	r := gin.New()
	NewHandler(analyzer, opts, logger).RegisterRoutes(r)
	return r
}

type formPart struct {
	field    string
	filename string
	content  []byte
}

func multipartRequest(t *testing.T, parts ...formPart) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, string(p.content)))
			continue
		}
		fw, err := mw.CreateFormFile(p.field, p.filename)
		require.NoError(t, err)
		_, err = fw.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decodeAnalysis(t *testing.T, w *httptest.ResponseRecorder) models.Analysis {
	t.Helper()
	var got models.Analysis
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	return got
}

func TestAnalyzeText(t *testing.T) {
	r := setupRouter(t, Options{})

	raw := "Preciso de suporte urgente, minha senha não funciona, segue anexo."
	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, formPart{field: "text", content: []byte("  " + raw + "  ")}))

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeAnalysis(t, w)
	assert.Equal(t, models.CategoryProductive, got.Category)
	assert.Equal(t, models.ClassifiedByHeuristics, got.ClassifiedBy)
	assert.Equal(t, llm.TemplateReply(models.CategoryProductive).Text, got.SuggestedReply)
	assert.Equal(t, models.ReplyByTemplate, got.ReplyProvider)
	assert.Equal(t, raw, got.Preview)
}

func TestAnalyzeURLEncodedText(t *testing.T) {
	r := setupRouter(t, Options{})

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader("text=Feliz+Natal+a+todos"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeAnalysis(t, w)
	assert.Equal(t, models.CategoryUnproductive, got.Category)
}

func TestAnalyzeFileUpload(t *testing.T) {
	r := setupRouter(t, Options{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, formPart{
		field:    "file",
		filename: "email.txt",
		content:  []byte("Qual o status do ticket 123? Preciso da fatura."),
	}))

	require.Equal(t, http.StatusOK, w.Code)
	got := decodeAnalysis(t, w)
	assert.Equal(t, models.CategoryProductive, got.Category)
	assert.Equal(t, "Qual o status do ticket 123? Preciso da fatura.", got.Preview)
}

func TestAnalyzeClientErrors(t *testing.T) {
	tests := []struct {
		name   string
		parts  []formPart
		detail string
	}{
		{
			name:   "nothing sent",
			parts:  nil,
			detail: "Envie um arquivo (.txt/.pdf) ou cole o texto do e-mail.",
		},
		{
			name:   "blank text",
			parts:  []formPart{{field: "text", content: []byte("   ")}},
			detail: "Conteúdo vazio após leitura do arquivo/textarea.",
		},
		{
			name:   "empty file",
			parts:  []formPart{{field: "file", filename: "vazio.txt", content: []byte(" \n")}},
			detail: "Conteúdo vazio após leitura do arquivo/textarea.",
		},
		{
			name:   "unsupported extension",
			parts:  []formPart{{field: "file", filename: "email.docx", content: []byte("x")}},
			detail: "Extensão não suportada: .docx. Use .txt ou .pdf",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(t, Options{})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, multipartRequest(t, tt.parts...))

			assert.Equal(t, http.StatusBadRequest, w.Code)
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.detail, body["detail"])
		})
	}
}

func TestAnalyzeUploadTooLarge(t *testing.T) {
	r := setupRouter(t, Options{MaxUploadBytes: 1024})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, formPart{
		field:    "file",
		filename: "big.txt",
		content:  bytes.Repeat([]byte("a"), 8192),
	}))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestAnalyzeRateLimited(t *testing.T) {
	r := setupRouter(t, Options{RateLimiter: middleware.NewRateLimiter(1)})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, formPart{field: "text", content: []byte("oi")}))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, multipartRequest(t, formPart{field: "text", content: []byte("oi")}))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestHealthAndProviders(t *testing.T) {
	r := setupRouter(t, Options{Version: "2.1.0"})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"email-triage","version":"2.1.0"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/providers", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var providers map[string][]models.ProviderInfo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &providers))
	assert.Equal(t, []models.ProviderInfo{{Name: "heuristics", Configured: true}}, providers["classifiers"])
	assert.Equal(t, []models.ProviderInfo{{Name: "template", Configured: true}}, providers["repliers"])
}

func TestIndexAndStatic(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.html")
	require.NoError(t, os.WriteFile(index, []byte("<html>triagem</html>"), 0o644))
	static := filepath.Join(dir, "static")
	require.NoError(t, os.Mkdir(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(static, "app.js"), []byte("console.log(1)"), 0o644))

	r := setupRouter(t, Options{IndexPath: index, StaticDir: static})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "triagem")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestIndexMissing(t *testing.T) {
	r := setupRouter(t, Options{IndexPath: filepath.Join(t.TempDir(), "missing.html")})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
