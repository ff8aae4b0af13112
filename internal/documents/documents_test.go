package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayush/research-workspace/backend/internal/apperr"
	"github.com/ayush/research-workspace/backend/internal/auth"
	"github.com/ayush/research-workspace/backend/internal/models"
	"github.com/ayush/research-workspace/backend/internal/ownership"
	"github.com/ayush/research-workspace/backend/internal/store"
	"github.com/ayush/research-workspace/backend/internal/store/memory"
)

var longText = strings.Repeat("Transformers use attention to weigh tokens. ", 10)

const summaryJSON = "```json\n" + `{
  "summary": "A paper about attention.",
  "key_points": ["attention", "scaling"],
  "topics": ["nlp"],
  "extracted_data": {"type": "paper", "main_subject": "transformers", "key_entities": ["Vaswani"]}
}` + "\n```"

type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (g *fakeGenerator) Generate(context.Context, string) (string, error) {
	g.calls++
	return g.text, g.err
}

type fakeExtractor struct {
	text string
	err  error
	seen []string
}

func (e *fakeExtractor) Extract(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	e.seen = append(e.seen, path)
	return e.text, e.err
}

type fakeFiles struct {
	objects map[string][]byte
	failPut bool
}

func newFakeFiles() *fakeFiles { return &fakeFiles{objects: map[string][]byte{}} }

func (f *fakeFiles) UploadFile(_ context.Context, key, path, _ string) error {
	if f.failPut {
		return errors.New("bucket unavailable")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeFiles) Download(_ context.Context, key string) ([]byte, string, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, "", store.ErrNotFound
	}
	return b, PDFContentType, nil
}

func (f *fakeFiles) Remove(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

// failingInsert wraps the memory store and rejects InsertDocument.
type failingInsert struct{ *memory.Store }

func (failingInsert) InsertDocument(context.Context, *models.Document) (*models.Document, error) {
	return nil, errors.New("write conflict")
}

type env struct {
	svc     *Service
	store   *memory.Store
	files   *fakeFiles
	gen     *fakeGenerator
	pdf     *fakeExtractor
	project *models.Project
	dir     string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s := memory.New()
	p, err := s.CreateProject(context.Background(), &models.Project{UserID: "alice", Title: "Papers"})
	require.NoError(t, err)
	e := &env{
		store:   s,
		files:   newFakeFiles(),
		gen:     &fakeGenerator{text: summaryJSON},
		pdf:     &fakeExtractor{text: longText},
		project: p,
		dir:     t.TempDir(),
	}
	e.svc = NewService(s, e.files, ownership.NewGuard(s), e.gen, e.pdf, Options{UploadDir: e.dir, MaxBytes: 1 << 20}, zap.NewNop())
	return e
}

func (e *env) leftovers(t *testing.T) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(e.dir)
	require.NoError(t, err)
	return entries
}

func pdfUpload(body string) *Upload {
	return &Upload{Filename: "paper.pdf", ContentType: "application/pdf", Size: int64(len(body)), Body: strings.NewReader(body)}
}

func TestSummarize_Success(t *testing.T) {
	e := newEnv(t)
	doc, err := e.svc.Summarize(context.Background(), "alice", e.project.ID, pdfUpload("%PDF-1.4 fake"))
	require.NoError(t, err)

	assert.Equal(t, e.project.ID, doc.ProjectID)
	assert.Equal(t, "alice", doc.UserID)
	assert.Equal(t, "paper.pdf", doc.Filename)
	assert.Equal(t, int64(len("%PDF-1.4 fake")), doc.FileSize)
	assert.Equal(t, PDFContentType, doc.FileType)
	assert.Equal(t, len(longText), doc.TextLength)
	assert.Equal(t, []string{"attention", "scaling"}, doc.KeyPoints)
	assert.Equal(t, "transformers", doc.ExtractedData["main_subject"])
	assert.True(t, strings.HasPrefix(doc.FileKey, "alice/"+e.project.ID+"/"))
	assert.Equal(t, []byte("%PDF-1.4 fake"), e.files.objects[doc.FileKey])
	assert.Empty(t, e.leftovers(t))
}

func TestSummarize_ValidationBeforeTempFile(t *testing.T) {
	cases := []struct {
		name      string
		projectID string
		up        *Upload
		msg       string
	}{
		{"no file", "p", nil, "No file uploaded"},
		{"not a pdf", "p", &Upload{Filename: "a.txt", ContentType: "text/plain", Size: 3, Body: strings.NewReader("abc")}, "Only PDF files are allowed"},
		{"too large", "p", &Upload{Filename: "a.pdf", ContentType: "application/pdf", Size: 2 << 20, Body: strings.NewReader("x")}, "limit"},
		{"no project", " ", pdfUpload("x"), "projectId is required"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			_, err := e.svc.Summarize(context.Background(), "alice", tc.projectID, tc.up)
			require.True(t, apperr.IsKind(err, apperr.KindValidation))
			assert.Contains(t, apperr.As(err).Message, tc.msg)
			assert.Empty(t, e.leftovers(t))
			assert.Empty(t, e.pdf.seen)
		})
	}
}

func TestSummarize_BodyLargerThanDeclared(t *testing.T) {
	e := newEnv(t)
	big := strings.Repeat("a", (1<<20)+10)
	up := &Upload{Filename: "a.pdf", ContentType: "application/pdf", Size: 10, Body: strings.NewReader(big)}
	_, err := e.svc.Summarize(context.Background(), "alice", e.project.ID, up)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
	assert.Empty(t, e.leftovers(t))
}

func TestSummarize_PipelineFailuresCleanUp(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(e *env)
		user    string
		kind    apperr.Kind
		genRuns int
	}{
		{"forbidden", func(*env) {}, "bob", apperr.KindForbidden, 0},
		{"unparsable", func(e *env) { e.pdf.err = apperr.UnparsablePDF(errors.New("xref")) }, "alice", apperr.KindUnparsablePDF, 0},
		{"too little text", func(e *env) { e.pdf.text = "  short text  " }, "alice", apperr.KindEmptyDocument, 0},
		{"model failure", func(e *env) { e.gen.err = apperr.Upstream(429, errors.New("quota")) }, "alice", apperr.KindUpstream, 1},
		{"malformed output", func(e *env) { e.gen.text = "not json" }, "alice", apperr.KindMalformedAI, 1},
		{"object store failure", func(e *env) { e.files.failPut = true }, "alice", apperr.KindInternal, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t)
			tc.mutate(e)
			_, err := e.svc.Summarize(context.Background(), tc.user, e.project.ID, pdfUpload("%PDF"))
			require.True(t, apperr.IsKind(err, tc.kind), fmt.Sprint(err))
			assert.Equal(t, tc.genRuns, e.gen.calls)
			assert.Empty(t, e.leftovers(t))

			docs, _ := e.store.ListDocuments(context.Background(), e.project.ID)
			assert.Empty(t, docs)
		})
	}
}

func TestSummarize_InsertFailureRemovesObject(t *testing.T) {
	e := newEnv(t)
	svc := NewService(failingInsert{e.store}, e.files, ownership.NewGuard(e.store), e.gen, e.pdf,
		Options{UploadDir: e.dir, MaxBytes: 1 << 20}, zap.NewNop())

	_, err := svc.Summarize(context.Background(), "alice", e.project.ID, pdfUpload("%PDF"))
	require.True(t, apperr.IsKind(err, apperr.KindInternal))
	assert.Empty(t, e.files.objects)
	assert.Empty(t, e.leftovers(t))
}

func TestDeleteRemovesObject(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	doc, err := e.svc.Summarize(ctx, "alice", e.project.ID, pdfUpload("%PDF"))
	require.NoError(t, err)

	assert.True(t, apperr.IsKind(e.svc.Delete(ctx, "bob", doc.ID), apperr.KindForbidden))
	require.NoError(t, e.svc.Delete(ctx, "alice", doc.ID))
	assert.Empty(t, e.files.objects)
	assert.True(t, apperr.IsKind(e.svc.Delete(ctx, "alice", doc.ID), apperr.KindNotFound))
}

func multipartRequest(t *testing.T, projectID, contentType, body string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if projectID != "" {
		require.NoError(t, mw.WriteField("projectId", projectID))
	}
	if body != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="paper.pdf"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/documents/summarize", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func router(svc *Service, uid string) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), auth.Identity{UserID: uid})))
		})
	})
	r.Route("/api/documents", NewHandler(svc, zap.NewNop()).Routes)
	return r
}

func TestHandler(t *testing.T) {
	e := newEnv(t)
	alice := router(e.svc, "alice")

	rec := httptest.NewRecorder()
	alice.ServeHTTP(rec, multipartRequest(t, e.project.ID, "application/pdf", "%PDF-1.7 content"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "file_key")

	var created struct {
		Document models.Document `json:"document"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	id := created.Document.ID

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, multipartRequest(t, e.project.ID, "image/png", "png"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Only PDF files are allowed")

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, multipartRequest(t, e.project.ID, "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file uploaded")

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/"+e.project.ID, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), id)

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/doc/"+id+"/file", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "%PDF-1.7 content", rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "paper.pdf")

	rec = httptest.NewRecorder()
	router(e.svc, "bob").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/doc/"+id, nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/documents/doc/"+id, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	alice.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/documents/doc/"+id, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
