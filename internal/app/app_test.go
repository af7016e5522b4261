package app

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
	"time"

	"team11_backend/internal/config"
	"team11_backend/internal/model"
	"team11_backend/internal/service"
	"team11_backend/internal/testutil"
	"team11_backend/internal/util"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	app     *App
	uploads string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	uploads := t.TempDir()
	cfg := &config.Config{
		Server:   config.ServerConfig{Port: "0", Mode: "test"},
		Database: config.DatabaseConfig{Driver: "sqlite"},
		Auth: config.AuthConfig{
			Mode:       "jwt",
			JWTSecret:  testSecret,
			CookieName: "core_token",
			LoginURL:   "/login/",
		},
		Storage:   config.StorageConfig{Type: util.StorageLocal, LocalPath: uploads},
		Audio:     config.AudioConfig{MaxSizeMB: 5},
		Scoring:   config.ScoringConfig{FixedScore: service.DefaultFixedScore},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1, SubmitPerMin: 100},
	}
	return &testServer{t: t, app: NewWithDB(cfg, testutil.NewDB(t), nil), uploads: uploads}
}

func token(t *testing.T, userID uint) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &util.Claims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return s
}

func (s *testServer) do(req *http.Request, userID uint) *httptest.ResponseRecorder {
	if userID != 0 {
		req.Header.Set("Authorization", "Bearer "+token(s.t, userID))
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	return w
}

func (s *testServer) get(path string, userID uint) *httptest.ResponseRecorder {
	return s.do(httptest.NewRequest(http.MethodGet, path, nil), userID)
}

func (s *testServer) postJSON(path string, body interface{}, userID uint) *httptest.ResponseRecorder {
	b, err := json.Marshal(body)
	require.NoError(s.t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, userID)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

func (s *testServer) submitWriting(userID uint, topic, text string) string {
	w := s.postJSON("/team11/api/submit-writing/", jsonBody{"topic_id": topic, "text": text}, userID)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	var data struct {
		SubmissionID string `json:"submissionId"`
	}
	decode(s.t, w, &data)
	return data.SubmissionID
}

type jsonBody map[string]interface{}

func TestSubmitWritingAPI(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON("/team11/api/submit-writing/", jsonBody{"topic_id": "T1", "text": "hello"}, 0)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.postJSON("/team11/api/submit-writing/", jsonBody{"topic_id": "T1", "text": "lorem ipsum dolor"}, 1)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		SubmissionID string                 `json:"submissionId"`
		Kind         model.SubmissionKind   `json:"kind"`
		Status       model.SubmissionStatus `json:"status"`
		Score        float64                `json:"score"`
	}
	env := decode(t, w, &created)
	assert.Equal(t, http.StatusCreated, env.Code)
	assert.True(t, model.IsUUID(created.SubmissionID))
	assert.Equal(t, model.KindWriting, created.Kind)
	assert.Equal(t, model.StatusScored, created.Status)
	assert.Equal(t, 90.0, created.Score)

	w = s.get("/team11/api/submissions/"+created.SubmissionID+"/", 1)
	require.Equal(t, http.StatusOK, w.Code)
	var detail service.SubmissionDetail
	decode(t, w, &detail)
	assert.Equal(t, service.WritingFeedback, detail.Result.Feedback)
	assert.Equal(t, 90.0, detail.Result.Score)

	assert.Equal(t, http.StatusNotFound, s.get("/team11/api/submissions/"+created.SubmissionID+"/", 2).Code)
}

func TestSubmitWritingForm(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/team11/api/submit-writing/", strings.NewReader("topic_id=T2&text=working+from+home"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := s.do(req, 1)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestSubmitWritingValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.postJSON("/team11/api/submit-writing/", jsonBody{"topic_id": "T7", "text": " "}, 1)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var data struct {
		Fields []util.FieldError `json:"fields"`
	}
	decode(t, w, &data)
	fields := map[string]bool{}
	for _, f := range data.Fields {
		fields[f.Field] = true
	}
	assert.True(t, fields["topic_id"])
	assert.True(t, fields["text"])

	var count int64
	require.NoError(t, s.app.DB.Model(&model.Submission{}).Count(&count).Error)
	assert.Zero(t, count)

	req := httptest.NewRequest(http.MethodPost, "/team11/api/submit-writing/", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, s.do(req, 1).Code)
}

func multipartAudio(t *testing.T, topic string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("topic_id", topic))
	require.NoError(t, mw.WriteField("duration_seconds", "2.5"))
	if audio != nil {
		fw, err := mw.CreateFormFile("audio", "recording.wav")
		require.NoError(t, err)
		_, err = fw.Write(audio)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestSubmitListeningMultipart(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartAudio(t, "T1", testutil.WAV())
	req := httptest.NewRequest(http.MethodPost, "/team11/api/submit-listening/", body)
	req.Header.Set("Content-Type", ct)
	w := s.do(req, 4)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created struct {
		SubmissionID string `json:"submissionId"`
	}
	decode(t, w, &created)

	w = s.get("/team11/api/submissions/"+created.SubmissionID+"/", 4)
	require.Equal(t, http.StatusOK, w.Code)
	var detail service.SubmissionDetail
	decode(t, w, &detail)
	require.NotNil(t, detail.Listening)
	assert.Equal(t, 2.5, detail.Listening.DurationSeconds)
	assert.Equal(t, service.ListeningFeedback, detail.Result.Feedback)

	key := strings.TrimPrefix(detail.Listening.AudioURL, service.LocalURLPrefix)
	stored, err := os.ReadFile(filepath.Join(s.uploads, filepath.FromSlash(key)))
	require.NoError(t, err)
	assert.Equal(t, testutil.WAV(), stored)

	// the stored recording is served back
	w = s.get(detail.Listening.AudioURL, 0)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSubmitListeningWithoutAudio(t *testing.T) {
	s := newTestServer(t)

	body, ct := multipartAudio(t, "T1", nil)
	req := httptest.NewRequest(http.MethodPost, "/team11/api/submit-listening/", body)
	req.Header.Set("Content-Type", ct)
	w := s.do(req, 4)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"field":"audio"`)

	w = s.postJSON("/team11/api/submit-listening/", jsonBody{"topic_id": "T2", "audio_url": "https://cdn.example.com/r.webm"}, 4)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestPages(t *testing.T) {
	s := newTestServer(t)
	id := s.submitWriting(1, "T1", "my holiday")

	w := s.get("/team11/dashboard/", 0)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login/?next=%2Fteam11%2Fdashboard%2F", w.Header().Get("Location"))

	w = s.get("/team11/dashboard/", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.WritingTopics[0].Prompt)
	assert.Contains(t, w.Body.String(), "/team11/submission/"+id+"/")

	w = s.get("/team11/dashboard/", 2)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No submissions yet")

	w = s.get("/team11/submission/"+id+"/", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Score: 90.0")
	assert.Contains(t, w.Body.String(), "my holiday")

	assert.Equal(t, http.StatusNotFound, s.get("/team11/submission/"+id+"/", 2).Code)
	assert.Equal(t, http.StatusNotFound, s.get("/team11/submission/nope/", 1).Code)

	w = s.get("/team11/dashboard/chart/", 1)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "echarts")

	w = s.get("/team11/writing-exam/?topic=9", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.WritingTopics[0].Prompt)

	w = s.get("/team11/listening-exam/?topic=1", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.ListeningTopics[1].Prompt)

	assert.Equal(t, http.StatusOK, s.get("/team11/start-exam/", 1).Code)
	assert.Equal(t, http.StatusOK, s.get("/team11/", 0).Code)
	assert.Equal(t, http.StatusOK, s.get("/team11/static/team11.css", 0).Code)
}

func TestListAndPing(t *testing.T) {
	s := newTestServer(t)
	s.submitWriting(1, "T1", "one")
	s.submitWriting(1, "T2", "two")
	s.submitWriting(2, "T3", "three")

	w := s.get("/team11/api/submissions/?page=1&limit=1", 1)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		List  []service.SubmissionSummary `json:"list"`
		Total int64                       `json:"total"`
		Limit int                         `json:"limit"`
	}
	decode(t, w, &page)
	assert.EqualValues(t, 2, page.Total)
	assert.Len(t, page.List, 1)
	assert.Equal(t, 1, page.Limit)

	w = s.get("/team11/ping/", 1)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"team":"team11"`)
	assert.Equal(t, http.StatusUnauthorized, s.get("/team11/ping/", 0).Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.get("/team11/health/", 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"database":"up"`)

	s.get("/team11/ping/", 1)
	w = s.get("/metrics", 0)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "team11_http_requests_total")
}

func TestConfigCallbacks(t *testing.T) {
	s := newTestServer(t)
	var got []*config.Config
	s.app.RegisterConfigCallback(func(c *config.Config) { got = append(got, c) })

	next := &config.Config{}
	s.app.reloadConfig(next)
	require.Len(t, got, 1)
	assert.Same(t, next, got[0])
}
