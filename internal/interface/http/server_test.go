package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/classroom-hub/internal/application/command"
	"github.com/alem-hub/classroom-hub/internal/application/store"
	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	redisstore "github.com/alem-hub/classroom-hub/internal/infrastructure/persistence/redis"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/service"
)

// Monday, first period.
var testNow = time.Date(2026, 10, 19, 1, 30, 0, 0, time.UTC)

type envelope struct {
	Success   bool            `json:"success"`
	Data      json.RawMessage `json:"data"`
	Error     *APIError       `json:"error"`
	Meta      *ResponseMeta   `json:"meta"`
	RequestID string          `json:"request_id"`
}

func newTestServer(t *testing.T, mutate func(*Config)) (*Server, *store.Store) {
	t.Helper()
	return buildTestServer(t, mutate, nil)
}

func buildTestServer(t *testing.T, mutate func(*Config), mutateDeps func(*Dependencies)) (*Server, *store.Store) {
	t.Helper()

	st := store.New(classroom.NewEngine(service.NewIDGenerator(), nil), classroom.NewDemoState(testNow), nil)
	commands := command.NewHandler(st, service.NewIDGenerator(), nil, nil, nil, command.HandlerConfig{
		DisableAutoReply: true,
		Clock:            func() time.Time { return testNow },
	})

	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	deps := Dependencies{
		Commands: commands,
		State:    st,
		Clock:    func() time.Time { return testNow },
	}
	if mutateDeps != nil {
		mutateDeps(&deps)
	}
	return NewServer(cfg, deps), st
}

func do(t *testing.T, srv *Server, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

// ══════════════════════════════════════════════════════════════════════════════
// READ SIDE
// ══════════════════════════════════════════════════════════════════════════════

func TestServer_Live(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/live", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, rec.Header().Get("X-Request-ID"), env.RequestID)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestServer_KeepsIncomingRequestID(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()

	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestServer_GetState(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/state", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var state classroom.State
	require.NoError(t, json.Unmarshal(env.Data, &state))
	assert.Len(t, state.Students, 6)
	assert.Equal(t, "s1", state.CurrentStudentID)
}

func TestServer_GetStudent(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/students/s1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view StudentView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "Nguyễn Minh An", view.Student.FullName)
	require.NotNil(t, view.Chat)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/students/current", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "s1", view.Student.ID)

	rec, env = do(t, srv, http.MethodGet, "/api/v1/students/ghost", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestServer_LeaderboardLimit(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/leaderboard?limit=2", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var entries []classroom.LeaderboardEntry
	require.NoError(t, json.Unmarshal(env.Data, &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "s2", entries[0].StudentID)
	assert.Equal(t, 2, env.Meta.TotalCount)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/leaderboard?limit=-1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ScheduleCell(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/schedule/cells/0/0", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var cell ScheduleCellView
	require.NoError(t, json.Unmarshal(env.Data, &cell))
	require.NotNil(t, cell.Lesson)
	assert.Equal(t, "toan-1-1", cell.Lesson.Lesson.ID)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/schedule/cells/9/0", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/schedule/cells/x/0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ScheduleToday(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/schedule/today", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var today struct {
		School    bool               `json:"school"`
		Weekend   bool               `json:"weekend"`
		WeekStart string             `json:"week_start"`
		Day       int                `json:"day"`
		Cells     []ScheduleCellView `json:"cells"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &today))
	assert.True(t, today.School)
	assert.False(t, today.Weekend)
	assert.Equal(t, "19/10/2026", today.WeekStart)
	assert.Equal(t, 0, today.Day)
	assert.NotEmpty(t, today.Cells)
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTIONS
// ══════════════════════════════════════════════════════════════════════════════

func TestServer_AwardPoints(t *testing.T) {
	srv, st := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodPost, "/api/v1/students/s1/points",
		`{"delta":30,"category":"sangTao","reason":"vẽ đẹp"}`)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	s1, _ := classroom.StudentByID(st.State(), "s1")
	assert.Equal(t, 80, s1.Points.Balance)
}

func TestServer_AwardPointsRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodPost, "/api/v1/students/s1/points", `{"delta":5,"category":"magic"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", env.Error.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/students/s1/points", `{"delta":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", env.Error.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/students/s1/points", `{"delta":5,"category":"sangTao","bonus":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_json", env.Error.Code)

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/students/ghost/points", `{"delta":5,"category":"sangTao"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Purchase(t *testing.T) {
	srv, st := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodPost, "/api/v1/students/s2/purchases", `{"item_id":"pencil"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, []string{"pencil"}, st.State().Inventory["s2"])

	rec, env := do(t, srv, http.MethodPost, "/api/v1/students/s4/purchases", `{"item_id":"seat-choice"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "insufficient_balance", env.Error.Code)
	s4, _ := classroom.StudentByID(st.State(), "s4")
	assert.Equal(t, 40, s4.Points.Balance)

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/students/s2/purchases", `{"item_id":"pony"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_PurchaseRouteDisabled(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config) { c.EnablePurchases = false })

	rec, _ := do(t, srv, http.MethodPost, "/api/v1/students/s2/purchases", `{"item_id":"pencil"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_RejectsNonJSONBody(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/announcements", strings.NewReader(`title=hi`))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported_media_type")
}

func TestServer_StateVersionHeader(t *testing.T) {
	srv, st := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodGet, "/api/v1/state", "")
	assert.Equal(t, "0", rec.Header().Get("X-State-Version"))

	st.Dispatch(classroom.SetRole{Role: classroom.RoleParent})
	rec, _ = do(t, srv, http.MethodGet, "/api/v1/state", "")
	assert.Equal(t, "1", rec.Header().Get("X-State-Version"))
}

func TestServer_MoveSeatOutOfBounds(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodPut, "/api/v1/students/s1/seat", `{"x":2,"y":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, srv, http.MethodPut, "/api/v1/students/s1/seat", `{"x":99,"y":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_LessonLifecycle(t *testing.T) {
	srv, st := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodPost, "/api/v1/syllabus/weeks/1/subjects/toan/lessons",
		`{"id":"toan-1-9","title":"Ôn tập","objective":"Củng cố","content":"Bài tập tổng hợp"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, env := do(t, srv, http.MethodPatch, "/api/v1/syllabus/weeks/1/subjects/toan/lessons/toan-1-9", `{"title":"Ôn tập cuối tuần"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var lesson classroom.Lesson
	require.NoError(t, json.Unmarshal(env.Data, &lesson))
	assert.Equal(t, "Ôn tập cuối tuần", lesson.Title)
	assert.Equal(t, "Củng cố", lesson.Objective)

	rec, _ = do(t, srv, http.MethodDelete, "/api/v1/syllabus/weeks/1/subjects/toan/lessons/toan-1-9", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	_, ok := classroom.FindLesson(st.State(), "toan", "toan-1-9")
	assert.False(t, ok)

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/syllabus/weeks/7/subjects/toan/lessons", `{"id":"x","title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_ScheduleCellActions(t *testing.T) {
	srv, st := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodPut, "/api/v1/schedule/cells/3/1", `{"subject_id":"khoa-hoc","lesson_id":"kh-1-1"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, classroom.LessonRef{SubjectID: "khoa-hoc", LessonID: "kh-1-1"},
		st.State().Schedule.Cells[classroom.CellKey{Day: 3, Slot: 1}])

	rec, _ = do(t, srv, http.MethodDelete, "/api/v1/schedule/cells/3/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := st.State().Schedule.Cells[classroom.CellKey{Day: 3, Slot: 1}]
	assert.False(t, ok)
}

func TestServer_LogbookSaveAndSign(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodPut, "/api/v1/logbook/1/0/0", `{"rating":4,"notes":"Lớp trật tự"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := do(t, srv, http.MethodPost, "/api/v1/logbook/1/0/0/sign", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var entry classroom.LogbookEntry
	require.NoError(t, json.Unmarshal(env.Data, &entry))
	assert.Equal(t, classroom.LogbookCompleted, entry.Status)
	assert.Equal(t, "Cô Lan", entry.Signer)
	assert.Equal(t, 4, entry.Rating)
	assert.Equal(t, "Lớp trật tự", entry.Notes)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/logbook/1/0/0", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, srv, http.MethodPut, "/api/v1/logbook/1/0/1", `{"rating":9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_SlidesUnavailableWithoutGenerator(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodPost, "/api/v1/slides", `{"subject_id":"toan","lesson_id":"toan-1-1"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", env.Error.Code)
}

func TestServer_DismissToast(t *testing.T) {
	srv, st := newTestServer(t, nil)
	st.Dispatch(classroom.AddToast{Toast: classroom.Toast{ID: "t1", Title: "x", Severity: classroom.SeverityInfo}})

	rec, _ := do(t, srv, http.MethodDelete, "/api/v1/toasts/t1", "")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, st.State().Toasts)
}

func TestServer_CORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config) { c.AllowedOrigins = []string{"https://class.example"} })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/state", nil)
	req.Header.Set("Origin", "https://class.example")
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://class.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/state", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_PayloadTooLarge(t *testing.T) {
	srv, _ := newTestServer(t, func(c *Config) { c.MaxBodyBytes = 16 })

	rec, _ := do(t, srv, http.MethodPost, "/api/v1/announcements",
		`{"author":"Cô Lan","title":"Họp phụ huynh","content":"Thứ bảy 8 giờ"}`)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS
// ══════════════════════════════════════════════════════════════════════════════

type stubJob struct {
	name string
	err  error
	runs int
}

func (j *stubJob) Name() string                  { return j.name }
func (j *stubJob) Description() string           { return "stub" }
func (j *stubJob) Run(ctx context.Context) error { j.runs++; return j.err }

func TestServer_Jobs(t *testing.T) {
	sched := scheduler.New(scheduler.Config{Clock: func() time.Time { return testNow }})
	sweep := &stubJob{name: "toasts.sweep"}
	broken := &stubJob{name: "leaderboard.resync", err: errors.New("redis down")}
	require.NoError(t, sched.Register(sweep, scheduler.Every(time.Minute)))
	require.NoError(t, sched.Register(broken, scheduler.Every(time.Minute)))

	srv, _ := buildTestServer(t, nil, func(d *Dependencies) { d.Jobs = sched })

	rec, env := do(t, srv, http.MethodGet, "/api/v1/jobs", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var infos []scheduler.JobInfo
	require.NoError(t, json.Unmarshal(env.Data, &infos))
	require.Len(t, infos, 2)
	assert.Equal(t, "leaderboard.resync", infos[0].Name)
	assert.Equal(t, "@every 1m0s", infos[1].Schedule)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/jobs/toasts.sweep/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, true, res["ok"])
	assert.Equal(t, 1, sweep.runs)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/jobs/leaderboard.resync/run", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, false, res["ok"])
	assert.Equal(t, "redis down", res["error"])

	rec, env = do(t, srv, http.MethodPost, "/api/v1/jobs/nope/run", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestServer_OperationsUnavailableWithoutBackends(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodGet, "/api/v1/jobs", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/leaderboard/mirror", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type stubMirror struct {
	entries []classroom.LeaderboardEntry
	err     error
}

func (m stubMirror) Top(ctx context.Context, n int) ([]classroom.LeaderboardEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	if n < len(m.entries) {
		return m.entries[:n], nil
	}
	return m.entries, nil
}

func (m stubMirror) Meta(ctx context.Context) (*redisstore.LeaderboardMeta, error) {
	return &redisstore.LeaderboardMeta{Version: 7, TotalStudents: len(m.entries)}, nil
}

func TestServer_LeaderboardMirror(t *testing.T) {
	entries := classroom.Leaderboard(classroom.NewDemoState(testNow))
	srv, _ := buildTestServer(t, nil, func(d *Dependencies) { d.Mirror = stubMirror{entries: entries} })

	rec, env := do(t, srv, http.MethodGet, "/api/v1/leaderboard/mirror?limit=2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var view struct {
		Entries []classroom.LeaderboardEntry `json:"entries"`
		Meta    redisstore.LeaderboardMeta   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Entries, 2)
	assert.Equal(t, "s2", view.Entries[0].StudentID)
	assert.Equal(t, uint64(7), view.Meta.Version)

	rec, _ = do(t, srv, http.MethodGet, "/api/v1/leaderboard/mirror?limit=0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	srv, _ = buildTestServer(t, nil, func(d *Dependencies) { d.Mirror = stubMirror{err: errors.New("timeout")} })
	rec, env = do(t, srv, http.MethodGet, "/api/v1/leaderboard/mirror", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "mirror_unavailable", env.Error.Code)
}

func TestServer_Seating(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, env := do(t, srv, http.MethodGet, "/api/v1/seating", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var chart struct {
		Columns int                        `json:"columns"`
		Rows    int                        `json:"rows"`
		Seats   []classroom.SeatAssignment `json:"seats"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &chart))
	assert.Equal(t, 4, chart.Columns)
	require.Len(t, chart.Seats, 6)
	assert.Equal(t, "s1", chart.Seats[0].StudentID)
}

func TestServer_ApplyOperation(t *testing.T) {
	srv, st := buildTestServer(t, nil, func(d *Dependencies) { d.Operations = d.State.(*store.Store) })

	rec, env := do(t, srv, http.MethodPost, "/api/v1/operations/points.add",
		`{"id":"p9","student_id":"s1","delta":5,"category":"sangTao","reason":"trả lời đúng"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Version uint64 `json:"version"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Equal(t, uint64(1), res.Version)
	s1, _ := classroom.StudentByID(st.State(), "s1")
	assert.Equal(t, 55, s1.Points.Balance)

	rec, _ = do(t, srv, http.MethodPost, "/api/v1/operations/toast.dismiss", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/operations/teleport", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "unknown_operation", env.Error.Code)

	rec, env = do(t, srv, http.MethodPost, "/api/v1/operations/seat.move", `{"x":"left"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_input", env.Error.Code)
}

func TestServer_ApplyOperationDisabled(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	rec, _ := do(t, srv, http.MethodPost, "/api/v1/operations/role.set", `{"role":"parent"}`)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
