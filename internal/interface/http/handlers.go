package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/alem-hub/classroom-hub/internal/application/command"
	"github.com/alem-hub/classroom-hub/internal/domain/classroom"
	"github.com/alem-hub/classroom-hub/internal/domain/shared"
	"github.com/alem-hub/classroom-hub/internal/infrastructure/scheduler"
	"github.com/alem-hub/classroom-hub/pkg/logger"
	"github.com/alem-hub/classroom-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"name":        "Classroom Hub API",
		"version":     s.config.Version,
		"description": "Points, seating, syllabus, logbook and parent chat for one class",
		"endpoints": map[string]string{
			"health":      "/health",
			"state":       "/api/v1/state",
			"students":    "/api/v1/students",
			"leaderboard": "/api/v1/leaderboard",
			"schedule":    "/api/v1/schedule",
			"store":       "/api/v1/store",
			"jobs":        "/api/v1/jobs",
		},
	}
	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Healthy {
		writeJSON(w, http.StatusServiceUnavailable, status)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// handleReady handles the readiness check endpoint.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	status := s.deps.HealthChecker.Check(r.Context())
	if !status.Ready {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": status.Message,
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive handles the liveness check endpoint.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// READ HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetState handles GET /api/v1/state
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.State.State())
}

// handleListStudents handles GET /api/v1/students
func (s *Server) handleListStudents(w http.ResponseWriter, r *http.Request) {
	students := s.deps.State.State().Students
	writeJSONWithMeta(w, http.StatusOK, students, &ResponseMeta{TotalCount: len(students)})
}

// StudentView is a student together with everything hanging off them.
type StudentView struct {
	Student   classroom.Student      `json:"student"`
	Seat      *classroom.Position    `json:"seat,omitempty"`
	History   []classroom.PointEvent `json:"history"`
	Inventory []classroom.StoreItem  `json:"inventory"`
	Chat      *classroom.ChatThread  `json:"chat,omitempty"`
}

func studentView(state classroom.State, st classroom.Student) StudentView {
	v := StudentView{
		Student:   st,
		History:   classroom.PointHistory(state, st.ID),
		Inventory: classroom.InventoryItems(state, st.ID),
	}
	if pos, ok := state.Seating.Positions[st.ID]; ok {
		v.Seat = &pos
	}
	if thread, ok := classroom.ChatThreadFor(state, st.ID); ok {
		v.Chat = &thread
	}
	return v
}

// handleGetStudent handles GET /api/v1/students/{id}
func (s *Server) handleGetStudent(w http.ResponseWriter, r *http.Request) {
	state := s.deps.State.State()
	st, ok := classroom.StudentByID(state, r.PathValue("id"))
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Student not found")
		return
	}
	writeJSON(w, http.StatusOK, studentView(state, st))
}

// handleGetCurrentStudent handles GET /api/v1/students/current
func (s *Server) handleGetCurrentStudent(w http.ResponseWriter, r *http.Request) {
	state := s.deps.State.State()
	st, ok := classroom.CurrentStudent(state)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "No student selected")
		return
	}
	writeJSON(w, http.StatusOK, studentView(state, st))
}

// handleGetLeaderboard handles GET /api/v1/leaderboard?limit=N
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	limit := getQueryParamInt(r, "limit", 0)
	if limit < 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", "limit must not be negative")
		return
	}

	var entries []classroom.LeaderboardEntry
	if s.deps.Leaderboard != nil {
		entries = s.deps.Leaderboard.Top(limit)
	} else {
		entries = classroom.Leaderboard(s.deps.State.State())
		if limit > 0 && limit < len(entries) {
			entries = entries[:limit]
		}
	}
	writeJSONWithMeta(w, http.StatusOK, entries, &ResponseMeta{TotalCount: len(entries)})
}

// handleGetStore handles GET /api/v1/store
// handleGetLeaderboardMirror handles GET /api/v1/leaderboard/mirror
func (s *Server) handleGetLeaderboardMirror(w http.ResponseWriter, r *http.Request) {
	if s.deps.Mirror == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "Leaderboard mirror is not configured")
		return
	}
	limit := getQueryParamInt(r, "limit", 10)
	if limit <= 0 {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", "limit must be positive")
		return
	}

	entries, err := s.deps.Mirror.Top(r.Context(), limit)
	if err != nil {
		logger.FromContext(r.Context()).Warn("mirror read failed", "error", err)
		writeJSONError(w, http.StatusBadGateway, "mirror_unavailable", "Leaderboard mirror could not be read")
		return
	}
	meta, err := s.deps.Mirror.Meta(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Debug("mirror meta missing", "error", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"meta":    meta,
	})
}

// handleGetSeating handles GET /api/v1/seating
func (s *Server) handleGetSeating(w http.ResponseWriter, r *http.Request) {
	state := s.deps.State.State()
	writeJSON(w, http.StatusOK, map[string]any{
		"columns": state.Seating.Columns,
		"rows":    state.Seating.Rows,
		"seats":   classroom.SeatingChart(state),
	})
}

func (s *Server) handleGetStore(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.State.State().Store)
}

// handleGetSyllabus handles GET /api/v1/syllabus
func (s *Server) handleGetSyllabus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.State.State().Syllabus)
}

// handleGetSchedule handles GET /api/v1/schedule
func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.State.State().Schedule)
}

// ScheduleCellView is one resolved timetable cell.
type ScheduleCellView struct {
	Day      int                       `json:"day"`
	Slot     int                       `json:"slot"`
	DayName  string                    `json:"day_name"`
	SlotInfo classroom.Slot            `json:"slot_info"`
	Ref      *classroom.LessonRef      `json:"ref,omitempty"`
	Lesson   *classroom.ResolvedLesson `json:"lesson,omitempty"`
	Logbook  *classroom.LogbookEntry   `json:"logbook,omitempty"`
}

func scheduleCell(state classroom.State, day, slot int) ScheduleCellView {
	sched := state.Schedule
	v := ScheduleCellView{
		Day:      day,
		Slot:     slot,
		DayName:  sched.Days[day],
		SlotInfo: sched.Slots[slot],
	}
	if ref, ok := sched.Cells[classroom.CellKey{Day: day, Slot: slot}]; ok {
		v.Ref = &ref
	}
	if resolved, ok := classroom.LessonForScheduleCell(state, day, slot); ok {
		v.Lesson = &resolved
	}
	if entry, ok := classroom.LogbookEntryFor(state, sched.Week, day, slot); ok {
		v.Logbook = &entry
	}
	return v
}

// handleGetScheduleCell handles GET /api/v1/schedule/cells/{day}/{slot}
func (s *Server) handleGetScheduleCell(w http.ResponseWriter, r *http.Request) {
	vals, err := pathInts(r, "day", "slot")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	day, slot := vals[0], vals[1]

	state := s.deps.State.State()
	if day < 0 || slot < 0 || day >= len(state.Schedule.Days) || slot >= len(state.Schedule.Slots) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Schedule cell not found")
		return
	}
	writeJSON(w, http.StatusOK, scheduleCell(state, day, slot))
}

// handleGetScheduleToday handles GET /api/v1/schedule/today
func (s *Server) handleGetScheduleToday(w http.ResponseWriter, r *http.Request) {
	state := s.deps.State.State()
	now := timeutil.ToSchool(s.deps.Clock())

	day, ok := timeutil.DayIndex(now, len(state.Schedule.Days))
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{
			"date":       timeutil.FormatDate(now),
			"week_start": timeutil.FormatDate(timeutil.StartOfWeek(now)),
			"weekday":    timeutil.WeekdayNameVi(now),
			"school":     false,
			"weekend":    timeutil.IsWeekend(now),
			"cells":      []ScheduleCellView{},
		})
		return
	}

	cells := make([]ScheduleCellView, 0, len(state.Schedule.Slots))
	for slot := range state.Schedule.Slots {
		cells = append(cells, scheduleCell(state, day, slot))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"date":       timeutil.FormatDate(now),
		"week_start": timeutil.FormatDate(timeutil.StartOfWeek(now)),
		"weekday":    timeutil.WeekdayNameVi(now),
		"school":     true,
		"weekend":    false,
		"day":        day,
		"cells":      cells,
	})
}

// handleGetLogbookEntry handles GET /api/v1/logbook/{week}/{day}/{slot}
func (s *Server) handleGetLogbookEntry(w http.ResponseWriter, r *http.Request) {
	vals, err := pathInts(r, "week", "day", "slot")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	entry, ok := classroom.LogbookEntryFor(s.deps.State.State(), vals[0], vals[1], vals[2])
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not_found", "Logbook entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// handleListAnnouncements handles GET /api/v1/announcements
func (s *Server) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	items := s.deps.State.State().Announcements
	writeJSONWithMeta(w, http.StatusOK, items, &ResponseMeta{TotalCount: len(items)})
}

// handleListToasts handles GET /api/v1/toasts
func (s *Server) handleListToasts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.State.State().Toasts)
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type switchRoleRequest struct {
	Role classroom.Role `json:"role"`
}

// handleSwitchRole handles PUT /api/v1/session/role
func (s *Server) handleSwitchRole(w http.ResponseWriter, r *http.Request) {
	var req switchRoleRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.deps.Commands.SwitchRole(r.Context(), req.Role); err != nil {
		s.writeError(w, r, "switch role", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"role": req.Role})
}

type selectStudentRequest struct {
	StudentID string `json:"student_id"`
}

// handleSelectStudent handles PUT /api/v1/session/student
func (s *Server) handleSelectStudent(w http.ResponseWriter, r *http.Request) {
	var req selectStudentRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.deps.Commands.SelectStudent(r.Context(), req.StudentID); err != nil {
		s.writeError(w, r, "select student", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"current_student_id": req.StudentID})
}

// ══════════════════════════════════════════════════════════════════════════════
// STUDENT ACTION HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type awardPointsRequest struct {
	Delta    int                `json:"delta"`
	Category classroom.Category `json:"category"`
	Reason   string             `json:"reason"`
}

// handleAwardPoints handles POST /api/v1/students/{id}/points
func (s *Server) handleAwardPoints(w http.ResponseWriter, r *http.Request) {
	var req awardPointsRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.deps.Commands.AwardPoints(r.Context(), command.AwardPointsCommand{
		StudentID: r.PathValue("id"),
		Delta:     req.Delta,
		Category:  req.Category,
		Reason:    req.Reason,
	})
	if err != nil {
		s.writeError(w, r, "award points", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"event":   res.Event,
		"student": res.Student,
	})
}

type attendanceRequest struct {
	Status classroom.AttendanceStatus `json:"status"`
}

// handleRecordAttendance handles POST /api/v1/students/{id}/attendance
func (s *Server) handleRecordAttendance(w http.ResponseWriter, r *http.Request) {
	var req attendanceRequest
	if !s.decode(w, r, &req) {
		return
	}
	st, err := s.deps.Commands.RecordAttendance(r.Context(), command.RecordAttendanceCommand{
		StudentID: r.PathValue("id"),
		Status:    req.Status,
	})
	if err != nil {
		s.writeError(w, r, "record attendance", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleMoveSeat handles PUT /api/v1/students/{id}/seat
func (s *Server) handleMoveSeat(w http.ResponseWriter, r *http.Request) {
	var req classroom.Position
	if !s.decode(w, r, &req) {
		return
	}
	err := s.deps.Commands.MoveSeat(r.Context(), command.MoveSeatCommand{
		StudentID: r.PathValue("id"),
		X:         req.X,
		Y:         req.Y,
	})
	if err != nil {
		s.writeError(w, r, "move seat", err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.State.State().Seating)
}

type purchaseRequest struct {
	ItemID string `json:"item_id"`
}

// handlePurchaseItem handles POST /api/v1/students/{id}/purchases
func (s *Server) handlePurchaseItem(w http.ResponseWriter, r *http.Request) {
	var req purchaseRequest
	if !s.decode(w, r, &req) {
		return
	}
	res, err := s.deps.Commands.PurchaseItem(r.Context(), command.PurchaseItemCommand{
		StudentID: r.PathValue("id"),
		ItemID:    req.ItemID,
	})
	if err != nil {
		s.writeError(w, r, "purchase item", err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"item":      res.Item,
		"student":   res.Student,
		"inventory": res.Inventory,
	})
}

type sendMessageRequest struct {
	From classroom.Sender `json:"from"`
	Text string           `json:"text"`
}

// handleSendMessage handles POST /api/v1/students/{id}/messages
func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !s.decode(w, r, &req) {
		return
	}
	msg, err := s.deps.Commands.SendMessage(r.Context(), command.SendMessageCommand{
		StudentID: r.PathValue("id"),
		From:      req.From,
		Text:      req.Text,
	})
	if err != nil {
		s.writeError(w, r, "send message", err)
		return
	}
	writeJSON(w, http.StatusCreated, msg)
}

// ══════════════════════════════════════════════════════════════════════════════
// SYLLABUS & SCHEDULE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleUpsertLesson handles POST .../lessons and PATCH .../lessons/{lesson}
func (s *Server) handleUpsertLesson(w http.ResponseWriter, r *http.Request) {
	vals, err := pathInts(r, "week")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	var patch classroom.LessonPatch
	if !s.decode(w, r, &patch) {
		return
	}
	if id := r.PathValue("lesson"); id != "" {
		patch.ID = id
	}

	lesson, err := s.deps.Commands.UpsertLesson(r.Context(), command.UpsertLessonCommand{
		Week:      vals[0],
		SubjectID: r.PathValue("subject"),
		Lesson:    patch,
	})
	if err != nil {
		s.writeError(w, r, "upsert lesson", err)
		return
	}

	status := http.StatusOK
	if r.Method == http.MethodPost {
		status = http.StatusCreated
	}
	writeJSON(w, status, lesson)
}

// handleDeleteLesson handles DELETE .../lessons/{lesson}
func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	vals, err := pathInts(r, "week")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	err = s.deps.Commands.DeleteLesson(r.Context(), command.DeleteLessonCommand{
		Week:      vals[0],
		SubjectID: r.PathValue("subject"),
		LessonID:  r.PathValue("lesson"),
	})
	if err != nil {
		s.writeError(w, r, "delete lesson", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type scheduleWeekRequest struct {
	Week int `json:"week"`
}

// handleSetScheduleWeek handles PUT /api/v1/schedule/week
func (s *Server) handleSetScheduleWeek(w http.ResponseWriter, r *http.Request) {
	var req scheduleWeekRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.deps.Commands.SetScheduleWeek(r.Context(), req.Week); err != nil {
		s.writeError(w, r, "set schedule week", err)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.State.State().Schedule)
}

// handleSetScheduleCell handles PUT /api/v1/schedule/cells/{day}/{slot}
func (s *Server) handleSetScheduleCell(w http.ResponseWriter, r *http.Request) {
	vals, err := pathInts(r, "day", "slot")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	var ref classroom.LessonRef
	if !s.decode(w, r, &ref) {
		return
	}
	s.setScheduleCell(w, r, vals[0], vals[1], ref)
}

// handleClearScheduleCell handles DELETE /api/v1/schedule/cells/{day}/{slot}
func (s *Server) handleClearScheduleCell(w http.ResponseWriter, r *http.Request) {
	vals, err := pathInts(r, "day", "slot")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	s.setScheduleCell(w, r, vals[0], vals[1], classroom.LessonRef{})
}

func (s *Server) setScheduleCell(w http.ResponseWriter, r *http.Request, day, slot int, ref classroom.LessonRef) {
	err := s.deps.Commands.SetScheduleCell(r.Context(), command.SetScheduleCellCommand{
		Day:       day,
		Slot:      slot,
		SubjectID: ref.SubjectID,
		LessonID:  ref.LessonID,
	})
	if err != nil {
		s.writeError(w, r, "set schedule cell", err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleCell(s.deps.State.State(), day, slot))
}

// ══════════════════════════════════════════════════════════════════════════════
// LOGBOOK HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleSaveLogbookEntry handles PUT /api/v1/logbook/{week}/{day}/{slot}
func (s *Server) handleSaveLogbookEntry(w http.ResponseWriter, r *http.Request) {
	s.logbookAction(w, r, "save logbook entry", s.deps.Commands.SaveLogbookEntry)
}

// handleSignLogbookEntry handles POST /api/v1/logbook/{week}/{day}/{slot}/sign
func (s *Server) handleSignLogbookEntry(w http.ResponseWriter, r *http.Request) {
	s.logbookAction(w, r, "sign logbook entry", s.deps.Commands.SignAndSubmitLogbook)
}

type logbookFunc func(context.Context, command.SaveLogbookEntryCommand) (*classroom.LogbookEntry, error)

func (s *Server) logbookAction(w http.ResponseWriter, r *http.Request, op string, fn logbookFunc) {
	vals, err := pathInts(r, "week", "day", "slot")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_input", err.Error())
		return
	}
	var patch classroom.LogbookPatch
	if r.ContentLength != 0 && !s.decode(w, r, &patch) {
		return
	}

	entry, err := fn(r.Context(), command.SaveLogbookEntryCommand{
		Week:  vals[0],
		Day:   vals[1],
		Slot:  vals[2],
		Entry: patch,
	})
	if err != nil {
		s.writeError(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// ══════════════════════════════════════════════════════════════════════════════
// COMMUNICATION & SLIDES HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type announcementRequest struct {
	Author  string `json:"author"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// handlePostAnnouncement handles POST /api/v1/announcements
func (s *Server) handlePostAnnouncement(w http.ResponseWriter, r *http.Request) {
	var req announcementRequest
	if !s.decode(w, r, &req) {
		return
	}
	a, err := s.deps.Commands.PostAnnouncement(r.Context(), command.PostAnnouncementCommand{
		Author:  req.Author,
		Title:   req.Title,
		Content: req.Content,
	})
	if err != nil {
		s.writeError(w, r, "post announcement", err)
		return
	}
	writeJSON(w, http.StatusCreated, a)
}

// handleGenerateSlides handles POST /api/v1/slides
func (s *Server) handleGenerateSlides(w http.ResponseWriter, r *http.Request) {
	var ref classroom.LessonRef
	if !s.decode(w, r, &ref) {
		return
	}
	deck, err := s.deps.Commands.RequestSlideGeneration(r.Context(), command.GenerateSlidesCommand{
		SubjectID: ref.SubjectID,
		LessonID:  ref.LessonID,
	})
	if err != nil {
		s.writeError(w, r, "generate slides", err)
		return
	}
	writeJSON(w, http.StatusOK, deck)
}

// handleDismissToast handles DELETE /api/v1/toasts/{id}
func (s *Server) handleDismissToast(w http.ResponseWriter, r *http.Request) {
	s.deps.Commands.DismissToast(r.Context(), r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// decode reads a JSON body and answers 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := decodeJSON(r, dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return false
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// errorStatus maps action errors onto HTTP status codes and error codes.
func errorStatus(err error) (int, string) {
	switch {
	case shared.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case shared.IsValidation(err):
		return http.StatusBadRequest, "invalid_input"
	case shared.IsInsufficientBalance(err):
		return http.StatusConflict, "insufficient_balance"
	case errors.Is(err, command.ErrSlidesUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code := errorStatus(err)
	log := logger.FromContext(r.Context()).With(logger.Operation(op))
	if status >= http.StatusInternalServerError {
		log.Error("action failed", "error", err)
	} else {
		log.Debug("action rejected", "error", err)
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Failed to " + strings.ToLower(op)
	}
	writeJSONError(w, status, code, message)
}

// ══════════════════════════════════════════════════════════════════════════════
// OPERATIONS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleApplyOperation handles POST /api/v1/operations/{name}. The body is
// the operation payload; it skips the action layer, so no notifications are
// emitted and only the engine's own guards apply.
func (s *Server) handleApplyOperation(w http.ResponseWriter, r *http.Request) {
	if s.deps.Operations == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "Operation replay is disabled")
		return
	}
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSONError(w, http.StatusRequestEntityTooLarge, "payload_too_large", "Request body too large")
			return
		}
		writeJSONError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	name := classroom.OpName(r.PathValue("name"))
	op, err := classroom.DecodeOperation(name, payload)
	if err != nil {
		if errors.Is(err, shared.ErrUnknownOperation) {
			writeJSONError(w, http.StatusNotFound, "unknown_operation", err.Error())
			return
		}
		s.writeError(w, r, "apply operation", err)
		return
	}

	s.deps.Operations.Dispatch(op)
	logger.FromContext(r.Context()).Info("operation applied", "op", string(name))
	writeJSON(w, http.StatusOK, map[string]any{
		"operation": name,
		"version":   s.deps.Operations.Version(),
	})
}

// handleListJobs handles GET /api/v1/jobs
func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "Scheduler is not running")
		return
	}
	jobs := s.deps.Jobs.ListJobs()
	writeJSONWithMeta(w, http.StatusOK, jobs, &ResponseMeta{TotalCount: len(jobs)})
}

// handleRunJob handles POST /api/v1/jobs/{name}/run
func (s *Server) handleRunJob(w http.ResponseWriter, r *http.Request) {
	if s.deps.Jobs == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "unavailable", "Scheduler is not running")
		return
	}
	name := r.PathValue("name")
	res, err := s.deps.Jobs.RunNow(r.Context(), name)
	if errors.Is(err, scheduler.ErrJobNotFound) {
		writeJSONError(w, http.StatusNotFound, "not_found", "Job not found")
		return
	}

	view := map[string]any{
		"job":         res.JobName,
		"started_at":  res.StartedAt,
		"duration_ms": res.Duration.Milliseconds(),
		"ok":          err == nil,
	}
	if err != nil {
		view["error"] = err.Error()
	}
	writeJSON(w, http.StatusOK, view)
}
