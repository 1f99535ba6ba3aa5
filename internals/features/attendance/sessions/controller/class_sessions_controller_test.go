package controller_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	recordService "faceattend_backend/internals/features/attendance/records/service"
	"faceattend_backend/internals/features/attendance/sessions/route"
	"faceattend_backend/internals/features/attendance/sessions/service"
	studentModel "faceattend_backend/internals/features/attendance/students/model"
	studentService "faceattend_backend/internals/features/attendance/students/service"
	"faceattend_backend/internals/helpers/dbtime"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
)

type envelope struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	ErrorCode  string              `json:"error_code"`
	Errors     map[string][]string `json:"errors"`
	Data       json.RawMessage     `json:"data"`
	Pagination *struct {
		Total int `json:"total"`
		Count int `json:"count"`
	} `json:"pagination"`
}

type harness struct {
	app      *fiber.App
	sessions *service.Service
	ledger   *recordService.Ledger
	alice    studentModel.StudentModel
}

func newHarness(t *testing.T) harness {
	t.Helper()
	dbtime.SetLocation("UTC")
	ss := service.NewService()
	dir := studentService.NewDirectory()
	ledger := recordService.NewLedger(ss, dir)
	ss.UseAttendance(ledger)
	alice, err := dir.Add(studentModel.StudentModel{StudentIdentifier: "2101001", StudentName: "Alice Tan", StudentCourses: []string{"Database Systems"}})
	if err != nil {
		t.Fatalf("add student: %v", err)
	}

	app := fiber.New(fiber.Config{JSONEncoder: sonic.Marshal, JSONDecoder: sonic.Unmarshal})
	route.ClassSessionRoutes(app.Group("/api"), ss, ledger, 15*time.Minute)
	return harness{app, ss, ledger, alice}
}

func (h harness) do(t *testing.T, method, path, body string) (int, envelope) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	var env envelope
	if err := sonic.Unmarshal(raw, &env); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return resp.StatusCode, env
}

const createBody = `{
	"class_session_course": "Database Systems",
	"class_session_topic": "Normal forms",
	"class_session_date": "2026-03-02",
	"class_session_start_time": "08:00",
	"class_session_end_time": "09:40",
	"class_session_room": "B-201",
	"class_session_expected_students": 30
}`

func TestCreateAndLifecycle(t *testing.T) {
	h := newHarness(t)

	code, env := h.do(t, http.MethodPost, "/api/sessions", createBody)
	if code != http.StatusCreated {
		t.Fatalf("create = %d %s", code, env.Message)
	}
	var created struct {
		ID        string `json:"class_session_id"`
		Status    string `json:"class_session_status"`
		TimeRange string `json:"class_session_time_range"`
	}
	if err := sonic.Unmarshal(env.Data, &created); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if created.Status != "scheduled" || created.TimeRange != "08:00-09:40" {
		t.Fatalf("created = %+v", created)
	}

	// completed langsung dari scheduled ditolak
	code, env = h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/complete", "")
	if code != http.StatusConflict || env.ErrorCode != "INVALID_TRANSITION" {
		t.Fatalf("complete from scheduled = %d %s", code, env.ErrorCode)
	}

	if code, _ = h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/start", ""); code != http.StatusOK {
		t.Fatalf("start = %d", code)
	}

	// tanpa record dan tanpa ack
	code, env = h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/complete", `{}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("complete without records = %d", code)
	}
	if _, ok := env.Errors["no_show_ack"]; !ok {
		t.Fatalf("errors = %v", env.Errors)
	}

	body := `{"student_id":"` + h.alice.StudentID.String() + `","at":"2026-03-02T08:20:00Z"}`
	if code, env = h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/records/automatic", body); code != http.StatusCreated {
		t.Fatalf("automatic record = %d %s", code, env.Message)
	}
	var rec struct {
		Outcome string `json:"attendance_record_outcome"`
	}
	_ = sonic.Unmarshal(env.Data, &rec)
	if rec.Outcome != "late" {
		t.Fatalf("outcome = %s, want late (20 min > 15 min grace)", rec.Outcome)
	}

	if code, _ = h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/complete", `{}`); code != http.StatusOK {
		t.Fatalf("complete with record = %d", code)
	}

	code, env = h.do(t, http.MethodGet, "/api/sessions/"+created.ID+"/stats", "")
	if code != http.StatusOK {
		t.Fatalf("stats = %d", code)
	}
	var st recordService.SessionStats
	_ = sonic.Unmarshal(env.Data, &st)
	if st.Recorded != 1 || st.Attended != 1 {
		t.Fatalf("stats = %+v", st)
	}
}

func TestCreateRejectsMissingFields(t *testing.T) {
	h := newHarness(t)
	code, env := h.do(t, http.MethodPost, "/api/sessions", `{"class_session_date":"2026-03-02"}`)
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("code = %d", code)
	}
	for _, f := range []string{"class_session_course", "class_session_room"} {
		if _, ok := env.Errors[f]; !ok {
			t.Errorf("missing field error %s in %v", f, env.Errors)
		}
	}
	if n := len(h.sessions.All()); n != 0 {
		t.Fatalf("stored %d sessions", n)
	}
}

func TestCancelNeedsReason(t *testing.T) {
	h := newHarness(t)
	_, env := h.do(t, http.MethodPost, "/api/sessions", createBody)
	var created struct {
		ID string `json:"class_session_id"`
	}
	_ = sonic.Unmarshal(env.Data, &created)

	if code, _ := h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/cancel", `{"reason":"  "}`); code != http.StatusUnprocessableEntity {
		t.Fatalf("blank reason = %d", code)
	}
	if code, _ := h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/cancel", `{"reason":"lecturer ill"}`); code != http.StatusOK {
		t.Fatalf("cancel = %d", code)
	}
	code, env := h.do(t, http.MethodPost, "/api/sessions/"+created.ID+"/start", "")
	if code != http.StatusConflict {
		t.Fatalf("start after cancel = %d %s", code, env.Message)
	}
}

func TestListFiltersAndPaginates(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		h.do(t, http.MethodPost, "/api/sessions", createBody)
	}
	other := strings.Replace(createBody, "Database Systems", "Networks", 1)
	h.do(t, http.MethodPost, "/api/sessions", other)

	code, env := h.do(t, http.MethodGet, "/api/sessions?course=Database%20Systems&per_page=2", "")
	if code != http.StatusOK {
		t.Fatalf("list = %d", code)
	}
	if env.Pagination == nil || env.Pagination.Total != 3 || env.Pagination.Count != 2 {
		t.Fatalf("pagination = %+v", env.Pagination)
	}

	if code, _ = h.do(t, http.MethodGet, "/api/sessions?sort_by=colour", ""); code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown sort field = %d", code)
	}
	if code, env = h.do(t, http.MethodGet, "/api/sessions?order=sideways", ""); code != http.StatusUnprocessableEntity {
		t.Fatalf("unknown order = %d", code)
	}
	if _, ok := env.Errors["order"]; !ok {
		t.Fatalf("errors = %v", env.Errors)
	}
	if code, _ = h.do(t, http.MethodGet, "/api/sessions?order=DESC", ""); code != http.StatusOK {
		t.Fatalf("order=DESC = %d", code)
	}
	if code, _ = h.do(t, http.MethodGet, "/api/sessions/not-a-uuid", ""); code != http.StatusUnprocessableEntity {
		t.Fatalf("bad id = %d", code)
	}
}

func TestDeleteKeepsSessionWithRecords(t *testing.T) {
	h := newHarness(t)
	_, env := h.do(t, http.MethodPost, "/api/sessions", createBody)
	var created struct {
		ID string `json:"class_session_id"`
	}
	_ = sonic.Unmarshal(env.Data, &created)
	base := "/api/sessions/" + created.ID

	h.do(t, http.MethodPost, base+"/start", "")
	body := `{"student_id":"` + h.alice.StudentID.String() + `","at":"2026-03-02T08:05:00Z"}`
	if code, env := h.do(t, http.MethodPost, base+"/records/automatic", body); code != http.StatusCreated {
		t.Fatalf("automatic record = %d %s", code, env.Message)
	}

	code, env := h.do(t, http.MethodDelete, base, "")
	if code != http.StatusUnprocessableEntity {
		t.Fatalf("delete with records = %d %s", code, env.Message)
	}
	if _, ok := env.Errors["session_id"]; !ok {
		t.Fatalf("errors = %v", env.Errors)
	}
	if code, _ = h.do(t, http.MethodGet, base, ""); code != http.StatusOK {
		t.Fatalf("get after rejected delete = %d", code)
	}

	_, env = h.do(t, http.MethodPost, "/api/sessions", createBody)
	_ = sonic.Unmarshal(env.Data, &created)
	if code, _ = h.do(t, http.MethodDelete, "/api/sessions/"+created.ID, ""); code != http.StatusOK {
		t.Fatalf("delete empty session = %d", code)
	}
}
