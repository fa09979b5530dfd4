package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"axiapac.com/selfservice/security"
	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/selfservice/v1/common/leave"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticToken string

func (s staticToken) Token(ctx context.Context) (string, error) {
	return string(s), nil
}

type seen struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   [][]byte
}

func (s *seen) add(r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, r)
	s.bodies = append(s.bodies, body)
}

func (s *seen) req(i int) *http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[i]
}

func (s *seen) body(i int) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bodies[i]
}

func (s *seen) all() []*http.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*http.Request(nil), s.requests...)
}

func (s *seen) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func noWait(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

func newTestClient(t *testing.T, handler http.HandlerFunc, token string) (*SelfServiceClient, *seen) {
	t.Helper()
	s := &seen{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.add(r)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	policy := DefaultRetryPolicy()
	policy.Sleep = noWait
	policy.Timeout = 2 * time.Second
	return NewSelfServiceClient(server.URL, staticToken(token), policy, nil), s
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	io.WriteString(w, body)
}

func TestCallSendsBearerAndSharedRequestID(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		n := attempts
		mu.Unlock()
		if n < 3 {
			writeJSON(w, http.StatusBadGateway, `{"message":"upstream"}`)
			return
		}
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}, "tok123")

	outcome := client.Auth.Logout(context.Background())
	require.True(t, outcome.OK(), outcome.String())
	require.Equal(t, 3, s.count())

	id := s.req(0).Header.Get("X-Request-Id")
	assert.NotEmpty(t, id)
	for _, r := range s.all() {
		assert.Equal(t, "Bearer tok123", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, id, r.Header.Get("X-Request-Id"))
	}
}

func TestCallDistinctRequestIDPerCall(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}, "tok123")

	client.Auth.Logout(context.Background())
	client.Auth.Logout(context.Background())
	require.Equal(t, 2, s.count())
	assert.NotEqual(t, s.req(0).Header.Get("X-Request-Id"), s.req(1).Header.Get("X-Request-Id"))
}

func TestCallRetriesExactlyMaxAttempts(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusServiceUnavailable, ``)
	}, "tok123")

	outcome := client.Auth.Logout(context.Background())
	assert.Equal(t, KindServerError, outcome.Kind)
	assert.Equal(t, "Server Error: 503", outcome.Message)
	assert.Equal(t, 3, s.count())
}

func TestCallValidationIsNotRetried(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, `{"errors":{"reason":["The reason field is required."],"start_date":["Bad date"]}}`)
	}, "tok123")

	_, outcome := client.Leave.Create(context.Background(), LeaveInput{LeaveType: leave.Annual})
	assert.Equal(t, KindValidation, outcome.Kind)
	assert.Equal(t, "The reason field is required.", outcome.Message)
	assert.Equal(t, 1, s.count())
}

func TestCallWithoutTokenNeverHitsNetwork(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}, "")

	outcome := client.Attendance.CheckIn(context.Background(), CheckInput{Location: "Office"})
	assert.Equal(t, KindUnauthenticated, outcome.Kind)
	assert.Zero(t, s.count())
}

func TestCallWithExpiredTokenFailsFast(t *testing.T) {
	expired, err := security.CreateAccessToken(&security.Identity{UserID: 5, Email: "a@b.com"}, []byte("secret"), -time.Minute)
	require.NoError(t, err)

	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}, expired)

	outcome := client.Auth.Logout(context.Background())
	assert.Equal(t, KindUnauthenticated, outcome.Kind)
	assert.Equal(t, "Token expired", outcome.Message)
	assert.Zero(t, s.count())
}

func TestLoginIsAnonymous(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"access_token":"tok123","token_type":"Bearer","user":{"id":7,"name":"Ana","email":"a@b.com"}}`)
	}, "")

	resp, outcome := client.Auth.Login(context.Background(), "a@b.com", "secret1")
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, "tok123", resp.AccessToken)
	assert.Equal(t, int64(7), resp.User.ID)

	require.Equal(t, 1, s.count())
	assert.Empty(t, s.req(0).Header.Get("Authorization"))
	assert.Equal(t, "application/json", s.req(0).Header.Get("Content-Type"))

	var sent common.LoginRequest
	require.NoError(t, json.Unmarshal(s.body(0), &sent))
	assert.Equal(t, "a@b.com", sent.Email)
	assert.Equal(t, "secret1", sent.Password)
}

func TestLoginMissingTokenIsUnknown(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"user":{"id":7}}`)
	}, "")

	_, outcome := client.Auth.Login(context.Background(), "a@b.com", "secret1")
	assert.Equal(t, KindUnknown, outcome.Kind)
}

func TestLoginBadCredentials(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`)
	}, "")

	_, outcome := client.Auth.Login(context.Background(), "a@b.com", "wrong")
	assert.Equal(t, KindUnauthenticated, outcome.Kind)
	assert.Equal(t, "Invalid credentials", outcome.Message)
	assert.Equal(t, 1, s.count())
}

func TestCheckInSendsMultipart(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"message":"Checked in"}`)
	}, "tok123")

	outcome := client.Attendance.CheckIn(context.Background(), CheckInput{
		Location: "-6.2,106.8",
		Notes:    "early",
		Photo:    &File{Filename: "me.jpg", ContentType: "image/jpeg", Data: []byte("jpegdata")},
	})
	require.True(t, outcome.OK(), outcome.String())
	require.Equal(t, 1, s.count())

	r := s.req(0)
	assert.Equal(t, PathCheckIn, r.URL.Path)
	r.Body = io.NopCloser(bytes.NewReader(s.body(0)))
	require.NoError(t, r.ParseMultipartForm(1<<20))
	assert.Equal(t, "-6.2,106.8", r.FormValue("location_check_in"))
	assert.Equal(t, "early", r.FormValue("notes"))

	file, header, err := r.FormFile("photo_check_in")
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "me.jpg", header.Filename)
	data, _ := io.ReadAll(file)
	assert.Equal(t, "jpegdata", string(data))
}

func TestCheckOutFieldNames(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}, "tok123")

	client.Attendance.CheckOut(context.Background(), CheckInput{Location: "Office"})
	require.Equal(t, 1, s.count())

	r := s.req(0)
	assert.Equal(t, PathCheckOut, r.URL.Path)
	r.Body = io.NopCloser(bytes.NewReader(s.body(0)))
	require.NoError(t, r.ParseMultipartForm(1<<20))
	assert.Equal(t, "Office", r.FormValue("location_check_out"))
	assert.Empty(t, r.FormValue("notes"))
}

func TestStatusToday(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"today_date":"2024-05-14","has_checked_in_today":true,"has_checked_out_today":false,"today_attendance":{"check_in_time":"08:01:12"}}}`)
	}, "tok123")

	snapshot, outcome := client.Attendance.StatusToday(context.Background())
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, "2024-05-14", snapshot.TodayDate)
	assert.True(t, snapshot.HasCheckedInToday)
	assert.Equal(t, "08:01:12", *snapshot.TodayAttendance.CheckInTime)
}

func TestStatusTodayMissingDate(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{}}`)
	}, "tok123")

	_, outcome := client.Attendance.StatusToday(context.Background())
	assert.Equal(t, KindUnknown, outcome.Kind)
}

func TestLeaveSearchQuery(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"current_page":2,"last_page":2,"per_page":1,"total":2,"data":[{"id":9,"leave_type":"sick","status":"pending"}]}}`)
	}, "tok123")

	page, outcome := client.Leave.Search(context.Background(), LeaveQuery{Page: 2, PerPage: 1, Status: leave.Pending})
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, int64(2), page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(9), page.Data[0].ID)

	q := s.req(0).URL.Query()
	assert.Equal(t, "2", q.Get("page"))
	assert.Equal(t, "1", q.Get("per_page"))
	assert.Equal(t, "pending", q.Get("status"))
	assert.False(t, q.Has("leave_type"))
}

func TestLeaveDeletePath(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	}, "tok123")

	outcome := client.Leave.Delete(context.Background(), 42)
	require.True(t, outcome.OK())
	assert.Equal(t, http.MethodDelete, s.req(0).Method)
	assert.Equal(t, PathLeaveRequests+"/42", s.req(0).URL.Path)
}

func TestAttemptTimeout(t *testing.T) {
	client, s := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}, "tok123")
	client.Policy.Timeout = 20 * time.Millisecond
	client.Policy.MaxAttempts = 2

	outcome := client.Auth.Logout(context.Background())
	assert.Equal(t, KindTimeout, outcome.Kind)
	assert.Equal(t, 2, s.count())
}

type deadlineRecorder struct {
	deadline time.Time
	ok       bool
}

func (d *deadlineRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	d.deadline, d.ok = req.Context().Deadline()
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(bytes.NewReader([]byte(`{"success":true}`))),
		Request:    req,
	}, nil
}

func TestZeroTimeoutStillBoundsAttempt(t *testing.T) {
	rec := &deadlineRecorder{}
	transport := NewTransport("http://ess.test", staticToken("tok123"), nil)
	transport.HTTPClient = &http.Client{Transport: rec}

	start := time.Now()
	outcome := transport.Do(context.Background(), &Request{Method: http.MethodGet, Path: PathAttendanceToday}, 0)
	require.True(t, outcome.OK(), outcome.String())
	require.True(t, rec.ok)
	assert.WithinDuration(t, start.Add(DefaultTimeout), rec.deadline, time.Second)
}

func TestUnreachableServerIsNetwork(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	policy := DefaultRetryPolicy()
	policy.Sleep = noWait
	client := NewSelfServiceClient(url, staticToken("tok123"), policy, nil)

	outcome := client.Auth.Logout(context.Background())
	assert.Equal(t, KindNetwork, outcome.Kind)
}
