package web

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	v1 "axiapac.com/selfservice/selfservice/v1"
	apicommon "axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/selfservice/v1/common/leave"
	"axiapac.com/selfservice/utils"
	"axiapac.com/selfservice/web/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type tokenHolder struct {
	token string
}

func (h *tokenHolder) Token(ctx context.Context) (string, error) {
	return h.token, nil
}

var testNow = time.Date(2024, 5, 14, 8, 1, 12, 0, utils.DefaultZone)

func selfie(t *testing.T) *v1.File {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	return &v1.File{Filename: "me.png", ContentType: "image/png", Data: buf.Bytes()}
}

func newTestServer(t *testing.T) (*Backend, *v1.SelfServiceClient, *tokenHolder) {
	t.Helper()
	b := NewBackend([]byte("test-secret"), nil)
	b.Now = func() time.Time { return testNow }
	require.NoError(t, b.AddUser(apicommon.User{ID: 7, Name: "Ana", Email: "a@b.com"}, "secret1"))

	server := httptest.NewServer(NewRouter(b))
	t.Cleanup(server.Close)

	policy := v1.DefaultRetryPolicy()
	policy.Sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	tokens := &tokenHolder{}
	return b, v1.NewSelfServiceClient(server.URL, tokens, policy, nil), tokens
}

func login(t *testing.T, client *v1.SelfServiceClient, tokens *tokenHolder) {
	t.Helper()
	resp, outcome := client.Auth.Login(context.Background(), "a@b.com", "secret1")
	require.True(t, outcome.OK(), outcome.String())
	tokens.token = resp.AccessToken
}

func TestLogin(t *testing.T) {
	_, client, _ := newTestServer(t)

	resp, outcome := client.Auth.Login(context.Background(), "A@B.com", "secret1")
	require.True(t, outcome.OK(), outcome.String())
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(7), resp.User.ID)
	assert.Equal(t, "Ana", resp.User.Name)
}

func TestLoginWrongPassword(t *testing.T) {
	_, client, _ := newTestServer(t)

	_, outcome := client.Auth.Login(context.Background(), "a@b.com", "nope")
	assert.Equal(t, v1.KindUnauthenticated, outcome.Kind)
	assert.Equal(t, "Invalid credentials", outcome.Message)
}

func TestLoginValidationOrder(t *testing.T) {
	b, _, _ := newTestServer(t)
	router := NewRouter(b)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, v1.PathLogin, bytes.NewBufferString(`{"email":"not-an-email"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	// email is declared before password, so it comes first
	assert.JSONEq(t, `{
		"success": false,
		"message": "The given data was invalid.",
		"errors": {
			"email": ["The email must be a valid email address."],
			"password": ["The password field is required."]
		}
	}`, w.Body.String())
	assert.Less(t, bytes.Index(w.Body.Bytes(), []byte(`"email"`)), bytes.Index(w.Body.Bytes(), []byte(`"password"`)))

	outcome := v1.Normalize(w.Code, w.Body.Bytes())
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The email must be a valid email address.", outcome.Message)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	b, _, _ := newTestServer(t)
	router := NewRouter(b)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, v1.PathAttendanceToday, nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, v1.PathAttendanceToday, nil)
	req.Header.Set("Authorization", "Bearer garbage")
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	_, client, tokens := newTestServer(t)
	login(t, client, tokens)
	ctx := context.Background()

	require.True(t, client.Auth.Logout(ctx).OK())

	_, outcome := client.Attendance.StatusToday(ctx)
	assert.Equal(t, v1.KindUnauthenticated, outcome.Kind)
}

func TestAttendanceDay(t *testing.T) {
	b, client, tokens := newTestServer(t)
	login(t, client, tokens)
	ctx := context.Background()

	snapshot, outcome := client.Attendance.StatusToday(ctx)
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, "2024-05-14", snapshot.TodayDate)
	assert.False(t, snapshot.HasCheckedInToday)
	assert.Nil(t, snapshot.TodayAttendance)

	photo := selfie(t)
	outcome = client.Attendance.CheckOut(ctx, v1.CheckInput{Location: "Office", Photo: photo})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "You have not checked in today.", outcome.Message)

	outcome = client.Attendance.CheckIn(ctx, v1.CheckInput{Location: "Office", Photo: photo})
	require.True(t, outcome.OK(), outcome.String())

	outcome = client.Attendance.CheckIn(ctx, v1.CheckInput{Location: "Office", Photo: photo})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "You have already checked in today.", outcome.Message)

	snapshot, _ = client.Attendance.StatusToday(ctx)
	assert.True(t, snapshot.HasCheckedInToday)
	assert.False(t, snapshot.HasCheckedOutToday)
	assert.Equal(t, "08:01:12", *snapshot.TodayAttendance.CheckInTime)

	require.True(t, client.Attendance.CheckOut(ctx, v1.CheckInput{Location: "Office", Photo: photo}).OK())
	snapshot, _ = client.Attendance.StatusToday(ctx)
	assert.True(t, snapshot.HasCheckedOutToday)

	assert.Equal(t, 2, b.Hits(v1.PathCheckIn))
}

func TestCheckInRejectsBadPhoto(t *testing.T) {
	_, client, tokens := newTestServer(t)
	login(t, client, tokens)

	outcome := client.Attendance.CheckIn(context.Background(), v1.CheckInput{
		Location: "Office",
		Photo:    &v1.File{Filename: "me.gif", Data: []byte("gif")},
	})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Contains(t, outcome.Message, "jpg, jpeg, png, webp")
}

func TestAttendanceRequiresPhoto(t *testing.T) {
	b, client, tokens := newTestServer(t)
	login(t, client, tokens)
	ctx := context.Background()

	outcome := client.Attendance.CheckIn(ctx, v1.CheckInput{Location: "Office"})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, http.StatusUnprocessableEntity, outcome.Status)
	assert.Equal(t, "The photo check in field is required.", outcome.Message)

	snapshot, _ := client.Attendance.StatusToday(ctx)
	assert.False(t, snapshot.HasCheckedInToday)

	require.True(t, client.Attendance.CheckIn(ctx, v1.CheckInput{Location: "Office", Photo: selfie(t)}).OK())

	outcome = client.Attendance.CheckOut(ctx, v1.CheckInput{Location: "Office"})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The photo check out field is required.", outcome.Message)

	snapshot, _ = client.Attendance.StatusToday(ctx)
	assert.False(t, snapshot.HasCheckedOutToday)
	assert.Equal(t, 2, b.Hits(v1.PathCheckIn))
}

func TestCheckInRequiresLocation(t *testing.T) {
	_, client, tokens := newTestServer(t)
	login(t, client, tokens)

	outcome := client.Attendance.CheckIn(context.Background(), v1.CheckInput{})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The location check in field is required.", outcome.Message)
}

func TestLeaveLifecycle(t *testing.T) {
	b, client, tokens := newTestServer(t)
	login(t, client, tokens)
	ctx := context.Background()

	created, outcome := client.Leave.Create(ctx, v1.LeaveInput{
		LeaveType: leave.Annual,
		StartDate: "2024-06-03",
		EndDate:   "2024-06-05",
		Reason:    "Family trip",
	})
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, string(leave.Pending), created.Status)
	assert.Equal(t, "2024-06-03", created.StartDate)

	_, outcome = client.Leave.Create(ctx, v1.LeaveInput{
		LeaveType: leave.Sick,
		StartDate: "2024-06-05",
		EndDate:   "2024-06-06",
		Reason:    "Flu",
	})
	assert.Equal(t, v1.KindValidation, outcome.Kind)

	second, outcome := client.Leave.Create(ctx, v1.LeaveInput{
		LeaveType:  leave.Sick,
		StartDate:  "2024-07-01",
		EndDate:    "2024-07-01",
		Reason:     "Dentist",
		Attachment: &v1.File{Filename: "note.pdf", ContentType: "application/pdf", Data: []byte("%PDF")},
	})
	require.True(t, outcome.OK(), outcome.String())
	require.NotNil(t, second.Attachment)
	assert.Equal(t, "note.pdf", b.Upload(*second.Attachment).Original)

	page, outcome := client.Leave.Search(ctx, v1.LeaveQuery{Page: 1, PerPage: 1})
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, int64(2), page.Total)
	assert.Equal(t, 2, page.LastPage)
	require.Len(t, page.Data, 1)
	assert.Equal(t, second.ID, page.Data[0].ID)

	page, _ = client.Leave.Search(ctx, v1.LeaveQuery{LeaveType: leave.Annual})
	require.Len(t, page.Data, 1)
	assert.Equal(t, created.ID, page.Data[0].ID)

	require.NoError(t, b.SetLeaveStatus(created.ID, leave.Approved))
	outcome = client.Leave.Delete(ctx, created.ID)
	assert.Equal(t, v1.KindValidation, outcome.Kind)

	require.True(t, client.Leave.Delete(ctx, second.ID).OK())
	outcome = client.Leave.Delete(ctx, second.ID)
	assert.Equal(t, v1.KindUnknown, outcome.Kind)
	assert.Equal(t, 404, outcome.Status)
}

func TestLeaveValidation(t *testing.T) {
	_, client, tokens := newTestServer(t)
	login(t, client, tokens)
	ctx := context.Background()

	_, outcome := client.Leave.Create(ctx, v1.LeaveInput{LeaveType: "holiday", StartDate: "2024-06-03", EndDate: "2024-06-01", Reason: "x"})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The selected leave type is invalid.", outcome.Message)

	_, outcome = client.Leave.Create(ctx, v1.LeaveInput{LeaveType: leave.Annual, StartDate: "2024-06-03", EndDate: "2024-06-01", Reason: "x"})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The end date must be a date after or equal to start date.", outcome.Message)

	_, outcome = client.Leave.Create(ctx, v1.LeaveInput{LeaveType: leave.Annual, StartDate: "03/06/2024", EndDate: "2024-06-01", Reason: "x"})
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The start date does not match the format 2006-01-02.", outcome.Message)
}

func TestChangePassword(t *testing.T) {
	_, client, tokens := newTestServer(t)
	login(t, client, tokens)
	ctx := context.Background()

	outcome := client.Auth.ChangePassword(ctx, "wrong", "secret2")
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The old password is incorrect.", outcome.Message)

	outcome = client.Auth.ChangePassword(ctx, "secret1", "abc")
	assert.Equal(t, v1.KindValidation, outcome.Kind)
	assert.Equal(t, "The new password must be at least 6 characters.", outcome.Message)

	require.True(t, client.Auth.ChangePassword(ctx, "secret1", "secret2").OK())

	_, outcome = client.Auth.Login(ctx, "a@b.com", "secret2")
	assert.True(t, outcome.OK())
}

func TestFaultsAreRetried(t *testing.T) {
	b, client, tokens := newTestServer(t)
	login(t, client, tokens)

	b.Faults.FailNext(2, http.StatusServiceUnavailable)
	_, outcome := client.Attendance.StatusToday(context.Background())
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, 3, b.Hits(v1.PathAttendanceToday))
}

func TestStalledRequestTimesOut(t *testing.T) {
	b, client, tokens := newTestServer(t)
	login(t, client, tokens)
	client.Policy.Timeout = 50 * time.Millisecond
	client.Policy.MaxAttempts = 1

	b.Faults.StallNext(1, time.Second)
	_, outcome := client.Attendance.StatusToday(context.Background())
	assert.Equal(t, v1.KindTimeout, outcome.Kind)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page := common.Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page.Data)
	assert.Equal(t, 3, page.LastPage)
	assert.Equal(t, int64(5), page.Total)

	page = common.Paginate(items, 9, 2)
	assert.Empty(t, page.Data)

	page = common.Paginate([]int{}, 0, 0)
	assert.Equal(t, 1, page.CurrentPage)
	assert.Equal(t, 10, page.PerPage)
	assert.Equal(t, 1, page.LastPage)

	data, err := json.Marshal(page)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":[]`)
}
