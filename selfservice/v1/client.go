package v1

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	PathLogin           = "/api/login"
	PathLogout          = "/api/logout"
	PathCheckIn         = "/api/attendances/check-in"
	PathCheckOut        = "/api/attendances/check-out"
	PathAttendanceToday = "/api/attendances/status-today"
	PathLeaveRequests   = "/api/leave-requests"
	PathChangePassword  = "/user/change-password"
)

type SelfServiceClient struct {
	Transport  *Transport
	Policy     RetryPolicy
	Auth       *AuthEndpoint
	Attendance *AttendanceEndpoint
	Leave      *LeaveEndpoint
}

// NewSelfServiceClient initializes the API client
func NewSelfServiceClient(baseURL string, tokens TokenSource, policy RetryPolicy, logger *zap.Logger) *SelfServiceClient {
	t := NewTransport(baseURL, tokens, logger)
	if policy.Logger == nil {
		policy.Logger = t.Logger
	}
	c := &SelfServiceClient{Transport: t, Policy: policy}
	c.Auth = &AuthEndpoint{client: c}
	c.Attendance = &AttendanceEndpoint{client: c}
	c.Leave = &LeaveEndpoint{client: c}
	return c
}

// Call runs one logical request through the retry policy. Every attempt
// carries the same request id.
func (c *SelfServiceClient) Call(ctx context.Context, req *Request) Outcome {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	return Execute(ctx, func(ctx context.Context, attempt int) Outcome {
		return c.Transport.Do(ctx, req, c.Policy.Timeout)
	}, c.Policy)
}
