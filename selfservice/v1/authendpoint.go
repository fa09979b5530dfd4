package v1

import (
	"context"
	"net/http"

	"axiapac.com/selfservice/selfservice/v1/common"
)

type AuthEndpoint struct {
	client *SelfServiceClient
}

// Login does not need a token. A response without an access token or user is
// treated as an unexpected shape.
func (this *AuthEndpoint) Login(ctx context.Context, email, password string) (*common.LoginResponse, Outcome) {
	outcome := this.client.Call(ctx, &Request{
		Method:    http.MethodPost,
		Path:      PathLogin,
		JSON:      common.LoginRequest{Email: email, Password: password},
		Anonymous: true,
	})

	result, outcome := Decode[common.LoginResponse](outcome)
	if !outcome.OK() {
		return nil, outcome
	}
	if result.AccessToken == "" || result.User == nil {
		return nil, Fail(KindUnknown, "unexpected response shape: missing access token or user").withStatus(outcome.Status)
	}
	return &result, outcome
}

func (this *AuthEndpoint) Logout(ctx context.Context) Outcome {
	return this.client.Call(ctx, &Request{
		Method: http.MethodPost,
		Path:   PathLogout,
	})
}

func (this *AuthEndpoint) ChangePassword(ctx context.Context, oldPassword, newPassword string) Outcome {
	return this.client.Call(ctx, &Request{
		Method: http.MethodPost,
		Path:   PathChangePassword,
		JSON:   common.ChangePasswordRequest{OldPassword: oldPassword, NewPassword: newPassword},
	})
}
