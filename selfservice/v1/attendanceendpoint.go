package v1

import (
	"context"
	"net/http"

	"axiapac.com/selfservice/selfservice/v1/common"
)

// File is an upload attached to a multipart request.
type File struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CheckInput struct {
	Location string
	Notes    string
	Photo    *File
}

type AttendanceEndpoint struct {
	client *SelfServiceClient
}

func (this *AttendanceEndpoint) CheckIn(ctx context.Context, input CheckInput) Outcome {
	return this.check(ctx, PathCheckIn, "check_in", input)
}

func (this *AttendanceEndpoint) CheckOut(ctx context.Context, input CheckInput) Outcome {
	return this.check(ctx, PathCheckOut, "check_out", input)
}

func (this *AttendanceEndpoint) check(ctx context.Context, path, suffix string, input CheckInput) Outcome {
	form := NewForm().AddField("location_"+suffix, input.Location)
	if input.Notes != "" {
		form.AddField("notes", input.Notes)
	}
	if input.Photo != nil {
		form.AddFile("photo_"+suffix, input.Photo.Filename, input.Photo.ContentType, input.Photo.Data)
	}

	return this.client.Call(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Form:   form,
	})
}

// StatusToday fetches the server's view of today's attendance.
func (this *AttendanceEndpoint) StatusToday(ctx context.Context) (*common.AttendanceStatusDTO, Outcome) {
	outcome := this.client.Call(ctx, &Request{
		Method: http.MethodGet,
		Path:   PathAttendanceToday,
	})

	result, outcome := Decode[common.StatusAPIResponse[*common.AttendanceStatusDTO]](outcome)
	if !outcome.OK() {
		return nil, outcome
	}
	if result.Data == nil || result.Data.TodayDate == "" {
		return nil, Fail(KindUnknown, "unexpected response shape: missing today_date").withStatus(outcome.Status)
	}
	return result.Data, outcome
}
