package v1

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/selfservice/v1/common/leave"
)

type LeaveQuery struct {
	Page      int
	PerPage   int
	Status    leave.Status
	LeaveType leave.Type
}

type LeaveInput struct {
	LeaveType  leave.Type
	StartDate  string // yyyy-MM-dd
	EndDate    string // yyyy-MM-dd
	Reason     string
	Attachment *File
}

type LeaveEndpoint struct {
	client *SelfServiceClient
}

func (this *LeaveEndpoint) Search(ctx context.Context, query LeaveQuery) (*common.Page[common.LeaveRequestDTO], Outcome) {
	params := map[string]string{
		"status":     string(query.Status),
		"leave_type": string(query.LeaveType),
	}
	if query.Page > 0 {
		params["page"] = strconv.Itoa(query.Page)
	}
	if query.PerPage > 0 {
		params["per_page"] = strconv.Itoa(query.PerPage)
	}

	outcome := this.client.Call(ctx, &Request{
		Method: http.MethodGet,
		Path:   PathLeaveRequests,
		Query:  params,
	})

	result, outcome := Decode[common.StatusAPIResponse[*common.Page[common.LeaveRequestDTO]]](outcome)
	if !outcome.OK() {
		return nil, outcome
	}
	if result.Data == nil {
		return nil, Fail(KindUnknown, "unexpected response shape: missing data").withStatus(outcome.Status)
	}
	return result.Data, outcome
}

func (this *LeaveEndpoint) Create(ctx context.Context, input LeaveInput) (*common.LeaveRequestDTO, Outcome) {
	form := NewForm().
		AddField("leave_type", string(input.LeaveType)).
		AddField("start_date", input.StartDate).
		AddField("end_date", input.EndDate).
		AddField("reason", input.Reason)
	if input.Attachment != nil {
		form.AddFile("attachment", input.Attachment.Filename, input.Attachment.ContentType, input.Attachment.Data)
	}

	outcome := this.client.Call(ctx, &Request{
		Method: http.MethodPost,
		Path:   PathLeaveRequests,
		Form:   form,
	})

	result, outcome := Decode[common.StatusAPIResponse[*common.LeaveRequestDTO]](outcome)
	if !outcome.OK() {
		return nil, outcome
	}
	return result.Data, outcome
}

func (this *LeaveEndpoint) Delete(ctx context.Context, id int64) Outcome {
	return this.client.Call(ctx, &Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("%s/%d", PathLeaveRequests, id),
	})
}
