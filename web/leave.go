package web

import (
	"net/http"
	"sort"
	"strconv"

	apicommon "axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/selfservice/v1/common/leave"
	"axiapac.com/selfservice/utils"
	"axiapac.com/selfservice/web/common"
	"axiapac.com/selfservice/web/handlers"
	"github.com/gin-gonic/gin"
)

type leaveQuery struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PerPage   int    `form:"per_page" binding:"omitempty,min=1,max=100"`
	Status    string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
	LeaveType string `form:"leave_type" binding:"omitempty,oneof=annual sick personal maternity unpaid"`
}

type leaveForm struct {
	LeaveType string `form:"leave_type" binding:"required,oneof=annual sick personal maternity unpaid"`
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date" binding:"required,datetime=2006-01-02"`
	Reason    string `form:"reason" binding:"required,max=500"`
}

func (b *Backend) listLeave(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var query leaveQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		bindError(c, err)
		return
	}

	b.mu.Lock()
	mine := utils.Filter(b.leaves, func(r *leaveRecord) bool {
		return r.userID == id &&
			(query.Status == "" || string(r.status) == query.Status) &&
			(query.LeaveType == "" || string(r.leaveType) == query.LeaveType)
	})
	items := utils.Map(mine, func(r *leaveRecord) apicommon.LeaveRequestDTO { return r.dto(b.Location) })
	b.mu.Unlock()

	// newest first
	sort.SliceStable(items, func(i, j int) bool { return items[i].ID > items[j].ID })

	c.JSON(http.StatusOK, apicommon.StatusAPIResponse[apicommon.Page[apicommon.LeaveRequestDTO]]{
		Success: true,
		Data:    common.Paginate(items, query.Page, query.PerPage),
	})
}

func (b *Backend) createLeave(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var form leaveForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}

	start, err := common.ParseDateOnly(form.StartDate)
	if err != nil {
		fieldError(c, "start_date", "The start date is not a valid date.")
		return
	}
	end, err := common.ParseDateOnly(form.EndDate)
	if err != nil {
		fieldError(c, "end_date", "The end date is not a valid date.")
		return
	}
	if end.Before(start.Time) {
		fieldError(c, "end_date", "The end date must be a date after or equal to start date.")
		return
	}

	attachment, ok := receive(c, "attachment", handlers.AttachmentExtensions, false)
	if !ok {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	clash := utils.Find(b.leaves, func(r *leaveRecord) bool {
		active := r.status == leave.Pending || r.status == leave.Approved
		return r.userID == id && active && r.start.Overlaps(r.end, start, end)
	})
	if clash != nil {
		fieldError(c, "start_date", "You already have a leave request for these dates.")
		return
	}

	b.nextLeaveID++
	rec := &leaveRecord{
		id:         b.nextLeaveID,
		userID:     id,
		leaveType:  leave.Type(form.LeaveType),
		start:      start,
		end:        end,
		reason:     form.Reason,
		status:     leave.Pending,
		attachment: b.store(attachment),
		createdAt:  b.now(),
	}
	b.leaves = append(b.leaves, rec)

	c.JSON(http.StatusCreated, apicommon.StatusAPIResponse[apicommon.LeaveRequestDTO]{
		Success: true,
		Message: "Leave request submitted",
		Data:    rec.dto(b.Location),
	})
}

func (b *Backend) deleteLeave(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	leaveID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Leave request not found"))
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	rec := b.findLeave(leaveID)
	if rec == nil || rec.userID != id {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Leave request not found"))
		return
	}
	if rec.status != leave.Pending {
		fieldError(c, "status", "Only pending leave requests can be deleted.")
		return
	}
	b.leaves = utils.Filter(b.leaves, func(r *leaveRecord) bool { return r.id != leaveID })

	c.JSON(http.StatusOK, common.NewSuccessResponse("Leave request deleted", nil))
}
