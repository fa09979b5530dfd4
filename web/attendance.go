package web

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	apicommon "axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/utils"
	"axiapac.com/selfservice/web/handlers"
	"github.com/gin-gonic/gin"
)

const timeLayout = "15:04:05"

type checkInForm struct {
	Location string `form:"location_check_in" binding:"required,max=255"`
	Notes    string `form:"notes" binding:"max=500"`
}

type checkOutForm struct {
	Location string `form:"location_check_out" binding:"required,max=255"`
	Notes    string `form:"notes" binding:"max=500"`
}

func (b *Backend) checkIn(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var form checkInForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	photo, ok := receive(c, "photo_check_in", handlers.PhotoExtensions, true)
	if !ok {
		return
	}

	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	day := b.day(id, utils.Today(now, b.Location), true)
	if day.checkIn != nil {
		fieldError(c, "attendance", "You have already checked in today.")
		return
	}
	day.checkIn = &now
	day.locationIn = form.Location
	day.notes = form.Notes
	if name := b.store(photo); name != nil {
		day.photos = append(day.photos, *name)
	}

	c.JSON(http.StatusOK, apicommon.StatusAPIResponse[apicommon.TodayAttendance]{
		Success: true,
		Message: "Check-in successful",
		Data:    apicommon.TodayAttendance{CheckInTime: clock(day.checkIn)},
	})
}

func (b *Backend) checkOut(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}
	var form checkOutForm
	if err := c.ShouldBind(&form); err != nil {
		bindError(c, err)
		return
	}
	photo, ok := receive(c, "photo_check_out", handlers.PhotoExtensions, true)
	if !ok {
		return
	}

	now := b.now()
	b.mu.Lock()
	defer b.mu.Unlock()
	day := b.day(id, utils.Today(now, b.Location), false)
	if day == nil || day.checkIn == nil {
		fieldError(c, "attendance", "You have not checked in today.")
		return
	}
	if day.checkOut != nil {
		fieldError(c, "attendance", "You have already checked out today.")
		return
	}
	day.checkOut = &now
	day.locationOut = form.Location
	if form.Notes != "" {
		day.notes = form.Notes
	}
	if name := b.store(photo); name != nil {
		day.photos = append(day.photos, *name)
	}

	c.JSON(http.StatusOK, apicommon.StatusAPIResponse[apicommon.TodayAttendance]{
		Success: true,
		Message: "Check-out successful",
		Data:    apicommon.TodayAttendance{CheckInTime: clock(day.checkIn), CheckOutTime: clock(day.checkOut)},
	})
}

func (b *Backend) statusToday(c *gin.Context) {
	id, ok := userID(c)
	if !ok {
		return
	}

	today := utils.Today(b.now(), b.Location)
	snapshot := apicommon.AttendanceStatusDTO{TodayDate: today}

	b.mu.Lock()
	if day := b.day(id, today, false); day != nil && day.checkIn != nil {
		snapshot.HasCheckedInToday = true
		snapshot.HasCheckedOutToday = day.checkOut != nil
		snapshot.TodayAttendance = &apicommon.TodayAttendance{
			CheckInTime:  clock(day.checkIn),
			CheckOutTime: clock(day.checkOut),
		}
	}
	b.mu.Unlock()

	c.JSON(http.StatusOK, apicommon.StatusAPIResponse[apicommon.AttendanceStatusDTO]{Success: true, Data: snapshot})
}

// receive reads an upload and answers 422 when it is rejected, or missing
// while required.
func receive(c *gin.Context, field string, allowed []string, required bool) (*handlers.Upload, bool) {
	upload, err := handlers.ReceiveFile(c, field, allowed)
	var rejected *handlers.UploadError
	if errors.As(err, &rejected) {
		fieldError(c, rejected.Field, rejected.Message)
		return nil, false
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return nil, false
	}
	if upload == nil && required {
		fieldError(c, field, fmt.Sprintf("The %s field is required.", strings.ReplaceAll(field, "_", " ")))
		return nil, false
	}
	return upload, true
}

func clock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return utils.Ptr(t.Format(timeLayout))
}
