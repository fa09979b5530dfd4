package common

type User struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	EmployeeID *string `json:"employee_id,omitempty"`
	Position   *string `json:"position,omitempty"`
	Department *string `json:"department,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Avatar     *string `json:"avatar,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Success     bool   `json:"success"`
	Message     string `json:"message,omitempty"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	User        *User  `json:"user"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type TodayAttendance struct {
	CheckInTime  *string `json:"check_in_time,omitempty"`
	CheckOutTime *string `json:"check_out_time,omitempty"`
}

type AttendanceStatusDTO struct {
	TodayDate          string           `json:"today_date"`
	HasCheckedInToday  bool             `json:"has_checked_in_today"`
	HasCheckedOutToday bool             `json:"has_checked_out_today"`
	TodayAttendance    *TodayAttendance `json:"today_attendance,omitempty"`
}

type LeaveRequestDTO struct {
	ID         int64   `json:"id"`
	UserID     int64   `json:"user_id"`
	LeaveType  string  `json:"leave_type"`
	StartDate  string  `json:"start_date"` // yyyy-MM-dd
	EndDate    string  `json:"end_date"`   // yyyy-MM-dd
	Reason     string  `json:"reason"`
	Status     string  `json:"status"`
	Attachment *string `json:"attachment,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}
