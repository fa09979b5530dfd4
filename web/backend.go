package web

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	apicommon "axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/selfservice/v1/common/leave"
	"axiapac.com/selfservice/utils"
	"axiapac.com/selfservice/web/common"
	"axiapac.com/selfservice/web/handlers"
	"axiapac.com/selfservice/web/middlewares"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var ErrDuplicateUser = errors.New("user already exists")

type account struct {
	apicommon.User
	hash []byte
}

type attendanceDay struct {
	checkIn     *time.Time
	checkOut    *time.Time
	locationIn  string
	locationOut string
	notes       string
	photos      []string
}

type leaveRecord struct {
	id         int64
	userID     int64
	leaveType  leave.Type
	start      common.DateOnly
	end        common.DateOnly
	reason     string
	status     leave.Status
	attachment *string
	createdAt  time.Time
}

// Backend is an in-memory self-service API. It backs local development and
// the client tests.
type Backend struct {
	Secret   []byte
	TokenTTL time.Duration
	Now      func() time.Time
	Location *time.Location
	Logger   *zap.Logger
	Faults   *middlewares.Faults

	mu          sync.Mutex
	users       map[int64]*account
	emails      map[string]int64
	days        map[int64]map[string]*attendanceDay
	leaves      []*leaveRecord
	nextLeaveID int64
	revoked     map[string]bool
	uploads     map[string]*handlers.Upload
	hits        map[string]int
}

func NewBackend(secret []byte, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		Secret:   secret,
		TokenTTL: 24 * time.Hour,
		Now:      time.Now,
		Location: utils.DefaultZone,
		Logger:   logger,
		Faults:   &middlewares.Faults{},
		users:    make(map[int64]*account),
		emails:   make(map[string]int64),
		days:     make(map[int64]map[string]*attendanceDay),
		revoked:  make(map[string]bool),
		uploads:  make(map[string]*handlers.Upload),
		hits:     make(map[string]int),
	}
}

// AddUser registers an account with a bcrypt hashed password.
func (b *Backend) AddUser(user apicommon.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	email := strings.ToLower(user.Email)
	if _, ok := b.emails[email]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUser, user.Email)
	}
	if _, ok := b.users[user.ID]; ok {
		return fmt.Errorf("%w: id %d", ErrDuplicateUser, user.ID)
	}
	b.users[user.ID] = &account{User: user, hash: hash}
	b.emails[email] = user.ID
	return nil
}

// SetLeaveStatus plays the approver.
func (b *Backend) SetLeaveStatus(id int64, status leave.Status) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	rec := b.findLeave(id)
	if rec == nil {
		return fmt.Errorf("leave request %d not found", id)
	}
	rec.status = status
	return nil
}

// Hits is the number of requests received for path, faults included.
func (b *Backend) Hits(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.hits[path]
}

// Upload returns a stored file by its generated name.
func (b *Backend) Upload(name string) *handlers.Upload {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.uploads[name]
}

func (b *Backend) isRevoked(jti string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[jti]
}

func (b *Backend) now() time.Time {
	return b.Now().In(b.Location)
}

func (b *Backend) accountByEmail(email string) *account {
	id, ok := b.emails[strings.ToLower(email)]
	if !ok {
		return nil
	}
	return b.users[id]
}

func (b *Backend) day(userID int64, date string, create bool) *attendanceDay {
	days := b.days[userID]
	if days == nil {
		if !create {
			return nil
		}
		days = make(map[string]*attendanceDay)
		b.days[userID] = days
	}
	d := days[date]
	if d == nil && create {
		d = &attendanceDay{}
		days[date] = d
	}
	return d
}

func (b *Backend) findLeave(id int64) *leaveRecord {
	found := utils.Find(b.leaves, func(r *leaveRecord) bool { return r.id == id })
	if found == nil {
		return nil
	}
	return *found
}

func (b *Backend) store(upload *handlers.Upload) *string {
	if upload == nil {
		return nil
	}
	b.uploads[upload.Name] = upload
	return &upload.Name
}

func (r *leaveRecord) dto(loc *time.Location) apicommon.LeaveRequestDTO {
	return apicommon.LeaveRequestDTO{
		ID:         r.id,
		UserID:     r.userID,
		LeaveType:  string(r.leaveType),
		StartDate:  r.start.String(),
		EndDate:    r.end.String(),
		Reason:     r.reason,
		Status:     string(r.status),
		Attachment: r.attachment,
		CreatedAt:  r.createdAt.In(loc).Format(time.RFC3339),
	}
}
