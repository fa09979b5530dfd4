package attendance

import (
	"context"
	"errors"
	"sync"
	"time"

	v1 "axiapac.com/selfservice/selfservice/v1"
	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/storage"
	"axiapac.com/selfservice/utils"
	"go.uber.org/zap"
)

// Remote is the attendance API as seen by the reconciler.
type Remote interface {
	StatusToday(ctx context.Context) (*common.AttendanceStatusDTO, v1.Outcome)
	CheckIn(ctx context.Context, input v1.CheckInput) v1.Outcome
	CheckOut(ctx context.Context, input v1.CheckInput) v1.Outcome
}

// Reconciler resolves today's attendance from the server and a local cache.
// The server wins whenever it answers; the cache only covers failures.
type Reconciler struct {
	Remote   Remote
	Cache    storage.Store
	Now      func() time.Time
	Location *time.Location
	Logger   *zap.Logger

	mu sync.Mutex
	// generations counts action writes per user. A refresh started before an
	// action write must not overwrite it.
	generations map[int64]uint64
}

func NewReconciler(remote Remote, cache storage.Store, loc *time.Location, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = utils.DefaultZone
	}
	return &Reconciler{
		Remote:      remote,
		Cache:       cache,
		Now:         time.Now,
		Location:    loc,
		Logger:      logger,
		generations: make(map[int64]uint64),
	}
}

func (r *Reconciler) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func (r *Reconciler) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Reconciler) location() *time.Location {
	if r.Location == nil {
		return utils.DefaultZone
	}
	return r.Location
}

func (r *Reconciler) today() string {
	return utils.Today(r.now(), r.location())
}

func (r *Reconciler) generation(userID int64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[userID]
}

// bump records an action write for userID. Callers hold mu.
func (r *Reconciler) bump(userID int64) {
	if r.generations == nil {
		r.generations = make(map[int64]uint64)
	}
	r.generations[userID]++
}

// Status never fails: remote first, then today's cached record, then a fresh
// ClockInPending record. Whatever is resolved is written back to the cache.
func (r *Reconciler) Status(ctx context.Context, userID int64) Status {
	log := r.logger().With(zap.Int64("user_id", userID))
	today := r.today()
	gen := r.generation(userID)

	snapshot, outcome := r.Remote.StatusToday(ctx)
	if outcome.OK() {
		rec := r.fromSnapshot(snapshot, today)
		if written := r.writeBack(ctx, userID, rec, gen); !written {
			// an action landed while we were fetching; it is fresher
			if cached, err := r.Load(ctx, userID); err == nil && cached != nil {
				return Status{State: cached.State(), Record: *cached, Source: SourceCache}
			}
		}
		return Status{State: rec.State(), Record: rec, Source: SourceRemote}
	}

	log.Warn("remote attendance status unavailable, using cache",
		zap.String("kind", outcome.Kind.String()),
		zap.String("message", outcome.Message),
	)

	cached, err := r.Load(ctx, userID)
	if err != nil {
		log.Warn("cached attendance unreadable", zap.Error(err))
	}
	if cached != nil {
		r.writeBack(ctx, userID, *cached, gen)
		return Status{State: cached.State(), Record: *cached, Source: SourceCache}
	}

	rec := NewRecord(today)
	r.writeBack(ctx, userID, rec, gen)
	return Status{State: rec.State(), Record: rec, Source: SourceDefault}
}

func (r *Reconciler) fromSnapshot(s *common.AttendanceStatusDTO, today string) Record {
	// day rollover: yesterday's snapshot says nothing about today
	if s.TodayDate != today {
		r.logger().Debug("attendance snapshot is for another day",
			zap.String("snapshot_date", s.TodayDate),
			zap.String("today", today),
		)
		return NewRecord(today)
	}

	rec := NewRecord(today)
	if s.HasCheckedInToday || s.HasCheckedOutToday {
		rec.ClockInStatus = StatusCompleted
	}
	if s.HasCheckedOutToday {
		rec.ClockOutStatus = StatusCompleted
	}
	if s.TodayAttendance != nil {
		if rec.ClockInStatus == StatusCompleted {
			rec.ClockInTime = utils.FormatClock(s.TodayAttendance.CheckInTime, r.location())
		}
		if rec.ClockOutStatus == StatusCompleted {
			rec.ClockOutTime = utils.FormatClock(s.TodayAttendance.CheckOutTime, r.location())
		}
	}
	return rec
}

// writeBack stores rec unless an action write happened after gen was read.
func (r *Reconciler) writeBack(ctx context.Context, userID int64, rec Record, gen uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generations[userID] != gen {
		r.logger().Debug("skipping stale attendance write-back", zap.Int64("user_id", userID))
		return false
	}
	if err := r.save(ctx, userID, rec); err != nil {
		r.logger().Warn("failed to cache attendance", zap.Int64("user_id", userID), zap.Error(err))
	}
	return true
}

// Save overwrites the cached record of userID.
func (r *Reconciler) Save(ctx context.Context, userID int64, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.save(ctx, userID, rec); err != nil {
		return err
	}
	r.bump(userID)
	return nil
}

func (r *Reconciler) save(ctx context.Context, userID int64, rec Record) error {
	if err := rec.Valid(); err != nil {
		return err
	}
	return storage.SetJSON(ctx, r.Cache, storage.AttendanceKey(userID), rec)
}

// Load returns today's cached record, or nil when there is none or it belongs
// to another day.
func (r *Reconciler) Load(ctx context.Context, userID int64) (*Record, error) {
	var rec Record
	err := storage.GetJSON(ctx, r.Cache, storage.AttendanceKey(userID), &rec)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if rec.Date != r.today() {
		return nil, nil
	}
	if err := rec.Valid(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Clear drops the cached record, used on logout.
func (r *Reconciler) Clear(ctx context.Context, userID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bump(userID)
	return r.Cache.Delete(ctx, storage.AttendanceKey(userID))
}

// ClockIn submits a clock-in and, on success, records it locally.
func (r *Reconciler) ClockIn(ctx context.Context, userID int64, input v1.CheckInput) (Status, v1.Outcome) {
	return r.act(ctx, userID, input, r.Remote.CheckIn, func(rec *Record, at string) {
		rec.ClockInStatus = StatusCompleted
		rec.ClockInTime = &at
	})
}

// ClockOut submits a clock-out and, on success, records it locally.
func (r *Reconciler) ClockOut(ctx context.Context, userID int64, input v1.CheckInput) (Status, v1.Outcome) {
	return r.act(ctx, userID, input, r.Remote.CheckOut, func(rec *Record, at string) {
		rec.ClockInStatus = StatusCompleted
		rec.ClockOutStatus = StatusCompleted
		rec.ClockOutTime = &at
	})
}

func (r *Reconciler) act(
	ctx context.Context,
	userID int64,
	input v1.CheckInput,
	call func(context.Context, v1.CheckInput) v1.Outcome,
	apply func(rec *Record, at string),
) (Status, v1.Outcome) {
	outcome := call(ctx, input)
	if !outcome.OK() {
		return Status{}, outcome
	}

	rec := NewRecord(r.today())
	if cached, err := r.Load(ctx, userID); err == nil && cached != nil {
		rec = *cached
	}
	apply(&rec, r.now().In(r.location()).Format(utils.ClockLayout))

	if err := r.Save(ctx, userID, rec); err != nil {
		r.logger().Warn("failed to cache attendance after action", zap.Int64("user_id", userID), zap.Error(err))
	}
	return Status{State: rec.State(), Record: rec, Source: SourceRemote}, outcome
}
