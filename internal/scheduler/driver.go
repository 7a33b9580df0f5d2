// Package scheduler drives the pulse send cycles. A minute ticker
// evaluates every enabled schedule in the tenant's own timezone; a
// tenant that is due claims its cycle in pulse_dispatches first and
// issues invites only after winning the claim, so restarts and extra
// replicas never double-send.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aura-pulse/backend/internal/cohorts"
	"github.com/aura-pulse/backend/internal/models"
	"github.com/aura-pulse/backend/internal/rotation"
)

// ScheduleSource lists the schedules to evaluate each tick.
type ScheduleSource interface {
	ListEnabled(ctx context.Context) ([]models.PulseSchedule, error)
}

// Directory reads the tenant's eligible recipients.
type Directory interface {
	ListEligibleUsers(ctx context.Context, tenantID uuid.UUID) ([]models.User, error)
}

// CohortStore persists and returns cohort membership.
type CohortStore interface {
	EnsureMembers(ctx context.Context, tenantID uuid.UUID, users []models.User, n int) (map[uuid.UUID]int, error)
}

// QuestionSource lists a tenant's active questions in rotation order.
type QuestionSource interface {
	ListActive(ctx context.Context, tenantID uuid.UUID) ([]models.PulseQuestion, error)
}

// InviteIssuer mints one invite and hands off its notification.
type InviteIssuer interface {
	Issue(ctx context.Context, user models.User, q models.PulseQuestion, cohortName string) (*models.PulseInvite, error)
}

// DispatchStore records cycle claims and their outcomes.
type DispatchStore interface {
	Claim(ctx context.Context, tenantID uuid.UUID, cycleDate time.Time, cohort int, questionID uuid.UUID) (bool, error)
	SetInviteCount(ctx context.Context, tenantID uuid.UUID, cycleDate time.Time, count int) error
}

// Guard is an optional cross-replica pre-filter (Redis SETNX). The
// dispatch claim in Postgres remains the correctness boundary; the
// guard only spares losing replicas the directory reads.
type Guard interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Driver evaluates schedules and runs due cycles.
type Driver struct {
	schedules  ScheduleSource
	directory  Directory
	cohorts    CohortStore
	questions  QuestionSource
	issuer     InviteIssuer
	dispatches DispatchStore
	guard      Guard // may be nil

	tick           time.Duration
	workers        int
	defaultCohorts int
	logger         *zap.Logger
	now            func() time.Time
}

// Options configures a Driver.
type Options struct {
	Tick           time.Duration
	Workers        int
	DefaultCohorts int
	Guard          Guard
	Logger         *zap.Logger
}

// NewDriver creates a scheduler driver.
func NewDriver(schedules ScheduleSource, dir Directory, cohortStore CohortStore, questions QuestionSource, issuer InviteIssuer, dispatches DispatchStore, opts Options) *Driver {
	if opts.Tick <= 0 {
		opts.Tick = time.Minute
	}
	if opts.Workers <= 0 {
		opts.Workers = 8
	}
	if opts.DefaultCohorts <= 0 {
		opts.DefaultCohorts = 5
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Driver{
		schedules:      schedules,
		directory:      dir,
		cohorts:        cohortStore,
		questions:      questions,
		issuer:         issuer,
		dispatches:     dispatches,
		guard:          opts.Guard,
		tick:           opts.Tick,
		workers:        opts.Workers,
		defaultCohorts: opts.DefaultCohorts,
		logger:         opts.Logger,
		now:            time.Now,
	}
}

// Run ticks until the context is cancelled.
func (d *Driver) Run(ctx context.Context) {
	d.logger.Info("scheduler started", zap.Duration("tick", d.tick))
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			d.Tick(ctx, d.now())
		}
	}
}

// Tick evaluates every enabled schedule against the given instant.
func (d *Driver) Tick(ctx context.Context, now time.Time) {
	list, err := d.schedules.ListEnabled(ctx)
	if err != nil {
		d.logger.Error("list schedules", zap.Error(err))
		return
	}
	for _, s := range list {
		if err := d.EvaluateTenant(ctx, s, now); err != nil {
			d.logger.Error("evaluate tenant",
				zap.String("tenant_id", s.TenantID.String()), zap.Error(err))
		}
	}
}

// EvaluateTenant runs one tenant's cycle if it is due at now. A tenant
// that is not due, has no recipients, has no active questions, or loses
// the claim is a no-op, not an error.
func (d *Driver) EvaluateTenant(ctx context.Context, s models.PulseSchedule, now time.Time) error {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	local := now.In(loc)

	if !d.due(s, local) {
		d.logger.Debug("schedule not due",
			zap.String("tenant_id", s.TenantID.String()))
		return nil
	}

	cycleDate := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)

	if d.guard != nil {
		key := fmt.Sprintf("pulse:dispatch:%s:%s", s.TenantID, cycleDate.Format("2006-01-02"))
		held, err := d.guard.TryLock(ctx, key, 2*d.tick)
		if err != nil {
			// Guard down: fall through, the dispatch claim still protects us.
			d.logger.Warn("dispatch guard unavailable", zap.Error(err))
		} else if !held {
			d.logger.Debug("dispatch guard held elsewhere",
				zap.String("tenant_id", s.TenantID.String()))
			return nil
		}
	}

	users, err := d.directory.ListEligibleUsers(ctx, s.TenantID)
	if err != nil {
		return fmt.Errorf("list eligible users: %w", err)
	}
	if len(users) == 0 {
		return nil
	}

	n := s.CohortCount
	if n <= 0 {
		n = d.defaultCohorts
	}

	targets, cohort, err := d.selectTargets(ctx, s, users, n, local)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		d.logger.Debug("no recipients for cycle",
			zap.String("tenant_id", s.TenantID.String()), zap.Int("cohort", cohort))
		return nil
	}

	active, err := d.questions.ListActive(ctx, s.TenantID)
	if err != nil {
		return fmt.Errorf("list active questions: %w", err)
	}
	q, err := rotation.Pick(active, cohort+cycleIndex(s.Cadence, local))
	if errors.Is(err, rotation.ErrNoActiveQuestions) {
		d.logger.Debug("no active questions, cycle skipped",
			zap.String("tenant_id", s.TenantID.String()))
		return nil
	}
	if err != nil {
		return err
	}

	won, err := d.dispatches.Claim(ctx, s.TenantID, cycleDate, cohort, q.ID)
	if err != nil {
		return fmt.Errorf("claim dispatch: %w", err)
	}
	if !won {
		d.logger.Debug("cycle already dispatched",
			zap.String("tenant_id", s.TenantID.String()), zap.Time("cycle_date", cycleDate))
		return nil
	}

	issued := d.fanOut(ctx, targets, q, models.CohortName(cohort))
	if err := d.dispatches.SetInviteCount(ctx, s.TenantID, cycleDate, issued); err != nil {
		d.logger.Error("record invite count",
			zap.String("tenant_id", s.TenantID.String()), zap.Error(err))
	}
	d.logger.Info("cycle dispatched",
		zap.String("tenant_id", s.TenantID.String()),
		zap.Time("cycle_date", cycleDate),
		zap.Int("cohort", cohort),
		zap.String("question_id", q.ID.String()),
		zap.Int("invites", issued))
	return nil
}

// selectTargets picks this cycle's recipients and which cohort they are.
// With cohort rotation the day's cohort receives the pulse; without it
// every eligible user does, as one cohort.
func (d *Driver) selectTargets(ctx context.Context, s models.PulseSchedule, users []models.User, n int, local time.Time) ([]models.User, int, error) {
	if !s.CohortRotation {
		return users, 0, nil
	}

	members, err := d.cohorts.EnsureMembers(ctx, s.TenantID, users, n)
	if err != nil {
		return nil, 0, fmt.Errorf("ensure cohort members: %w", err)
	}
	cohort := cohorts.ForDay(local.Weekday(), n)
	var targets []models.User
	for _, u := range users {
		if members[u.ID] == cohort {
			targets = append(targets, u)
		}
	}
	return targets, cohort, nil
}

// cycleIndex numbers a tenant's cadence periods so the question position
// advances cycle over cycle. The rotation only needs the index to change
// each period; the cohort offset keeps concurrent cohorts on different
// questions.
func cycleIndex(cadence models.Cadence, local time.Time) int {
	switch cadence {
	case models.CadenceBiweekly:
		year, week := local.ISOWeek()
		return (year*53 + week) / 2
	case models.CadenceMonthly:
		return local.Year()*12 + int(local.Month())
	default:
		year, week := local.ISOWeek()
		return year*53 + week
	}
}

// due reports whether the schedule fires at the tenant-local instant.
// With rotation every day carries a cohort, so the cadence only gates
// which weeks (or month days) count; without rotation the whole tenant
// is one cohort and Monday is the send day.
func (d *Driver) due(s models.PulseSchedule, local time.Time) bool {
	if !d.inSendWindow(local, s.SendHour, s.SendMinute) {
		return false
	}
	if !s.CohortRotation && local.Weekday() != time.Monday {
		return false
	}
	switch s.Cadence {
	case models.CadenceWeekly:
		return true
	case models.CadenceBiweekly:
		_, week := local.ISOWeek()
		return week%2 == 0
	case models.CadenceMonthly:
		return local.Day() <= 7
	default:
		return false
	}
}

// inSendWindow reports whether local falls inside the tick-sized window
// starting at the configured send time.
func (d *Driver) inSendWindow(local time.Time, hour, minute int) bool {
	target := time.Date(local.Year(), local.Month(), local.Day(), hour, minute, 0, 0, local.Location())
	return !local.Before(target) && local.Sub(target) < d.tick
}

// fanOut issues invites with bounded concurrency and returns how many
// succeeded. A failed recipient never blocks the rest of the cohort.
func (d *Driver) fanOut(ctx context.Context, targets []models.User, q models.PulseQuestion, cohortName string) int {
	sem := make(chan struct{}, d.workers)
	var wg sync.WaitGroup
	var issued atomic.Int64
	for _, u := range targets {
		wg.Add(1)
		sem <- struct{}{}
		go func(u models.User) {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := d.issuer.Issue(ctx, u, q, cohortName); err != nil {
				d.logger.Warn("invite failed",
					zap.String("tenant_id", u.TenantID.String()),
					zap.String("user_id", u.ID.String()),
					zap.Error(err))
				return
			}
			issued.Add(1)
		}(u)
	}
	wg.Wait()
	return int(issued.Load())
}
