package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	"github.com/ArtlessApps/ruckplan/internal/domain"
	"github.com/ArtlessApps/ruckplan/internal/repository"
	"github.com/ArtlessApps/ruckplan/internal/schedule"
)

const (
	userPlanKey      = "user:plan:"
	userTodayViewKey = "user:today:"
	planCacheTTL     = 2 * time.Minute
)

// PlanService orchestrates plan builds: it assembles the program template,
// the user's enrollment and their completion log into a dated, adapted,
// progress-tracked schedule. The schedule itself is never stored; every
// build recomputes it from those three sources.
type PlanService struct {
	programRepo    domain.ProgramRepository
	configRepo     domain.ScheduleConfigRepository
	completionRepo domain.CompletionRepository
	cache          *repository.RedisCacheRepository
	now            func() time.Time
}

// NewPlanService creates a new plan service. cache may be nil (tests).
func NewPlanService(
	programRepo domain.ProgramRepository,
	configRepo domain.ScheduleConfigRepository,
	completionRepo domain.CompletionRepository,
	cache *repository.RedisCacheRepository,
) *PlanService {
	return &PlanService{
		programRepo:    programRepo,
		configRepo:     configRepo,
		completionRepo: completionRepo,
		cache:          cache,
		now:            time.Now,
	}
}

// BuildPlan returns the user's full dated schedule with overdue sessions
// pushed forward and lock/completion state applied.
func (s *PlanService) BuildPlan(ctx context.Context, userID string) ([]domain.ScheduledWorkout, error) {
	if s.cache != nil {
		var cached []domain.ScheduledWorkout
		if err := s.cache.Get(ctx, userPlanKey+userID, &cached); err == nil {
			return cached, nil
		}
	}

	plan, err := s.buildPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, userPlanKey+userID, plan, planCacheTTL); err != nil {
			log.Printf("Warning: failed to cache plan for user %s: %v", userID, err)
		}
	}

	return plan, nil
}

// TodayView returns the subset of the plan relevant on the current date:
// everything from today onward, or today's finished work when the program
// is already done.
func (s *PlanService) TodayView(ctx context.Context, userID string) ([]domain.ScheduledWorkout, error) {
	if s.cache != nil {
		var cached []domain.ScheduledWorkout
		if err := s.cache.Get(ctx, userTodayViewKey+userID, &cached); err == nil {
			return cached, nil
		}
	}

	plan, err := s.buildPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := schedule.TodayView(plan, s.now())

	if s.cache != nil {
		if err := s.cache.Set(ctx, userTodayViewKey+userID, view, planCacheTTL); err != nil {
			log.Printf("Warning: failed to cache today view for user %s: %v", userID, err)
		}
	}

	return view, nil
}

func (s *PlanService) buildPlan(ctx context.Context, userID string) ([]domain.ScheduledWorkout, error) {
	cfg, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Program and completion log are independent reads, fetch them together.
	var (
		program *domain.Program
		records []*domain.CompletionRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		program, err = s.programRepo.GetByID(gctx, cfg.ProgramID)
		if err != nil {
			return fmt.Errorf("failed to load program %s: %w", cfg.ProgramID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		records, err = s.completionRepo.ListByUserAndProgram(gctx, userID, cfg.ProgramID)
		if err != nil {
			return fmt.Errorf("failed to load completions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sched, err := schedule.Generate(program, cfg)
	if err != nil {
		return nil, err
	}

	completed := schedule.CompletedDays(sched, records)
	sched = schedule.Adapt(sched, completed, s.now(), cfg.PreferredDays)
	return schedule.Track(sched, records), nil
}

// Enroll creates the user's enrollment in a program. A user holds at most
// one enrollment at a time.
func (s *PlanService) Enroll(ctx context.Context, userID, programID string, startDate time.Time, preferredDays []int) (*domain.ScheduleConfig, error) {
	if err := validatePreferredDays(preferredDays); err != nil {
		return nil, err
	}

	// The program must exist before we point an enrollment at it.
	if _, err := s.programRepo.GetByID(ctx, programID); err != nil {
		return nil, err
	}

	existing, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrScheduleConfigNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrAlreadyEnrolled
	}

	cfg := &domain.ScheduleConfig{
		UserID:        userID,
		ProgramID:     programID,
		StartDate:     schedule.DateOnly(startDate),
		PreferredDays: preferredDays,
	}
	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	s.invalidatePlan(ctx, userID)
	return cfg, nil
}

// UpdatePreferredDays changes the user's training weekdays. The next plan
// build reflows uncompleted sessions onto the new cadence.
func (s *PlanService) UpdatePreferredDays(ctx context.Context, userID string, preferredDays []int) (*domain.ScheduleConfig, error) {
	if err := validatePreferredDays(preferredDays); err != nil {
		return nil, err
	}

	cfg, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	cfg.PreferredDays = preferredDays
	if err := s.configRepo.Upsert(ctx, cfg); err != nil {
		return nil, err
	}

	s.invalidatePlan(ctx, userID)
	return cfg, nil
}

// GetScheduleConfig returns the user's enrollment.
func (s *PlanService) GetScheduleConfig(ctx context.Context, userID string) (*domain.ScheduleConfig, error) {
	return s.configRepo.GetByUser(ctx, userID)
}

// Unenroll drops the user's enrollment. The completion log is kept; if they
// re-enroll in the same program their progress resurfaces.
func (s *PlanService) Unenroll(ctx context.Context, userID string) error {
	if err := s.configRepo.Delete(ctx, userID); err != nil {
		return err
	}
	s.invalidatePlan(ctx, userID)
	return nil
}

// LogCompletion appends a finished ruck to the user's log. Retries with the
// same ClientID return the original record instead of a duplicate. A zero
// ProgramWorkoutDay is resolved to the earliest ruck day not yet completed.
func (s *PlanService) LogCompletion(ctx context.Context, userID string, record *domain.CompletionRecord) (*domain.CompletionRecord, error) {
	cfg, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	record.UserID = userID
	if record.ProgramID == "" {
		record.ProgramID = cfg.ProgramID
	}
	if record.Date.IsZero() {
		record.Date = s.now()
	}

	if record.ClientID == "" {
		record.ClientID = generateULID()
	} else {
		// Offline clients retry; the first write wins.
		existing, err := s.completionRepo.GetByClientID(ctx, userID, record.ClientID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, domain.ErrCompletionNotFound) {
			return nil, err
		}
	}

	if record.ProgramWorkoutDay == 0 {
		day, err := s.resolveWorkoutDay(ctx, userID)
		if err != nil {
			return nil, err
		}
		record.ProgramWorkoutDay = day
	}

	if err := s.completionRepo.Create(ctx, record); err != nil {
		if errors.Is(err, domain.ErrDuplicateCompletion) {
			// Lost the race against a concurrent retry.
			return s.completionRepo.GetByClientID(ctx, userID, record.ClientID)
		}
		return nil, err
	}

	s.invalidatePlan(ctx, userID)
	return record, nil
}

// RemoveCompletion deletes a logged ruck. Only the owner may remove it.
func (s *PlanService) RemoveCompletion(ctx context.Context, userID, recordID string) error {
	record, err := s.completionRepo.GetByID(ctx, recordID)
	if err != nil {
		return err
	}
	if record.UserID != userID {
		return domain.ErrForbidden
	}

	if err := s.completionRepo.Delete(ctx, recordID); err != nil {
		return err
	}

	s.invalidatePlan(ctx, userID)
	return nil
}

// ListCompletions returns the user's completion log for their current
// program, oldest first.
func (s *PlanService) ListCompletions(ctx context.Context, userID string) ([]*domain.CompletionRecord, error) {
	cfg, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.completionRepo.ListByUserAndProgram(ctx, userID, cfg.ProgramID)
}

// ProgressSummary is a compact rollup of where the user stands in their
// program.
type ProgressSummary struct {
	ProgramID      string    `json:"program_id"`
	StartDate      time.Time `json:"start_date"`
	TotalDays      int       `json:"total_days"`
	RuckDays       int       `json:"ruck_days"`
	CompletedRucks int64     `json:"completed_rucks"`
	PercentDone    float64   `json:"percent_done"`
}

// GetProgressSummary returns completion stats for the user's enrollment.
func (s *PlanService) GetProgressSummary(ctx context.Context, userID string) (*ProgressSummary, error) {
	cfg, err := s.configRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	program, err := s.programRepo.GetByID(ctx, cfg.ProgramID)
	if err != nil {
		return nil, err
	}

	ruckDays := 0
	for _, e := range program.Entries {
		if !e.IsRest() {
			ruckDays++
		}
	}

	completed, err := s.completionRepo.CountByUserAndProgram(ctx, userID, cfg.ProgramID)
	if err != nil {
		return nil, err
	}

	summary := &ProgressSummary{
		ProgramID:      cfg.ProgramID,
		StartDate:      cfg.StartDate,
		TotalDays:      len(program.Entries),
		RuckDays:       ruckDays,
		CompletedRucks: completed,
	}
	if ruckDays > 0 {
		summary.PercentDone = float64(completed) / float64(ruckDays) * 100
	}
	return summary, nil
}

// resolveWorkoutDay picks the day number for an untagged completion: the
// first non-rest entry in the plan not already completed.
func (s *PlanService) resolveWorkoutDay(ctx context.Context, userID string) (int, error) {
	plan, err := s.buildPlan(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range plan {
		if plan[i].WorkoutType == domain.WorkoutTypeRest {
			continue
		}
		if !plan[i].IsCompleted {
			return plan[i].DayNumber, nil
		}
	}
	return 0, fmt.Errorf("program already fully completed")
}

func (s *PlanService) invalidatePlan(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateUserPlan(ctx, userID); err != nil {
		log.Printf("Warning: failed to invalidate plan cache for user %s: %v", userID, err)
	}
}

func validatePreferredDays(days []int) error {
	for _, d := range days {
		if d < 1 || d > 7 {
			return domain.ErrInvalidPreferredDay
		}
	}
	return nil
}

// generateULID mints a server-side ULID for completions logged without one
// (older clients). Client-minted IDs take precedence when present.
func generateULID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), rand.Reader).String()
}
