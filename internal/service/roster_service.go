package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/shiftwise/rota-api/internal/dto"
	"github.com/shiftwise/rota-api/internal/models"
	"github.com/shiftwise/rota-api/internal/rota"
	appErrors "github.com/shiftwise/rota-api/pkg/errors"
)

type rosterEmployeeSource interface {
	ListActive(ctx context.Context) ([]models.Employee, error)
}

type rosterRequestSource interface {
	ListAll(ctx context.Context) ([]models.ScheduleRequest, error)
}

type rosterRepository interface {
	List(ctx context.Context, filter models.RosterFilter) ([]models.RosterMeta, int, error)
	FindByID(ctx context.Context, id string) (*models.Roster, error)
	Create(ctx context.Context, roster *models.Roster) error
	Delete(ctx context.Context, id string) error
}

type solveObserver interface {
	ObserveSolve(outcome string, duration time.Duration)
}

// RosterCache is the optional read-through cache in front of saved rosters.
type RosterCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// RosterConfig governs solver behaviour.
type RosterConfig struct {
	TimeLimit   time.Duration
	ProposalTTL time.Duration
}

// RosterService runs the solver pipeline and manages saved rosters. Generated
// proposals are held in memory until saved or expired; only Save persists
// anything.
type RosterService struct {
	employees rosterEmployeeSource
	requests  rosterRequestSource
	rosters   rosterRepository
	cache     RosterCache
	metrics   solveObserver
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RosterConfig
	store     *rosterProposalStore
}

// NewRosterService wires roster dependencies.
func NewRosterService(
	employees rosterEmployeeSource,
	requests rosterRequestSource,
	rosters rosterRepository,
	cache RosterCache,
	metrics solveObserver,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg RosterConfig,
) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TimeLimit <= 0 {
		cfg.TimeLimit = rota.DefaultTimeLimit
	}
	if cfg.ProposalTTL <= 0 {
		cfg.ProposalTTL = 30 * time.Minute
	}
	return &RosterService{
		employees: employees,
		requests:  requests,
		rosters:   rosters,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		store:     newRosterProposalStore(cfg.ProposalTTL),
	}
}

// Generate runs one solve over the current staffing snapshot and returns a
// proposal. Nothing is persisted until the proposal is saved.
func (s *RosterService) Generate(ctx context.Context, req dto.GenerateRosterRequest) (*dto.GenerateRosterResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid roster generation payload")
	}
	startDate, ok := rota.ParseDate(req.StartDate)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "startDate must be an ISO date (YYYY-MM-DD)")
	}

	period := rota.Period{StartDate: startDate, NumDays: req.NumDays}
	copy(period.ClosingStaff[:], req.ClosingStaff)
	copy(period.DailyBudgets[:], req.DailyBudgets)

	records, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load employees")
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "no active employees to roster")
	}
	snapshot := make([]rota.Employee, 0, len(records))
	for _, record := range records {
		snapshot = append(snapshot, record.Snapshot())
	}

	requests, dropped, err := s.loadRequests(ctx)
	if err != nil {
		return nil, err
	}

	cal := rota.NewCalendar(period.StartDate, period.NumDays)
	constraints, compileDropped := rota.NewCompiler(cal, snapshot, s.logger).Compile(requests)
	for _, d := range compileDropped {
		dropped = append(dropped, dto.DroppedRequest{
			StaffName: d.Request.StaffName,
			Kind:      d.Request.Kind.String(),
			Value:     d.Request.Value,
			Reason:    d.Reason,
		})
	}

	timeLimit := s.cfg.TimeLimit
	if req.TimeLimitSeconds > 0 {
		timeLimit = time.Duration(req.TimeLimitSeconds) * time.Second
	}

	model := rota.BuildModel(snapshot, period, constraints)
	driver := rota.NewDriver(timeLimit, s.logger)

	start := time.Now()
	valuation, outcome := driver.Solve(ctx, model)
	elapsed := time.Since(start)
	if s.metrics != nil {
		s.metrics.ObserveSolve(outcome.String(), elapsed)
	}

	switch outcome {
	case rota.OutcomeInfeasible:
		return nil, appErrors.Clone(appErrors.ErrRosterInfeasible, "no roster satisfies the staffing rules; relax requests, budgets, or headcounts")
	case rota.OutcomeFault:
		return nil, appErrors.Clone(appErrors.ErrRosterInfeasible, "the solver ran out of time before finding a roster; raise the time limit or shorten the period")
	}

	schedule := rota.Extract(valuation)
	proposal := rosterProposal{
		ProposalID:  uuid.NewString(),
		Schedule:    schedule,
		Outcome:     outcome,
		Dropped:     dropped,
		RequestedAt: time.Now().UTC(),
	}
	s.store.Save(proposal)

	return &dto.GenerateRosterResponse{
		ProposalID:      proposal.ProposalID,
		Outcome:         outcome.String(),
		Schedule:        schedule,
		DroppedRequests: dropped,
		ElapsedMillis:   elapsed.Milliseconds(),
	}, nil
}

// Save persists a generated proposal as a roster record.
func (s *RosterService) Save(ctx context.Context, req dto.SaveRosterRequest) (*models.RosterMeta, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid save roster payload")
	}
	proposal, ok := s.store.Get(req.ProposalID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "proposal not found or expired")
	}

	payload, err := json.Marshal(proposal.Schedule)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode roster payload")
	}

	label := req.Label
	if label == "" {
		label = "Roster " + proposal.Schedule.StartDate.Format("2006-01-02")
	}

	roster := &models.Roster{
		Label:     label,
		StartDate: proposal.Schedule.StartDate,
		NumDays:   proposal.Schedule.NumDays,
		Outcome:   proposal.Outcome.String(),
		Objective: proposal.Schedule.Objective,
		Payload:   types.JSONText(payload),
	}
	if err := s.rosters.Create(ctx, roster); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save roster")
	}

	s.store.Delete(req.ProposalID)
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "rosters:*")
	}

	return &models.RosterMeta{
		ID:        roster.ID,
		Label:     roster.Label,
		StartDate: roster.StartDate,
		NumDays:   roster.NumDays,
		Outcome:   roster.Outcome,
		Objective: roster.Objective,
		CreatedAt: roster.CreatedAt,
	}, nil
}

// List returns saved roster metadata plus pagination data.
func (s *RosterService) List(ctx context.Context, query dto.ListRostersQuery) ([]models.RosterMeta, *models.Pagination, error) {
	filter := models.RosterFilter{Page: query.Page, PageSize: query.PageSize}
	if query.From != "" {
		from, ok := rota.ParseDate(query.From)
		if !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "from must be an ISO date (YYYY-MM-DD)")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, ok := rota.ParseDate(query.To)
		if !ok {
			return nil, nil, appErrors.Clone(appErrors.ErrValidation, "to must be an ISO date (YYYY-MM-DD)")
		}
		filter.To = &to
	}

	rosters, total, err := s.rosters.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rosters")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return rosters, pagination, nil
}

// Get returns a saved roster including its schedule payload, with a
// read-through cache in front of the database. The bool reports whether the
// cache served the read.
func (s *RosterService) Get(ctx context.Context, id string) (*models.Roster, bool, error) {
	cacheKey := "rosters:" + id
	if s.cache != nil {
		var cached models.Roster
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	roster, err := s.rosters.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, appErrors.Clone(appErrors.ErrNotFound, "roster not found")
		}
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, roster, 0)
	}
	return roster, false, nil
}

// Schedule decodes the stored payload of a saved roster.
func (s *RosterService) Schedule(ctx context.Context, id string) (*rota.Schedule, *models.Roster, error) {
	roster, _, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	var schedule rota.Schedule
	if err := json.Unmarshal(roster.Payload, &schedule); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to decode roster payload")
	}
	return &schedule, roster, nil
}

// Delete removes a saved roster.
func (s *RosterService) Delete(ctx context.Context, id string) error {
	if _, err := s.rosters.FindByID(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "roster not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if err := s.rosters.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete roster")
	}
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, "rosters:"+id)
	}
	return nil
}

// loadRequests converts stored requests into solver input. Requests whose kind
// no longer parses are reported as dropped instead of aborting the run.
func (s *RosterService) loadRequests(ctx context.Context) ([]rota.Request, []dto.DroppedRequest, error) {
	rows, err := s.requests.ListAll(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule requests")
	}
	requests := make([]rota.Request, 0, len(rows))
	var dropped []dto.DroppedRequest
	for _, row := range rows {
		kind, ok := rota.ParseRequestKind(row.Kind)
		if !ok {
			s.logger.Warn("schedule request has unknown kind",
				zap.String("request_id", row.ID), zap.String("kind", row.Kind))
			dropped = append(dropped, dto.DroppedRequest{
				StaffName: row.EmployeeName,
				Kind:      row.Kind,
				Value:     row.Value,
				Reason:    "unknown request kind",
			})
			continue
		}
		requests = append(requests, rota.Request{
			StaffName: row.EmployeeName,
			Kind:      kind,
			Value:     row.Value,
		})
	}
	return requests, dropped, nil
}

type rosterProposal struct {
	ProposalID  string
	Schedule    *rota.Schedule
	Outcome     rota.Outcome
	Dropped     []dto.DroppedRequest
	RequestedAt time.Time
}

type rosterProposalStore struct {
	ttl   time.Duration
	mu    sync.RWMutex
	items map[string]rosterProposal
}

func newRosterProposalStore(ttl time.Duration) *rosterProposalStore {
	return &rosterProposalStore{
		ttl:   ttl,
		items: make(map[string]rosterProposal),
	}
}

func (s *rosterProposalStore) Save(proposal rosterProposal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[proposal.ProposalID] = proposal
}

func (s *rosterProposalStore) Get(id string) (rosterProposal, bool) {
	s.mu.RLock()
	proposal, ok := s.items[id]
	s.mu.RUnlock()
	if !ok {
		return rosterProposal{}, false
	}
	if time.Since(proposal.RequestedAt) > s.ttl {
		s.Delete(id)
		return rosterProposal{}, false
	}
	return proposal, true
}

func (s *rosterProposalStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
}
