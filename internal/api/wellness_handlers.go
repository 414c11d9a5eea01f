package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

func (s *Server) registerHydrationRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getHydrationToday",
		Method:      http.MethodGet,
		Path:        "/api/v1/hydration/today",
		Summary:     "Today's hydration",
		Description: "Returns today's intake logs, their total and the current goal",
		Tags:        []string{"Hydration"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleHydrationToday)

	huma.Register(s.api, huma.Operation{
		OperationID: "getHydrationHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/hydration/history",
		Summary:     "Hydration history",
		Description: "Returns daily intake totals, oldest first",
		Tags:        []string{"Hydration"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleHydrationHistory)

	huma.Register(s.api, huma.Operation{
		OperationID:   "logHydration",
		Method:        http.MethodPost,
		Path:          "/api/v1/hydration",
		Summary:       "Log water intake",
		Tags:          []string{"Hydration"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleLogHydration)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteHydration",
		Method:      http.MethodDelete,
		Path:        "/api/v1/hydration/{id}",
		Summary:     "Delete hydration log",
		Tags:        []string{"Hydration"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteHydration)
}

func (s *Server) registerMoodRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMoods",
		Method:      http.MethodGet,
		Path:        "/api/v1/moods",
		Summary:     "Recent moods",
		Description: "Returns check-ins from the last N days with average energy and per-mood counts",
		Tags:        []string{"Mood"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMoods)

	huma.Register(s.api, huma.Operation{
		OperationID:   "logMood",
		Method:        http.MethodPost,
		Path:          "/api/v1/moods",
		Summary:       "Log mood",
		Tags:          []string{"Mood"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleLogMood)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteMood",
		Method:      http.MethodDelete,
		Path:        "/api/v1/moods/{id}",
		Summary:     "Delete mood log",
		Tags:        []string{"Mood"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteMood)
}

// === DTOs ===

// HydrationLogResponse is one intake in API responses.
type HydrationLogResponse struct {
	ID        string    `json:"id" doc:"Log ID"`
	Amount    int       `json:"amount" doc:"Intake in millilitres"`
	Goal      int       `json:"goal" doc:"Daily goal in effect, millilitres"`
	Timestamp time.Time `json:"timestamp" doc:"When the intake was logged"`
}

// HydrationLogOutput wraps an intake for Huma.
type HydrationLogOutput struct {
	Body HydrationLogResponse
}

// HydrationTodayResponse is today's intake.
type HydrationTodayResponse struct {
	Logs  []HydrationLogResponse `json:"logs" doc:"Today's logs, newest first"`
	Total int                    `json:"total" doc:"Total millilitres today"`
	Goal  int                    `json:"goal" doc:"Current daily goal in millilitres"`
}

// HydrationTodayOutput wraps today's intake for Huma.
type HydrationTodayOutput struct {
	Body HydrationTodayResponse
}

// DaysInput selects a window of calendar days.
type DaysInput struct {
	Authorization string `header:"Authorization"`
	Days          int    `query:"days" minimum:"0" doc:"Number of days including today (default 7, max 90)"`
}

// HydrationHistoryResponse contains daily totals.
type HydrationHistoryResponse struct {
	Days []service.HydrationHistoryDay `json:"days" doc:"Daily totals, oldest first"`
}

// HydrationHistoryOutput wraps the history for Huma.
type HydrationHistoryOutput struct {
	Body HydrationHistoryResponse
}

// LogHydrationRequest is the request body for logging intake.
type LogHydrationRequest struct {
	Amount int `json:"amount,omitempty" validate:"gt=0,lte=5000" doc:"Intake in millilitres"`
	Goal   int `json:"goal,omitempty" validate:"gte=0,lte=20000" doc:"New daily goal; omit to keep the current one"`
}

// LogHydrationInput wraps the intake for Huma.
type LogHydrationInput struct {
	Authorization string `header:"Authorization"`
	Body          LogHydrationRequest
}

// LogIDInput identifies one hydration or mood log.
type LogIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Log ID"`
}

// MoodLogResponse is one check-in in API responses.
type MoodLogResponse struct {
	ID        string    `json:"id" doc:"Log ID"`
	Mood      string    `json:"mood" doc:"great, good, okay, low or bad"`
	Energy    int       `json:"energy" doc:"Energy from 1 to 5"`
	Notes     string    `json:"notes,omitempty" doc:"Notes"`
	Timestamp time.Time `json:"timestamp" doc:"When the check-in was logged"`
}

// MoodLogOutput wraps a check-in for Huma.
type MoodLogOutput struct {
	Body MoodLogResponse
}

// MoodOverviewResponse is a window of check-ins.
type MoodOverviewResponse struct {
	Logs          []MoodLogResponse `json:"logs" doc:"Check-ins, newest first"`
	AverageEnergy float64           `json:"average_energy" doc:"Mean energy, 0 without check-ins"`
	Counts        map[string]int    `json:"counts" doc:"Check-ins per mood"`
}

// MoodOverviewOutput wraps the overview for Huma.
type MoodOverviewOutput struct {
	Body MoodOverviewResponse
}

// LogMoodRequest is the request body for a check-in.
type LogMoodRequest struct {
	Mood   string `json:"mood" validate:"required,mood" doc:"great, good, okay, low or bad"`
	Energy int    `json:"energy" validate:"required,gte=1,lte=5" doc:"Energy from 1 to 5"`
	Notes  string `json:"notes,omitempty" validate:"max=200" doc:"Notes"`
}

// LogMoodInput wraps the check-in for Huma.
type LogMoodInput struct {
	Authorization string `header:"Authorization"`
	Body          LogMoodRequest
}

// === Handlers ===

func (s *Server) handleHydrationToday(ctx context.Context, input *AuthenticatedInput) (*HydrationTodayOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	day, err := s.services.Hydration.Today(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &HydrationTodayOutput{Body: mapHydrationDay(day)}, nil
}

func (s *Server) handleHydrationHistory(ctx context.Context, input *DaysInput) (*HydrationHistoryOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	days, err := s.services.Hydration.History(ctx, userID, input.Days)
	if err != nil {
		return nil, err
	}
	return &HydrationHistoryOutput{Body: HydrationHistoryResponse{Days: days}}, nil
}

func (s *Server) handleLogHydration(ctx context.Context, input *LogHydrationInput) (*HydrationLogOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Hydration.Log(ctx, userID, service.LogHydrationRequest{
		Amount: input.Body.Amount,
		Goal:   input.Body.Goal,
	})
	if err != nil {
		return nil, err
	}
	return &HydrationLogOutput{Body: mapHydrationLog(entry)}, nil
}

func (s *Server) handleDeleteHydration(ctx context.Context, input *LogIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Hydration.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Hydration log deleted"}}, nil
}

func (s *Server) handleListMoods(ctx context.Context, input *DaysInput) (*MoodOverviewOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	overview, err := s.services.Mood.Recent(ctx, userID, input.Days)
	if err != nil {
		return nil, err
	}
	return &MoodOverviewOutput{Body: mapMoodOverview(overview)}, nil
}

func (s *Server) handleLogMood(ctx context.Context, input *LogMoodInput) (*MoodLogOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	entry, err := s.services.Mood.Log(ctx, userID, service.LogMoodRequest{
		Mood:   domain.Mood(input.Body.Mood),
		Energy: input.Body.Energy,
		Notes:  input.Body.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &MoodLogOutput{Body: mapMoodLog(entry)}, nil
}

func (s *Server) handleDeleteMood(ctx context.Context, input *LogIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Mood.Delete(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Mood log deleted"}}, nil
}

// === Helpers ===

func mapHydrationLog(l *domain.HydrationLog) HydrationLogResponse {
	return HydrationLogResponse{ID: l.ID, Amount: l.Amount, Goal: l.Goal, Timestamp: l.Timestamp}
}

func mapHydrationDay(day *domain.HydrationDay) HydrationTodayResponse {
	resp := HydrationTodayResponse{
		Logs:  make([]HydrationLogResponse, 0, len(day.Logs)),
		Total: day.Total,
		Goal:  day.Goal,
	}
	for _, l := range day.Logs {
		resp.Logs = append(resp.Logs, mapHydrationLog(l))
	}
	return resp
}

func mapMoodLog(l *domain.MoodLog) MoodLogResponse {
	return MoodLogResponse{
		ID:        l.ID,
		Mood:      string(l.Mood),
		Energy:    l.Energy,
		Notes:     l.Notes,
		Timestamp: l.Timestamp,
	}
}

func mapMoodOverview(o *service.MoodOverview) MoodOverviewResponse {
	resp := MoodOverviewResponse{
		Logs:          make([]MoodLogResponse, 0, len(o.Logs)),
		AverageEnergy: o.AverageEnergy,
		Counts:        make(map[string]int, len(o.Counts)),
	}
	for _, l := range o.Logs {
		resp.Logs = append(resp.Logs, mapMoodLog(l))
	}
	for mood, n := range o.Counts {
		resp.Counts[string(mood)] = n
	}
	return resp
}
