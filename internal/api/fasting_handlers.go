package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/fastlogapp/fastlog-server/internal/analytics"
	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/service"
)

func (s *Server) registerFastingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listFasts",
		Method:      http.MethodGet,
		Path:        "/api/v1/fasting/sessions",
		Summary:     "List fasting history",
		Description: "Returns completed fasts, most recent first",
		Tags:        []string{"Fasting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFasts)

	huma.Register(s.api, huma.Operation{
		OperationID: "getFast",
		Method:      http.MethodGet,
		Path:        "/api/v1/fasting/sessions/{id}",
		Summary:     "Get fast",
		Tags:        []string{"Fasting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetFast)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteFast",
		Method:      http.MethodDelete,
		Path:        "/api/v1/fasting/sessions/{id}",
		Summary:     "Delete fast",
		Description: "Deletes a fast. Deleting the active fast cancels its goal timer.",
		Tags:        []string{"Fasting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteFast)

	huma.Register(s.api, huma.Operation{
		OperationID: "getActiveFast",
		Method:      http.MethodGet,
		Path:        "/api/v1/fasting/active",
		Summary:     "Get active fast",
		Description: "Returns the running fast with live elapsed time, goal progress and stage",
		Tags:        []string{"Fasting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetActiveFast)

	huma.Register(s.api, huma.Operation{
		OperationID:   "startFast",
		Method:        http.MethodPost,
		Path:          "/api/v1/fasting/start",
		Summary:       "Start fast",
		Description:   "Starts a fast now. Fails with 409 when one is already running.",
		Tags:          []string{"Fasting"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleStartFast)

	huma.Register(s.api, huma.Operation{
		OperationID: "stopFast",
		Method:      http.MethodPost,
		Path:        "/api/v1/fasting/stop",
		Summary:     "Stop fast",
		Description: "Stops the running fast and reports newly unlocked milestones",
		Tags:        []string{"Fasting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleStopFast)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateFastGoal",
		Method:      http.MethodPut,
		Path:        "/api/v1/fasting/goal",
		Summary:     "Update goal",
		Description: "Changes the goal of the running fast",
		Tags:        []string{"Fasting"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateFastGoal)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFastingStages",
		Method:      http.MethodGet,
		Path:        "/api/v1/fasting/stages",
		Summary:     "List fasting stages",
		Tags:        []string{"Fasting"},
	}, s.handleListStages)
}

// === DTOs ===

// FastResponse is a fasting session in API responses.
type FastResponse struct {
	ID                string     `json:"id" doc:"Fast ID"`
	StartTime         time.Time  `json:"start_time" doc:"When the fast started"`
	EndTime           *time.Time `json:"end_time,omitempty" doc:"When the fast ended; absent while active"`
	Duration          int64      `json:"duration" doc:"Duration in seconds, set when stopped"`
	DurationFormatted string     `json:"duration_formatted" doc:"Duration as Hh Mm"`
	GoalHours         float64    `json:"goal_hours" doc:"Goal in hours"`
	GoalReached       bool       `json:"goal_reached" doc:"Whether the goal was met"`
	IsActive          bool       `json:"is_active" doc:"Whether the fast is running"`
	Notes             string     `json:"notes,omitempty" doc:"Free-form notes"`
	CreatedAt         time.Time  `json:"created_at" doc:"Creation timestamp"`
	UpdatedAt         time.Time  `json:"updated_at" doc:"Last update timestamp"`
}

// FastOutput wraps a fast for Huma.
type FastOutput struct {
	Body FastResponse
}

// ListFastsInput contains parameters for listing history.
type ListFastsInput struct {
	Authorization string `header:"Authorization"`
	Limit         int    `query:"limit" minimum:"0" doc:"Maximum fasts to return (default 50, max 500)"`
}

// ListFastsResponse contains fasting history.
type ListFastsResponse struct {
	Fasts []FastResponse `json:"fasts" doc:"Fasts, most recent first"`
}

// ListFastsOutput wraps the history for Huma.
type ListFastsOutput struct {
	Body ListFastsResponse
}

// FastIDInput identifies one fast.
type FastIDInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Fast ID"`
}

// ActiveFastResponse describes the running fast. Only Active is set when there is none.
type ActiveFastResponse struct {
	Active           bool                     `json:"active" doc:"Whether a fast is running"`
	Fast             *FastResponse            `json:"fast,omitempty" doc:"The running fast"`
	Elapsed          int64                    `json:"elapsed,omitempty" doc:"Elapsed seconds"`
	ElapsedFormatted string                   `json:"elapsed_formatted,omitempty" doc:"Elapsed time as HH:MM:SS"`
	Remaining        int64                    `json:"remaining,omitempty" doc:"Seconds until the goal, 0 once reached"`
	GoalProgress     float64                  `json:"goal_progress,omitempty" doc:"Percent of the goal, capped at 100"`
	GoalReached      bool                     `json:"goal_reached,omitempty" doc:"Whether the goal has been reached"`
	Stage            *analytics.StageProgress `json:"stage,omitempty" doc:"Current fasting stage"`
}

// ActiveFastOutput wraps the active fast for Huma.
type ActiveFastOutput struct {
	Body ActiveFastResponse
}

// StartFastRequest is the request body for starting a fast.
type StartFastRequest struct {
	GoalHours float64 `json:"goal_hours,omitempty" validate:"gte=0,lte=168" doc:"Goal in hours; 0 uses the server default"`
	Notes     string  `json:"notes,omitempty" validate:"max=500" doc:"Notes"`
}

// StartFastInput wraps the start request for Huma.
type StartFastInput struct {
	Authorization string           `header:"Authorization"`
	Body          StartFastRequest `required:"false"`
}

// StopFastRequest is the request body for stopping a fast.
type StopFastRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=500" doc:"Notes"`
}

// StopFastInput wraps the stop request for Huma.
type StopFastInput struct {
	Authorization string          `header:"Authorization"`
	Body          StopFastRequest `required:"false"`
}

// StopFastResponse contains the completed fast and milestones it unlocked.
type StopFastResponse struct {
	Fast          FastResponse          `json:"fast" doc:"The completed fast"`
	NewMilestones []analytics.Milestone `json:"new_milestones" doc:"Milestones unlocked by this fast"`
}

// StopFastOutput wraps the stop response for Huma.
type StopFastOutput struct {
	Body StopFastResponse
}

// UpdateGoalRequest is the request body for changing the goal.
type UpdateGoalRequest struct {
	GoalHours float64 `json:"goal_hours" validate:"required,gt=0,lte=168" doc:"New goal in hours"`
}

// UpdateGoalInput wraps the goal update for Huma.
type UpdateGoalInput struct {
	Authorization string `header:"Authorization"`
	Body          UpdateGoalRequest
}

// StagesResponse lists the fasting stage catalog.
type StagesResponse struct {
	Stages []analytics.Stage `json:"stages" doc:"Stages in ascending threshold order"`
}

// StagesOutput wraps the stage catalog for Huma.
type StagesOutput struct {
	Body StagesResponse
}

// === Handlers ===

func (s *Server) handleListFasts(ctx context.Context, input *ListFastsInput) (*ListFastsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	fasts, err := s.services.Fasting.History(ctx, userID, input.Limit)
	if err != nil {
		return nil, err
	}

	resp := ListFastsResponse{Fasts: make([]FastResponse, 0, len(fasts))}
	for _, f := range fasts {
		resp.Fasts = append(resp.Fasts, mapFast(f))
	}
	return &ListFastsOutput{Body: resp}, nil
}

func (s *Server) handleGetFast(ctx context.Context, input *FastIDInput) (*FastOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	fast, err := s.services.Fasting.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &FastOutput{Body: mapFast(fast)}, nil
}

func (s *Server) handleDeleteFast(ctx context.Context, input *FastIDInput) (*FastOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	fast, err := s.services.Fasting.Delete(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &FastOutput{Body: mapFast(fast)}, nil
}

func (s *Server) handleGetActiveFast(ctx context.Context, input *AuthenticatedInput) (*ActiveFastOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	active, err := s.services.Fasting.GetActive(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ActiveFastOutput{Body: mapActiveFast(active)}, nil
}

func (s *Server) handleStartFast(ctx context.Context, input *StartFastInput) (*FastOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	fast, err := s.services.Fasting.Start(ctx, userID, service.StartFastRequest{
		GoalHours: input.Body.GoalHours,
		Notes:     input.Body.Notes,
	})
	if err != nil {
		return nil, err
	}
	return &FastOutput{Body: mapFast(fast)}, nil
}

func (s *Server) handleStopFast(ctx context.Context, input *StopFastInput) (*StopFastOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Fasting.Stop(ctx, userID, service.StopFastRequest{Notes: input.Body.Notes})
	if err != nil {
		return nil, err
	}

	milestones := result.NewMilestones
	if milestones == nil {
		milestones = []analytics.Milestone{}
	}
	return &StopFastOutput{Body: StopFastResponse{
		Fast:          mapFast(result.Session),
		NewMilestones: milestones,
	}}, nil
}

func (s *Server) handleUpdateFastGoal(ctx context.Context, input *UpdateGoalInput) (*FastOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	fast, err := s.services.Fasting.UpdateGoal(ctx, userID, service.UpdateGoalRequest{GoalHours: input.Body.GoalHours})
	if err != nil {
		return nil, err
	}
	return &FastOutput{Body: mapFast(fast)}, nil
}

func (s *Server) handleListStages(_ context.Context, _ *struct{}) (*StagesOutput, error) {
	return &StagesOutput{Body: StagesResponse{Stages: s.services.Fasting.Stages()}}, nil
}

// === Helpers ===

func mapFast(f *domain.FastingSession) FastResponse {
	return FastResponse{
		ID:                f.ID,
		StartTime:         f.StartTime,
		EndTime:           f.EndTime,
		Duration:          f.Duration,
		DurationFormatted: analytics.FormatDuration(f.Duration),
		GoalHours:         f.GoalHours,
		GoalReached:       f.GoalReached,
		IsActive:          f.IsActive,
		Notes:             f.Notes,
		CreatedAt:         f.CreatedAt,
		UpdatedAt:         f.UpdatedAt,
	}
}

func mapActiveFast(a *service.ActiveFast) ActiveFastResponse {
	if a == nil {
		return ActiveFastResponse{}
	}
	fast := mapFast(a.Session)
	stage := a.Stage
	return ActiveFastResponse{
		Active:           true,
		Fast:             &fast,
		Elapsed:          a.Elapsed,
		ElapsedFormatted: a.ElapsedFormatted,
		Remaining:        a.Remaining,
		GoalProgress:     a.GoalProgress,
		GoalReached:      a.GoalReached,
		Stage:            &stage,
	}
}
