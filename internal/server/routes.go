package server

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"dailywee/internal/engine"
	"dailywee/internal/engine/auth"
)

func registerDaily(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-daily-today",
		Method:      http.MethodGet,
		Path:        "/daily/today",
		Summary:     "Get today's deployed seed",
		Errors:      []int{http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body DailyResponse `json:"body"`
	}, error) {
		day, err := e.Today()
		if err != nil {
			return nil, handleError(err)
		}
		if day < 1 {
			return nil, newAPIError(http.StatusNotFound, "not_found", "ritual has not started", map[string]any{"day": day})
		}
		return dailyFor(ctx, e, day)
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-daily",
		Method:      http.MethodGet,
		Path:        "/daily/{day}",
		Summary:     "Get the deployed seed of a day",
		Errors:      []int{http.StatusBadRequest, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Day int `path:"day" minimum:"1"`
	}) (*struct {
		Body DailyResponse `json:"body"`
	}, error) {
		return dailyFor(ctx, e, input.Day)
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-daily",
		Method:      http.MethodGet,
		Path:        "/daily",
		Summary:     "List deployed days",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		From int `query:"from" default:"1" minimum:"1"`
		To   int `query:"to" default:"7" minimum:"1"`
	}) (*struct {
		Body DeployedDaysResponse `json:"body"`
	}, error) {
		if input.To < input.From {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "to must not be before from", nil)
		}
		items, err := e.Repo.ListDailySeeds(ctx, input.From, input.To)
		if err != nil {
			return nil, handleError(err)
		}
		resp := DeployedDaysResponse{Items: []DailyResponse{}}
		for _, d := range items {
			item, err := dailyResponse(e, d)
			if err != nil {
				return nil, handleError(err)
			}
			resp.Items = append(resp.Items, item)
		}
		return &struct {
			Body DeployedDaysResponse `json:"body"`
		}{Body: resp}, nil
	})
}

func dailyFor(ctx context.Context, e engine.Engine, day int) (*struct {
	Body DailyResponse `json:"body"`
}, error) {
	d, err := e.DailySeed(ctx, day)
	if err != nil {
		return nil, handleError(err)
	}
	resp, err := dailyResponse(e, d)
	if err != nil {
		return nil, handleError(err)
	}
	return &struct {
		Body DailyResponse `json:"body"`
	}{Body: resp}, nil
}

func registerScores(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-scores",
		Method:      http.MethodGet,
		Path:        "/scores",
		Summary:     "Top scores of a day",
		Errors:      []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Day   int `query:"day" required:"true" minimum:"1"`
		Limit int `query:"limit"`
	}) (*struct {
		Body LeaderboardResponse `json:"body"`
	}, error) {
		items, err := e.Leaderboard(ctx, input.Day, input.Limit)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body LeaderboardResponse `json:"body"`
		}{Body: LeaderboardResponse{Day: input.Day, Scores: mapScores(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-winners",
		Method:      http.MethodGet,
		Path:        "/scores/winners",
		Summary:     "Best score of each recent day",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body WinnersResponse `json:"body"`
	}, error) {
		items, err := e.Winners(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body WinnersResponse `json:"body"`
		}{Body: WinnersResponse{Winners: mapScores(items)}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "submit-score",
		Method:        http.MethodPost,
		Path:          "/scores",
		Summary:       "Submit a score",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest},
	}, func(ctx context.Context, input *struct {
		Body SubmitScoreRequest `json:"body"`
	}) (*struct {
		Body ScoreResponse `json:"body"`
	}, error) {
		var actorID string
		if p, ok := principalFromContext(ctx); ok {
			actorID = p.ActorID
		}
		s, err := e.SubmitScore(ctx, engine.SubmitScoreOptions{
			Seed:       input.Body.Seed,
			DayNumber:  input.Body.DayNumber,
			PlayerName: input.Body.PlayerName,
			Score:      input.Body.Score,
		}, actorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ScoreResponse `json:"body"`
		}{Body: scoreResponse(s)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "delete-score",
		Method:      http.MethodDelete,
		Path:        "/scores/{id}",
		Summary:     "Remove a score (moderators only)",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		ID string `path:"id"`
	}) (*struct {
		Body ScoreResponse `json:"body"`
	}, error) {
		p, authErr := requireRole(ctx, auth.RoleModerator)
		if authErr != nil {
			return nil, authErr
		}
		s, err := e.RemoveScore(ctx, input.ID, p.ActorID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ScoreResponse `json:"body"`
		}{Body: scoreResponse(s)}, nil
	})
}
