package server

import (
	"dailywee/internal/domain"
	"dailywee/internal/engine"
	"dailywee/internal/schedule"
)

// Request payloads

type SubmitScoreRequest struct {
	Seed       string `json:"seed" example:"7LB2WVPK"`
	DayNumber  int    `json:"day_number" example:"12"`
	PlayerName string `json:"player_name" example:"wee_fan"`
	Score      int    `json:"score" example:"1250000"`
}

// Response payloads

type ScoreResponse struct {
	ID          string `json:"id"`
	Seed        string `json:"seed"`
	DayNumber   int    `json:"day_number"`
	PlayerName  string `json:"player_name"`
	Score       int    `json:"score"`
	SubmittedAt string `json:"submitted_at" format:"date-time"`
}

type LeaderboardResponse struct {
	Day    int             `json:"day"`
	Scores []ScoreResponse `json:"scores"`
}

type WinnersResponse struct {
	Winners []ScoreResponse `json:"winners"`
}

type DailyResponse struct {
	Day        int             `json:"day"`
	Date       string          `json:"date" format:"date"`
	Seed       string          `json:"seed"`
	Theme      string          `json:"theme"`
	Entry      *schedule.Entry `json:"entry"`
	DeployedAt string          `json:"deployed_at" format:"date-time"`
}

type DeployedDaysResponse struct {
	Items []DailyResponse `json:"items"`
}

func scoreResponse(s domain.Score) ScoreResponse {
	return ScoreResponse(s)
}

func mapScores(items []domain.Score) []ScoreResponse {
	out := make([]ScoreResponse, 0, len(items))
	for _, s := range items {
		out = append(out, scoreResponse(s))
	}
	return out
}

func dailyResponse(e engine.Engine, d domain.DailySeed) (DailyResponse, error) {
	entry, err := engine.DecodeEntry(d)
	if err != nil {
		return DailyResponse{}, err
	}
	resp := DailyResponse{
		Day:        d.Day,
		Seed:       d.Seed,
		Theme:      d.Theme,
		Entry:      entry,
		DeployedAt: d.DeployedAt,
	}
	if epoch, err := e.Config.Epoch(); err == nil {
		resp.Date = schedule.DateOf(epoch, d.Day-1).Format("2006-01-02")
	}
	return resp, nil
}
