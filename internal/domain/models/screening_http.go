package models

// Requests for screening HTTP endpoints.

type ResultsRequest struct {
	Limit    int     `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=1000"`
	MinRatio float64 `query:"min_ratio" json:"min_ratio" default:"0" validate:"gte=0"`
	Industry string  `query:"industry" json:"industry"`
	// Since limits results to those screened on or after this day (JST).
	Since string `query:"since" json:"since" validate:"omitempty,datetime=2006-01-02"`
}

type RunRequest struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}
