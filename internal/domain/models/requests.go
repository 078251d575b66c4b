package models

// Requests for analytics HTTP endpoints. Defined in domain for consistency
// and reuse. Time bounds arrive as RFC3339 or unix seconds and are parsed
// by the handler; validation here covers shape only.

type MetricRequest struct {
	Name      string `query:"name" json:"name"`
	Field     string `query:"field" json:"field"`
	From      string `query:"from" json:"from"`
	To        string `query:"to" json:"to"`
	Method    string `query:"method" json:"method" default:"SIMPLE" validate:"oneof=SIMPLE WEIGHTED EXPONENTIAL HARMONIC"`
	Precision int    `query:"precision" json:"precision" default:"2" validate:"gte=0,lte=8"`
	Outliers  bool   `query:"outliers" json:"outliers"`
	CI        bool   `query:"ci" json:"ci"`
}

type OutlierRequest struct {
	Field  string `query:"field" json:"field" validate:"required"`
	Method string `query:"method" json:"method" default:"IQR" validate:"oneof=IQR Z_SCORE MODIFIED_Z_SCORE"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}

// SignificanceRequest compares one field across two time windows
// (e.g. this month's revenue vs last month's).
type SignificanceRequest struct {
	Field string  `query:"field" json:"field" validate:"required"`
	FromA string  `query:"fromA" json:"fromA" validate:"required"`
	ToA   string  `query:"toA" json:"toA" validate:"required"`
	FromB string  `query:"fromB" json:"fromB" validate:"required"`
	ToB   string  `query:"toB" json:"toB" validate:"required"`
	Alpha float64 `query:"alpha" json:"alpha" default:"0.05" validate:"gt=0,lt=1"`
}

type TrendRequest struct {
	Name  string `query:"name" json:"name"`
	Field string `query:"field" json:"field"`
	From  string `query:"from" json:"from"`
	To    string `query:"to" json:"to"`
	TF    string `query:"tf" json:"tf" default:"1d" validate:"oneof=1h 1d 1w"`
}

type SeasonalRequest struct {
	Name         string `query:"name" json:"name"`
	Field        string `query:"field" json:"field"`
	From         string `query:"from" json:"from"`
	To           string `query:"to" json:"to"`
	TF           string `query:"tf" json:"tf" default:"1d" validate:"oneof=1h 1d 1w"`
	SeasonLength int    `query:"season" json:"season" default:"7" validate:"gte=2,lte=366"`
}

type DashboardRequest struct {
	Domain string `param:"domain" json:"domain" validate:"required,oneof=financial customer warehouse product"`
	From   string `query:"from" json:"from"`
	To     string `query:"to" json:"to"`
}
