package models

// RatioStatistics summarises the defined points of a relative price series.
type RatioStatistics struct {
	Observations int     `json:"observations"`
	Undefined    int     `json:"undefined"`
	First        float64 `json:"first"`
	Last         float64 `json:"last"`
	Change       float64 `json:"change"` // last / first - 1
	Mean         float64 `json:"mean"`
	StdDev       float64 `json:"stdDev"`
	Median       float64 `json:"median"`
	Min          float64 `json:"min"`
	Max          float64 `json:"max"`
	AboveParity  int     `json:"aboveParity"` // points where A was worth more than B
}
