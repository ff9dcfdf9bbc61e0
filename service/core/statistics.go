package core

import (
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
	sm "github.com/ignaciocanosa/Precios-Relativos/service/models"
)

// parity is the level where both series are worth the same
const parity = 1.0

// GetRatioStatistics summarises the defined ratios of rs. Undefined rows are only counted.
func GetRatioStatistics(rs *dm.RatioSeries) (*sm.RatioStatistics, error) {
	_, values := rs.Defined()
	n := len(values)
	if n == 0 {
		return nil, fmt.Errorf("no defined ratio in %d rows", rs.Len())
	}

	res := &sm.RatioStatistics{
		Observations: n,
		Undefined:    rs.Len() - n,
		First:        values[0],
		Last:         values[n-1],
		Mean:         stat.Mean(values, nil),
		Min:          floats.Min(values),
		Max:          floats.Max(values),
	}

	if res.First != 0 {
		res.Change = res.Last/res.First - 1
	}

	if n > 1 {
		res.StdDev = stat.StdDev(values, nil)
	}

	for _, v := range values {
		if v > parity {
			res.AboveParity++
		}
	}

	// median needs increasing order, values must keep date order for first and last
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	res.Median = median(sorted)

	return res, nil
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return stat.Mean(sorted[n/2-1:n/2+1], nil)
}
