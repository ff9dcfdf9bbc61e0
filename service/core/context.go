package core

import (
	"context"
	"time"

	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
	r "github.com/ignaciocanosa/Precios-Relativos/data/repos"
)

// MeasurementFetcher is satisfied by *hereisdata.HereIsDataClient.
type MeasurementFetcher interface {
	FetchMeasurements(ctx context.Context, ids []int32, from, to time.Time) ([]dm.RawSeries, error)
}

type ServiceContext struct {
	HereIsDataClient MeasurementFetcher
	RunRecorder      r.RunRecorder
	Sessions         *SessionStore
	AllowedOrigins   []string
	Addr             string
	RemoteTimeout    time.Duration // client timeout of HereIsDataClient
}
