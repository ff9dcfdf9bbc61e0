package hereisdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ex "github.com/ignaciocanosa/Precios-Relativos/data/extensions"
	m "github.com/ignaciocanosa/Precios-Relativos/data/models"
	c "github.com/ignaciocanosa/Precios-Relativos/service/api"
)

// public
const (
	BaseUrlDefault = "https://hereisdata.com"
	TimeoutDefault = time.Second * 30
	ApiKeyHeader   = "X-Api-Key"
)

// private
const (
	multipleSeriesPath = "api/serie/listMeasurementsForMultipleSeries"

	seriesIds = "seriesIds"
	dateFrom  = "dateFrom"
	dateTo    = "dateTo"
)

type HereIsDataClient struct {
	*c.Client
}

func GetClient(baseUrl string, apiKey string, timeout time.Duration) (*HereIsDataClient, error) {
	if baseUrl == "" {
		baseUrl = BaseUrlDefault
	}
	if timeout <= 0 {
		timeout = TimeoutDefault
	}

	client, err := c.ClientFactory(baseUrl, apiKey, timeout)
	if err != nil {
		return nil, err
	}
	return &HereIsDataClient{client}, nil
}

// FetchMeasurements requests every series in ids over [from, to] in a single call and
// returns one RawSeries per id, in the same order.
func (hc *HereIsDataClient) FetchMeasurements(ctx context.Context, ids []int32, from, to time.Time) ([]m.RawSeries, error) {
	if hc == nil {
		panic("hereisdata client has not been set.")
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("at least one series id is required")
	}

	start := time.Now()
	endpoint := buildRequestPath(ids, from, to)
	header := http.Header{}
	header.Set(ApiKeyHeader, hc.ApiKey)

	response, err := hc.Connection.Request(ctx, endpoint, header)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, &c.TransportError{Err: fmt.Errorf("error reading response body: %w", err)}
	}

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return nil, &c.RemoteError{
			StatusCode: response.StatusCode,
			Status:     response.Status,
			Body:       string(body),
		}
	}

	res, err := parseMeasurements(body, len(ids))
	if err != nil {
		return nil, err
	}

	log.Printf("fetched %d series from hereisdata in %s", len(res), time.Since(start))
	return res, nil
}

func buildRequestPath(ids []int32, from, to time.Time) *url.URL {
	endpoint := &url.URL{}
	endpoint.Path = multipleSeriesPath

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(int64(id), 10)
	}

	query := endpoint.Query()
	query.Set(seriesIds, strings.Join(parts, ","))
	query.Set(dateFrom, ex.FmtShort(from))
	query.Set(dateTo, ex.FmtShort(to))
	endpoint.RawQuery = query.Encode()

	return endpoint
}

// rawSeries keeps measurements as a pointer so a missing key can be told apart from an empty list.
type rawSeries struct {
	Measurements *[]m.RawMeasurement `json:"measurements"`
}

func parseMeasurements(body []byte, expected int) ([]m.RawSeries, error) {
	var raw []rawSeries
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &c.MalformedResponseError{Reason: "body is not a list of series", Err: err}
	}

	if len(raw) != expected {
		return nil, &c.MalformedResponseError{
			Reason: fmt.Sprintf("expected %d series, got %d", expected, len(raw)),
		}
	}

	res := make([]m.RawSeries, len(raw))
	for i, r := range raw {
		if r.Measurements == nil {
			return nil, &c.MalformedResponseError{
				Reason: fmt.Sprintf("series at position %d has no measurements", i),
			}
		}
		res[i] = m.RawSeries{Measurements: *r.Measurements}
	}
	return res, nil
}
