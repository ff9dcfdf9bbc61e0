package core

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	c "github.com/ignaciocanosa/Precios-Relativos/service/api"
	sm "github.com/ignaciocanosa/Precios-Relativos/service/models"
)

func serve(t *testing.T, sc *ServiceContext, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	sc.Router().ServeHTTP(rec, req)
	return rec
}

func TestRouter_Ping(t *testing.T) {
	sc := newTestContext(&fakeFetcher{}, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"pong"}`, rec.Body.String())
}

func TestRouter_CompareJSON(t *testing.T) {
	sc := newTestContext(&fakeFetcher{res: cowsAndHeifers()}, newFakeRecorder())

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/compare?seriesA=543&seriesB=531&from=2025-07-16&to=2025-08-16", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body sm.ServiceResponse[sm.ComparisonResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Data)
	assert.Empty(t, body.Error)
	assert.Len(t, body.Data.Rows, 5)
	assert.Equal(t, "2025-07-16", body.Data.Rows[0].Date)
	assert.Equal(t, 1.25, body.Data.Rows[0].Ratio.Float64)
	require.NotNil(t, body.Data.SeriesA)
	assert.Equal(t, int32(543), body.Data.SeriesA.Id)
	require.NotNil(t, body.Data.Statistics)
	assert.Equal(t, 5, body.Data.Statistics.Observations)
}

func TestRouter_CompareByName(t *testing.T) {
	fetcher := &fakeFetcher{res: cowsAndHeifers()}
	sc := newTestContext(fetcher, nil)

	q := url.Values{}
	q.Set("a", "Vacas C. Gtía. Preñez (por bulto)")
	q.Set("b", "Vaquillonas C. Gtía. Preñez (por bulto)")

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/compare?"+q.Encode(), nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []int32{543, 531}, fetcher.ids)
}

func TestRouter_CompareSameSeries(t *testing.T) {
	fetcher := &fakeFetcher{res: cowsAndHeifers()}
	sc := newTestContext(fetcher, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/compare?seriesA=543&seriesB=543", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body sm.ServiceResponse[sm.ComparisonResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, SameSeriesAdvisory, body.Data.Advisory)
	assert.Empty(t, body.Data.Rows)
	assert.Zero(t, fetcher.Calls())
}

func TestRouter_CompareErrors(t *testing.T) {
	remote := &fakeFetcher{err: &c.RemoteError{StatusCode: 500, Status: "500 Internal Server Error"}}

	cases := []struct {
		name    string
		fetcher *fakeFetcher
		query   string
		status  int
	}{
		{"remote failure", remote, "seriesA=543&seriesB=531", http.StatusBadGateway},
		{"bad id", &fakeFetcher{}, "seriesA=abc&seriesB=531", http.StatusBadRequest},
		{"unknown id", &fakeFetcher{}, "seriesA=99999&seriesB=531", http.StatusBadRequest},
		{"unknown name", &fakeFetcher{}, "a=Nada&seriesB=531", http.StatusBadRequest},
		{"bad date", &fakeFetcher{}, "seriesA=543&seriesB=531&from=16/07/2025", http.StatusBadRequest},
		{"reversed dates", &fakeFetcher{}, "seriesA=543&seriesB=531&from=2025-08-16&to=2025-07-16", http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sc := newTestContext(tc.fetcher, nil)

			rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/compare?"+tc.query, nil))
			assert.Equal(t, tc.status, rec.Code)

			var body sm.ServiceResponse[any]
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Nil(t, body.Data)
			assert.True(t, strings.HasPrefix(body.Error, "Error al consultar o procesar datos: "), body.Error)
		})
	}
}

func TestRouter_RegisterSeriesIsPerSession(t *testing.T) {
	sc := newTestContext(&fakeFetcher{}, nil)
	router := sc.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/series", strings.NewReader(`{"id": 99999, "name": "Maíz", "unit": "por kg"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cookie := rec.Result().Cookies()[0]

	req = httptest.NewRequest(http.MethodGet, "/api/series", nil)
	req.AddCookie(cookie)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var body sm.ServiceResponse[[]sm.SeriesPayload]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, *body.Data, 13)
	assert.Equal(t, "Maíz (por kg)", (*body.Data)[12].ColumnName)

	rec = serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/series", nil))
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, *body.Data, 12)
}

func TestRouter_RegisterSeriesRejectsBadUnit(t *testing.T) {
	sc := newTestContext(&fakeFetcher{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/series", strings.NewReader(`{"id": 5, "name": "X", "unit": "por litro"}`))
	rec := serve(t, sc, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Units(t *testing.T) {
	sc := newTestContext(&fakeFetcher{}, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/units", nil))
	assert.JSONEq(t, `{"data":["por kg","por bulto","por unidad"],"error":""}`, rec.Body.String())
}

func TestRouter_Runs(t *testing.T) {
	recorder := newFakeRecorder()
	sc := newTestContext(&fakeFetcher{res: cowsAndHeifers()}, recorder)

	serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/compare?seriesA=543&seriesB=531", nil))

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body sm.ServiceResponse[[]sm.ComparisonRunPayload]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, *body.Data, 1)
	assert.Equal(t, "succeeded", (*body.Data)[0].Status)
	assert.Equal(t, int64(5), (*body.Data)[0].RowCount.Int64)

	rec = serve(t, sc, httptest.NewRequest(http.MethodGet, "/api/runs?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Csv(t *testing.T) {
	sc := newTestContext(&fakeFetcher{res: cowsAndHeifers()}, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/compare/precio_relativo.csv?seriesA=543&seriesB=531", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, `attachment; filename="precio_relativo.csv"`, rec.Header().Get("Content-Disposition"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "date,Vacas C. Gtía. Preñez (por bulto),Vaquillonas C. Gtía. Preñez (por bulto),precio_relativo", lines[0])
	assert.Equal(t, "2025-07-16,1000000,800000,1.25", lines[1])
}

func TestRouter_ChartAdvisory(t *testing.T) {
	sc := newTestContext(&fakeFetcher{res: cowsAndHeifers()}, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/compare/chart.png?seriesA=543&seriesB=543", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_Chart(t *testing.T) {
	sc := newTestContext(&fakeFetcher{res: cowsAndHeifers()}, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/compare/chart.png?seriesA=543&seriesB=531", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}

func TestRouter_Dashboard(t *testing.T) {
	sc := newTestContext(&fakeFetcher{res: cowsAndHeifers()}, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, DashboardTitle)
	assert.Contains(t, body, "Serie A (numerador)")
	assert.Contains(t, body, `value="2025-07-16"`)
	assert.Contains(t, body, "1.2500")
	assert.Contains(t, body, "/compare/precio_relativo.csv?")
}

func TestRouter_DashboardSameSeries(t *testing.T) {
	fetcher := &fakeFetcher{res: cowsAndHeifers()}
	sc := newTestContext(fetcher, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/?seriesA=531&seriesB=531", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Seleccioná dos series distintas para comparar.")
	assert.Zero(t, fetcher.Calls())
}

func TestRouter_DashboardRemoteError(t *testing.T) {
	sc := newTestContext(&fakeFetcher{err: &c.RemoteError{StatusCode: 500, Status: "500 Internal Server Error"}}, nil)

	rec := serve(t, sc, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Error al consultar o procesar datos: ")
}

func TestRouter_DashboardRegisterSeries(t *testing.T) {
	sc := newTestContext(&fakeFetcher{res: cowsAndHeifers()}, nil)

	form := url.Values{"id": {"99999"}, "name": {"Maíz"}, "unit": {"por kg"}}
	req := httptest.NewRequest(http.MethodPost, "/series", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := serve(t, sc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Serie agregada: Maíz (por kg)")
	assert.Contains(t, rec.Body.String(), "<option>Maíz (por kg)</option>")

	form.Set("id", "abc")
	req = httptest.NewRequest(http.MethodPost, "/series", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec = serve(t, sc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ID inválido")
}

func TestRouter_DashboardChartAndCsvShareOneFetch(t *testing.T) {
	fetcher := &fakeFetcher{res: cowsAndHeifers()}
	recorder := newFakeRecorder()
	sc := newTestContext(fetcher, recorder)
	router := sc.Router()

	get := func(target string, cookie *http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, target, nil)
		if cookie != nil {
			req.AddCookie(cookie)
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	page := get("/", nil)
	require.Equal(t, http.StatusOK, page.Code)
	cookie := page.Result().Cookies()[0]

	body := page.Body.String()
	chartUrl := attribute(t, body, `<img src="`)
	csvUrl := attribute(t, body, `<a href="`)

	chart := get(chartUrl, cookie)
	require.Equal(t, http.StatusOK, chart.Code, chart.Body.String())
	assert.Equal(t, "image/png", chart.Header().Get("Content-Type"))

	csv := get(csvUrl, cookie)
	require.Equal(t, http.StatusOK, csv.Code, csv.Body.String())
	assert.Contains(t, csv.Body.String(), "2025-07-16,1000000,800000,1.25")

	assert.Equal(t, 1, fetcher.Calls())
	runs, err := recorder.GetRecentComparisonRuns(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)

	// another browser has nothing remembered
	get(csvUrl, nil)
	assert.Equal(t, 2, fetcher.Calls())
}

// attribute returns the html-unescaped value following prefix in body.
func attribute(t *testing.T, body, prefix string) string {
	t.Helper()
	start := strings.Index(body, prefix)
	require.NotEqual(t, -1, start, "missing %s", prefix)
	rest := body[start+len(prefix):]
	end := strings.Index(rest, `"`)
	require.NotEqual(t, -1, end)
	return html.UnescapeString(rest[:end])
}

func TestGetHttpServer_WriteTimeoutOutlastsRemote(t *testing.T) {
	sc := newTestContext(&fakeFetcher{}, nil)

	srv := GetHttpServer(sc)
	assert.Equal(t, DefaultAddr, srv.Addr)
	assert.Equal(t, 45*time.Second, srv.WriteTimeout)

	sc.RemoteTimeout = 2 * time.Minute
	assert.Equal(t, 2*time.Minute+15*time.Second, GetHttpServer(sc).WriteTimeout)
}
