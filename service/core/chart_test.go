package core

import (
	"bytes"
	"testing"

	"github.com/guregu/null/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderRatioChart(t *testing.T) {
	rs := ratioSeriesOf(null.FloatFrom(1.25), null.FloatFrom(1.2625), null.Float{}, null.FloatFrom(1.2))

	var buf bytes.Buffer
	require.NoError(t, RenderRatioChart(&buf, rs))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderRatioChart_SinglePoint(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderRatioChart(&buf, ratioSeriesOf(null.FloatFrom(1))))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestRenderRatioChart_NothingDefined(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, RenderRatioChart(&buf, ratioSeriesOf(null.Float{})))
	assert.Zero(t, buf.Len())
}

func TestRatioRange_IncludesParity(t *testing.T) {
	r := ratioRange([]float64{2, 3})
	assert.Less(t, r.Min, 1.0)
	assert.Greater(t, r.Max, 3.0)

	r = ratioRange([]float64{1})
	assert.Less(t, r.Min, 1.0)
	assert.Greater(t, r.Max, 1.0)
}
