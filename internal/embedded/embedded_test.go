package embedded

import (
	"strings"
	"testing"

	"github.com/antchfx/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const variationPage = `<html><head><script type="text/javascript">
P.when('twister').execute(function() {
  var dataToReturn = {
    'currentAsin': 'B0TESTASIN',
    'landingAsin': 'B0TESTASIN',
    'parentAsin': 'B0PARENT01',
    dimensionToAsinMap: {"0": "B0TESTASIN", "1": "B0SIBLING1",},
    'variationValues': {'size_name': ['1TB', '2TB']},
    'num_total_variations': 2,
    'dimensionValuesDisplayData': {'B0TESTASIN': ['1TB'], 'B0SIBLING1': ['2TB']},
    'variationDisplayLabels': {'size_name': 'Capacity'},
    'selectedVariationValues': undefined,
    'showFancySwatch': false
  };
  return dataToReturn;
});
</script></head><body></body></html>`

func TestExtractVariationData(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(variationPage))
	require.NoError(t, err)

	data, err := Extract(doc)
	require.NoError(t, err)

	assert.Equal(t, "B0PARENT01", data.GroupID("B0TESTASIN"))

	current, ok := data.Value("currentAsin")
	require.True(t, ok)
	assert.Equal(t, "B0TESTASIN", current)

	total, ok := data.Value("num_total_variations")
	require.True(t, ok)
	assert.Equal(t, float64(2), total)

	// keys outside the allow list are dropped
	_, ok = data.Value("showFancySwatch")
	assert.False(t, ok)
	_, ok = data.Value("selectedVariationValues")
	assert.False(t, ok)
}

func TestExtractMissingBlob(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(`<html><body><p>no scripts here</p></body></html>`))
	require.NoError(t, err)

	_, err = Extract(doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExtractUnparsableBlob(t *testing.T) {
	page := `<html><head><script>var dataToReturn = {currentAsin: getAsin()};</script></head></html>`
	doc, err := htmlquery.Parse(strings.NewReader(page))
	require.NoError(t, err)

	_, err = Extract(doc)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestGroupIDWithoutParent(t *testing.T) {
	page := `<html><head><script>var dataToReturn = {"currentAsin": "B0SOLOITEM"};</script></head></html>`
	doc, err := htmlquery.Parse(strings.NewReader(page))
	require.NoError(t, err)

	data, err := Extract(doc)
	require.NoError(t, err)
	assert.Equal(t, "B0SOLOITEM", data.GroupID("B0SOLOITEM"))
}

func TestMergeInto(t *testing.T) {
	doc, err := htmlquery.Parse(strings.NewReader(variationPage))
	require.NoError(t, err)
	data, err := Extract(doc)
	require.NoError(t, err)

	info := map[string]string{"brand": "Samsung"}
	data.MergeInto(info)

	assert.Equal(t, "Samsung", info["brand"])
	assert.Equal(t, "B0PARENT01", info["parentAsin"])
	assert.Equal(t, "2", info["num_total_variations"])
	assert.JSONEq(t, `{"size_name":["1TB","2TB"]}`, info["variationValues"])
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    any
		wantErr bool
	}{
		{name: "double quoted", src: `{"a": "b"}`, want: map[string]any{"a": "b"}},
		{name: "single quoted", src: `{'a': 'it\'s'}`, want: map[string]any{"a": "it's"}},
		{name: "bare keys", src: `{a: 1, b_2: true}`, want: map[string]any{"a": float64(1), "b_2": true}},
		{name: "trailing comma", src: `{"a": [1, 2,],}`, want: map[string]any{"a": []any{float64(1), float64(2)}}},
		{name: "undefined becomes nil", src: `{"a": undefined}`, want: map[string]any{"a": nil}},
		{name: "nested", src: `{"a": {"b": {"c": null}}}`, want: map[string]any{"a": map[string]any{"b": map[string]any{"c": nil}}}},
		{name: "unicode escape", src: `{"a": "é"}`, want: map[string]any{"a": "é"}},
		{name: "negative float", src: `{"a": -1.5e2}`, want: map[string]any{"a": -150.0}},
		{name: "function call rejected", src: `{"a": doThing()}`, wantErr: true},
		{name: "unterminated object", src: `{"a": 1`, wantErr: true},
		{name: "trailing garbage", src: `{"a": 1}; alert(1)`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLiteral(tt.src)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
