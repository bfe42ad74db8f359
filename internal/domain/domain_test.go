package domain

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePointer(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Coordinate
		wantErr  bool
	}{
		{name: "positive", input: "10,20", expected: Coordinate{X: 10, Y: 20}},
		{name: "negative", input: "-175,-3", expected: Coordinate{X: -175, Y: -3}},
		{name: "spaces are trimmed", input: " 1 , 2 ", expected: Coordinate{X: 1, Y: 2}},
		{name: "no separator", input: "12", wantErr: true},
		{name: "non numeric", input: "a,b", wantErr: true},
		{name: "float", input: "1.5,2", wantErr: true},
		{name: "three parts", input: "1,2,3", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParsePointer(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, c)
			assert.Equal(t, tt.expected, mustParse(t, c.Pointer()))
		})
	}
}

func mustParse(t *testing.T, p string) Coordinate {
	c, err := ParsePointer(p)
	require.NoError(t, err)
	return c
}

func TestGridBounds_IndexRoundTrip(t *testing.T) {
	b := GridBounds{Min: -2, Max: 3}
	assert.Equal(t, 6, b.Side())
	assert.Equal(t, 36, b.Size())

	seen := make(map[int]bool)
	for x := b.Min; x <= b.Max; x++ {
		for y := b.Min; y <= b.Max; y++ {
			c := Coordinate{X: x, Y: y}
			i := b.Index(c)
			assert.False(t, seen[i], "index %d reused", i)
			seen[i] = true
			assert.Equal(t, c, b.At(i))
		}
	}
	assert.Len(t, seen, b.Size())

	assert.False(t, b.Contains(Coordinate{X: 4, Y: 0}))
	assert.False(t, b.Contains(Coordinate{X: 0, Y: -3}))
	assert.NoError(t, b.Validate())
	assert.Error(t, GridBounds{Min: 1, Max: 0}.Validate())
}

func TestRegion_Pointers(t *testing.T) {
	r := Region{StartX: 0, EndX: 1, StartY: 5, EndY: 6}
	assert.Equal(t, []string{"0,5", "0,6", "1,5", "1,6"}, r.Pointers())
	assert.Equal(t, 4, r.Size())
}

func TestCompressedLand_JSON(t *testing.T) {
	t.Run("four elements without report", func(t *testing.T) {
		data, err := json.Marshal(CompressedLand{X: -1, Y: 2, SceneID: "bafy", Optimized: true})
		require.NoError(t, err)
		assert.JSONEq(t, `[-1,2,"bafy",1]`, string(data))
	})

	t.Run("five elements with report", func(t *testing.T) {
		data, err := json.Marshal(CompressedLand{X: 3, Y: 4, SceneID: "s", HasReport: true, ReportSuccess: false})
		require.NoError(t, err)
		assert.JSONEq(t, `[3,4,"s",0,0]`, string(data))
	})

	t.Run("decode", func(t *testing.T) {
		var lands []CompressedLand
		require.NoError(t, json.Unmarshal([]byte(`[[1,2,"a",0],[3,4,"b",1,1]]`), &lands))
		require.Len(t, lands, 2)
		assert.Equal(t, CompressedLand{X: 1, Y: 2, SceneID: "a"}, lands[0])
		assert.Equal(t, CompressedLand{X: 3, Y: 4, SceneID: "b", Optimized: true, HasReport: true, ReportSuccess: true}, lands[1])
	})

	t.Run("wrong arity", func(t *testing.T) {
		var land CompressedLand
		assert.Error(t, json.Unmarshal([]byte(`[1,2,"a"]`), &land))
	})
}

func TestCompressedWorld_JSON(t *testing.T) {
	w := CompressedWorld{Name: "hello.dcl.eth", SceneID: "bafy", Title: "Hello", Thumbnail: "t.png", Parcels: 4, Optimized: true}
	data, err := json.Marshal(w)
	require.NoError(t, err)
	assert.JSONEq(t, `["hello.dcl.eth","bafy","Hello","t.png",4,1]`, string(data))

	var decoded CompressedWorld
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, w, decoded)
}

func TestRunningAverage(t *testing.T) {
	assert.Equal(t, int64(500), RunningAverage(0, 0, 500))
	assert.Equal(t, int64(150), RunningAverage(100, 1, 200))
	// (100*2 + 101) / 3 = 100.33
	assert.Equal(t, int64(100), RunningAverage(100, 2, 101))
	// (10*1 + 11) / 2 = 10.5
	assert.Equal(t, int64(11), RunningAverage(10, 1, 11))
}

func TestScene_Clone(t *testing.T) {
	s := Scene{
		ID:       "a",
		Pointers: []string{"0,0"},
		OptimizationReport: &OptimizationReport{
			SceneID: "a",
			Details: map[string]any{"k": 1},
		},
	}
	c := s.Clone()
	c.Pointers[0] = "9,9"
	c.OptimizationReport.Details["k"] = 2

	assert.Equal(t, "0,0", s.Pointers[0])
	assert.Equal(t, 1, s.OptimizationReport.Details["k"])
}
