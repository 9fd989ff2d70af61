package api

import (
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/config"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/frames"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scoresCSV = `Frames,class_str_top1,Top1_score,class_str_label,A,B,C,D,E
f0.jpg,C,0.82,C,0.05,0.03,0.82,0.06,0.04
f1.jpg,A,0.4,E,0.4,0.1,0.2,0.1,0.2
`

const predictionsCSV = `Frames,class_str_top1,Top1_score
f0.jpg,smash,0.9
f1.jpg,clear,0.7
f2.jpg,smash,0.6
`

type fakeSource struct {
	names    []string
	captions []string
}

func (f *fakeSource) Frame(index int, name string) (string, []byte, error) {
	f.names = append(f.names, name)
	return "image/jpeg", []byte("jpeg:" + name), nil
}

func (f *fakeSource) CaptionedFrame(index int, name, caption string) (string, []byte, error) {
	f.captions = append(f.captions, caption)
	return f.Frame(index, name)
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeSource) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	scores := filepath.Join(dir, "scores.csv")
	preds := filepath.Join(dir, "preds.csv")
	require.NoError(t, os.WriteFile(scores, []byte(scoresCSV), 0644))
	require.NoError(t, os.WriteFile(preds, []byte(predictionsCSV), 0644))

	yaml := fmt.Sprintf(`
playback:
  interval-ms: 500
classes:
  - {id: A, label: Alpha}
  - {id: B, label: Bravo}
  - {id: C, label: Charlie}
  - {id: D, label: Delta}
  - {id: E, label: Echo}
datasets:
  - name: scores
    title: "Scores match"
    csv: %q
    fixed-catalog: true
    columns:
      label: class_str_label
  - name: preds
    csv: %q
    layout: two-row
`, scores, preds)

	cfg, err := config.Read(strings.NewReader(yaml))
	require.NoError(t, err)
	srcs, err := cfg.Sources()
	require.NoError(t, err)
	library, err := projector.NewLibrary(srcs)
	require.NoError(t, err)

	fake := &fakeSource{}
	return SetRouter(cfg, library, map[string]frames.Source{"scores": fake}), fake
}

func get(r *gin.Engine, url string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"datasets":2`)
}

func TestListDatasets(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/api/datasets")
	require.Equal(t, http.StatusOK, w.Code)

	var infos []datasetInfo
	decode(t, w, &infos)
	require.Len(t, infos, 2)

	assert.Equal(t, "scores", infos[0].Name)
	assert.Equal(t, "Scores match", infos[0].Title)
	assert.Equal(t, 2, infos[0].Frames)
	assert.Equal(t, 3, infos[0].Rows)
	assert.Equal(t, 3, infos[0].Cols)
	assert.Equal(t, 4, infos[0].Padding)
	assert.True(t, infos[0].HasGroundTruth)
	assert.True(t, infos[0].HasScores)
	assert.True(t, infos[0].HasImages)
	assert.Equal(t, 500, infos[0].Playback.IntervalMS)

	assert.Equal(t, "preds", infos[1].Name)
	assert.Equal(t, "preds", infos[1].Title)
	assert.Equal(t, 2, infos[1].Rows)
	assert.Equal(t, 2, infos[1].Cols)
	assert.False(t, infos[1].HasGroundTruth)
	assert.False(t, infos[1].HasScores)
	assert.False(t, infos[1].HasImages)
	assert.Equal(t, []projector.Class{{ID: "smash", Label: "smash"}, {ID: "clear", Label: "clear"}}, infos[1].Classes)
}

func TestGetDataset(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/api/datasets/scores")
	require.Equal(t, http.StatusOK, w.Code)
	var info datasetInfo
	decode(t, w, &info)
	assert.Equal(t, "Alpha", info.Classes[0].Label)

	w = get(r, "/api/datasets/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_ARGUMENT")
}

func TestHeatmap(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/api/datasets/scores/heatmap?frame=0")
	require.Equal(t, http.StatusOK, w.Code)

	var hm projector.Heatmap
	decode(t, w, &hm)
	assert.Equal(t, projector.FieldPrediction, hm.Field)
	assert.Equal(t, 0.82, hm.Z[2][2])
	assert.Equal(t, "82.00% confidence", hm.HoverText[2][2])
	assert.Equal(t, projector.PredictionColor, hm.Colorscale[1].Color)

	w = get(r, "/api/datasets/scores/heatmap?frame=1&field=ground_truth")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &hm)
	//E is the fifth class, second slot of the middle row
	assert.Equal(t, 1.0, hm.Z[1][1])
	assert.Equal(t, projector.GroundTruthColor, hm.Colorscale[1].Color)
}

func TestHeatmapErrorsCarryNeutralProjection(t *testing.T) {
	r, _ := newTestRouter(t)

	tests := []struct {
		name   string
		url    string
		status int
		code   string
	}{
		{"frame out of range", "/api/datasets/scores/heatmap?frame=7", http.StatusNotFound, "INVALID_ARGUMENT"},
		{"negative frame", "/api/datasets/scores/heatmap?frame=-1", http.StatusNotFound, "INVALID_ARGUMENT"},
		{"no ground truth", "/api/datasets/preds/heatmap?field=ground_truth", http.StatusUnprocessableEntity, "FAILED_PRECONDITION"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := get(r, tt.url)
			assert.Equal(t, tt.status, w.Code)

			var body struct {
				Error   string             `json:"error"`
				Code    string             `json:"code"`
				Heatmap *projector.Heatmap `json:"heatmap"`
			}
			decode(t, w, &body)
			assert.Equal(t, tt.code, body.Code)
			assert.NotEmpty(t, body.Error)
			require.NotNil(t, body.Heatmap)
			assert.Equal(t, []string{"#3c3636"}, body.Heatmap.FontColors)
			for _, row := range body.Heatmap.Z {
				for _, v := range row {
					assert.Zero(t, v)
				}
			}
		})
	}
}

func TestBadParameters(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, url := range []string{
		"/api/datasets/scores/heatmap?frame=abc",
		"/api/datasets/scores/bar?frame=1.5",
		"/api/datasets/scores/frames/x",
	} {
		w := get(r, url)
		assert.Equal(t, http.StatusNotAcceptable, w.Code, url)
	}

	w := get(r, "/api/datasets/scores/heatmap?field=bogus")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestBar(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/api/datasets/scores/bar?frame=1")
	require.Equal(t, http.StatusOK, w.Code)

	var bar projector.Bar
	decode(t, w, &bar)
	assert.Equal(t, []string{"Alpha", "Bravo", "Charlie", "Delta", "Echo"}, bar.Labels)
	assert.Equal(t, []float64{0.4, 0.1, 0.2, 0.1, 0.2}, bar.Values)
	assert.Equal(t, "40% confidence", bar.HoverText[0])
}

func TestBarMissingScoreColumns(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/api/datasets/preds/bar?frame=0")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var body struct {
		Code string         `json:"code"`
		Bar  *projector.Bar `json:"bar"`
	}
	decode(t, w, &body)
	assert.Equal(t, "FAILED_PRECONDITION", body.Code)
	require.NotNil(t, body.Bar)
	assert.Equal(t, []float64{0, 0}, body.Bar.Values)
}

func TestPNGs(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, url := range []string{
		"/api/datasets/scores/heatmap.png?frame=0",
		"/api/datasets/scores/bar.png?frame=0",
	} {
		w := get(r, url)
		require.Equal(t, http.StatusOK, w.Code, url)
		assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
		_, err := png.Decode(w.Body)
		assert.NoError(t, err, url)
	}

	w := get(r, "/api/datasets/preds/bar.png")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestFrames(t *testing.T) {
	r, fake := newTestRouter(t)

	w := get(r, "/api/datasets/scores/frames/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/jpeg", w.Header().Get("Content-Type"))
	assert.Equal(t, "jpeg:f1.jpg", w.Body.String())
	assert.Equal(t, []string{"f1.jpg"}, fake.names)

	w = get(r, "/api/datasets/scores/frames/0?caption=true")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Charlie: 82.00%"}, fake.captions)

	w = get(r, "/api/datasets/scores/frames/9")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = get(r, "/api/datasets/preds/frames/0")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestView(t *testing.T) {
	r, _ := newTestRouter(t)

	w := get(r, "/view/scores?frame=0")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Scores match")
	assert.Contains(t, w.Body.String(), "Confidence Level of Action Segmentation")

	//no per class scores, the page only carries the heatmap
	w = get(r, "/view/preds")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "Confidence Level of Action Segmentation")

	w = get(r, "/view/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
