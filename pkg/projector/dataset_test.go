package projector

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const predictionsCSV = `,Frames,class_str_top1,Top1_score,class_str_label
0,frame_0000.jpg,smash,0.82,smash
1,frame_0001.jpg,smash,0.64,clear
2,frame_0002.jpg,drop,0.51,drop
3,frame_0003.jpg,clear,0.99,clear
4,frame_0004.jpg,smash,0.70,smash
`

const scoresCSV = `Frames,A,B,C,D
f0.jpg,0.1,0.2,0.3,0.4
f1.jpg,0.7,0.1,0.1,0.1
f2.jpg,0.25,0.25,0.25,0.25
`

func fixedClasses(ids ...string) []Class {
	classes := make([]Class, len(ids))
	for i, id := range ids {
		classes[i] = Class{ID: id, Label: "Class " + id}
	}
	return classes
}

func TestReadInfersCatalog(t *testing.T) {
	ds, err := Read(strings.NewReader(predictionsCSV), Options{
		Name:    "match_7",
		Columns: Columns{Label: "class_str_label"},
		Labels:  map[string]string{"smash": "Smash"},
	})
	require.NoError(t, err)

	assert.Equal(t, "match_7", ds.Name())
	assert.Equal(t, 5, ds.Len())
	assert.Equal(t, []string{"smash", "drop", "clear"}, ds.Catalog().IDs())
	assert.Equal(t, []string{"Smash", "drop", "clear"}, ds.Catalog().Labels())
	assert.True(t, ds.HasFrameNames())
	assert.True(t, ds.HasGroundTruth())
	assert.False(t, ds.HasScores())

	grid := ds.Grid()
	assert.Equal(t, 2, grid.Rows)
	assert.Equal(t, 1, grid.Padding)

	rec, err := ds.Record(1)
	require.NoError(t, err)
	assert.Equal(t, FrameRecord{Frame: "frame_0001.jpg", Top1: "smash", Top1Score: 0.64, Label: "clear"}, rec)
}

func TestReadOriginalColumnNames(t *testing.T) {
	src := "Frames,class_str_pred,Scores\nf0.jpg,clear,0.5\nf1.jpg,smash,0.25\nf2.jpg,smash,1\n"
	ds, err := Read(strings.NewReader(src), Options{
		Columns: Columns{Top1: "class_str_pred", Top1Score: "Scores"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"smash", "clear"}, ds.Catalog().IDs())
	assert.False(t, ds.HasGroundTruth())

	rec, err := ds.Record(2)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rec.Top1Score)
}

func TestReadPerClassScoresDerivesTop1(t *testing.T) {
	ds, err := Read(strings.NewReader(scoresCSV), Options{Classes: fixedClasses("A", "B", "C", "D")})
	require.NoError(t, err)
	assert.True(t, ds.HasScores())

	rec, err := ds.Record(0)
	require.NoError(t, err)
	assert.Equal(t, "D", rec.Top1)
	assert.Equal(t, 0.4, rec.Top1Score)
	assert.Equal(t, []float64{0.1, 0.2, 0.3, 0.4}, rec.Scores)

	//ties go to the first class
	rec, err = ds.Record(2)
	require.NoError(t, err)
	assert.Equal(t, "A", rec.Top1)
}

func TestReadTop1WithoutScoreColumnUsesClassScore(t *testing.T) {
	src := "class_str_top1,A,B\nB,0.3,0.7\nZ,0.5,0.5\n"
	ds, err := Read(strings.NewReader(src), Options{Classes: fixedClasses("A", "B")})
	require.NoError(t, err)

	rec, err := ds.Record(0)
	require.NoError(t, err)
	assert.Equal(t, 0.7, rec.Top1Score)

	rec, err = ds.Record(1)
	require.NoError(t, err)
	assert.Equal(t, "Z", rec.Top1)
	assert.Equal(t, 0.0, rec.Top1Score)
}

func TestReadRecordIsACopy(t *testing.T) {
	ds, err := Read(strings.NewReader(scoresCSV), Options{Classes: fixedClasses("A", "B", "C", "D")})
	require.NoError(t, err)

	rec, err := ds.Record(0)
	require.NoError(t, err)
	rec.Scores[0] = 1

	again, err := ds.Record(0)
	require.NoError(t, err)
	assert.Equal(t, 0.1, again.Scores[0])
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		opts    Options
		wantErr error
	}{
		{
			name:    "empty source",
			src:     "",
			wantErr: ErrDataLoad,
		},
		{
			name:    "missing top-1 column",
			src:     "Frames,Top1_score\nf0,0.5\n",
			wantErr: ErrDataLoad,
		},
		{
			name:    "missing top-1 score column",
			src:     "Frames,class_str_top1\nf0,smash\n",
			wantErr: ErrDataLoad,
		},
		{
			name:    "missing ground truth column",
			src:     "class_str_top1,Top1_score\nsmash,0.5\n",
			opts:    Options{Columns: Columns{Label: "class_str_label"}},
			wantErr: ErrDataLoad,
		},
		{
			name:    "fixed catalog without top-1 nor class columns",
			src:     "Frames,A\nf0,0.5\n",
			opts:    Options{Classes: fixedClasses("A", "B")},
			wantErr: ErrDataLoad,
		},
		{
			name:    "duplicate fixed class",
			src:     "class_str_top1,Top1_score\nA,0.5\n",
			opts:    Options{Classes: fixedClasses("A", "A")},
			wantErr: ErrDataLoad,
		},
		{
			name:    "ragged rows",
			src:     "class_str_top1,Top1_score\nA,0.5,extra\n",
			wantErr: ErrDataLoad,
		},
		{
			name:    "score above one",
			src:     "class_str_top1,Top1_score\nA,1.5\n",
			wantErr: ErrSchema,
		},
		{
			name:    "negative score",
			src:     "class_str_top1,Top1_score\nA,-0.1\n",
			wantErr: ErrSchema,
		},
		{
			name:    "nan score",
			src:     "class_str_top1,Top1_score\nA,NaN\n",
			wantErr: ErrSchema,
		},
		{
			name:    "not a number",
			src:     "class_str_top1,Top1_score\nA,high\n",
			wantErr: ErrSchema,
		},
		{
			name:    "per class score out of range",
			src:     "A,B\n0.5,2\n",
			opts:    Options{Classes: fixedClasses("A", "B")},
			wantErr: ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Read(strings.NewReader(tt.src), tt.opts)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, ds)
		})
	}
}

func TestReadEmptyScoreCellIsZero(t *testing.T) {
	ds, err := Read(strings.NewReader("class_str_top1,Top1_score\n,\nA,0.5\n"), Options{})
	require.NoError(t, err)

	rec, err := ds.Record(0)
	require.NoError(t, err)
	assert.Equal(t, "", rec.Top1)
	assert.Equal(t, 0.0, rec.Top1Score)
	assert.Equal(t, []string{"A"}, ds.Catalog().IDs())
}

func TestReadStripsHeaderBOM(t *testing.T) {
	ds, err := Read(strings.NewReader("\ufeffclass_str_top1,Top1_score\nA,0.5\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "match_7.csv")
	require.NoError(t, os.WriteFile(path, []byte(predictionsCSV), 0o644))

	ds, err := Load(path, Options{Layout: TwoRowPolicy})
	require.NoError(t, err)
	assert.Equal(t, path, ds.Name())
	assert.Equal(t, 2, ds.Grid().Rows)
	assert.Equal(t, 2, ds.Grid().Cols)

	_, err = Load(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	assert.ErrorIs(t, err, ErrDataLoad)
}

func TestRecordOutOfRange(t *testing.T) {
	ds, err := Read(strings.NewReader(predictionsCSV), Options{})
	require.NoError(t, err)

	_, err = ds.Record(5)
	assert.ErrorIs(t, err, ErrFrameIndexOutOfRange)
	_, err = ds.Record(-1)
	assert.ErrorIs(t, err, ErrFrameIndexOutOfRange)
}
