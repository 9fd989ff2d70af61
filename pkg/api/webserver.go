package api

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"path"
	"strconv"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/config"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/frames"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/render"
	"github.com/gin-gonic/gin"
	"gonum.org/v1/plot/vg"
)

const (
	pngWidth  = 6 * vg.Inch
	pngHeight = 4 * vg.Inch
)

//datasetInfo is what the client needs to build its dataset picker, slider and grid
type datasetInfo struct {
	Name           string                `json:"name"`
	Title          string                `json:"title"`
	Frames         int                   `json:"frames"`
	Classes        []projector.Class     `json:"classes"`
	Rows           int                   `json:"rows"`
	Cols           int                   `json:"cols"`
	Padding        int                   `json:"padding"`
	HasGroundTruth bool                  `json:"has_ground_truth"`
	HasScores      bool                  `json:"has_scores"`
	HasImages      bool                  `json:"has_images"`
	Playback       config.PlaybackConfig `json:"playback"`
}

//SetRouter wires the explorer routes. Every handler only reads library, which is never modified after startup.
//sources maps a dataset name to its frame images, datasets without an entry have no image view.
func SetRouter(cfg *config.Config, library *projector.Library, sources map[string]frames.Source) *gin.Engine {
	r := gin.Default()

	//serve html pages to client
	if static := cfg.Frontend.StaticFilesPath; static != "" {
		r.Static("/client", static)
		r.StaticFile("/", path.Join(static, "index.html"))
	}

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok", "datasets": library.Len()})
	})

	info := func(ds *projector.Dataset) datasetInfo {
		title := ds.Name()
		if dc, ok := cfg.Dataset(ds.Name()); ok && dc.Title != "" {
			title = dc.Title
		}
		grid := ds.Grid()
		return datasetInfo{
			Name:           ds.Name(),
			Title:          title,
			Frames:         ds.Len(),
			Classes:        ds.Catalog().Classes(),
			Rows:           grid.Rows,
			Cols:           grid.Cols,
			Padding:        grid.Padding,
			HasGroundTruth: ds.HasGroundTruth(),
			HasScores:      ds.HasScores(),
			HasImages:      sources[ds.Name()] != nil,
			Playback:       cfg.Playback,
		}
	}

	apiRoutes := r.Group("/api")

	apiRoutes.GET("/datasets", func(ctx *gin.Context) {
		infos := make([]datasetInfo, 0, library.Len())
		for _, name := range library.Names() {
			ds, _ := library.Get(name)
			infos = append(infos, info(ds))
		}
		ctx.JSON(http.StatusOK, infos)
	})

	dsRoutes := apiRoutes.Group("/datasets/:name")

	dsRoutes.GET("", func(ctx *gin.Context) {
		ds, err := lookup(library, ctx)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}
		ctx.JSON(http.StatusOK, info(ds))
	})

	dsRoutes.GET("/heatmap", func(ctx *gin.Context) {
		ds, frame, field, err := heatmapParams(library, ctx)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		hm, err := ds.ProjectHeatmap(frame, field)
		if err != nil {
			writeError(ctx, err, gin.H{"heatmap": ds.NeutralHeatmap(frame, field)})
			return
		}
		ctx.JSON(http.StatusOK, hm)
	})

	dsRoutes.GET("/bar", func(ctx *gin.Context) {
		ds, err := lookup(library, ctx)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}
		frame, err := frameParam(ctx.Query("frame"))
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		bar, err := ds.ProjectBar(frame)
		if err != nil {
			writeError(ctx, err, gin.H{"bar": ds.NeutralBar(frame)})
			return
		}
		ctx.JSON(http.StatusOK, bar)
	})

	dsRoutes.GET("/heatmap.png", func(ctx *gin.Context) {
		ds, frame, field, err := heatmapParams(library, ctx)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		hm, err := ds.ProjectHeatmap(frame, field)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		var buf bytes.Buffer
		if err := render.HeatmapPNG(&buf, info(ds).Title, hm, pngWidth, pngHeight); err != nil {
			writeError(ctx, err, nil)
			return
		}
		ctx.Data(http.StatusOK, "image/png", buf.Bytes())
	})

	dsRoutes.GET("/bar.png", func(ctx *gin.Context) {
		ds, err := lookup(library, ctx)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}
		frame, err := frameParam(ctx.Query("frame"))
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		bar, err := ds.ProjectBar(frame)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		var buf bytes.Buffer
		if err := render.BarPNG(&buf, "Confidence Level of Action Segmentation", bar, pngWidth, pngHeight); err != nil {
			writeError(ctx, err, nil)
			return
		}
		ctx.Data(http.StatusOK, "image/png", buf.Bytes())
	})

	dsRoutes.GET("/frames/:frame", func(ctx *gin.Context) {
		ds, err := lookup(library, ctx)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}
		frame, err := frameParam(ctx.Param("frame"))
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		src := sources[ds.Name()]
		if src == nil {
			writeError(ctx, fmt.Errorf("%w: '%s'", errNoFrameSource, ds.Name()), nil)
			return
		}

		rec, err := ds.Record(frame)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		var contentType string
		var data []byte
		if captioner, ok := src.(frames.Captioner); ok && ctx.Query("caption") == "true" {
			contentType, data, err = captioner.CaptionedFrame(frame, rec.Frame, frameCaption(ds, rec))
		} else {
			contentType, data, err = src.Frame(frame, rec.Frame)
		}
		if err != nil {
			writeError(ctx, err, nil)
			return
		}
		ctx.Data(http.StatusOK, contentType, data)
	})

	r.GET("/view/:name", func(ctx *gin.Context) {
		ds, frame, field, err := heatmapParams(library, ctx)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		hm, err := ds.ProjectHeatmap(frame, field)
		if err != nil {
			writeError(ctx, err, nil)
			return
		}

		//the page still shows the heatmap when the dataset has no per class scores
		bar, err := ds.ProjectBar(frame)
		if err != nil {
			log.Printf("api/view: No bar chart for '%s' frame %d, got '%v'", ds.Name(), frame, err)
			bar = nil
		}

		var buf bytes.Buffer
		if err := render.WritePage(&buf, info(ds).Title, hm, bar); err != nil {
			writeError(ctx, err, nil)
			return
		}
		ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
	})

	return r
}

//frameCaption reads like "Smash: 82.00%", the top-1 class and its confidence
func frameCaption(ds *projector.Dataset, rec projector.FrameRecord) string {
	label := rec.Top1
	if i, ok := ds.Catalog().Index(rec.Top1); ok {
		label = ds.Catalog().Classes()[i].Label
	}
	return fmt.Sprintf("%s: %.2f%%", label, rec.Top1Score*100)
}

func lookup(library *projector.Library, ctx *gin.Context) (*projector.Dataset, error) {
	name := ctx.Param("name")
	ds, ok := library.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", errUnknownDataset, name)
	}
	return ds, nil
}

//frameParam reads a frame index, a missing value is frame 0
func frameParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	frame, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: frame '%s' is not an integer", errBadParameter, raw)
	}
	return frame, nil
}

func heatmapParams(library *projector.Library, ctx *gin.Context) (*projector.Dataset, int, projector.Field, error) {
	ds, err := lookup(library, ctx)
	if err != nil {
		return nil, 0, "", err
	}
	frame, err := frameParam(ctx.Query("frame"))
	if err != nil {
		return nil, 0, "", err
	}
	field, err := projector.ParseField(ctx.Query("field"))
	if err != nil {
		return nil, 0, "", err
	}
	return ds, frame, field, nil
}
