package main

import (
	"fmt"
	"log"

	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/api"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/config"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/frames"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/projector"
	"github.com/chenBenjamin97/action-segmentation-explorer/pkg/video"
	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Load every configured dataset and serve the explorer over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			library, err := loadLibrary(cfg)
			if err != nil {
				return err
			}

			r := api.SetRouter(cfg, library, frameSources(cfg))
			log.Printf("serve: %d datasets loaded, listening on port %s", library.Len(), cfg.HTTP.Port)
			return r.Run(":" + cfg.HTTP.Port)
		},
	}
}

//loadLibrary loads the datasets named by cfg, or only the given ones when names is not empty
func loadLibrary(cfg *config.Config, names ...string) (*projector.Library, error) {
	sources, err := cfg.Sources()
	if err != nil {
		return nil, err
	}

	if len(names) > 0 {
		picked := make([]projector.Source, 0, len(names))
		for _, name := range names {
			found := false
			for _, src := range sources {
				if src.Name == name {
					picked = append(picked, src)
					found = true
				}
			}
			if !found {
				return nil, fmt.Errorf("loadLibrary: no dataset named '%s' in config", name)
			}
		}
		sources = picked
	}

	return projector.NewLibrary(sources)
}

//frameSources picks a frame source per dataset. A video wins over an image directory.
func frameSources(cfg *config.Config) map[string]frames.Source {
	sources := make(map[string]frames.Source, len(cfg.Datasets))
	for _, ds := range cfg.Datasets {
		switch {
		case ds.Video != "":
			player := video.NewPlayer(ds.Video)
			if fps, err := player.FrameRate(); err != nil {
				log.Printf("serve: '%s' video is not readable yet, got '%v'", ds.Name, err)
			} else if fps > 0 && fps != cfg.Playback.FrameRate {
				log.Printf("serve: '%s' video runs at %.2f fps, playback is configured for %.2f", ds.Name, fps, cfg.Playback.FrameRate)
			}
			sources[ds.Name] = player
		case ds.Images != "":
			sources[ds.Name] = frames.NewImageDir(ds.Images)
		}
	}
	return sources
}
