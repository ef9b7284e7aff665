package dashboard

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/foodmap/internal/domain/hover"
	"github.com/kailas-cloud/foodmap/internal/metrics"
)

// Options configure the rendered artifacts.
type Options struct {
	Map          MapOptions
	PreviewTitle string
	PreviewSize  PreviewSize
}

// Dashboard holds the pre-rendered figure and preview for one dataset and
// answers hover callbacks. Safe for concurrent use; nothing changes after New.
type Dashboard struct {
	figure     Figure
	figureJSON []byte
	previewPNG []byte
	logger     *zap.Logger
}

// New renders the figure and preview once.
func New(ds Dataset, opts Options, logger *zap.Logger) (*Dashboard, error) {
	fig := BuildFigure(ds, opts.Map)
	figJSON, err := json.Marshal(fig)
	if err != nil {
		return nil, fmt.Errorf("marshal figure: %w", err)
	}

	size := opts.PreviewSize
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultPreviewSize
	}
	png, err := RenderPreview(ds, opts.PreviewTitle, size)
	if err != nil {
		return nil, err
	}

	logger.Info("Dashboard rendered",
		zap.Int("traces", len(fig.Data)),
		zap.Int("figure_bytes", len(figJSON)),
		zap.Int("preview_bytes", len(png)),
	)

	return &Dashboard{
		figure:     fig,
		figureJSON: figJSON,
		previewPNG: png,
		logger:     logger,
	}, nil
}

// Figure returns the figure document.
func (d *Dashboard) Figure() Figure { return d.figure }

// FigureJSON returns the encoded figure. Callers must not modify it.
func (d *Dashboard) FigureJSON() []byte { return d.figureJSON }

// PreviewPNG returns the encoded preview image. Callers must not modify it.
func (d *Dashboard) PreviewPNG() []byte { return d.previewPNG }

// Hover resolves a hover event into an image source update.
func (d *Dashboard) Hover(data *hover.Data) hover.Result {
	res := hover.Resolve(data)
	metrics.HoverCallbacksTotal.WithLabelValues(string(res.Kind())).Inc()

	if ce := d.logger.Check(zap.DebugLevel, "Hover callback"); ce != nil {
		fields := []zap.Field{zap.String("result", string(res.Kind()))}
		if data != nil {
			fields = append(fields, zap.Any("points", data.Points))
		}
		ce.Write(fields...)
	}
	return res
}
