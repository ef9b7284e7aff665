package chi

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
)

//go:embed web/index.html.tmpl web/static
var webFS embed.FS

var pageTemplate = template.Must(template.ParseFS(webFS, "web/index.html.tmpl"))

// Asset locations used by the page.
const (
	DefaultStylesheetURL = "https://cdn.jsdelivr.net/npm/bootswatch@5.3.3/dist/lux/bootstrap.min.css"
	DefaultPlotlyURL     = "https://cdn.plot.ly/plotly-2.35.2.min.js"
)

// DefaultAbout is the sidebar text.
var DefaultAbout = []string{
	`This website was created for GEOG 5518 at UConn by Aaron Spaulding. ` +
		`Restaurant data was collected from Yelp by Dr. Xiang "Peter" Chen.`,
	"Point color denotes price and size denotes rating.",
}

// PageConfig holds the texts and asset URLs of the index page.
type PageConfig struct {
	Title         string
	Heading       string
	About         []string
	StylesheetURL string
	PlotlyURL     string
}

type pageData struct {
	PageConfig
	FigurePath string
	HoverPath  string
	ScriptPath string
}

// RenderPage executes the index template once; the page never changes at runtime.
func RenderPage(cfg PageConfig) ([]byte, error) {
	if cfg.About == nil {
		cfg.About = DefaultAbout
	}
	if cfg.StylesheetURL == "" {
		cfg.StylesheetURL = DefaultStylesheetURL
	}
	if cfg.PlotlyURL == "" {
		cfg.PlotlyURL = DefaultPlotlyURL
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		PageConfig: cfg,
		FigurePath: pathFigure,
		HoverPath:  pathHover,
		ScriptPath: pathStatic + "app.js",
	})
	if err != nil {
		return nil, fmt.Errorf("render page: %w", err)
	}
	return buf.Bytes(), nil
}

func staticFS() fs.FS {
	sub, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	return sub
}
