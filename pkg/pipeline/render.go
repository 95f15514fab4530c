package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/lineage/pkg/errors"
	"github.com/matzehuels/lineage/pkg/graph"
	"github.com/matzehuels/lineage/pkg/observability"
	"github.com/matzehuels/lineage/pkg/render/nodelink"
	"github.com/matzehuels/lineage/pkg/render/sink"
	"github.com/matzehuels/lineage/pkg/render/text"
)

// renderFormat produces one artifact, reporting it through the pipeline
// hooks.
func renderFormat(ctx context.Context, result *Result, opts Options, format string) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := render(ctx, result, opts, format)
	hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
	if err != nil {
		code := errors.GetCode(err)
		if code == "" {
			code = errors.ErrCodeInternal
		}
		return nil, errors.Wrap(code, err, "render %s", format)
	}
	return data, nil
}

func render(ctx context.Context, result *Result, opts Options, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		svgOpts := []sink.SVGOption{sink.WithLookup(result.Graph)}
		if opts.Legend {
			svgOpts = append(svgOpts, sink.WithLegend())
		}
		if opts.Title != "" {
			svgOpts = append(svgOpts, sink.WithTitle(opts.Title))
		}
		return sink.RenderSVG(result.Layout, svgOpts...), nil
	case FormatJSON:
		return graph.MarshalLayout(graph.FromLayout(result.Layout))
	case FormatDOT:
		return []byte(nodelink.ToDOT(result.Snapshot, opts.dotOptions())), nil
	case FormatNodelinkSVG:
		return nodelink.RenderSVG(ctx, nodelink.ToDOT(result.Snapshot, opts.dotOptions()))
	case FormatText:
		return []byte(text.Tree(result.Root, text.WithLookup(result.Graph)) + "\n"), nil
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

func (o *Options) dotOptions() nodelink.Options {
	return nodelink.Options{Root: o.DOTRoot, Depth: o.DOTDepth}
}
