// ABOUTME: Graphviz rendering of the opportunity pipeline
// ABOUTME: One node per stage with its count and value, edges following the job lifecycle
package viz

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/JFernandez0524/leadgen/models"
)

// stageFlow lists the lifecycle edges drawn between stages.
var stageFlow = [][2]models.Stage{
	{models.StageNew, models.StageQuoted},
	{models.StageQuoted, models.StageScheduled},
	{models.StageScheduled, models.StageInProgress},
	{models.StageInProgress, models.StageCompleted},
	{models.StageQuoted, models.StageCancelled},
	{models.StageScheduled, models.StageCancelled},
}

var stageColors = map[models.Stage]string{
	models.StageNew:        "#e3f2fd",
	models.StageQuoted:     "#fff8e1",
	models.StageScheduled:  "#e8f5e9",
	models.StageInProgress: "#ede7f6",
	models.StageCompleted:  "#c8e6c9",
	models.StageCancelled:  "#ffcdd2",
}

// GeneratePipelineGraph renders the pipeline in the given format (graphviz.XDOT, graphviz.SVG).
func GeneratePipelineGraph(ctx context.Context, opps []models.Opportunity, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create graphviz instance: %w", err)
	}
	defer gv.Close()

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("failed to create graph: %w", err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.LRRank)

	nodes := make(map[models.Stage]*cgraph.Node, len(models.Stages))
	for _, ps := range PipelineStages(opps) {
		node, err := graph.CreateNodeByName(string(ps.Stage))
		if err != nil {
			return nil, fmt.Errorf("failed to create node %s: %w", ps.Stage, err)
		}
		node.SetLabel(fmt.Sprintf("%s\n%d jobs\n%s", ps.Stage, ps.Count, ps.Value))
		node.SetShape(cgraph.BoxShape)
		node.SetStyle(cgraph.FilledNodeStyle)
		node.SetFillColor(stageColors[ps.Stage])
		nodes[ps.Stage] = node
	}

	for _, e := range stageFlow {
		if _, err := graph.CreateEdgeByName("", nodes[e[0]], nodes[e[1]]); err != nil {
			return nil, fmt.Errorf("failed to create edge %s -> %s: %w", e[0], e[1], err)
		}
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, format, &buf); err != nil {
		return nil, fmt.Errorf("failed to render graph: %w", err)
	}
	return buf.Bytes(), nil
}
