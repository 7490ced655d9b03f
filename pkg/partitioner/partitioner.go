package partitioner

import (
	"context"
	"time"

	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"go.uber.org/zap"
)

type MultilevelPartitioner struct {
	graph  *da.Graph
	opts   Options
	logger *zap.Logger
}

type Result struct {
	Partition *da.MultilevelPartition
	Stats     Stats
}

func NewMultilevelPartitioner(graph *da.Graph, opts Options, logger *zap.Logger) *MultilevelPartitioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MultilevelPartitioner{
		graph:  graph,
		opts:   opts.withDefaults(),
		logger: logger,
	}
}

func (mp *MultilevelPartitioner) GetOptions() Options {
	return mp.opts
}

/*
Run. recursively bisect the whole graph and flatten the resulting cell tree into a MultilevelPartition.
the result is identical for every worker count.
*/
func (mp *MultilevelPartitioner) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	mp.logger.Sugar().Infof("partitioning graph with %d vertices and %d edges, min cell size %d, max levels %d, %d workers",
		mp.graph.NumberOfVertices(), mp.graph.NumberOfEdges(), mp.opts.MinCellSize, mp.opts.MaxLevels, mp.opts.Workers)

	coords := computePlanarCoordinates(mp.graph)
	rb := NewRecursiveBisection(mp.graph, mp.opts, coords, mp.logger)

	root := newSubproblem(mp.graph.GetVerticeIds(), 0)
	if err := newScheduler(rb, mp.opts.Workers, mp.opts.SequentialThreshold).run(ctx, []subproblem{root}); err != nil {
		return nil, err
	}

	mlp, err := rb.BuildMLP()
	if err != nil {
		return nil, err
	}

	stats := rb.GetStats()
	mp.logger.Info("partitioning done",
		zap.Int("levels", mlp.GetNumberOfLevels()),
		zap.Int("separators", stats.SeparatorsSolved),
		zap.Int("fallbacks", stats.Fallbacks),
		zap.Int("unbalanced_cuts", stats.UnbalancedCuts),
		zap.Int("connectivity_splits", stats.ConnectivitySplits),
		zap.Int("boundary_nodes", stats.BoundaryNodes),
		zap.Int("leaf_cells", stats.LeafCells),
		zap.Duration("elapsed", time.Since(start)))

	return &Result{Partition: mlp, Stats: stats}, nil
}

// RunAndWrite. Run then write the hierarchy to filename, see MultilevelPartition.WriteMLPFile.
func (mp *MultilevelPartitioner) RunAndWrite(ctx context.Context, filename string) (*Result, error) {
	res, err := mp.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := res.Partition.WriteMLPFile(filename); err != nil {
		return nil, err
	}
	mp.logger.Sugar().Infof("multilevel partition written to %s", filename)
	return res, nil
}
