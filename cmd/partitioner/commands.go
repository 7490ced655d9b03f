package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/lintang-b-s/roadbisect/pkg/config"
	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/http"
	"github.com/lintang-b-s/roadbisect/pkg/http/usecases"
	"github.com/lintang-b-s/roadbisect/pkg/logger"
	"github.com/lintang-b-s/roadbisect/pkg/osmparser"
	"github.com/lintang-b-s/roadbisect/pkg/partitioner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.PartitionConfig
	log     *zap.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	root := &cobra.Command{
		Use:          "partitioner",
		Short:        "Recursive inertial flow bisection of road networks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			log, err := logger.NewWithLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./config.yaml or ./data/config.yaml)")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn or error")
	_ = v.BindPFlag("log_level", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(a.newPartitionCmd())
	root.AddCommand(a.newInspectCmd())
	root.AddCommand(a.newServeCmd())
	return root
}

type partitionOpts struct {
	graph     string
	coords    string
	osm       string
	weighting string
	out       string
	graphOut  string
	coordsOut string
	stats     bool
}

func (a *app) newPartitionCmd() *cobra.Command {
	var opts partitionOpts

	cmd := &cobra.Command{
		Use:   "partition",
		Short: "Partition a road network into a nested cell hierarchy",
		Example: `  partitioner partition --graph data/g.txt --coords data/c.txt --out data/g.mlp
  partitioner partition --osm data/solo.osm.pbf --out data/solo.mlp.bz2 --min-cell-size 256`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runPartition(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.graph, "graph", "", "graph text file: header \"n m\" then m lines \"u v w\"")
	cmd.Flags().StringVar(&opts.coords, "coords", "", "optional coordinate file: header \"n\" then n lines \"id lat lon\"")
	cmd.Flags().StringVar(&opts.osm, "osm", "", "openstreetmap extract (.osm.pbf, .osm, .osm.bz2) used instead of --graph")
	cmd.Flags().StringVar(&opts.weighting, "weighting", string(osmparser.DURATION_WEIGHTING), "edge weights of an osm graph: duration or distance")
	cmd.Flags().StringVar(&opts.out, "out", "", "output hierarchy file, .bz2 suffix compresses it")
	cmd.Flags().StringVar(&opts.graphOut, "graph-out", "", "also write the input graph in text format")
	cmd.Flags().StringVar(&opts.coordsOut, "coords-out", "", "coordinate file written together with --graph-out")
	cmd.Flags().BoolVar(&opts.stats, "stats", false, "print partitioning statistics as json")
	cmd.MarkFlagsMutuallyExclusive("graph", "osm")
	cmd.MarkFlagsOneRequired("graph", "osm")
	_ = cmd.MarkFlagRequired("out")

	cmd.Flags().Int("min-cell-size", partitioner.DEFAULT_MIN_CELL_SIZE, "subproblems of at most this many nodes become leaf cells")
	cmd.Flags().Int("max-levels", partitioner.DEFAULT_MAX_LEVELS, "maximum recursion depth")
	cmd.Flags().Float64("balance-ratio", partitioner.DEFAULT_BALANCE_RATIO, "largest side of a bisection relative to its subproblem")
	cmd.Flags().String("separator-mode", string(partitioner.EDGE_SEPARATOR), "edge or vertex")
	cmd.Flags().Int("workers", runtime.NumCPU(), "number of scheduler workers")
	cmd.Flags().Bool("verify", false, "verify every separator")

	a.bindFlag(cmd.Flags(), "min_cell_size", "min-cell-size")
	a.bindFlag(cmd.Flags(), "max_levels", "max-levels")
	a.bindFlag(cmd.Flags(), "balance_ratio", "balance-ratio")
	a.bindFlag(cmd.Flags(), "separator_mode", "separator-mode")
	a.bindFlag(cmd.Flags(), "workers", "workers")
	a.bindFlag(cmd.Flags(), "verify_separators", "verify")
	return cmd
}

// bindFlag. a flag only overrides the config file when it is set on the command line.
func (a *app) bindFlag(flags *pflag.FlagSet, key, flag string) {
	_ = a.v.BindPFlag(key, flags.Lookup(flag))
}

func (a *app) runPartition(cmd *cobra.Command, opts partitionOpts) error {
	ctx := cmd.Context()

	var (
		graph *da.Graph
		err   error
	)
	if opts.osm != "" {
		weighting := osmparser.Weighting(opts.weighting)
		if weighting != osmparser.DURATION_WEIGHTING && weighting != osmparser.DISTANCE_WEIGHTING {
			return fmt.Errorf("unknown weighting %q", opts.weighting)
		}
		graph, err = osmparser.NewOSMParser(weighting, a.log).Parse(ctx, opts.osm)
	} else {
		graph, err = da.ReadGraphFile(opts.graph, opts.coords)
	}
	if err != nil {
		return err
	}

	if opts.graphOut != "" {
		if err := graph.WriteGraphFile(opts.graphOut, opts.coordsOut); err != nil {
			return err
		}
	}

	res, err := partitioner.NewMultilevelPartitioner(graph, a.cfg.PartitionerOptions(), a.log).RunAndWrite(ctx, opts.out)
	if err != nil {
		return err
	}

	if opts.stats {
		return writeJSON(cmd, res.Stats)
	}
	return nil
}

type inspectOpts struct {
	node  int64
	level int
}

type inspectOutput struct {
	Summary usecases.PartitionSummary `json:"summary"`
	Levels  []usecases.LevelCells     `json:"levels,omitempty"`
	Node    *usecases.NodeCells       `json:"node,omitempty"`
}

func (a *app) newInspectCmd() *cobra.Command {
	var opts inspectOpts

	cmd := &cobra.Command{
		Use:   "inspect <hierarchy.mlp>",
		Short: "Print a summary of a partition hierarchy file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mp, err := da.ReadMLPFile(args[0])
			if err != nil {
				return err
			}
			service := usecases.NewPartitionService(mp)

			out := inspectOutput{Summary: service.Summary()}
			for l := 0; l < mp.GetNumberOfLevels(); l++ {
				if opts.level >= 0 && l != opts.level {
					continue
				}
				level, err := service.LevelCells(l)
				if err != nil {
					return err
				}
				level.Sizes = nil
				out.Levels = append(out.Levels, level)
			}
			if opts.node >= 0 {
				cells, err := service.NodeCells(da.Index(opts.node))
				if err != nil {
					return err
				}
				out.Node = &cells
			}
			return writeJSON(cmd, out)
		},
	}

	cmd.Flags().Int64Var(&opts.node, "node", -1, "also print the cell of this node on every level")
	cmd.Flags().IntVar(&opts.level, "level", -1, "only print this level")
	return cmd
}

func (a *app) newServeCmd() *cobra.Command {
	var (
		mlpFile   string
		rateLimit bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only http api over a partition hierarchy file",
		RunE: func(cmd *cobra.Command, args []string) error {
			mp, err := da.ReadMLPFile(mlpFile)
			if err != nil {
				return err
			}
			if err := http.NewServer(a.log).Serve(cmd.Context(), rateLimit, usecases.NewPartitionService(mp)); err != nil {
				return err
			}
			a.log.Info("partition api stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&mlpFile, "mlp", "", "hierarchy file written by partition")
	cmd.Flags().Int("port", 6060, "api port")
	cmd.Flags().BoolVar(&rateLimit, "rate-limit", true, "enable the request rate limiter")
	_ = cmd.MarkFlagRequired("mlp")
	_ = viper.BindPFlag("API_PORT", cmd.Flags().Lookup("port"))
	return cmd
}

func writeJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
