package config

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/lintang-b-s/roadbisect/pkg/partitioner"
	"github.com/lintang-b-s/roadbisect/pkg/util"
	"github.com/spf13/viper"
)

const ENV_PREFIX = "BISECT"

type PartitionConfig struct {
	MinCellSize          int         `mapstructure:"min_cell_size" validate:"min=1"`
	MaxLevels            int         `mapstructure:"max_levels" validate:"min=1,max=254"`
	BalanceRatio         float64     `mapstructure:"balance_ratio" validate:"gt=0.5,lt=1"`
	DirectionCandidates  [][]float64 `mapstructure:"direction_candidates" validate:"omitempty,dive,len=2"`
	SourceSinkFractions  []float64   `mapstructure:"source_sink_fractions" validate:"min=1,dive,gt=0,lte=0.5"`
	SeparatorRetryBudget int         `mapstructure:"separator_retry_budget" validate:"min=0"`
	SeparatorMode        string      `mapstructure:"separator_mode" validate:"oneof=edge vertex"`
	UsePrincipalAxis     bool        `mapstructure:"use_principal_axis"`
	Workers              int         `mapstructure:"workers" validate:"min=1"`
	SequentialThreshold  int         `mapstructure:"sequential_threshold" validate:"min=0"`
	VerifySeparators     bool        `mapstructure:"verify_separators"`
	LogLevel             string      `mapstructure:"log_level" validate:"oneof=debug info warn error"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("min_cell_size", partitioner.DEFAULT_MIN_CELL_SIZE)
	v.SetDefault("max_levels", partitioner.DEFAULT_MAX_LEVELS)
	v.SetDefault("balance_ratio", partitioner.DEFAULT_BALANCE_RATIO)
	v.SetDefault("direction_candidates", [][]float64{})
	v.SetDefault("source_sink_fractions", partitioner.DEFAULT_SOURCE_SINK_FRACTIONS)
	v.SetDefault("separator_retry_budget", partitioner.DEFAULT_RETRY_BUDGET)
	v.SetDefault("separator_mode", string(partitioner.EDGE_SEPARATOR))
	v.SetDefault("use_principal_axis", true)
	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("sequential_threshold", partitioner.DEFAULT_SEQUENTIAL_THRESHOLD)
	v.SetDefault("verify_separators", false)
	v.SetDefault("log_level", "info")
}

/*
Load. read the partition config from configFile (or ./config.yaml, ./data/config.yaml when empty),
BISECT_ prefixed environment variables override the file, e.g. BISECT_MIN_CELL_SIZE=128.
a missing default config file is not an error.
*/
func Load(v *viper.Viper, configFile string) (*PartitionConfig, error) {
	SetDefaults(v)
	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./data/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	var cfg PartitionConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *PartitionConfig) Validate() error {
	return util.ValidateStruct(c)
}

// PartitionerOptions. empty direction_candidates selects the default direction set.
func (c *PartitionConfig) PartitionerOptions() partitioner.Options {
	opts := partitioner.Options{
		MinCellSize:         c.MinCellSize,
		MaxLevels:           c.MaxLevels,
		BalanceRatio:        c.BalanceRatio,
		Directions:          partitioner.DefaultDirections(),
		SourceSinkFractions: c.SourceSinkFractions,
		RetryBudget:         c.SeparatorRetryBudget,
		SeparatorMode:       partitioner.SeparatorMode(c.SeparatorMode),
		UsePrincipalAxis:    c.UsePrincipalAxis,
		Workers:             c.Workers,
		SequentialThreshold: c.SequentialThreshold,
		VerifySeparators:    c.VerifySeparators,
	}
	if len(c.DirectionCandidates) > 0 {
		opts.Directions = make([]partitioner.Direction, len(c.DirectionCandidates))
		for i, d := range c.DirectionCandidates {
			opts.Directions[i] = partitioner.NewDirection(d[0], d[1])
		}
	}
	return opts
}
