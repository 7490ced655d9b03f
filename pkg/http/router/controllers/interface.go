package controllers

import (
	da "github.com/lintang-b-s/roadbisect/pkg/datastructure"
	"github.com/lintang-b-s/roadbisect/pkg/http/usecases"
)

type PartitionService interface {
	Summary() usecases.PartitionSummary
	NodeCells(node da.Index) (usecases.NodeCells, error)
	LevelCells(level int) (usecases.LevelCells, error)
	FirstDifferingLevel(u, v da.Index) (int, bool, error)
}
