package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/terralens/terralens/internal/grid"
	"github.com/terralens/terralens/internal/model"
)

var (
	gridSouth float64
	gridWest  float64
	gridNorth float64
	gridEast  float64
	gridRows  int
	gridCols  int
)

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Score a bounding box for development suitability",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp()
		if err != nil {
			return err
		}
		defer env.Close()

		batch := grid.NewBatch(env.Metrics, gridRows, gridCols,
			grid.WithCellTimeout(cfg.Grid.CellTimeout()),
			grid.WithCellDelay(cfg.Grid.CellDelay()),
			grid.WithWeights(env.Weights),
		)
		bbox := model.BBox{South: gridSouth, West: gridWest, North: gridNorth, East: gridEast}
		cells, err := batch.Run(cmd.Context(), bbox)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cells)
	},
}

func init() {
	gridCmd.Flags().Float64Var(&gridSouth, "south", 0, "south edge")
	gridCmd.Flags().Float64Var(&gridWest, "west", 0, "west edge")
	gridCmd.Flags().Float64Var(&gridNorth, "north", 0, "north edge")
	gridCmd.Flags().Float64Var(&gridEast, "east", 0, "east edge")
	gridCmd.Flags().IntVar(&gridRows, "rows", 5, "grid rows")
	gridCmd.Flags().IntVar(&gridCols, "cols", 5, "grid columns")
	rootCmd.AddCommand(gridCmd)
}
