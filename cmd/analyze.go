package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/terralens/terralens/internal/model"
	"github.com/terralens/terralens/internal/region"
)

var (
	analyzeLat   float64
	analyzeLng   float64
	analyzePlace string
	analyzeZoom  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one coordinate or place and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp()
		if err != nil {
			return err
		}
		defer env.Close()

		var snap region.Snapshot
		if analyzePlace != "" {
			snap, err = env.Orchestrator.AnalyzePlace(cmd.Context(), analyzePlace, analyzeZoom)
			if err != nil {
				return err
			}
		} else {
			if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
				return eris.New("analyze: --place or both --lat and --lng required")
			}
			c := model.Coordinate{Lat: analyzeLat, Lng: analyzeLng}
			snap = env.Orchestrator.AnalyzeCoordinate(cmd.Context(), c, analyzeZoom)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	},
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeLat, "lat", 0, "latitude")
	analyzeCmd.Flags().Float64Var(&analyzeLng, "lng", 0, "longitude")
	analyzeCmd.Flags().StringVar(&analyzePlace, "place", "", "place name to search")
	analyzeCmd.Flags().IntVar(&analyzeZoom, "zoom", 10, "map zoom for the fallback highlight")
	rootCmd.AddCommand(analyzeCmd)
}
