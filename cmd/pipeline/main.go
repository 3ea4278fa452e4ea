package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/rentscope/internal/bronze"
	"github.com/rentscope/internal/config"
	"github.com/rentscope/internal/db"
	"github.com/rentscope/internal/gold"
	"github.com/rentscope/internal/silver"
)

var (
	dbConn *db.Connection
	logger *slog.Logger
)

func main() {
	logger = slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      slog.LevelInfo,
		TimeFormat: time.Kitchen,
	}))

	if err := config.LoadEnv(); err != nil {
		logger.Warn("failed to load .env file", "error", err)
	}

	var err error
	dbConn, err = db.NewConnection()
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	rootCmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Rental listings analytics pipeline",
		Long:  `Ingests raw short-term-rental listing exports and refines them through bronze, silver and gold layers`,
	}

	rootCmd.AddCommand(createPingCmd())
	rootCmd.AddCommand(createIngestCmd())
	rootCmd.AddCommand(createBuildCmd())
	rootCmd.AddCommand(createStatusCmd())
	rootCmd.AddCommand(createResetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// createPingCmd creates a command to test database connectivity
func createPingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Test database connectivity",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Database connection successful!")

			var count int
			err := dbConn.DB.QueryRow("SELECT COUNT(*) FROM bronze.listings_raw").Scan(&count)
			if err != nil {
				logger.Warn("bronze layer not available", "error", err)
			} else {
				fmt.Printf("Raw listing snapshots loaded: %d\n", count)
			}
		},
	}
}

// createIngestCmd groups the raw data loaders
func createIngestCmd() *cobra.Command {
	ingestCmd := &cobra.Command{
		Use:   "ingest",
		Short: "Load raw source files",
		Long:  `Load scraped listing exports into the bronze layer and the external calendar fact into silver`,
	}
	ingestCmd.AddCommand(createIngestListingsCmd())
	ingestCmd.AddCommand(createIngestCalendarCmd())
	return ingestCmd
}

func createIngestListingsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "listings [filename]",
		Short: "Ingest a scraped listings CSV into bronze",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := bronze.CreateSchema(dbConn.DB); err != nil {
				logger.Error("failed to prepare bronze schema", "error", err)
				os.Exit(1)
			}
			ingester := bronze.NewIngester(dbConn.DB, logger)
			if err := ingester.IngestListings(args[0]); err != nil {
				logger.Error("listings ingest failed", "error", err)
				os.Exit(1)
			}
		},
	}
}

func createIngestCalendarCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [filename]",
		Short: "Ingest the availability calendar CSV into silver",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if err := silver.IngestCalendar(dbConn.DB, args[0], logger); err != nil {
				logger.Error("calendar ingest failed", "error", err)
				os.Exit(1)
			}
		},
	}
}

// createBuildCmd groups the layer builds
func createBuildCmd() *cobra.Command {
	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "Build the refined layers",
	}
	buildCmd.AddCommand(createBuildSilverCmd())
	buildCmd.AddCommand(createBuildGoldCmd())
	return buildCmd
}

func createBuildSilverCmd() *cobra.Command {
	var geometryPath string

	cmd := &cobra.Command{
		Use:   "silver",
		Short: "Clean raw snapshots and build the dimensional model",
		Run: func(cmd *cobra.Command, args []string) {
			raw, err := silver.FetchRaw(dbConn.DB)
			if err != nil {
				logger.Error("failed to read bronze layer", "error", err)
				os.Exit(1)
			}

			geoms, err := silver.LoadGeometrySource(geometryPath, logger)
			if err != nil {
				logger.Error("failed to load geometry source", "error", err)
				os.Exit(1)
			}

			cleaned := silver.NewCleaner(logger).Clean(raw)
			if err := silver.NewBuilder(dbConn.DB, logger).Build(cleaned, geoms); err != nil {
				logger.Error("silver build failed", "error", err)
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVar(&geometryPath, "geometry", "", "neighbourhood geometry CSV (required)")
	cmd.MarkFlagRequired("geometry")
	return cmd
}

func createBuildGoldCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gold",
		Short: "Rebuild the gold summary tables",
		Run: func(cmd *cobra.Command, args []string) {
			if err := gold.NewBuilder(dbConn.DB, logger).Build(); err != nil {
				logger.Error("gold build failed", "error", err)
				os.Exit(1)
			}
		},
	}
}

// createStatusCmd reports row counts per pipeline table
func createStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show row counts for every pipeline table",
		Run: func(cmd *cobra.Command, args []string) {
			tables := []string{
				"bronze.listings_raw",
				"silver.calendar",
				"silver.city",
				"silver.property_types",
				"silver.room_types",
				"silver.neighbourhoods",
				"silver.dates",
				"silver.host_details",
				"silver.host_activity",
				"silver.listings",
				"gold.listings_aggregated",
				"gold.earnings_summary",
				"gold.recommendations_summary",
			}

			writer := tablewriter.NewWriter(os.Stdout)
			writer.SetHeader([]string{"Table", "Rows"})
			for _, table := range tables {
				var count int
				err := dbConn.DB.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count)
				if err != nil {
					writer.Append([]string{table, "missing"})
					continue
				}
				writer.Append([]string{table, fmt.Sprintf("%d", count)})
			}
			writer.Render()
		},
	}
}

// createResetCmd drops a pipeline layer so it can be rebuilt
func createResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [bronze|silver|gold]",
		Short: "Drop a layer's schema so the stage can be rerun",
		Long:  `Silver and gold tables are created fail-if-exists; reset the layer before rerunning its build`,
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			layer := args[0]
			switch layer {
			case "bronze", "silver", "gold":
			default:
				logger.Error("unknown layer", "layer", layer)
				os.Exit(1)
			}

			if _, err := dbConn.DB.Exec("DROP SCHEMA IF EXISTS " + layer + " CASCADE"); err != nil {
				logger.Error("reset failed", "layer", layer, "error", err)
				os.Exit(1)
			}
			logger.Info("layer reset", "layer", layer)
		},
	}
}
