package cli

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/bindwell/affinity/internal/application/pipeline"
	"github.com/bindwell/affinity/internal/config"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/logging"
	"github.com/bindwell/affinity/internal/infrastructure/monitoring/prometheus"
	affinitytypes "github.com/bindwell/affinity/pkg/types/affinity"
)

// metricsShutdownTimeout bounds how long the run command waits for the
// exposition server to drain after the pipeline finishes.
const metricsShutdownTimeout = 5 * time.Second

// NewRunCommand creates the run subcommand: execute every configured
// (dataset, policy) combination and print the results.
func NewRunCommand(opts *RootOptions) *cobra.Command {
	var datasets []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Train and evaluate on every configured dataset and split policy",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if len(datasets) > 0 {
				cfg.Data.Datasets = selectDatasets(cfg.Data.Datasets, datasets)
				if len(cfg.Data.Datasets) == 0 {
					return fmt.Errorf("no configured dataset matches %v", datasets)
				}
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}

			var metrics *prometheus.PipelineMetrics
			if cfg.Metrics.Enabled {
				metrics = prometheus.NewPipelineMetrics(cfg.Metrics.Namespace)
				if cfg.Metrics.ListenAddr != "" {
					srv := startMetricsServer(cfg.Metrics.ListenAddr, metrics, logger)
					defer func() {
						shutdownCtx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
						defer cancel()
						if err := srv.Shutdown(shutdownCtx); err != nil {
							logger.Warn("metrics server shutdown", logging.Err(err))
						}
					}()
				}
			}

			summaries, err := pipeline.NewRunner(cfg, logger, metrics).Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprint(cmd.OutOrStdout(), formatSummaries(summaries))
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&datasets, "dataset", nil,
		"restrict the run to the named datasets (repeatable)")
	return cmd
}

// startMetricsServer serves the Prometheus exposition endpoint on addr in a
// background goroutine and returns the server so the caller can shut it down
// once the run completes.
func startMetricsServer(addr string, metrics *prometheus.PipelineMetrics, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("metrics server listening", logging.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server error", logging.Err(err))
		}
	}()

	return srv
}

// selectDatasets keeps only the configured datasets whose name appears in
// names.
func selectDatasets(configured []config.DatasetConfig, names []string) []config.DatasetConfig {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	var out []config.DatasetConfig
	for _, d := range configured {
		if _, ok := wanted[d.Name]; ok {
			out = append(out, d)
		}
	}
	return out
}

// formatSummaries renders the run results as an aligned table.
func formatSummaries(summaries []*affinitytypes.RunSummary) string {
	headers := []string{"DATASET", "POLICY", "TRAIN", "TEST", "LOSS", "MSE", "R2", "CI", "PEARSON", "AUPR"}
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []string{
			s.Dataset,
			s.Policy.DisplayName(),
			fmt.Sprintf("%d", s.TrainSize),
			fmt.Sprintf("%d", s.TestSize),
			fmt.Sprintf("%.4f", s.FinalLoss()),
			fmt.Sprintf("%.4f", s.Report.MSE),
			fmt.Sprintf("%.4f", s.Report.R2),
			fmt.Sprintf("%.4f", s.Report.CI),
			fmt.Sprintf("%.4f", s.Report.Pearson),
			fmt.Sprintf("%.4f", s.Report.AUPR),
		})
	}
	return formatTable(headers, rows)
}

// formatTable renders headers and rows as an aligned ASCII table.
func formatTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, v := range row {
			if len(v) > widths[i] {
				widths[i] = len(v)
			}
		}
	}

	var sb strings.Builder
	writeRow := func(cells []string) {
		for i, c := range cells {
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(c)
			sb.WriteString(strings.Repeat(" ", widths[i]-len(c)))
		}
		sb.WriteString("\n")
	}

	writeRow(headers)
	sep := make([]string, len(headers))
	for i, w := range widths {
		sep[i] = strings.Repeat("-", w)
	}
	writeRow(sep)
	for _, row := range rows {
		writeRow(row)
	}
	return sb.String()
}
