package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tournevent/dhlexpress/internal/server"
	"github.com/tournevent/dhlexpress/pkg/shipper/dhl"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "dhlexpress",
	Short:        "DHL Express shipping service: shipments, tracking and proof of delivery",
	Version:      version,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the GraphQL server",
	RunE:  runServe,
}

var trackCmd = &cobra.Command{
	Use:   "track <waybill>...",
	Short: "Print the tracking history of one or more waybills as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTrack,
}

var podCmd = &cobra.Command{
	Use:   "pod <waybill>",
	Short: "Download the proof-of-delivery document of a waybill",
	Args:  cobra.ExactArgs(1),
	RunE:  runProofOfDelivery,
}

func init() {
	trackCmd.Flags().Int("batch", dhl.TrackingBatchSize, "waybills per tracking request")
	podCmd.Flags().Bool("detailed", false, "request the detailed document instead of the summary")
	podCmd.Flags().StringP("out", "o", "", "write the document to this file instead of stdout")

	rootCmd.AddCommand(serveCmd, trackCmd, podCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	app, err := setup(ctx)
	if err != nil {
		return err
	}
	defer app.close(ctx)

	app.logger.Info("Starting DHL Express service",
		zap.Int("port", app.cfg.Port),
		zap.String("version", app.cfg.Version),
		zap.Bool("test_mode", app.cfg.DHLTestMode),
		zap.Bool("mock", app.cfg.DHLUseMock),
	)

	// Start HTTP server
	srv := server.New(server.Config{Port: app.cfg.Port}, app.registry, app.logger)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func runTrack(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	batch, _ := cmd.Flags().GetInt("batch")

	app, err := setup(ctx, "stderr")
	if err != nil {
		return err
	}
	defer app.close(ctx)

	resp, err := app.registry.TrackBatches(ctx, dhlCarrier, args, batch)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("tracking failed")
	}
	return nil
}

func runProofOfDelivery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	detailed, _ := cmd.Flags().GetBool("detailed")
	out, _ := cmd.Flags().GetString("out")

	app, err := setup(ctx, "stderr")
	if err != nil {
		return err
	}
	defer app.close(ctx)

	carrier, err := app.registry.Get(dhlCarrier)
	if err != nil {
		return err
	}
	resp, err := carrier.ProofOfDelivery(ctx, args[0], detailed)
	if err != nil {
		return err
	}
	if !resp.Success {
		for _, e := range resp.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", e.Code, e.Message)
		}
		return fmt.Errorf("no proof of delivery for %s", args[0])
	}

	if out == "" {
		_, err = cmd.OutOrStdout().Write(resp.Document)
		return err
	}
	if err := os.WriteFile(out, resp.Document, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", out, err)
	}
	app.logger.Info("Saved proof of delivery", zap.String("waybill", args[0]), zap.String("path", out))
	return nil
}
