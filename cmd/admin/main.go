package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"networth/internal/domain/account"
	"networth/internal/domain/connection"
	"networth/internal/domain/holding"
	"networth/internal/domain/junk"
	"networth/internal/domain/snapshot"
	"networth/internal/shared/config"
	"networth/internal/shared/logging"
)

var rootCmd = &cobra.Command{
	Use:   "admin",
	Short: "Management commands for the net-worth API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetString("log-level")
		return logging.Setup(logging.Options{Level: level, Format: "text"})
	},
	SilenceUsage: true,
}

var snapshotCmd = &cobra.Command{
	Use:     "snapshot",
	Short:   "Record a net-worth snapshot for one or more users",
	Example: "  admin snapshot --user-id=u1,u2\n  admin snapshot --all",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app, userIDs []string) error {
			var rows []snapshotRow
			for _, id := range userIDs {
				snap, err := a.recorder.Record(ctx, id, snapshot.TriggerManualWrite)
				if err != nil {
					log.WithField("user_id", id).WithError(err).Error("snapshot failed")
					continue
				}
				rows = append(rows, snapshotRow{UserID: id, Snapshot: snap})
			}
			renderSnapshots(os.Stdout, rows)
			return nil
		})
	},
}

var refreshWalletsCmd = &cobra.Command{
	Use:     "refresh-wallets",
	Short:   "Refresh wallet holdings from the wallet-data provider",
	Example: "  admin refresh-wallets --user-id=u1\n  admin refresh-wallets --all --timeout=10m",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app, userIDs []string) error {
			var rows []refreshRow
			for _, id := range userIDs {
				result, err := a.wallets.RefreshWallets(ctx, id)
				if err != nil {
					return fmt.Errorf("refresh for %s: %w", id, err)
				}
				rows = append(rows, refreshRow{UserID: id, Result: result})
			}
			renderRefreshResults(os.Stdout, rows)
			return nil
		})
	},
}

var exposureCmd = &cobra.Command{
	Use:     "exposure",
	Short:   "Print the net-worth and exposure summary of a user",
	Example: "  admin exposure --user-id=u1",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, a *app, userIDs []string) error {
			for _, id := range userIDs {
				nw, err := a.portfolio.NetWorth(ctx, id)
				if err != nil {
					return err
				}
				exp, err := a.portfolio.Exposure(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("\n=== User %s ===\n", id)
				renderNetWorth(os.Stdout, nw)
				renderExposure(os.Stdout, exp)
			}
			return nil
		})
	},
}

var classifyCmd = &cobra.Command{
	Use:     "classify",
	Short:   "Explain how a holding would be classified",
	Example: "  admin classify --asset-class=equity --symbol=IBIT\n  admin classify --asset-class=crypto --symbol=USDC --provider=wallet",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		symbol, _ := flags.GetString("symbol")
		class, _ := flags.GetString("asset-class")
		accountType, _ := flags.GetString("account-type")
		provider, _ := flags.GetString("provider")
		value, _ := flags.GetFloat64("value")
		taxonomyFile, _ := flags.GetString("taxonomy")

		if !holding.IsValidAssetClass(holding.AssetClass(class)) {
			return fmt.Errorf("invalid asset class %q", class)
		}

		classifier, err := newClassifier(taxonomyFile)
		if err != nil {
			return err
		}

		h := &holding.Holding{Symbol: symbol, AssetClass: holding.AssetClass(class), ValueUSD: &value}
		var acc *account.Account
		if accountType != "" {
			acc = &account.Account{Type: account.Type(accountType)}
		}
		var conn *connection.Connection
		if provider != "" {
			conn = &connection.Connection{Provider: connection.Provider(provider)}
		}

		renderClassification(os.Stdout, classifier.TaxonomyVersion(), classifier.Classify(h, acc, conn))
		return nil
	},
}

var junkCmd = &cobra.Command{
	Use:     "junk",
	Short:   "Check a token row against the spam and dust filter",
	Example: "  admin junk --symbol='Visit claim-eth.com' --price=0.01 --value=5",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		symbol, _ := flags.GetString("symbol")

		var price, value *float64
		if flags.Changed("price") {
			p, _ := flags.GetFloat64("price")
			price = &p
		}
		if flags.Changed("value") {
			v, _ := flags.GetFloat64("value")
			value = &v
		}

		reason := junk.Default().Reason(symbol, price, value)
		if reason == junk.ReasonNone {
			fmt.Println("kept")
			return nil
		}
		fmt.Printf("rejected: %s\n", reason)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	for _, cmd := range []*cobra.Command{snapshotCmd, refreshWalletsCmd, exposureCmd} {
		cmd.Flags().String("user-id", "", "User ID(s) to process (comma-separated for multiple)")
		cmd.Flags().String("timeout", "5m", "Timeout for the operation (e.g., 5m, 1h)")
	}
	snapshotCmd.Flags().Bool("all", false, "Process every user owning a connection")
	refreshWalletsCmd.Flags().Bool("all", false, "Process every user owning a connection")

	classifyCmd.Flags().String("symbol", "", "Holding symbol")
	classifyCmd.Flags().String("asset-class", "", "Asset class (crypto, equity, cash, fixed_income, real_estate)")
	classifyCmd.Flags().String("account-type", "", "Owning account type (e.g. crypto_wallet, investment)")
	classifyCmd.Flags().String("provider", "", "Connection provider (manual, wallet, brokerage-link)")
	classifyCmd.Flags().Float64("value", 1, "Holding value in USD")
	classifyCmd.Flags().String("taxonomy", "", "Taxonomy YAML file (default: embedded)")
	_ = classifyCmd.MarkFlagRequired("asset-class")

	junkCmd.Flags().String("symbol", "", "Token symbol")
	junkCmd.Flags().Float64("price", 0, "USD price (omit when unknown)")
	junkCmd.Flags().Float64("value", 0, "USD value (omit when unknown)")

	rootCmd.AddCommand(snapshotCmd, refreshWalletsCmd, exposureCmd, classifyCmd, junkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// withApp loads configuration, opens the store and resolves the target
// users before calling fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app, userIDs []string) error) error {
	flags := cmd.Flags()
	userIDStr, _ := flags.GetString("user-id")
	timeoutStr, _ := flags.GetString("timeout")
	all := false
	if flags.Lookup("all") != nil {
		all, _ = flags.GetBool("all")
	}

	if userIDStr == "" && !all {
		if flags.Lookup("all") != nil {
			return errors.New("must specify --user-id or --all")
		}
		return errors.New("must specify --user-id")
	}

	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return fmt.Errorf("invalid timeout format: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	a, err := openApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	userIDs := splitUserIDs(userIDStr)
	if all {
		userIDs, err = a.connections.ListUserIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list users: %w", err)
		}
		log.WithField("users", len(userIDs)).Info("found users with connections")
	}

	if len(userIDs) == 0 {
		log.Info("no users to process")
		return nil
	}

	start := time.Now()
	if err := fn(ctx, a, userIDs); err != nil {
		return err
	}
	log.WithField("elapsed", time.Since(start)).Infof("%s completed", cmd.Name())
	return nil
}

func splitUserIDs(s string) []string {
	var ids []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			ids = append(ids, p)
		}
	}
	return ids
}
