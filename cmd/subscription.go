package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/qrave1/Gamefinity/internal/application/config"
	"github.com/qrave1/Gamefinity/internal/domain/models"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database"
	"github.com/qrave1/Gamefinity/internal/infra/adapters/database/repository"
)

var subscriptionPlan string

var subscriptionCmd = &cobra.Command{
	Use:   "subscription",
	Short: "Manage player subscriptions",
}

var grantCmd = &cobra.Command{
	Use:   "grant <user_id>",
	Short: "Approve a subscription starting now",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		plan := models.Plan(subscriptionPlan)
		if plan != models.PlanMonthly && plan != models.PlanYearly {
			log.Fatalf("unknown plan %q", subscriptionPlan)
		}

		repo, closeDB := openSubscriptions(cmd)
		defer closeDB()

		now := time.Now()

		err := repo.Upsert(cmd.Context(), &models.Subscription{
			UserID:    args[0],
			Plan:      plan,
			Status:    models.SubscriptionApproved,
			StartedAt: now,
			UpdatedAt: now,
		})
		if err != nil {
			log.Fatalf("grant subscription: %v", err)
		}

		fmt.Printf("granted %s plan to %s until %s\n", plan, args[0], now.Add(plan.Period()).Format(time.DateOnly))
	},
}

var expireCmd = &cobra.Command{
	Use:   "expire <user_id>",
	Short: "Expire a subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		repo, closeDB := openSubscriptions(cmd)
		defer closeDB()

		if err := repo.UpdateStatus(cmd.Context(), args[0], models.SubscriptionExpired); err != nil {
			log.Fatalf("expire subscription: %v", err)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <user_id>",
	Short: "Print a subscription",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		repo, closeDB := openSubscriptions(cmd)
		defer closeDB()

		sub, err := repo.GetByUserID(cmd.Context(), args[0])
		if err != nil {
			log.Fatalf("get subscription: %v", err)
		}

		fmt.Printf(
			"%s: %s %s, expires %s, active %t\n",
			sub.UserID,
			sub.Plan,
			sub.Status,
			sub.ExpiresAt().Format(time.DateOnly),
			sub.Active(time.Now()),
		)
	},
}

func openSubscriptions(cmd *cobra.Command) (repository.SubscriptionRepository, func()) {
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("could not load config: %v", err)
	}

	db, err := database.Open(cmd.Context(), cfg)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}

	return repository.NewSubscriptionRepo(db), func() { db.Close() }
}

func init() {
	grantCmd.Flags().StringVar(&subscriptionPlan, "plan", string(models.PlanMonthly), "monthly or yearly")

	subscriptionCmd.AddCommand(grantCmd, expireCmd, showCmd)
	rootCmd.AddCommand(subscriptionCmd)
}
