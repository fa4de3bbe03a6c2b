package jobs

import (
	"context"
	"fmt"
	"time"

	"TallyBridge/api/books"
	"TallyBridge/internal/config"

	"github.com/robfig/cron/v3"
)

// HealthPollConfig holds configuration for the Tally connector health poll.
type HealthPollConfig struct {
	Schedule string
	TimeZone string
}

func NewDefaultHealthPollConfig() HealthPollConfig {
	return HealthPollConfig{
		Schedule: config.DefaultHealthPollSchedule,
		TimeZone: "Asia/Kolkata",
	}
}

// RunConnectorHealthPoller schedules a periodic probe of the Tally connector
// so outages surface in the audit log before a user hits dispatch.
func RunConnectorHealthPoller(cfg HealthPollConfig) error {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return fmt.Errorf("invalid timezone for connector health poller: %v", err)
	}

	client := books.ConnectorFromEnv()

	c := cron.New(cron.WithLocation(loc))
	_, err = c.AddFunc(cfg.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := client.Health(ctx); err != nil {
			auditLog(fmt.Sprintf("Tally connector health check failed: %v", err))
			return
		}
		auditLog("Tally connector healthy")
	})
	if err != nil {
		return fmt.Errorf("failed to schedule connector health cron job: %v", err)
	}

	c.Start()
	auditLog("Connector health poll scheduled for " + cfg.Schedule + " (" + cfg.TimeZone + ")")
	return nil
}
