package jobs

import (
	"fmt"
	"log"

	"TallyBridge/internal/logger"
	"TallyBridge/internal/serviceiface"

	"github.com/jackc/pgx/v5/pgxpool"
)

// auditLog writes through the logger service when it is running; the cron
// service may be enabled without it.
func auditLog(msg string) {
	if logr := logger.GlobalLogger; logr != nil {
		logr.LogAudit(msg)
	} else {
		log.Println(msg)
	}
}

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	retentionConfig := NewDefaultRetentionConfig()
	if s.config != nil {
		if schedule, ok := s.config["retention_schedule"].(string); ok && schedule != "" {
			retentionConfig.Schedule = schedule
		}
		if days, ok := s.config["retention_days"].(int); ok && days > 0 {
			retentionConfig.RetentionDays = days
		}
	}
	if err := RunRetentionSweeper(retentionConfig, s.db); err != nil {
		return fmt.Errorf("failed to start retention sweeper: %v", err)
	}
	auditLog("Retention sweeper scheduled")
	log.Println("Cron service started — Retention Sweeper scheduled")

	healthConfig := NewDefaultHealthPollConfig()
	if s.config != nil {
		if schedule, ok := s.config["health_poll_schedule"].(string); ok && schedule != "" {
			healthConfig.Schedule = schedule
		}
	}
	if err := RunConnectorHealthPoller(healthConfig); err != nil {
		return fmt.Errorf("failed to start connector health poller: %v", err)
	}
	auditLog("Connector health poller scheduled")
	log.Println("Cron service started — Connector Health Poller scheduled")

	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
