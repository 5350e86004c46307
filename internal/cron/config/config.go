package cron_config

type Config struct {
	// Heartbeat check, every minute
	CronScheduleHeartbeat string `env:"CRON_SCHEDULE_HEARTBEAT" envDefault:"0 * * * * *"`
	// Content publication sweep, every 10 minutes
	CronSchedulePublishSweep string `env:"CRON_SCHEDULE_PUBLISH_SWEEP" envDefault:"0 */10 * * * *"`
}
