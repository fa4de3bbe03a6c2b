package config

const (
	// Tally connector defaults; TALLY_CONNECTOR_URL overrides the endpoint.
	DefaultTallyConnectorURL = "http://127.0.0.1:5000"
	ConnectorTimeoutSeconds  = 15

	// Staged uploads older than the retention horizon are swept by the cron
	// service.
	RetentionDays            = 90
	DefaultRetentionSchedule = "0 2 * * *"

	// Connector health poll cadence.
	DefaultHealthPollSchedule = "*/5 * * * *"
)
