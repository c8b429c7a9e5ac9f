package config

const (
	EnvSnapshotPath = "SNAPSHOT_PATH"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvBootstrapOperators = "BOOTSTRAP_OPERATORS"

	EnvKafkaBrokers    = "KAFKA_BROKERS"
	EnvBookingTopic    = "BOOKING_EVENTS_TOPIC"
	EnvBookingDLQTopic = "BOOKING_EVENTS_DLQ_TOPIC"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
)
