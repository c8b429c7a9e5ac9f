package main

import (
	adminhandler "stayvault/internal/admin/handler"
	adminservice "stayvault/internal/admin/service"
	bookingshandler "stayvault/internal/bookings/handler"
	bookingsservice "stayvault/internal/bookings/service"
	"stayvault/internal/bookings/validator"
	"stayvault/internal/events"
	"stayvault/internal/migration"
	"stayvault/internal/snapshot"
	"stayvault/internal/state"
	"stayvault/pkg/app"
	"stayvault/pkg/config"
	"stayvault/pkg/kafka"
	kafkaconfig "stayvault/pkg/kafka/config"
)

const ServiceName = "stayvault"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting stayvault service")

	container, err := snapshot.Load(cfg.SnapshotPath)
	if err != nil {
		// A present but unreadable snapshot means real data would be lost
		// by starting empty. Refuse to run.
		cfg.Log.Fatal("Failed to restore snapshot", "path", cfg.SnapshotPath, "error", err)
	}
	if inserted := container.RebuildPaymentRefIndex(); inserted > 0 {
		cfg.Log.Info("Payment reference index built from snapshot", "entries", inserted)
	}
	store := state.NewStore(container)
	users, bookings, indexed := container.Counts()
	cfg.Log.Info("Snapshot restored",
		"path", cfg.SnapshotPath,
		"users", users,
		"bookings", bookings,
		"indexed_refs", indexed,
	)

	publisher := initPublisher(cfg)

	engine, err := migration.DefaultEngine(cfg.Log, cfg.BootstrapOperators)
	if err != nil {
		cfg.Log.Fatal("Failed to build migration engine", "error", err)
	}

	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingService := bookingsservice.NewBookingService(store, bookingValidator, publisher, cfg)
	adminService := adminservice.NewAdminService(store, engine, cfg)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg, store, publisher,
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		adminhandler.NewAdminHandler(adminService, cfg.Log),
	)
	serverApp.Run()
}

func initPublisher(cfg *config.Config) *events.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NewPublisher(nil, cfg.Log)
	}

	producer, err := kafka.NewProducer(kafkaconfig.FromBrokers(cfg.KafkaBrokers), cfg.BookingTopic, cfg.BookingDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingTopic)
	return events.NewPublisher(producer, cfg.Log)
}
