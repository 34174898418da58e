package cmd

import (
	"context"
	"fmt"
	"time"

	"fundledger/application"
	"fundledger/config"
	"fundledger/database"
	"fundledger/infrastructure"

	log "github.com/sirupsen/logrus"
)

// runtime holds the shared infrastructure of a running command
type runtime struct {
	db         *database.DB
	natsClient *infrastructure.NATSClient
	publisher  *infrastructure.NATSEventPublisher
	uowFactory *infrastructure.UnitOfWorkFactory
}

// newRuntime connects to the database and, when enabled, NATS, then registers the
// in-process subscriptions. Without publishEvents every event is dropped.
func newRuntime(ctx context.Context, cfg *config.Config, publishEvents bool) (*runtime, error) {
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.GetDatabaseURL())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	rt := &runtime{db: db}

	if !publishEvents {
		log.Warn("Event publishing disabled; no notifications or audit entries will be written")
		rt.uowFactory = infrastructure.NewUnitOfWorkFactory(db, infrastructure.NewNoopEventPublisher())
		return rt, nil
	}

	var bus infrastructure.MessagePublisher
	if cfg.NATSEnabled {
		log.WithField("servers", cfg.NATSServers).Info("Connecting to NATS...")
		natsClient := infrastructure.NewNATSClient(cfg.NATSServers)

		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err := natsClient.Connect(connectCtx)
		cancel()
		if err != nil {
			db.Close()
			return nil, err
		}
		rt.natsClient = natsClient
		bus = natsClient
	} else {
		log.Warn("NATS disabled; events are handled in-process only")
	}

	rt.publisher = infrastructure.NewNATSEventPublisher(bus, infrastructure.NewEventSubjectMapper())
	if rt.natsClient != nil {
		if err := rt.publisher.EnsureLedgerEventStream(rt.natsClient); err != nil {
			rt.Close()
			return nil, fmt.Errorf("failed to ensure ledger event stream: %w", err)
		}
	}

	rt.uowFactory = infrastructure.NewUnitOfWorkFactory(db, rt.publisher)
	application.RegisterApplicationSubscriptions(rt.uowFactory, rt.uowFactory)

	return rt, nil
}

// Close releases NATS and the database pool
func (rt *runtime) Close() {
	if rt.natsClient != nil {
		if err := rt.natsClient.Close(); err != nil {
			log.WithError(err).Error("Error closing NATS connection")
		}
	}
	log.Info("Closing database connection...")
	rt.db.Close()
}
