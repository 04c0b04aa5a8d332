package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/technotes/apiserver/config"
	"github.com/technotes/apiserver/internal/db"
	"github.com/technotes/apiserver/internal/logging"
	"github.com/technotes/apiserver/internal/mq"
	"github.com/technotes/apiserver/internal/services"
	"github.com/technotes/apiserver/internal/store"
	"github.com/technotes/apiserver/internal/store/memstore"
	"github.com/technotes/apiserver/internal/store/mongostore"
)

// Stores holds the repositories of the configured driver and owns their
// connection.
type Stores struct {
	Users services.UserRepository
	Notes services.NoteRepository
	close func(ctx context.Context) error
}

// Close releases the underlying connection.
func (s *Stores) Close(ctx context.Context) error {
	if s.close == nil {
		return nil
	}
	return s.close(ctx)
}

// OpenStores connects to the backend selected by cfg.StoreDriver.
func OpenStores(ctx context.Context, cfg config.Config, logger logging.Logger) (*Stores, error) {
	switch cfg.StoreDriver {
	case config.StoreDriverMongo:
		st, err := mongostore.Connect(ctx, cfg.Mongo)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureIndexes(ctx); err != nil {
			_ = st.Close(context.Background())
			return nil, err
		}
		logger.Info(ctx, "store ready", "driver", cfg.StoreDriver, "database", cfg.Mongo.Database)
		return &Stores{Users: st.Users(), Notes: st.Notes(), close: st.Close}, nil

	case config.StoreDriverPostgres:
		dbConn, err := db.Open(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		logger.Info(ctx, "store ready", "driver", cfg.StoreDriver, "database", cfg.Database.DBName)
		return &Stores{
			Users: store.NewUserRepository(dbConn),
			Notes: store.NewNoteRepository(dbConn),
			close: func(context.Context) error { return dbConn.Close() },
		}, nil

	case config.StoreDriverMemory:
		st := memstore.New()
		logger.Warn(ctx, "store ready; data is lost on exit", "driver", cfg.StoreDriver)
		return &Stores{Users: st.Users(), Notes: st.Notes()}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

// OpenEvents returns the change event publisher, or nil when no broker is
// configured. The returned close func is never nil.
func OpenEvents(ctx context.Context, cfg config.MQConfig, logger logging.Logger) (services.EventPublisher, func() error, error) {
	noop := func() error { return nil }

	broker, err := mq.Open(ctx, cfg)
	if errors.Is(err, mq.ErrNoBackend) {
		logger.Info(ctx, "change events disabled")
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, err
	}

	logger.Info(ctx, "publishing change events", "backend", cfg.Backend, "channel", cfg.Channel)
	return mq.NewEventPublisher(broker, cfg.Channel), broker.Close, nil
}
