package service

import (
	"context"

	"stayvault/internal/migration"
	"stayvault/internal/snapshot"
	"stayvault/internal/state"
	"stayvault/pkg/config"
	apperrors "stayvault/pkg/errors"
	"stayvault/pkg/model"
)

// SchemaStatus is the admin view of the container's schema metadata.
type SchemaStatus struct {
	CurrentVersion uint64                   `json:"current_version"`
	LatestVersion  uint64                   `json:"latest_version"`
	Description    string                   `json:"description,omitempty"`
	Pending        []PendingStep            `json:"pending,omitempty"`
	Applied        []model.AppliedMigration `json:"applied,omitempty"`
}

type PendingStep struct {
	Version     uint64 `json:"version"`
	Description string `json:"description"`
}

// StoreStats is the admin view of container sizes.
type StoreStats struct {
	Users          int `json:"users"`
	Bookings       int `json:"bookings"`
	IndexedRefs    int `json:"indexed_refs"`
	OperatorsCount int `json:"operators_count"`
}

type AdminService interface {
	SchemaStatus(ctx context.Context, caller string) (*SchemaStatus, error)
	RunMigrations(ctx context.Context, caller string, target uint64) (int, error)
	RollbackTo(ctx context.Context, caller string, target uint64) (int, error)
	Operators(ctx context.Context, caller string) ([]string, error)
	AddOperator(ctx context.Context, caller, identity string) error
	RemoveOperator(ctx context.Context, caller, identity string) error
	RebuildIndex(ctx context.Context, caller string) (int, error)
	ReindexPayments(ctx context.Context, caller string) (int, error)
	Stats(ctx context.Context, caller string) (*StoreStats, error)
	SaveSnapshot(ctx context.Context, caller string) error
}

type adminService struct {
	store  *state.Store
	engine *migration.Engine
	cfg    *config.Config
}

func NewAdminService(store *state.Store, engine *migration.Engine, cfg *config.Config) AdminService {
	return &adminService{
		store:  store,
		engine: engine,
		cfg:    cfg,
	}
}

func (s *adminService) authorize(c *state.Container, caller string) error {
	if caller == "" {
		return apperrors.Forbidden("caller identity is required")
	}
	if c.IsOperator(caller) {
		return nil
	}
	for _, op := range s.cfg.BootstrapOperators {
		if op == caller {
			return nil
		}
	}
	return apperrors.Forbidden("caller is not an operator")
}

func (s *adminService) SchemaStatus(ctx context.Context, caller string) (*SchemaStatus, error) {
	var out *SchemaStatus
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		version, description := c.SchemaVersionInfo()
		status := &SchemaStatus{
			CurrentVersion: version,
			LatestVersion:  s.engine.Latest(),
			Description:    description,
			Applied:        s.engine.Applied(c),
		}
		for _, step := range s.engine.Pending(c) {
			status.Pending = append(status.Pending, PendingStep{
				Version:     step.Version(),
				Description: step.Description(),
			})
		}
		out = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RunMigrations applies pending migrations up to target, zero meaning
// the latest. On success the snapshot is written immediately so a crash
// cannot leave the migrated state unrecorded. A failed step leaves the
// in-memory container partially migrated and does NOT save, so the
// previous snapshot stays authoritative.
func (s *adminService) RunMigrations(ctx context.Context, caller string, target uint64) (int, error) {
	var applied int
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		n, err := s.engine.Apply(c, target)
		applied = n
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "Migration run failed", 500)
		}
		if n > 0 {
			if err := snapshot.Save(s.cfg.SnapshotPath, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Migration run failed", "applied", applied, "error", err)
		return applied, err
	}
	s.cfg.Log.Info("Migration run complete", "applied", applied)
	return applied, nil
}

func (s *adminService) RollbackTo(ctx context.Context, caller string, target uint64) (int, error) {
	var rolled int
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		n, err := s.engine.RollbackTo(c, target)
		rolled = n
		if err != nil {
			return apperrors.Wrap(err, apperrors.CodeInternal, "Migration rollback failed", 500)
		}
		if n > 0 {
			if err := snapshot.Save(s.cfg.SnapshotPath, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Migration rollback failed", "rolled_back", rolled, "error", err)
		return rolled, err
	}
	s.cfg.Log.Info("Migration rollback complete", "rolled_back", rolled, "target", target)
	return rolled, nil
}

func (s *adminService) Operators(ctx context.Context, caller string) ([]string, error) {
	var out []string
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		out = c.OperatorList()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) AddOperator(ctx context.Context, caller, identity string) error {
	if identity == migration.AnonymousIdentity {
		return apperrors.InvalidInput("the anonymous identity cannot be an operator")
	}
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		if err := c.AddOperator(identity); err != nil {
			return apperrors.Conflict(err.Error())
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Operator added", "identity", identity, "by", caller)
	return nil
}

func (s *adminService) RemoveOperator(ctx context.Context, caller, identity string) error {
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		if err := c.RemoveOperator(identity); err != nil {
			return apperrors.NotFoundWithID("operator", identity)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Operator removed", "identity", identity, "by", caller)
	return nil
}

func (s *adminService) RebuildIndex(ctx context.Context, caller string) (int, error) {
	var inserted int
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		inserted = c.RebuildPaymentRefIndex()
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.cfg.Log.Info("Payment reference index rebuild", "inserted", inserted)
	return inserted, nil
}

func (s *adminService) ReindexPayments(ctx context.Context, caller string) (int, error) {
	var indexed int
	err := s.store.Borrow(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		n, err := c.ReindexPayments()
		if err != nil {
			return apperrors.Conflict(err.Error())
		}
		indexed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.cfg.Log.Info("Payment reference index reindexed", "entries", indexed)
	return indexed, nil
}

func (s *adminService) Stats(ctx context.Context, caller string) (*StoreStats, error) {
	var out *StoreStats
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		users, bookings, indexed := c.Counts()
		out = &StoreStats{
			Users:          users,
			Bookings:       bookings,
			IndexedRefs:    indexed,
			OperatorsCount: len(c.OperatorList()),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *adminService) SaveSnapshot(ctx context.Context, caller string) error {
	err := s.store.View(func(c *state.Container) error {
		if err := s.authorize(c, caller); err != nil {
			return err
		}
		return snapshot.Save(s.cfg.SnapshotPath, c)
	})
	if err != nil {
		return err
	}
	s.cfg.Log.Info("Snapshot saved", "path", s.cfg.SnapshotPath)
	return nil
}
