package main

import (
	"flag"
	"fmt"

	"stayvault/internal/migration"
	"stayvault/internal/snapshot"
	"stayvault/internal/state"
	"stayvault/pkg/config"
)

const JobName = "snapshot-migration"

func main() {
	var (
		target     = flag.Uint64("target", 0, "migrate up to this schema version (0 = latest)")
		rollbackTo = flag.Uint64("rollback-to", 0, "roll back down to this schema version instead of migrating up")
		dryRun     = flag.Bool("dry-run", false, "report pending migrations without applying them")
	)
	flag.Parse()

	cfg := config.Load(JobName)
	cfg.Log.Info("Starting snapshot migration job", "snapshot", cfg.SnapshotPath)

	container, err := snapshot.Load(cfg.SnapshotPath)
	if err != nil {
		cfg.Log.Fatal("Failed to restore snapshot", "path", cfg.SnapshotPath, "error", err)
	}

	engine, err := migration.DefaultEngine(cfg.Log, cfg.BootstrapOperators)
	if err != nil {
		cfg.Log.Fatal("Failed to build migration engine", "error", err)
	}

	version, _ := container.SchemaVersionInfo()
	cfg.Log.Info("Snapshot loaded", "current_version", version, "latest_version", engine.Latest())

	if *dryRun {
		pending := engine.Pending(container)
		if len(pending) == 0 {
			fmt.Println("Snapshot is up to date.")
			return
		}
		for _, step := range pending {
			fmt.Printf("pending: %d %s\n", step.Version(), step.Description())
		}
		return
	}

	if *rollbackTo != 0 {
		rolled, err := engine.RollbackTo(container, *rollbackTo)
		if err != nil {
			cfg.Log.Fatal("Rollback failed", "rolled_back", rolled, "error", err)
		}
		if rolled == 0 {
			fmt.Println("Nothing to roll back.")
			return
		}
		persist(cfg, container)
		fmt.Printf("Rolled back %d migration(s) to version %d.\n", rolled, *rollbackTo)
		return
	}

	applied, err := engine.Apply(container, *target)
	if err != nil {
		// The snapshot on disk is untouched; the failed run only lived
		// in memory.
		cfg.Log.Fatal("Migration failed", "applied", applied, "error", err)
	}
	if applied == 0 {
		fmt.Println("Snapshot is up to date.")
		return
	}
	persist(cfg, container)

	version, description := container.SchemaVersionInfo()
	fmt.Printf("Applied %d migration(s); snapshot now at version %d (%s).\n", applied, version, description)
}

func persist(cfg *config.Config, c *state.Container) {
	if err := snapshot.Save(cfg.SnapshotPath, c); err != nil {
		cfg.Log.Fatal("Failed to write migrated snapshot", "path", cfg.SnapshotPath, "error", err)
	}
}
