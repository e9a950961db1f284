package app

import (
	"context"
	"database/sql"
	"fmt"

	"dailywee/internal/config"
	"dailywee/internal/db"
	"dailywee/internal/engine"
	"dailywee/internal/migrate"
)

// Workspace bundles the opened leaderboard database with its config.
type Workspace struct {
	Dir    string
	DB     *sql.DB
	Config *config.Config
}

// Open loads the config (configFile when set, else the workspace file or
// defaults), opens the SQLite database under the state dir and brings the
// schema up to date.
func Open(ctx context.Context, dir, configFile string) (*Workspace, error) {
	cfg, err := config.LoadFile(dir, configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	conn, err := db.Open(db.Config{Workspace: dir})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := migrate.Migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Workspace{Dir: dir, DB: conn, Config: cfg}, nil
}

func (w *Workspace) Engine() engine.Engine {
	return engine.New(w.DB, w.Config)
}

func (w *Workspace) Close() error {
	return w.DB.Close()
}
