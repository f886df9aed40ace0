package cli

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/spf13/cobra"

	"route-assignment-service/internal/adapters/repositories"
	"route-assignment-service/internal/config"
	"route-assignment-service/internal/platform/db"
)

// store is an open history database.
type store struct {
	conn    *sql.DB
	dialect db.Dialect
}

func (s *store) Close() error { return s.conn.Close() }

func (s *store) affinity() *repositories.SQLAffinityRepository {
	return repositories.NewSQLAffinityRepository(s.conn, s.dialect)
}

func (s *store) history() *repositories.SQLAssignmentRepository {
	return repositories.NewSQLAssignmentRepository(s.conn, s.dialect)
}

// openStore connects to DATABASE_URL, or the SQLite file named by --db or
// DB_PATH, and makes sure the schema exists.
func openStore(ctx context.Context, cmd *cobra.Command) (*store, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		path = config.Get("DB_PATH", "data/app.db")
	}

	conn, dialect, err := db.OpenFromEnv(config.Get("DATABASE_URL", ""), path)
	if err != nil {
		return nil, err
	}
	if err := repositories.InitSchema(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	return &store{conn: conn, dialect: dialect}, nil
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("db", "", "SQLite database path (default $DB_PATH or data/app.db; ignored when $DATABASE_URL is set)")
}

func loadRules(cmd *cobra.Command) (config.Rules, error) {
	path, _ := cmd.Flags().GetString("rules")
	if path == "" {
		path = config.Get("RULES_PATH", "")
	}
	return config.LoadRules(path)
}

func addRulesFlag(cmd *cobra.Command) {
	cmd.Flags().String("rules", "", "YAML business rules (default $RULES_PATH)")
}
