package pg

import (
	"context"
	"io/fs"

	_ "github.com/lib/pq"
	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
)

const (
	MigrateUp     = "up"
	MigrateDown   = "down"
	MigrateStatus = "status"
)

// Migrate runs a goose command against the write database. When fsys is nil the migrations
// are read from dir on disk.
func Migrate(ctx context.Context, cfg Config, fsys fs.FS, dir string, command string) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	goose.SetBaseFS(fsys)
	goose.SetLogger(logger.GetLogger())

	db, err := newSqlConnection(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	switch command {
	case MigrateUp:
		err = goose.UpContext(ctx, db, dir)
	case MigrateDown:
		err = goose.DownContext(ctx, db, dir)
	case MigrateStatus:
		err = goose.StatusContext(ctx, db, dir)
	default:
		return errors.Errorf("unknown migrate command %q", command)
	}
	return errors.Wrapf(err, "goose %s", command)
}
