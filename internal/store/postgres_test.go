package store

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// traceRecorder keeps every statement gorm reports and any error with it.
type traceRecorder struct {
	mu   sync.Mutex
	sqls []string
	errs []error
}

func (r *traceRecorder) LogMode(logger.LogLevel) logger.Interface { return r }
func (r *traceRecorder) Info(context.Context, string, ...any)    {}
func (r *traceRecorder) Warn(context.Context, string, ...any)    {}
func (r *traceRecorder) Error(context.Context, string, ...any)   {}

func (r *traceRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), err error) {
	sql, _ := fc()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sqls = append(r.sqls, sql)
	if err != nil {
		r.errs = append(r.errs, err)
	}
}

// TestPostgresGetMissingIsQuiet runs Get against a dry-run connection, so no
// database is needed, and checks that a missing row is neither an error nor
// logged as one.
func TestPostgresGetMissingIsQuiet(t *testing.T) {
	rec := &traceRecorder{}
	db, err := gorm.Open(postgres.Open("host=localhost user=carnival dbname=carnival sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               rec,
	})
	if err != nil {
		t.Fatalf("open dry-run connection: %v", err)
	}
	p := &Postgres{db: db}

	_, found, err := p.Get(context.Background(), "ducks")
	if err != nil || found {
		t.Fatalf("Get of missing record = found %v, err %v; want false, nil", found, err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.errs) != 0 {
		t.Errorf("gorm traced errors for a missing record: %v", rec.errs)
	}
	if len(rec.sqls) != 1 || !strings.Contains(rec.sqls[0], "LIMIT 1") {
		t.Errorf("statements = %q, want one limited select", rec.sqls)
	}
}
