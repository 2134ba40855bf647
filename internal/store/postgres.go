package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"carnival/internal/types"
)

// GameRecordModel is the gorm row for one game's history.
type GameRecordModel struct {
	ID        string         `gorm:"primaryKey"`
	Results   datatypes.JSON `gorm:"type:jsonb;not null"`
	UpdatedAt time.Time
}

func (GameRecordModel) TableName() string {
	return "game_records"
}

// Postgres stores records through gorm.
type Postgres struct {
	db *gorm.DB
}

// OpenPostgres connects with dsn and auto-migrates the record table.
func OpenPostgres(dsn string) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required for the postgres store")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return NewGorm(db)
}

// NewGorm wraps an existing connection.
func NewGorm(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&GameRecordModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (types.GameRecord, bool, error) {
	// A game with no history yet shows up as zero rows, not as an error.
	var row GameRecordModel
	res := p.db.WithContext(ctx).Where("id = ?", id).Limit(1).Find(&row)
	if res.Error != nil {
		return types.GameRecord{}, false, wrap("get", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return types.GameRecord{}, false, nil
	}

	record := types.GameRecord{ID: row.ID}
	if err := json.Unmarshal(row.Results, &record.Results); err != nil {
		return types.GameRecord{}, false, wrap("get", id, fmt.Errorf("unmarshal results: %w", err))
	}
	return record, true, nil
}

func (p *Postgres) Put(ctx context.Context, record types.GameRecord) error {
	if err := validateRecord(record); err != nil {
		return wrap("put", record.ID, err)
	}
	results := record.Results
	if results == nil {
		results = []types.PlayResult{}
	}
	payload, err := json.Marshal(results)
	if err != nil {
		return wrap("put", record.ID, fmt.Errorf("marshal results: %w", err))
	}

	row := GameRecordModel{ID: record.ID, Results: datatypes.JSON(payload), UpdatedAt: time.Now().UTC()}
	err = p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"results", "updated_at"}),
	}).Create(&row).Error
	return wrap("put", record.ID, err)
}

func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
