// Package mysql 提供RunRepository的MySQL实现。
package mysql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"github.com/LENAX/dag-engine/pkg/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_records (
	run_id      VARCHAR(64) PRIMARY KEY,
	workflow_id VARCHAR(128) NOT NULL,
	status      VARCHAR(16) NOT NULL,
	failed_node VARCHAR(255) NOT NULL DEFAULT '',
	error       TEXT NOT NULL,
	started_at  DATETIME(6) NOT NULL,
	finished_at DATETIME(6) NULL,
	INDEX idx_run_records_workflow (workflow_id, started_at)
)`

// runRepo MySQL实现（小写，不导出）
type runRepo struct {
	db *sqlx.DB
}

// NewRunRepo 打开数据库并创建RunRepository（对外导出的工厂方法）
// dsn 如 "user:pass@tcp(localhost:3306)/dagengine?parseTime=true"
func NewRunRepo(dsn string) (storage.RunRepository, *sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("打开数据库失败: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	repo, err := NewRunRepoWithDB(db)
	if err != nil {
		return nil, nil, err
	}
	return repo, db, nil
}

// NewRunRepoWithDB 使用已有的DB创建RunRepository（对外导出）
func NewRunRepoWithDB(db *sqlx.DB) (storage.RunRepository, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("初始化表结构失败: %w", err)
	}
	return &runRepo{db: db}, nil
}

// Save 实现存储接口
func (r *runRepo) Save(ctx context.Context, record *storage.RunRecord) error {
	_, err := r.db.NamedExecContext(ctx, `
		INSERT INTO run_records
			(run_id, workflow_id, status, failed_node, error, started_at, finished_at)
		VALUES
			(:run_id, :workflow_id, :status, :failed_node, :error, :started_at, :finished_at)`,
		record)
	if err != nil {
		return fmt.Errorf("保存运行记录失败: %w", err)
	}
	return nil
}

// UpdateFinished 实现存储接口
func (r *runRepo) UpdateFinished(ctx context.Context, record *storage.RunRecord) error {
	result, err := r.db.NamedExecContext(ctx, `
		UPDATE run_records
		SET status = :status, failed_node = :failed_node, error = :error,
			finished_at = :finished_at
		WHERE run_id = :run_id`,
		record)
	if err != nil {
		return fmt.Errorf("更新运行记录失败: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新运行记录失败: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("运行记录不存在: %s", record.RunID)
	}
	return nil
}

// GetByID 实现存储接口
func (r *runRepo) GetByID(ctx context.Context, runID string) (*storage.RunRecord, error) {
	var record storage.RunRecord
	err := r.db.GetContext(ctx, &record,
		`SELECT * FROM run_records WHERE run_id = ?`, runID)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("运行记录不存在: %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return &record, nil
}

// ListByWorkflow 实现存储接口
func (r *runRepo) ListByWorkflow(ctx context.Context, workflowID string, limit int) ([]*storage.RunRecord, error) {
	records := make([]*storage.RunRecord, 0)
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM run_records
		WHERE workflow_id = ?
		ORDER BY started_at DESC
		LIMIT ?`, workflowID, limit)
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return records, nil
}

// ListRecent 实现存储接口
func (r *runRepo) ListRecent(ctx context.Context, limit int) ([]*storage.RunRecord, error) {
	records := make([]*storage.RunRecord, 0)
	err := r.db.SelectContext(ctx, &records, `
		SELECT * FROM run_records
		ORDER BY started_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询运行记录失败: %w", err)
	}
	return records, nil
}
