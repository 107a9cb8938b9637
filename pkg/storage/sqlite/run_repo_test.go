package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/dag-engine/pkg/storage"
	"github.com/LENAX/dag-engine/pkg/storage/sqlite"
)

func setupRepo(t *testing.T) storage.RunRepository {
	t.Helper()
	repo, db, err := sqlite.NewRunRepo(":memory:")
	require.NoError(t, err, "创建Repository失败")
	// 内存库绑定在单个连接上
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return repo
}

func TestSaveAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	started := time.Now().UTC().Truncate(time.Millisecond)
	record := &storage.RunRecord{
		RunID:      "run-1",
		WorkflowID: "wf-1",
		Status:     storage.StatusRunning,
		StartedAt:  started,
	}
	require.NoError(t, repo.Save(ctx, record), "保存运行记录失败")

	got, err := repo.GetByID(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "wf-1", got.WorkflowID)
	assert.Equal(t, storage.StatusRunning, got.Status)
	assert.Empty(t, got.FailedNode)
	assert.Nil(t, got.FinishedAt)

	_, err = repo.GetByID(ctx, "missing")
	assert.Error(t, err)
}

func TestUpdateFinished(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	record := &storage.RunRecord{
		RunID:      "run-2",
		WorkflowID: "wf-1",
		Status:     storage.StatusRunning,
		StartedAt:  time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, record))

	finished := time.Now().UTC()
	record.Status = storage.StatusFailed
	record.FailedNode = "C"
	record.Error = "run C failed: boom"
	record.FinishedAt = &finished
	require.NoError(t, repo.UpdateFinished(ctx, record), "更新运行记录失败")

	got, err := repo.GetByID(ctx, "run-2")
	require.NoError(t, err)
	assert.Equal(t, storage.StatusFailed, got.Status)
	assert.Equal(t, "C", got.FailedNode)
	assert.Equal(t, "run C failed: boom", got.Error)
	require.NotNil(t, got.FinishedAt)

	// 更新不存在的记录
	missing := &storage.RunRecord{RunID: "missing", Status: storage.StatusSucceeded}
	assert.Error(t, repo.UpdateFinished(ctx, missing))
}

func TestList(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	base := time.Now().UTC().Add(-time.Hour)
	for i, wf := range []string{"wf-a", "wf-a", "wf-b"} {
		record := &storage.RunRecord{
			RunID:      "run-" + string(rune('0'+i)),
			WorkflowID: wf,
			Status:     storage.StatusSucceeded,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Save(ctx, record))
	}

	byWorkflow, err := repo.ListByWorkflow(ctx, "wf-a", 10)
	require.NoError(t, err)
	require.Len(t, byWorkflow, 2)
	// 按开始时间倒序
	assert.Equal(t, "run-1", byWorkflow[0].RunID)
	assert.Equal(t, "run-0", byWorkflow[1].RunID)

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "run-2", recent[0].RunID)
}
