package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/referencedata/domain"
	"github.com/wyfcoding/futurestrading/pkg/logger"
)

// SnapshotStore 以本地 JSON 文件保存交易规则快照
type SnapshotStore struct {
	path string
}

var _ domain.SnapshotStore = (*SnapshotStore)(nil)

// NewSnapshotStore 创建文件快照仓储
func NewSnapshotStore(path string) *SnapshotStore {
	return &SnapshotStore{path: path}
}

func (s *SnapshotStore) Load(ctx context.Context) (*exchange.ExchangeInfo, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Info(ctx, "Exchange info snapshot not found, will fetch from API", "path", s.path)
		} else {
			logger.Warn(ctx, "Failed to read exchange info snapshot", "path", s.path, "error", err)
		}
		return nil, false
	}

	var info exchange.ExchangeInfo
	if err := json.Unmarshal(data, &info); err != nil {
		logger.Warn(ctx, "Exchange info snapshot is corrupt, ignoring", "path", s.path, "error", err)
		return nil, false
	}
	logger.Info(ctx, "Loaded exchange info from snapshot", "path", s.path, "symbols", len(info.Symbols))
	return &info, true
}

// Save 先写临时文件再原子替换
func (s *SnapshotStore) Save(ctx context.Context, info *exchange.ExchangeInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal exchange info: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace snapshot file: %w", err)
	}

	logger.Info(ctx, "Saved exchange info snapshot", "path", s.path, "symbols", len(info.Symbols))
	return nil
}
