package database

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

var ErrDowngrade = errors.New("database version downgrade")

// Hooks 版本变化时的回调，均在同一个事务中执行
type Hooks struct {
	// OnCreate 数据库为空（user_version 为 0）时调用
	OnCreate func(ctx context.Context, exec Executor) error
	// OnUpgrade 已有版本低于目标版本时调用
	OnUpgrade func(ctx context.Context, exec Executor, oldVersion, newVersion int) error
	// OnDowngrade 已有版本高于目标版本时调用，为空时返回 ErrDowngrade
	OnDowngrade func(ctx context.Context, exec Executor, oldVersion, newVersion int) error
}

// Open 根据 PRAGMA user_version 执行建库或升级回调，成功后把版本写为 version
func Open(ctx context.Context, engine Engine, version int, hooks Hooks) error {
	if version < 1 {
		return errors.Errorf("version must be >= 1, got %d", version)
	}

	current, err := UserVersion(ctx, engine)
	if err != nil {
		return err
	}
	if current == version {
		return nil
	}

	return WithTx(ctx, engine, func(tx Tx) error {
		switch {
		case current == 0:
			if hooks.OnCreate != nil {
				if err := hooks.OnCreate(ctx, tx); err != nil {
					return errors.WithMessage(err, "OnCreate failed")
				}
			}
		case current < version:
			if hooks.OnUpgrade != nil {
				if err := hooks.OnUpgrade(ctx, tx, current, version); err != nil {
					return errors.WithMessagef(err, "OnUpgrade %d -> %d failed", current, version)
				}
			}
		default:
			if hooks.OnDowngrade == nil {
				return errors.Wrapf(ErrDowngrade, "%d -> %d", current, version)
			}
			if err := hooks.OnDowngrade(ctx, tx, current, version); err != nil {
				return errors.WithMessagef(err, "OnDowngrade %d -> %d failed", current, version)
			}
		}

		// PRAGMA 不支持参数绑定
		if _, err := tx.Exec(ctx, fmt.Sprintf("PRAGMA user_version = %d", version)); err != nil {
			return storageError("set user_version", "", err)
		}
		return nil
	})
}

// UserVersion 读取 PRAGMA user_version
func UserVersion(ctx context.Context, exec Executor) (int, error) {
	cursor, err := exec.Query(ctx, "PRAGMA user_version")
	if err != nil {
		return 0, storageError("get user_version", "", err)
	}
	defer cursor.Close()
	if !cursor.MoveToFirst() {
		return 0, nil
	}
	v, err := cursor.GetInt64(0)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
