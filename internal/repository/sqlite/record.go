// 文件路径: internal/repository/sqlite/record.go
// 模块说明: 这是 internal 模块里的 record 逻辑，下面的注释会用非常通俗的中文帮你理解每一步。
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/creamcroissant/fieldconf/internal/repository"
)

type recordRepo struct {
	db  *sql.DB
	now func() time.Time
}

func newRecordRepo(db *sql.DB) *recordRepo {
	return &recordRepo{db: db, now: time.Now}
}

func (r *recordRepo) Find(ctx context.Context, model, id string) (*repository.StoredRecord, error) {
	const query = `SELECT data, updated_at FROM records WHERE model = ? AND id = ?`
	var data string
	rec := &repository.StoredRecord{Model: model, ID: id}
	if err := r.db.QueryRowContext(ctx, query, model, id).Scan(&data, &rec.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	values, err := decodeValues(data)
	if err != nil {
		return nil, fmt.Errorf("decode record %s/%s: %w", model, id, err)
	}
	rec.Values = values

	relations, err := r.relations(ctx, model, id)
	if err != nil {
		return nil, err
	}
	rec.Relations = relations
	return rec, nil
}

func (r *recordRepo) relations(ctx context.Context, model, id string) (map[string][]string, error) {
	const query = `SELECT alias, related_key FROM record_relations WHERE model = ? AND id = ? ORDER BY alias, position`
	rows, err := r.db.QueryContext(ctx, query, model, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var alias, key string
		if err := rows.Scan(&alias, &key); err != nil {
			return nil, err
		}
		out[alias] = append(out[alias], key)
	}
	return out, rows.Err()
}

func (r *recordRepo) Save(ctx context.Context, rec *repository.StoredRecord) error {
	if rec == nil || rec.Model == "" {
		return repository.ErrInvalidRecord
	}
	data, err := encodeValues(rec.Values)
	if err != nil {
		return fmt.Errorf("encode record %s/%s: %w", rec.Model, rec.ID, err)
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	rec.UpdatedAt = r.now().Unix()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	const upsert = `INSERT INTO records(model, id, data, updated_at) VALUES(?, ?, ?, ?)
                    ON CONFLICT(model, id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`
	if _, err := tx.ExecContext(ctx, upsert, rec.Model, rec.ID, data, rec.UpdatedAt); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM record_relations WHERE model = ? AND id = ?`, rec.Model, rec.ID); err != nil {
		return err
	}

	aliases := make([]string, 0, len(rec.Relations))
	for alias := range rec.Relations {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases)
	const insertRelation = `INSERT INTO record_relations(model, id, alias, position, related_key) VALUES(?, ?, ?, ?, ?)`
	for _, alias := range aliases {
		for pos, key := range rec.Relations[alias] {
			if _, err := tx.ExecContext(ctx, insertRelation, rec.Model, rec.ID, alias, pos, key); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

func (r *recordRepo) Delete(ctx context.Context, model, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE model = ? AND id = ?`, model, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *recordRepo) List(ctx context.Context, filter repository.RecordFilter) ([]*repository.StoredRecord, error) {
	query := `SELECT id FROM records WHERE model = ? ORDER BY updated_at DESC, id`
	args := []any{filter.Model}
	if filter.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, filter.Limit, filter.Offset)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	list := make([]*repository.StoredRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := r.Find(ctx, filter.Model, id)
		if err != nil {
			return nil, err
		}
		list = append(list, rec)
	}
	return list, nil
}

func (r *recordRepo) Count(ctx context.Context, model string) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE model = ?`, model).Scan(&n)
	return n, err
}
