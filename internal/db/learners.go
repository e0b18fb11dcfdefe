package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/arlen/cardbox/internal/logger"
	"github.com/arlen/cardbox/internal/models"
)

func (db *DB) UpsertLearner(ctx context.Context, name string) (*models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("upserting learner: name=%s", name)

	var l models.Learner
	err := db.QueryRowContext(ctx, `
INSERT INTO learners (name)
VALUES (?)
ON CONFLICT(name) DO UPDATE SET name = excluded.name
RETURNING id, name, created_at
`, name).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if err != nil {
		log.Error("failed to upsert learner: %v", err)
		return nil, err
	}
	log.Debug("learner upserted: id=%d", l.ID)
	return &l, nil
}

func (db *DB) GetLearner(ctx context.Context, id int64) (*models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("getting learner: id=%d", id)

	var l models.Learner
	err := db.QueryRowContext(ctx, `
SELECT id, name, created_at
FROM learners
WHERE id = ?
`, id).Scan(&l.ID, &l.Name, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learner not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learner: %v", err)
		return nil, err
	}
	return &l, nil
}

func (db *DB) ListLearners(ctx context.Context) ([]models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("listing learners")

	rows, err := db.QueryContext(ctx, `
SELECT id, name, created_at
FROM learners
ORDER BY created_at ASC
`)
	if err != nil {
		log.Error("failed to list learners: %v", err)
		return nil, err
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		var l models.Learner
		if err := rows.Scan(&l.ID, &l.Name, &l.CreatedAt); err != nil {
			log.Error("failed to scan learner row: %v", err)
			return nil, err
		}
		learners = append(learners, l)
	}
	log.Debug("found %d learners", len(learners))
	return learners, rows.Err()
}

func (db *DB) DeleteLearner(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("db")
	log.Debug("deleting learner: id=%d", id)

	_, err := db.ExecContext(ctx, `DELETE FROM learners WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete learner: %v", err)
	}
	return err
}
