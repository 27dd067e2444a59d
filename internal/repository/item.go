package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/hray3182/plannerd/internal/database"
	"github.com/hray3182/plannerd/internal/models"
	"github.com/hray3182/plannerd/internal/recur"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("item not found")

const itemColumns = `item_id, title, description, status, due_at, remind_at, repeat_rule, completed_dates, skipped_dates, created_at, updated_at`

// ItemRepository persists items in PostgreSQL. Marker sets and the repeat
// rule travel through text columns; decoding is lenient so corrupt stored
// values degrade to empty instead of blocking the item.
type ItemRepository struct {
	db  *database.DB
	loc *time.Location
	log *zap.SugaredLogger
}

func NewItemRepository(db *database.DB, loc *time.Location, log *zap.SugaredLogger) *ItemRepository {
	if loc == nil {
		loc = time.Local
	}
	return &ItemRepository{db: db, loc: loc, log: log}
}

func (r *ItemRepository) Create(ctx context.Context, item *models.Item) error {
	_, err := r.db.Pool.Exec(ctx,
		`INSERT INTO items (item_id, title, description, status, due_at, remind_at, repeat_rule, completed_dates, skipped_dates, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		item.ID, item.Title, item.Description, item.Status, item.DueAt, item.RemindAt,
		recur.EncodeRule(item.Repeat, item.Custom),
		item.CompletedDates.Encode(), item.SkippedDates.Encode(),
		item.CreatedAt, item.UpdatedAt,
	)
	return err
}

func (r *ItemRepository) Get(ctx context.Context, id string) (*models.Item, error) {
	row := r.db.Pool.QueryRow(ctx,
		`SELECT `+itemColumns+` FROM items WHERE item_id = $1`, id)
	item, err := r.scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// ListActive returns every non-archived item, soonest reminder first. Done
// one-time items are included so the UI can offer undo; the engine filters on
// status where it matters.
func (r *ItemRepository) ListActive(ctx context.Context) ([]*models.Item, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT `+itemColumns+` FROM items WHERE status <> $1
		 ORDER BY remind_at ASC NULLS LAST, created_at DESC`,
		models.StatusArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *ItemRepository) Update(ctx context.Context, item *models.Item) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE items SET title = $1, description = $2, status = $3, due_at = $4, remind_at = $5, repeat_rule = $6, updated_at = $7
		 WHERE item_id = $8`,
		item.Title, item.Description, item.Status, item.DueAt, item.RemindAt,
		recur.EncodeRule(item.Repeat, item.Custom), item.UpdatedAt, item.ID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) UpdateMarkers(ctx context.Context, id string, completed, skipped models.DateSet) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE items SET completed_dates = $1, skipped_dates = $2, updated_at = CURRENT_TIMESTAMP
		 WHERE item_id = $3`,
		completed.Encode(), skipped.Encode(), id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) SetStatus(ctx context.Context, id string, status models.Status) error {
	tag, err := r.db.Pool.Exec(ctx,
		`UPDATE items SET status = $1, updated_at = CURRENT_TIMESTAMP WHERE item_id = $2`,
		status, id,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM items WHERE item_id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *ItemRepository) scanItem(row rowScanner) (*models.Item, error) {
	var (
		item            models.Item
		ruleRaw         string
		completedRaw    string
		skippedRaw      string
		dueAt, remindAt *time.Time
	)
	if err := row.Scan(&item.ID, &item.Title, &item.Description, &item.Status,
		&dueAt, &remindAt, &ruleRaw, &completedRaw, &skippedRaw,
		&item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}

	item.DueAt = r.localize(dueAt)
	item.RemindAt = r.localize(remindAt)
	item.CreatedAt = *r.localize(&item.CreatedAt)
	item.UpdatedAt = *r.localize(&item.UpdatedAt)

	repeat, custom, err := recur.DecodeRule(ruleRaw)
	if err != nil {
		r.log.Warnw("corrupt repeat rule, treating item as one-time", "item_id", item.ID, "error", err)
	}
	item.Repeat = repeat
	item.Custom = custom
	item.CompletedDates = models.ParseDateSet(completedRaw)
	item.SkippedDates = models.ParseDateSet(skippedRaw)
	return &item, nil
}

// localize reinterprets a stored timestamp's clock values in the repository
// location. The column is TIMESTAMP without timezone and pgx reads it as UTC,
// but the stored values are local wall time.
func (r *ItemRepository) localize(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	local := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), r.loc)
	return &local
}
