package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/agentstation/liftmap/pkg/catalogs"
	"github.com/agentstation/liftmap/pkg/errors"
	"github.com/agentstation/utc"
)

// runner is satisfied by *sql.DB and *sql.Tx.
type runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// rowsPerStatement keeps multi-row inserts well under SQLite's bound parameter limit.
const rowsPerStatement = 200

var exerciseColumns = []string{
	"id", "stable_id", "name", "slug",
	"primary_muscles", "secondary_muscles", "required_equipment", "optional_equipment",
	"instructions", "cautions", "aliases", "media",
	"category", "pattern", "level", "force", "mechanic",
	"source", "external_id", "source_key", "source_updated_at",
	"progressions", "regressions", "created_at", "updated_at",
}

// upsertSet updates every column except the keys and created_at.
var upsertSet = func() string {
	var sets []string
	for _, c := range exerciseColumns {
		switch c {
		case "id", "stable_id", "created_at":
			continue
		}
		sets = append(sets, fmt.Sprintf("%s = excluded.%s", c, c))
	}
	return "ON CONFLICT(stable_id) DO UPDATE SET " + strings.Join(sets, ", ")
}()

var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

// queries implements store.Tx over a runner.
type queries struct {
	run runner
}

func (q *queries) count(ctx context.Context, table string) (int, error) {
	query, args, err := sq.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, errors.NewPersistenceError("count "+table, err)
	}
	var n int
	if err := q.run.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, errors.NewPersistenceError("count "+table, err)
	}
	return n, nil
}

// CountExercises implements store.Reader.
func (q *queries) CountExercises(ctx context.Context) (int, error) {
	return q.count(ctx, "exercises")
}

// CountEquipment implements store.Reader.
func (q *queries) CountEquipment(ctx context.Context) (int, error) {
	return q.count(ctx, "equipment")
}

// ExerciseByStableID implements store.Reader.
func (q *queries) ExerciseByStableID(ctx context.Context, id string) (*catalogs.Exercise, error) {
	list, err := q.selectExercises(ctx, sq.Select(exerciseColumns...).From("exercises").Where(squirrel.Eq{"stable_id": id}))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errors.NewNotFoundError("exercise", id)
	}
	return &list[0], nil
}

// ExercisesByStableIDs implements store.Reader.
func (q *queries) ExercisesByStableIDs(ctx context.Context, ids []string) ([]catalogs.Exercise, error) {
	out := []catalogs.Exercise{}
	for start := 0; start < len(ids); start += rowsPerStatement {
		chunk := ids[start:min(start+rowsPerStatement, len(ids))]
		list, err := q.selectExercises(ctx, sq.Select(exerciseColumns...).
			From("exercises").
			Where(squirrel.Eq{"stable_id": chunk}).
			OrderBy("name", "stable_id"))
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
	}
	return out, nil
}

// ListExercises implements store.Reader.
func (q *queries) ListExercises(ctx context.Context) ([]catalogs.Exercise, error) {
	return q.selectExercises(ctx, sq.Select(exerciseColumns...).From("exercises").OrderBy("name", "stable_id"))
}

// ListEquipment implements store.Reader.
func (q *queries) ListEquipment(ctx context.Context) ([]catalogs.Equipment, error) {
	query, args, err := sq.Select("id", "name", "category", "aliases").From("equipment").OrderBy("id").ToSql()
	if err != nil {
		return nil, errors.NewPersistenceError("list equipment", err)
	}
	rows, err := q.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewPersistenceError("list equipment", err)
	}
	defer rows.Close()

	out := []catalogs.Equipment{}
	for rows.Next() {
		var (
			eq      catalogs.Equipment
			aliases string
		)
		if err := rows.Scan(&eq.ID, &eq.Name, &eq.Category, &aliases); err != nil {
			return nil, errors.NewPersistenceError("scan equipment", err)
		}
		if eq.Aliases, err = decodeList(aliases); err != nil {
			return nil, errors.NewPersistenceError("scan equipment", err)
		}
		out = append(out, eq)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("list equipment", err)
	}
	return out, nil
}

// Meta implements store.Reader.
func (q *queries) Meta(ctx context.Context, key string) ([]byte, error) {
	query, args, err := sq.Select("value").From("meta").Where(squirrel.Eq{"key": key}).ToSql()
	if err != nil {
		return nil, errors.NewPersistenceError("read meta", err)
	}
	var value []byte
	if err := q.run.QueryRowContext(ctx, query, args...).Scan(&value); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.NewPersistenceError("read meta", err)
	}
	return value, nil
}

// InsertExercises implements store.Writer.
func (q *queries) InsertExercises(ctx context.Context, exercises []catalogs.Exercise) error {
	return q.writeExercises(ctx, "insert exercises", exercises, "")
}

// UpsertExercises implements store.Writer.
func (q *queries) UpsertExercises(ctx context.Context, exercises []catalogs.Exercise) error {
	return q.writeExercises(ctx, "upsert exercises", exercises, upsertSet)
}

func (q *queries) writeExercises(ctx context.Context, op string, exercises []catalogs.Exercise, suffix string) error {
	for start := 0; start < len(exercises); start += rowsPerStatement {
		chunk := exercises[start:min(start+rowsPerStatement, len(exercises))]
		b := sq.Insert("exercises").Columns(exerciseColumns...)
		for i := range chunk {
			values, err := exerciseValues(&chunk[i])
			if err != nil {
				return errors.NewPersistenceError(op, err)
			}
			b = b.Values(values...)
		}
		if suffix != "" {
			b = b.Suffix(suffix)
		}
		query, args, err := b.ToSql()
		if err != nil {
			return errors.NewPersistenceError(op, err)
		}
		if _, err := q.run.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return errors.WrapResource("insert", "exercise", "", errors.ErrAlreadyExists)
			}
			return errors.NewPersistenceError(op, err)
		}
	}
	return nil
}

// InsertEquipment implements store.Writer.
func (q *queries) InsertEquipment(ctx context.Context, equipment []catalogs.Equipment) error {
	if len(equipment) == 0 {
		return nil
	}
	b := sq.Insert("equipment").Columns("id", "name", "category", "aliases")
	for _, eq := range equipment {
		if eq.ID == "" {
			return errors.NewValidationError("id", "", "equipment ID is required")
		}
		aliases, err := encodeList(eq.Aliases)
		if err != nil {
			return errors.NewPersistenceError("insert equipment", err)
		}
		b = b.Values(eq.ID, eq.Name, eq.Category, aliases)
	}
	query, args, err := b.Suffix("ON CONFLICT(id) DO NOTHING").ToSql()
	if err != nil {
		return errors.NewPersistenceError("insert equipment", err)
	}
	if _, err := q.run.ExecContext(ctx, query, args...); err != nil {
		return errors.NewPersistenceError("insert equipment", err)
	}
	return nil
}

// PutMeta implements store.Writer.
func (q *queries) PutMeta(ctx context.Context, key string, value []byte) error {
	query, args, err := sq.Insert("meta").
		Columns("key", "value", "updated_at").
		Values(key, value, encodeTime(utc.Now())).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at").
		ToSql()
	if err != nil {
		return errors.NewPersistenceError("write meta", err)
	}
	if _, err := q.run.ExecContext(ctx, query, args...); err != nil {
		return errors.NewPersistenceError("write meta", err)
	}
	return nil
}

func (q *queries) selectExercises(ctx context.Context, b squirrel.SelectBuilder) ([]catalogs.Exercise, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.NewPersistenceError("select exercises", err)
	}
	rows, err := q.run.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewPersistenceError("select exercises", err)
	}
	defer rows.Close()

	out := []catalogs.Exercise{}
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, errors.NewPersistenceError("scan exercise", err)
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewPersistenceError("select exercises", err)
	}
	return out, nil
}

func exerciseValues(ex *catalogs.Exercise) ([]any, error) {
	if ex.StableID == "" {
		return nil, fmt.Errorf("exercise %q has no stable ID", ex.Name)
	}
	values := []any{ex.ID, ex.StableID, ex.Name, ex.Slug}
	for _, list := range [][]string{
		ex.PrimaryMuscles, ex.SecondaryMuscles, ex.RequiredEquipment, ex.OptionalEquipment,
		ex.Instructions, ex.Cautions, ex.Aliases, ex.Media,
	} {
		s, err := encodeList(list)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
	}
	values = append(values,
		ex.Category, ex.Pattern, ex.Level, ex.Force, ex.Mechanic,
		string(ex.Source), ex.ExternalID, ex.SourceKey, encodeTime(ex.SourceUpdatedAt),
	)
	for _, list := range [][]string{ex.Progressions, ex.Regressions} {
		s, err := encodeList(list)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
	}
	return append(values, encodeTime(ex.CreatedAt), encodeTime(ex.UpdatedAt)), nil
}

func scanExercise(rows *sql.Rows) (catalogs.Exercise, error) {
	var (
		ex                                      catalogs.Exercise
		source, sourceUpdated, created, updated string
		lists                                   [10]string
	)
	err := rows.Scan(
		&ex.ID, &ex.StableID, &ex.Name, &ex.Slug,
		&lists[0], &lists[1], &lists[2], &lists[3],
		&lists[4], &lists[5], &lists[6], &lists[7],
		&ex.Category, &ex.Pattern, &ex.Level, &ex.Force, &ex.Mechanic,
		&source, &ex.ExternalID, &ex.SourceKey, &sourceUpdated,
		&lists[8], &lists[9], &created, &updated,
	)
	if err != nil {
		return ex, err
	}
	ex.Source = catalogs.Source(source)

	targets := []*[]string{
		&ex.PrimaryMuscles, &ex.SecondaryMuscles, &ex.RequiredEquipment, &ex.OptionalEquipment,
		&ex.Instructions, &ex.Cautions, &ex.Aliases, &ex.Media,
		&ex.Progressions, &ex.Regressions,
	}
	for i, target := range targets {
		if *target, err = decodeList(lists[i]); err != nil {
			return ex, err
		}
	}
	if ex.SourceUpdatedAt, err = decodeTime(sourceUpdated); err != nil {
		return ex, err
	}
	if ex.CreatedAt, err = decodeTime(created); err != nil {
		return ex, err
	}
	if ex.UpdatedAt, err = decodeTime(updated); err != nil {
		return ex, err
	}
	return ex, nil
}

func isUniqueViolation(err error) bool {
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
