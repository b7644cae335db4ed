package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"findmypet-search/internal/domain/searches"
)

type SearchesRepo struct {
	db *sql.DB
}

func NewSearchesRepo(db *sql.DB) *SearchesRepo {
	return &SearchesRepo{db: db}
}

const searchColumns = `
	id, owner_user_id,
	name, species, breed, age,
	description, images,
	last_seen_location, last_seen_lat, last_seen_lng, last_seen_at,
	status, search_radius_km, search_sources,
	status_notes, found_at, last_confirmed_match_at, confirmed_match_count,
	created_at, updated_at`

func (r *SearchesRepo) Create(ctx context.Context, p searches.Search) error {
	images, sources, err := marshalLists(p)
	if err != nil {
		return err
	}
	lat, lng := coords(p.LastSeen.Coordinates)

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO lost_pets (`+searchColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
	`,
		p.ID,
		p.OwnerUserID,
		p.Subject.Name,
		string(p.Subject.Species),
		p.Subject.Breed,
		toNullInt(p.Subject.Age),
		p.Description,
		images,
		p.LastSeen.Location,
		lat,
		lng,
		p.LastSeen.Date,
		string(p.Status),
		p.SearchConfig.RadiusKm,
		sources,
		p.StatusNotes,
		toNullTime(p.FoundAt),
		toNullTime(p.LastConfirmedMatchAt),
		p.ConfirmedMatchCount,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *SearchesRepo) GetByID(ctx context.Context, id string) (searches.Search, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return searches.Search{}, searches.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+searchColumns+` FROM lost_pets WHERE id = $1`, id)
	return scanSearch(row)
}

func (r *SearchesRepo) ListByOwner(ctx context.Context, ownerUserID string, f searches.ListFilter) ([]searches.Search, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM lost_pets
		WHERE owner_user_id = $1 AND ($2 = '' OR status = $2)
	`, ownerUserID, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+searchColumns+`
		FROM lost_pets
		WHERE owner_user_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC, id ASC
		LIMIT $3 OFFSET $4
	`, ownerUserID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]searches.Search, 0)
	for rows.Next() {
		p, err := scanSearch(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}
	return out, total, rows.Err()
}

// Mutate bloquea la fila (FOR UPDATE), aplica fn y persiste los campos mutables.
func (r *SearchesRepo) Mutate(ctx context.Context, id string, fn searches.MutateFunc) (searches.Search, error) {
	var out searches.Search
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := lockSearch(ctx, tx, id)
		if err != nil {
			return err
		}
		next := cur
		if err := fn(&next); err != nil {
			return err
		}
		next.ID, next.OwnerUserID, next.CreatedAt = cur.ID, cur.OwnerUserID, cur.CreatedAt

		images, sources, err := marshalLists(next)
		if err != nil {
			return err
		}
		lat, lng := coords(next.LastSeen.Coordinates)

		_, err = tx.ExecContext(ctx, `
			UPDATE lost_pets SET
				name = $2,
				breed = $3,
				age = $4,
				description = $5,
				images = $6,
				last_seen_location = $7,
				last_seen_lat = $8,
				last_seen_lng = $9,
				last_seen_at = $10,
				status = $11,
				search_radius_km = $12,
				search_sources = $13,
				status_notes = $14,
				found_at = $15,
				updated_at = $16
			WHERE id = $1
		`,
			next.ID,
			next.Subject.Name,
			next.Subject.Breed,
			toNullInt(next.Subject.Age),
			next.Description,
			images,
			next.LastSeen.Location,
			lat,
			lng,
			next.LastSeen.Date,
			string(next.Status),
			next.SearchConfig.RadiusKm,
			sources,
			next.StatusNotes,
			toNullTime(next.FoundAt),
			next.UpdatedAt,
		)
		if err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return searches.Search{}, err
	}
	return out, nil
}

// DeleteCascade borra matches y búsqueda en la misma transacción, con la búsqueda bloqueada.
func (r *SearchesRepo) DeleteCascade(ctx context.Context, id string, guard searches.DeleteGuard) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		cur, err := lockSearch(ctx, tx, id)
		if err != nil {
			return err
		}
		if guard != nil {
			if err := guard(cur); err != nil {
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM matches WHERE pet_id = $1`, id); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM lost_pets WHERE id = $1`, id)
		return err
	})
}

func (r *SearchesRepo) StatusCounts(ctx context.Context, ownerUserID string) (map[searches.Status]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM lost_pets
		WHERE owner_user_id = $1
		GROUP BY status
	`, ownerUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[searches.Status]int)
	for rows.Next() {
		var st string
		var n int
		if err := rows.Scan(&st, &n); err != nil {
			return nil, err
		}
		out[searches.Status(st)] = n
	}
	return out, rows.Err()
}

func lockSearch(ctx context.Context, tx *sql.Tx, id string) (searches.Search, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+searchColumns+` FROM lost_pets WHERE id = $1 FOR UPDATE`, id)
	return scanSearch(row)
}

func scanSearch(row scanner) (searches.Search, error) {
	var (
		p                      searches.Search
		species, status        string
		age                    sql.NullInt64
		images, sources        []byte
		lat, lng               sql.NullFloat64
		foundAt, lastConfirmed sql.NullTime
	)
	if err := row.Scan(
		&p.ID,
		&p.OwnerUserID,
		&p.Subject.Name,
		&species,
		&p.Subject.Breed,
		&age,
		&p.Description,
		&images,
		&p.LastSeen.Location,
		&lat,
		&lng,
		&p.LastSeen.Date,
		&status,
		&p.SearchConfig.RadiusKm,
		&sources,
		&p.StatusNotes,
		&foundAt,
		&lastConfirmed,
		&p.ConfirmedMatchCount,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return searches.Search{}, searches.ErrNotFound
		}
		return searches.Search{}, err
	}

	p.Subject.Species = searches.Species(species)
	p.Status = searches.Status(status)
	if age.Valid {
		a := int(age.Int64)
		p.Subject.Age = &a
	}
	if lat.Valid && lng.Valid {
		p.LastSeen.Coordinates = &searches.Coordinates{Lat: lat.Float64, Lng: lng.Float64}
	}
	if err := json.Unmarshal(images, &p.Images); err != nil {
		return searches.Search{}, fmt.Errorf("decode images: %w", err)
	}
	if err := json.Unmarshal(sources, &p.SearchConfig.Sources); err != nil {
		return searches.Search{}, fmt.Errorf("decode search_sources: %w", err)
	}
	p.FoundAt = fromNullTime(foundAt)
	p.LastConfirmedMatchAt = fromNullTime(lastConfirmed)
	p.LastSeen.Date = p.LastSeen.Date.UTC()
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}

// images y sources van como jsonb: evita depender del mapeo de arrays en database/sql.
func marshalLists(p searches.Search) (images, sources string, err error) {
	ib, err := json.Marshal(nonNil(p.Images))
	if err != nil {
		return "", "", err
	}
	sb, err := json.Marshal(nonNil(p.SearchConfig.Sources))
	if err != nil {
		return "", "", err
	}
	return string(ib), string(sb), nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func coords(c *searches.Coordinates) (lat, lng sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lng, Valid: true}
}

func toNullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
