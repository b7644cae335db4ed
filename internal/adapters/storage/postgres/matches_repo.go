package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"findmypet-search/internal/domain/matches"
)

type MatchesRepo struct {
	db *sql.DB
}

func NewMatchesRepo(db *sql.DB) *MatchesRepo {
	return &MatchesRepo{db: db}
}

const matchColumns = `
	id, pet_id, source_platform, confidence, scraped_at,
	post_url, image_url, snippet,
	status, reviewed_at, reviewed_by, review_notes,
	created_at`

// Create: el FK contra lost_pets hace atómico el chequeo de existencia del padre.
func (r *MatchesRepo) Create(ctx context.Context, m matches.Match) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (`+matchColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		m.ID,
		m.PetID,
		m.SourcePlatform,
		m.Confidence,
		m.ScrapedAt,
		m.PostURL,
		m.ImageURL,
		m.Snippet,
		string(m.Status),
		toNullTime(m.ReviewedAt),
		m.ReviewedBy,
		m.ReviewNotes,
		m.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return matches.ErrParentNotFound
	}
	return err
}

func (r *MatchesRepo) GetByID(ctx context.Context, id string) (matches.Match, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+matchColumns+` FROM matches WHERE id = $1`, id)
	return scanMatch(row)
}

func (r *MatchesRepo) ListByPet(ctx context.Context, petID string, f matches.ListFilter) ([]matches.Match, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM matches
		WHERE pet_id = $1 AND ($2 = '' OR status = $2)
	`, petID, string(f.Status)).Scan(&total); err != nil {
		return nil, 0, err
	}

	items, err := r.query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE pet_id = $1 AND ($2 = '' OR status = $2)
		ORDER BY confidence DESC, scraped_at DESC, id ASC
		LIMIT $3 OFFSET $4
	`, petID, string(f.Status), f.Limit, f.Offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *MatchesRepo) AllByPet(ctx context.Context, petID string) ([]matches.Match, error) {
	return r.query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE pet_id = $1
		ORDER BY confidence DESC, scraped_at DESC, id ASC
	`, petID)
}

func (r *MatchesRepo) Recent(ctx context.Context, petID string, n int) ([]matches.Match, error) {
	return r.query(ctx, `
		SELECT `+matchColumns+`
		FROM matches
		WHERE pet_id = $1
		ORDER BY scraped_at DESC, id ASC
		LIMIT $2
	`, petID, n)
}

func (r *MatchesRepo) CountsByPets(ctx context.Context, petIDs []string) (map[string]matches.Counts, error) {
	out := make(map[string]matches.Counts, len(petIDs))
	if len(petIDs) == 0 {
		return out, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pet_id, COUNT(*), COUNT(*) FILTER (WHERE status = 'pending')
		FROM matches
		WHERE pet_id = ANY($1)
		GROUP BY pet_id
	`, petIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var petID string
		var c matches.Counts
		if err := rows.Scan(&petID, &c.Total, &c.Pending); err != nil {
			return nil, err
		}
		out[petID] = c
	}
	return out, rows.Err()
}

// Review bloquea primero la búsqueda y después el match (mismo orden que DeleteCascade,
// así un delete y un review concurrentes no se cruzan).
func (r *MatchesRepo) Review(ctx context.Context, matchID string, fn matches.ReviewFunc) (matches.Match, error) {
	var out matches.Match
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var petID string
		err := tx.QueryRowContext(ctx, `SELECT pet_id FROM matches WHERE id = $1`, matchID).Scan(&petID)
		if errors.Is(err, sql.ErrNoRows) {
			return matches.ErrNotFound
		}
		if err != nil {
			return err
		}

		var parent matches.ParentRef
		err = tx.QueryRowContext(ctx, `
			SELECT id, owner_user_id FROM lost_pets WHERE id = $1 FOR UPDATE
		`, petID).Scan(&parent.ID, &parent.OwnerUserID)
		if errors.Is(err, sql.ErrNoRows) {
			return matches.ErrParentNotFound
		}
		if err != nil {
			return err
		}

		// si un delete ganó la carrera el match ya no está
		cur, err := scanMatch(tx.QueryRowContext(ctx, `
			SELECT `+matchColumns+` FROM matches WHERE id = $1 AND pet_id = $2 FOR UPDATE
		`, matchID, petID))
		if err != nil {
			return err
		}

		next, err := fn(parent, cur)
		if err != nil {
			return err
		}
		next.ID, next.PetID, next.CreatedAt = cur.ID, cur.PetID, cur.CreatedAt

		if _, err := tx.ExecContext(ctx, `
			UPDATE matches SET
				status = $2,
				reviewed_at = $3,
				reviewed_by = $4,
				review_notes = $5
			WHERE id = $1
		`, next.ID, string(next.Status), toNullTime(next.ReviewedAt), next.ReviewedBy, next.ReviewNotes); err != nil {
			return err
		}

		if cur.Status == matches.StatusPending && next.Status == matches.StatusConfirmed {
			at := time.Now().UTC()
			if next.ReviewedAt != nil {
				at = *next.ReviewedAt
			}
			if _, err := tx.ExecContext(ctx, `
				UPDATE lost_pets SET
					confirmed_match_count = confirmed_match_count + 1,
					last_confirmed_match_at = $2,
					updated_at = GREATEST(updated_at, $2)
				WHERE id = $1
			`, parent.ID, at); err != nil {
				return err
			}
		}

		out = next
		return nil
	})
	if err != nil {
		return matches.Match{}, err
	}
	return out, nil
}

func (r *MatchesRepo) query(ctx context.Context, q string, args ...any) ([]matches.Match, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]matches.Match, 0)
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMatch(row scanner) (matches.Match, error) {
	var (
		m          matches.Match
		status     string
		reviewedAt sql.NullTime
	)
	if err := row.Scan(
		&m.ID,
		&m.PetID,
		&m.SourcePlatform,
		&m.Confidence,
		&m.ScrapedAt,
		&m.PostURL,
		&m.ImageURL,
		&m.Snippet,
		&status,
		&reviewedAt,
		&m.ReviewedBy,
		&m.ReviewNotes,
		&m.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return matches.Match{}, matches.ErrNotFound
		}
		return matches.Match{}, err
	}
	m.Status = matches.Status(status)
	m.ReviewedAt = fromNullTime(reviewedAt)
	m.ScrapedAt = m.ScrapedAt.UTC()
	m.CreatedAt = m.CreatedAt.UTC()
	return m, nil
}
