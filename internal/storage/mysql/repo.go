package mysql

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"shelter_board/internal/domain"
)

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func valStrPtr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func valTimePtr(p *time.Time) any {
	if p == nil {
		return nil
	}
	return p.UTC()
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) UpsertKennel(ctx context.Context, k domain.Kennel) error {
	capacity := k.Capacity
	if capacity < 1 {
		capacity = 1
	}
	_, err := r.db.ExecContext(ctx, upsertKennelSQL, k.ID, k.Name, k.Code, capacity)
	return err
}

func (r *Repo) UpsertStays(ctx context.Context, ss []domain.Stay) error {
	if len(ss) == 0 {
		return nil
	}
	values := make([]string, 0, len(ss))
	args := make([]any, 0, len(ss)*10) // 10 params per row
	for _, s := range ss {
		values = append(values, "(?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			s.ID,
			s.KennelID,
			valStr(s.AnimalID),
			valStr(s.AnimalName),
			valStr(s.AnimalSpecies),
			valStr(s.AnimalPublicCode),
			valStrPtr(s.AnimalPhotoURL),
			s.IsHotel,
			s.StartAt.UTC(),
			valTimePtr(s.EndAt),
		)
	}
	sqlStr := insertStaysPrefix + strings.Join(values, ",") + insertStaysOnDup
	_, err := r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *Repo) LogMiss(ctx context.Context, kennelID string, status int, reason string) error {
	_, err := r.db.ExecContext(ctx, insertMissSQL, kennelID, status, reason)
	return err
}

func (r *Repo) ListKennelsWithStays(ctx context.Context, from, to time.Time) ([]domain.Kennel, error) {
	rows, err := r.db.QueryContext(ctx, listWindowSQL, to.UTC(), from.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Kennel
	index := map[string]int{}
	for rows.Next() {
		var (
			k        domain.Kennel
			s        domain.Stay
			animalID sql.NullString
			name     sql.NullString
			species  sql.NullString
			pubCode  sql.NullString
			photo    sql.NullString
			endAt    sql.NullTime
		)
		if err := rows.Scan(
			&k.ID, &k.Name, &k.Code, &k.Capacity,
			&s.ID, &animalID, &name, &species, &pubCode,
			&photo, &s.IsHotel, &s.StartAt, &endAt,
		); err != nil {
			return nil, err
		}
		s.KennelID = k.ID
		s.AnimalID = animalID.String
		s.AnimalName = name.String
		s.AnimalSpecies = species.String
		s.AnimalPublicCode = pubCode.String
		if photo.Valid {
			p := photo.String
			s.AnimalPhotoURL = &p
		}
		if endAt.Valid {
			e := endAt.Time.UTC()
			s.EndAt = &e
		}
		s.StartAt = s.StartAt.UTC()

		i, ok := index[k.ID]
		if !ok {
			i = len(out)
			index[k.ID] = i
			out = append(out, k)
		}
		out[i].Stays = append(out[i].Stays, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
