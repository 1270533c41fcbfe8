package store

import (
	"context"
)

const ratingColumns = `id, name, comment, rated_at, created_at`

// ListRatings returns every review, newest visit first.
func (q *Queries) ListRatings(ctx context.Context) ([]Rating, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+ratingColumns+`
		FROM ratings
		ORDER BY rated_at DESC, created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ratings []Rating
	for rows.Next() {
		var rt Rating
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.Comment, &rt.RatedAt, &rt.CreatedAt); err != nil {
			return nil, err
		}
		ratings = append(ratings, rt)
	}
	return ratings, rows.Err()
}

type CreateRatingParams struct {
	Name    string
	Comment string
}

func (q *Queries) CreateRating(ctx context.Context, arg CreateRatingParams) (Rating, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO ratings (name, comment)
		VALUES ($1, $2)
		RETURNING `+ratingColumns,
		arg.Name, arg.Comment)
	var rt Rating
	err := row.Scan(&rt.ID, &rt.Name, &rt.Comment, &rt.RatedAt, &rt.CreatedAt)
	return rt, err
}
