// Package repo holds the PostgreSQL repositories for users and search
// history. Counters live in the sibling counter package because they sit
// behind the usage gate's store contract.
package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"server/internal/domain"
	"server/internal/infra"
	"server/internal/sqlinline"
)

// UserRepositoryPG implements user persistence using PostgreSQL.
type UserRepositoryPG struct {
	sql infra.SQLExecutor
}

// NewUserRepository constructs the repository.
func NewUserRepository(sql infra.SQLExecutor) *UserRepositoryPG {
	return &UserRepositoryPG{sql: sql}
}

// UpsertGoogleUser creates or refreshes the user row for a verified Google
// identity and returns the resulting user.
func (r *UserRepositoryPG) UpsertGoogleUser(ctx context.Context, googleSub, email, name, picture string) (*domain.User, error) {
	var u domain.User
	err := r.sql.QueryRow(ctx, sqlinline.QUpsertGoogleUser, googleSub, email, name, picture).Scan(
		&u.ID, &u.GoogleSub, &u.Email, &u.Name, &u.Picture, &u.Plan, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID loads a user, mapping missing rows to domain.ErrNotFound.
func (r *UserRepositoryPG) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var u domain.User
	err := r.sql.QueryRow(ctx, sqlinline.QSelectUserByID, id).Scan(
		&u.ID, &u.GoogleSub, &u.Email, &u.Name, &u.Picture, &u.Plan, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdatePlanByID changes a user's plan.
func (r *UserRepositoryPG) UpdatePlanByID(ctx context.Context, id, plan string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateUserPlanByID, id, plan)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdatePlanByEmail changes a user's plan, addressed by email.
func (r *UserRepositoryPG) UpdatePlanByEmail(ctx context.Context, email, plan string) error {
	tag, err := r.sql.Exec(ctx, sqlinline.QUpdateUserPlanByEmail, email, plan)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the user row.
func (r *UserRepositoryPG) Delete(ctx context.Context, id string) error {
	_, err := r.sql.Exec(ctx, sqlinline.QDeleteUser, id)
	return err
}
