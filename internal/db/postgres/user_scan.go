package postgres

import (
	"Tuiter/internal/core/users"
	"database/sql"
	"log/slog"
)

const userColumns = `u.id, u.username, u.email, u.first_name, u.last_name, u.profile_photo, u.biography, u.created_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanUser reads a row of userColumns
func scanUser(row scanner) (*users.User, error) {
	user := &users.User{}
	var email, firstName, lastName, profilePhoto, biography sql.NullString
	err := row.Scan(&user.ID, &user.Username, &email, &firstName, &lastName,
		&profilePhoto, &biography, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.ProfilePhoto = profilePhoto.String
	user.Biography = biography.String
	return user, nil
}

func closeRows(rows *sql.Rows) {
	if closeErr := rows.Close(); closeErr != nil {
		slog.Warn("failed to close rows", slog.String("error", closeErr.Error()))
	}
}
