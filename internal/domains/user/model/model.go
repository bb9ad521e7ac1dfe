package model

import "marketplace/shared/model"

const (
	TableName  = "users"
	EntityName = "user"

	FieldID            = "id"
	FieldName          = "name"
	FieldEmail         = "email"
	FieldRole          = "role"
	FieldAverageRating = "average_rating"
)

const (
	RoleClient       = "client"
	RoleProfessional = "professional"
	RoleAdmin        = "admin"
)

// User is the read-only bidder/party profile. Ratings are written by the review system.
type User struct {
	ID            string  `db:"id"`
	Name          string  `db:"name"`
	Email         string  `db:"email"`
	Role          string  `db:"role"`
	AverageRating float64 `db:"average_rating"`
	model.Metadata
}

func (u User) IsProfessional() bool {
	return u.Role == RoleProfessional
}
