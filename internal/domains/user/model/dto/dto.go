package dto

import (
	"marketplace/internal/domains/user/model"
	gDto "marketplace/shared/dto"
)

type UserResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Email         string  `json:"email,omitempty"`
	Role          string  `json:"role"`
	AverageRating float64 `json:"average_rating"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Name = model.Name
	r.Email = model.Email
	r.Role = model.Role
	r.AverageRating = model.AverageRating
	r.Metadata.FromModel(model.Metadata)
}
