package dto

import (
	"marketplace/shared/constant"
	"marketplace/shared/model"
	"marketplace/shared/timezone"
	"time"
)

// Metadata is the audit block embedded in every response. Rows written by background
// jobs have no actor, so the actor fields are omitted rather than sent empty.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	CreatedBy  string `json:"created_by,omitempty"`
	ModifiedBy string `json:"modified_by,omitempty"`
}

func stamp(t time.Time) string {
	if t.IsZero() {
		return constant.Empty
	}

	return timezone.Format(t, constant.DateFormat)
}

func (m *Metadata) FromModel(mod model.Metadata) {
	*m = Metadata{
		CreatedAt:  stamp(mod.CreatedAt),
		ModifiedAt: stamp(mod.ModifiedAt),
		CreatedBy:  mod.CreatedBy,
		ModifiedBy: mod.ModifiedBy,
	}
}
