package company

import "time"

type Company struct {
	ID        string
	Name      string
	IsActive  bool
	IsDeleted bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
