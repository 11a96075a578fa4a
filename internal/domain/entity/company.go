package entity

import "time"

// Company representa una clínica/tenant. Se crea en el registro y no se borra en el flujo normal.
type Company struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
