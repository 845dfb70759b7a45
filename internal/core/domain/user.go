package domain

import "time"

const (
	RoleAdmin    = "admin"
	RoleOperator = "operator"
)

// User models an account on the job board.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
