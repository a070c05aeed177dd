package domain

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role IDs stored in users.role_id. Each admin tier is scoped to a
// geographic subset of establishments; establishments file submissions.
const (
	RoleRegionalAdmin   = 1
	RoleProvincialAdmin = 2
	RoleMunicipalAdmin  = 3
	RoleEstablishment   = 4
)

type User struct {
	ID                int        `json:"id"`
	Name              string     `json:"name"`
	Lastname          string     `json:"lastname"`
	Email             string     `json:"email"`
	PasswordHash      string     `json:"password,omitempty"`
	Active            bool       `json:"active"`
	RoleID            int        `json:"role_id"`
	Region            string     `json:"region"`
	Province          string     `json:"province"`
	Municipality      string     `json:"municipality"`
	EstablishmentName *string    `json:"establishment_name"`
	RoomCount         int        `json:"room_count"`
	Deleted           bool       `json:"deleted"`
	DeletedAt         *time.Time `json:"deleted_at"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

type UpdateUserRequest struct {
	ID                int     `json:"id"`
	Name              *string `json:"name"`
	Lastname          *string `json:"lastname"`
	Email             *string `json:"email"`
	Active            *bool   `json:"active"`
	RoleID            *int    `json:"role_id"`
	Region            *string `json:"region"`
	Province          *string `json:"province"`
	Municipality      *string `json:"municipality"`
	EstablishmentName *string `json:"establishment_name"`
	RoomCount         *int    `json:"room_count"`
	Deleted           *bool   `json:"deleted"`
}

// Claims carries the authenticated identity plus the geographic scope the
// user is assigned to. The metrics endpoints read the scope from here,
// never from the query string alone.
type Claims struct {
	UserID           int
	UserName         string
	UserLastname     string
	UserEmail        string
	UserActive       bool
	UserRoleID       int
	UserRegion       string
	UserProvince     string
	UserMunicipality string
	jwt.RegisteredClaims
}
