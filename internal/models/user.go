package models

// Role is the account type of a user.
type Role string

const (
	RolePatient Role = "patient"
	RoleAdmin   Role = "admin"
)

// User represents a patient or staff account as returned to callers.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Role  Role   `json:"role"`
}

// UserRecord is the stored form of a user. The password hash never leaves the record store.
type UserRecord struct {
	User
	PasswordHash string `json:"password"`
}

// Registration holds the fields submitted by the sign-up form.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Credentials holds the fields submitted by the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
