package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User holds the structure for the users collection in mongo
type User struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Name      string             `json:"name" bson:"name"`
	Email     string             `json:"email" bson:"email,omitempty"`
	Mobile    string             `json:"mobile" bson:"mobile"`
	Password  string             `json:"-" bson:"password"`
	Account   string             `json:"account,omitempty" bson:"account,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
}

// RegisterRequest is the sign-up body
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	Account  string `json:"account"`
}

// LoginRequest is the email/password login body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MetaLoginRequest logs in by wallet account
type MetaLoginRequest struct {
	Account string `json:"account"`
}

// UpdateProfileRequest changes the caller's profile. Omitted fields are left
// as they are; an empty account unlinks the wallet.
type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Mobile  *string `json:"mobile"`
	Account *string `json:"account"`
}

// LoginResponse carries the issued token and the user
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
