package models

import "time"

// User is the central user record. It is keyed by the identity
// provider's uid (stored as _id), not a generated ObjectID, so a record
// and its identity-provider account are always one-to-one.
//
// NOTE:
//   - Role is one of the six values in userpolicy.Roles; never empty
//     after creation.
//   - Email is unique (enforced by index) and immutable after creation
//     except for the provisioning refresh on sign-in.
type User struct {
	ID           string   `bson:"_id" json:"uid"`
	Email        string   `bson:"email" json:"email"`
	Role         string   `bson:"role" json:"role"`
	Category     string   `bson:"category" json:"category"`
	Profile      Profile  `bson:"profile" json:"profile"`
	Metadata     Metadata `bson:"metadata" json:"metadata"`
	Permissions  []string `bson:"permissions" json:"permissions"`
	AssignedBy   string   `bson:"assigned_by" json:"assignedBy"`
	PasswordHash string   `bson:"password_hash,omitempty" json:"-"`
}

// Profile holds the mutable personal fields. DateOfBirth stays a plain
// string; it is display metadata, never computed on.
type Profile struct {
	FirstName   string `bson:"first_name" json:"firstName"`
	LastName    string `bson:"last_name" json:"lastName"`
	Gender      string `bson:"gender" json:"gender"`
	DateOfBirth string `bson:"date_of_birth" json:"dateOfBirth"`
	Mobile      string `bson:"mobile" json:"mobile"`
	Avatar      string `bson:"avatar" json:"avatar"`
}

// Metadata holds lifecycle flags and timestamps.
type Metadata struct {
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
	LastLoginAt   time.Time `bson:"last_login_at" json:"lastLoginAt"`
	IsActive      bool      `bson:"is_active" json:"isActive"`
	EmailVerified bool      `bson:"email_verified" json:"emailVerified"`
}

// FullName joins the profile name parts for display and session use.
func (u *User) FullName() string {
	if u.Profile.FirstName == "" {
		return u.Profile.LastName
	}
	if u.Profile.LastName == "" {
		return u.Profile.FirstName
	}
	return u.Profile.FirstName + " " + u.Profile.LastName
}
