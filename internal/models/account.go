package models

import "time"

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Auth is the credential record of an account. EmailVerified is nil for
// accounts created before verification existed; those count as verified.
type Auth struct {
	ID                 string     `gorm:"primaryKey;size:24" json:"_id"                          bson:"_id,omitempty"`
	Email              string     `gorm:"uniqueIndex;not null" json:"email"                      bson:"email"`
	PasswordHash       string     `gorm:"not null"           json:"-"                            bson:"password"`
	Name               string     `                          json:"name"                         bson:"name"`
	EmailVerified      *bool      `                          json:"emailVerified,omitempty"      bson:"emailVerified,omitempty"`
	EmailVerifyToken   *string    `gorm:"index"              json:"-"                            bson:"emailVerifyToken,omitempty"`
	EmailVerifyExpires *time.Time `                          json:"-"                            bson:"emailVerifyExpires,omitempty"`
	CreatedAt          time.Time  `                          json:"createdAt"                    bson:"createdAt"`
	UpdatedAt          time.Time  `                          json:"updatedAt"                    bson:"updatedAt"`
}

func (Auth) TableName() string { return "auth" }

func (a *Auth) Verified() bool {
	return a.EmailVerified == nil || *a.EmailVerified
}

// User is the profile record. Active is nil on legacy profiles; those count as active.
type User struct {
	ID          string    `gorm:"primaryKey;size:24"   json:"_id"                   bson:"_id,omitempty"`
	Email       string    `gorm:"uniqueIndex;not null" json:"email"                 bson:"email"`
	Name        string    `                            json:"name"                  bson:"name"`
	DisplayName string    `                            json:"displayName,omitempty" bson:"displayName,omitempty"`
	Phone       string    `                            json:"phone,omitempty"       bson:"phone,omitempty"`
	Address     string    `                            json:"address,omitempty"     bson:"address,omitempty"`
	PhotoURL    string    `                            json:"photoURL,omitempty"    bson:"photoURL,omitempty"`
	Role        string    `gorm:"not null"             json:"role"                  bson:"role"`
	Active      *bool     `                            json:"active,omitempty"      bson:"active,omitempty"`
	CreatedAt   time.Time `                            json:"createdAt"             bson:"createdAt"`
	UpdatedAt   time.Time `                            json:"updatedAt"             bson:"updatedAt"`
}

func (u *User) IsActive() bool {
	return u.Active == nil || *u.Active
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

func BoolPtr(b bool) *bool { return &b }
