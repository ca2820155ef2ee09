package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Experience string

const (
	ExperienceBeginner     Experience = "principiante"
	ExperienceIntermediate Experience = "intermedio"
	ExperienceAdvanced     Experience = "avanzado"
)

type User struct {
	ID          string     `gorm:"type:varchar(36);primaryKey" json:"id"`
	Username    string     `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	Email       string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"type:varchar(255);not null" json:"-"` // Argon2id hash, never serialized
	Nombre      *string    `gorm:"type:varchar(100)" json:"nombre"`
	Telefono    *string    `gorm:"type:varchar(30)" json:"telefono"`
	Experiencia Experience `gorm:"type:varchar(20);not null" json:"experiencia"`

	// Filled in once by the profile completion step
	BrokerNombre *string `gorm:"type:varchar(100)" json:"brokerNombre"`
	BrokerCuenta *string `gorm:"type:varchar(100)" json:"brokerCuenta"`

	DiscordID       *string `gorm:"type:varchar(32);uniqueIndex" json:"discordId,omitempty"`
	DiscordUsername *string `gorm:"type:varchar(100)" json:"discordUsername,omitempty"`
	AuthDiscord     bool    `gorm:"not null" json:"authDiscord"`

	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate assigns the identifier for the relational backend.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// NeedsBrokerProfile reports whether the profile completion step is still pending.
func (u *User) NeedsBrokerProfile() bool {
	return u.BrokerNombre == nil || u.BrokerCuenta == nil
}

// InsertUser holds the fields a caller may supply when creating a user.
// The Discord fields are never read from request bodies; only identity
// binding sets them.
type InsertUser struct {
	Username    string     `json:"username" validate:"required,min=3,max=50"`
	Password    string     `json:"password" validate:"required,min=6,max=128"`
	Email       string     `json:"email" validate:"required,email,max=100"`
	Nombre      *string    `json:"nombre" validate:"omitempty,max=100"`
	Telefono    *string    `json:"telefono" validate:"omitempty,max=30"`
	Experiencia Experience `json:"experiencia" validate:"omitempty,oneof=principiante intermedio avanzado"`

	DiscordID       *string `json:"-"`
	DiscordUsername *string `json:"-"`
	AuthDiscord     bool    `json:"-"`
}

// ToUser builds the record to persist, applying column defaults.
func (in *InsertUser) ToUser() *User {
	exp := in.Experiencia
	if exp == "" {
		exp = ExperienceBeginner
	}
	return &User{
		Username:        in.Username,
		Email:           in.Email,
		Password:        in.Password,
		Nombre:          in.Nombre,
		Telefono:        in.Telefono,
		Experiencia:     exp,
		DiscordID:       in.DiscordID,
		DiscordUsername: in.DiscordUsername,
		AuthDiscord:     in.AuthDiscord,
	}
}

// ExternalIdentity is a profile verified by an external identity provider.
type ExternalIdentity struct {
	Provider string
	ID       string
	Username string
	Email    string
}

var userRules = []fieldRule{
	{name: "username", kind: kindString, required: true},
	{name: "password", kind: kindString, required: true},
	{name: "email", kind: kindString, required: true},
	{name: "nombre", kind: kindString},
	{name: "telefono", kind: kindString},
	{name: "experiencia", kind: kindString},
}

// ParseInsertUser validates a registration payload.
func ParseInsertUser(input map[string]any) (*InsertUser, error) {
	var in InsertUser
	if err := parse(input, userRules, &in, nil); err != nil {
		return nil, err
	}
	return &in, nil
}
