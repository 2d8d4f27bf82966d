package user

import "github.com/geocoder89/reliefhub/internal/store"

const RoleAdmin = "admin"

// Document field names.
const (
	FieldName     = "name"
	FieldEmail    = "email"
	FieldPassword = "password"
	FieldRole     = "role"
)

// ProfileFields are the only fields a profile update writes. Fields left out
// of the request are written as null.
var ProfileFields = []string{
	"image",
	"designation",
	"company",
	"contact",
	"address",
	"city",
	"country",
	"date",
	"bio",
}

type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         string `json:"role,omitempty"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// FromDocument reads the typed fields out of a stored user. Fields with an
// unexpected type come back empty.
func FromDocument(d store.Document) User {
	u := User{
		Name:         str(d[FieldName]),
		Email:        str(d[FieldEmail]),
		PasswordHash: str(d[FieldPassword]),
		Role:         str(d[FieldRole]),
	}

	switch id := d[store.IDField].(type) {
	case interface{ Hex() string }:
		u.ID = id.Hex()
	case string:
		u.ID = id
	}

	return u
}

// NewDocument is the record written at registration.
func NewDocument(name, email, passwordHash string) store.Document {
	return store.Document{
		FieldName:     name,
		FieldEmail:    email,
		FieldPassword: passwordHash,
	}
}

// ProfileUpdate picks the profile fields out of a request body.
func ProfileUpdate(body map[string]any) store.Document {
	set := make(store.Document, len(ProfileFields))
	for _, f := range ProfileFields {
		set[f] = body[f]
	}
	return set
}

// Public strips the password hash from a stored user before it is returned.
func Public(d store.Document) store.Document {
	if d == nil {
		return nil
	}

	out := make(store.Document, len(d))
	for k, v := range d {
		if k == FieldPassword {
			continue
		}
		out[k] = v
	}
	return out
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
