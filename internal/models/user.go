package models

type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderApple  Provider = "apple"
	ProviderGoogle Provider = "google"
)

type User struct {
	ID       string   `bson:"_id,omitempty" json:"id"`
	Email    string   `bson:"email" json:"email"`
	Name     string   `bson:"name" json:"name"`
	Provider Provider `bson:"provider" json:"provider"`
}
