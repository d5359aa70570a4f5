package enums

// AuthKind describes how a network connection authenticates.
type AuthKind string

const (
	AuthKindAPIKey AuthKind = "api_key"
	AuthKindOAuth  AuthKind = "oauth"
)

func (a AuthKind) IsValid() bool {
	return a == AuthKindAPIKey || a == AuthKindOAuth
}

func (a AuthKind) String() string {
	return string(a)
}
