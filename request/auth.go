package request

import "encoding/base64"

// Auth is a request credential. Two shapes exist: Token carries a literal
// authorization value, Basic a user and password pair encoded per RFC 7617.
type Auth interface {
	header() string
}

// Token is placed on the authorization header as given.
type Token string

func (t Token) header() string { return string(t) }

// Basic is a user and password pair for basic access authentication.
type Basic struct {
	User string
	Pass string
}

func (b Basic) header() string { return BasicAuth(b.User, b.Pass) }

// BasicAuth returns the authorization header value for a user and password
// pair: the literal "Basic " prefix followed by base64 of "user:pass".
// Empty components are encoded as-is, the separating colon always present.
func BasicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}
