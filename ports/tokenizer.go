package ports

import "github.com/layer-3/zkauth/core"

// Tokenizer converts sessions into signed access tokens.
type Tokenizer interface {
	SessionToAccessToken(session *core.Session) (string, error)
}
