package socrata

import (
	"os"
	"strings"
)

// EnvAppToken is the environment variable holding the Socrata app token.
const EnvAppToken = "SOCRATA_APP_TOKEN"

type TokenSource string

const (
	TokenSourceExplicit TokenSource = "explicit"
	TokenSourceEnv      TokenSource = "env:" + EnvAppToken
)

// ResolveAppToken resolves a Socrata app token.
//
// Precedence:
//  1. provided (if non-empty)
//  2. SOCRATA_APP_TOKEN env var
//
// It never prints the token. A token containing whitespace is rejected.
func ResolveAppToken(provided string) (token string, source TokenSource, err error) {
	if tok := strings.TrimSpace(provided); tok != "" {
		return checkToken(tok, TokenSourceExplicit)
	}
	if env := strings.TrimSpace(os.Getenv(EnvAppToken)); env != "" {
		return checkToken(env, TokenSourceEnv)
	}
	return "", "", &FetchError{Stage: StageAuth, Err: ErrMissingToken}
}

func checkToken(tok string, src TokenSource) (string, TokenSource, error) {
	if strings.ContainsAny(tok, " \t\n\r") {
		return "", "", &FetchError{Stage: StageAuth, Message: "invalid app token from " + string(src) + ": contains whitespace"}
	}
	return tok, src, nil
}
