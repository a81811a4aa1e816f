package client

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// EnvAttempt reads an ID token from an environment variable.
func EnvAttempt(name string) Attempt {
	return Attempt{
		Name: "env " + name,
		Obtain: func(context.Context) (string, error) {
			token := strings.TrimSpace(os.Getenv(name))
			if token == "" {
				return "", ErrAttemptUnavailable
			}
			return token, nil
		},
	}
}

// FileAttempt reads an ID token from a file. A missing file is skipped.
func FileAttempt(path string) Attempt {
	return Attempt{
		Name: "file " + path,
		Obtain: func(context.Context) (string, error) {
			if path == "" {
				return "", ErrAttemptUnavailable
			}
			data, err := os.ReadFile(path)
			if errors.Is(err, os.ErrNotExist) {
				return "", ErrAttemptUnavailable
			}
			if err != nil {
				return "", fmt.Errorf("read token file: %w", err)
			}
			return strings.TrimSpace(string(data)), nil
		},
	}
}

// BrowserConfig configures the loopback browser sign-in.
type BrowserConfig struct {
	ClientID     string
	ClientSecret string
	// OpenURL presents the consent URL to the user.
	OpenURL func(url string) error
	// Endpoint overrides Google's endpoint.
	Endpoint *oauth2.Endpoint
}

// BrowserAttempt runs an authorization-code flow with PKCE against a loopback
// redirect and returns the id_token from the token response.
func BrowserAttempt(cfg BrowserConfig) Attempt {
	return Attempt{
		Name: "browser",
		Obtain: func(ctx context.Context) (string, error) {
			if cfg.ClientID == "" || cfg.OpenURL == nil {
				return "", ErrAttemptUnavailable
			}
			return browserFlow(ctx, cfg)
		},
	}
}

func browserFlow(ctx context.Context, cfg BrowserConfig) (string, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", fmt.Errorf("listen for redirect: %w", err)
	}

	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	conf := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     endpoint,
		RedirectURL:  "http://" + ln.Addr().String() + "/callback",
		Scopes:       []string{"openid", "email", "profile"},
	}

	state, err := randomState()
	if err != nil {
		ln.Close()
		return "", err
	}
	verifier := oauth2.GenerateVerifier()

	type callback struct {
		code string
		err  error
	}
	got := make(chan callback, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var cb callback
		switch {
		case q.Get("state") != state:
			cb.err = errors.New("state mismatch")
		case q.Get("error") != "":
			cb.err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		default:
			cb.code = q.Get("code")
		}
		if cb.err != nil {
			http.Error(w, cb.err.Error(), http.StatusBadRequest)
		} else {
			fmt.Fprintln(w, "Signed in. You can close this window.")
		}
		select {
		case got <- cb:
		default:
		}
	})
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)
	defer srv.Close()

	url := conf.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier))
	if err := cfg.OpenURL(url); err != nil {
		return "", fmt.Errorf("open browser: %w", err)
	}

	var cb callback
	select {
	case cb = <-got:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if cb.err != nil {
		return "", cb.err
	}

	tok, err := conf.Exchange(ctx, cb.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return "", fmt.Errorf("exchange code: %w", err)
	}
	idToken, _ := tok.Extra("id_token").(string)
	if idToken == "" {
		return "", errors.New("token response has no id_token")
	}
	return idToken, nil
}

func randomState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return hex.EncodeToString(b), nil
}
