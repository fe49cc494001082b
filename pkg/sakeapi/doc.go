// Package sakeapi is the client for the sake catalog REST API.
//
// The console never stores catalog data itself: every list, form and
// import screen goes through a [Client]. A Client owns exactly one bearer
// token, mirrors it into a [TokenStore] and attaches it to every request.
//
// # Basic Usage
//
//	client := sakeapi.New("https://api.example.com/api",
//	    sakeapi.WithTokenStore(sakeapi.NewFileTokenStore(path)),
//	    sakeapi.WithLogger(log),
//	)
//
//	if _, err := client.Login(ctx, "admin@example.com", "secret"); err != nil {
//	    return err
//	}
//
//	sakes, err := client.ListSakes(ctx, sakeapi.ListOptions{Limit: 100})
//
// # Token Custody
//
// SetToken updates the in-memory token and mirrors it to the store: a
// non-empty token is saved, an empty one clears the store. Token hydrates
// lazily from the store on first access. There is no refresh: an expired
// token is discovered through a 401 on the next call.
//
// # Errors
//
// Every operation fails with one of:
//   - [ErrUnauthorized]: the backend answered 401. The token has already been
//     cleared; callers must treat the session as ended.
//   - [*APIError]: any other non-2xx status, carrying the server's detail
//     message (or a generic fallback).
//   - [ErrNetwork] / [ErrDecode]: transport failure or unreadable body.
//
// Use [Message] to turn any of them into display text.
package sakeapi
