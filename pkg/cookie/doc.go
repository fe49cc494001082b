// Package cookie writes the console's cookies: the signed session cookie,
// the language preference and one-shot flash messages.
//
//	jar := cookie.New(cookie.WithSecret(cfg.CookieSecret), cookie.WithSecure(true))
//	_ = jar.SetFlash(w, "notice", Flash{Kind: "success", Message: "登録しました"})
//
// Flash values are JSON encoded and sealed with AES-GCM. Reading a flash
// deletes it.
package cookie
