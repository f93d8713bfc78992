package gateway

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/playtrade/storefront/internal/marketplace"
	"github.com/playtrade/storefront/internal/session"
)

const (
	accessTokenDays  = 7
	refreshTokenDays = 30
)

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (g *Gateway) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds credentials
	if err := decodeBody(r, &creds); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if creds.Username == "" || creds.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username and password are required")
		return
	}

	result, err := g.client.Login(r.Context(), creds.Username, creds.Password)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	if result.AccessToken != "" {
		http.SetCookie(w, session.NewAuthCookie(session.AccessTokenCookie, result.AccessToken, accessTokenDays))
	}
	if result.RefreshToken != "" {
		http.SetCookie(w, session.NewAuthCookie(session.RefreshTokenCookie, result.RefreshToken, refreshTokenDays))
	}

	g.sessions.Login(map[string]any{
		"name":         creds.Username,
		"access_token": result.AccessToken,
	})

	message := result.Message
	if message == "" {
		message = "login successful"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": message,
		"result":  map[string]any{"name": creds.Username},
	})
}

func (g *Gateway) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req marketplace.RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := validateRegistration(req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := g.client.Register(r.Context(), req)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	if message == "" {
		message = "registration successful"
	}
	writeMessage(w, http.StatusOK, message)
}

func (g *Gateway) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeMessage(w, http.StatusBadRequest, "email is required")
		return
	}

	message, err := g.client.ForgotPassword(r.Context(), req.Email)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, message)
}

func (g *Gateway) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeMessage(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	message, err := g.client.ResetPassword(r.Context(), mux.Vars(r)["token"], req.NewPassword, req.ConfirmPassword)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, message)
}

func (g *Gateway) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OldPassword     string `json:"old_password"`
		NewPassword     string `json:"new_password"`
		ConfirmPassword string `json:"confirm_new_password"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.NewPassword) < minPasswordLength {
		writeMessage(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}
	if req.NewPassword == req.OldPassword {
		writeMessage(w, http.StatusBadRequest, "new password must differ from the old one")
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		writeMessage(w, http.StatusBadRequest, "passwords do not match")
		return
	}

	message, err := g.client.ChangePassword(r.Context(), req.OldPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	// The old token is invalid after a password change, so the session
	// ends too.
	g.logoutLocal(w)
	writeMessage(w, http.StatusOK, message)
}

func (g *Gateway) handleLogout(w http.ResponseWriter, r *http.Request) {
	g.logoutLocal(w)
	writeMessage(w, http.StatusOK, "logged out")
}

func (g *Gateway) handleMe(w http.ResponseWriter, r *http.Request) {
	if !g.sessions.Authenticated() {
		writeMessage(w, http.StatusUnauthorized, "not signed in")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"result": map[string]any{"name": g.sessions.Name()},
	})
}

// logoutLocal clears the session and expires both auth cookies on the
// browser.
func (g *Gateway) logoutLocal(w http.ResponseWriter) {
	g.sessions.Logout()
	http.SetCookie(w, session.NewAuthCookie(session.AccessTokenCookie, "", 0))
	http.SetCookie(w, session.NewAuthCookie(session.RefreshTokenCookie, "", 0))
}
