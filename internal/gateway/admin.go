package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/playtrade/storefront/internal/marketplace"
)

// accountForm is the admin edit payload. Details arrive as free text
// from a textarea and must parse as JSON before anything is forwarded.
type accountForm struct {
	Name     string  `json:"name"`
	Password string  `json:"password"`
	Price    float64 `json:"price"`
	Thumb    string  `json:"thumb"`
	Images   string  `json:"images"`
	Details  string  `json:"details"`
}

func (f accountForm) toWrite() (marketplace.AccountWrite, error) {
	write := marketplace.AccountWrite{
		Name:     f.Name,
		Password: f.Password,
		Price:    f.Price,
		Thumb:    f.Thumb,
		Images:   f.Images,
	}
	if strings.TrimSpace(f.Details) != "" {
		if err := json.Unmarshal([]byte(f.Details), &write.Details); err != nil {
			return marketplace.AccountWrite{}, errInvalidDetails
		}
	}
	return write, nil
}

var errInvalidDetails = errors.New("details must be valid JSON")

func (g *Gateway) handleAdminAccountDetail(w http.ResponseWriter, r *http.Request) {
	record, err := g.client.AdminAccountDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": record})
}

func (g *Gateway) handleAdminUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var form accountForm
	if err := decodeBody(r, &form); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	write, err := form.toWrite()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := g.client.UpdateAccount(r.Context(), mux.Vars(r)["id"], write)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, message)
}

func (g *Gateway) handleAdminCreateAccount(w http.ResponseWriter, r *http.Request) {
	var form accountForm
	if err := decodeBody(r, &form); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(form.Name) == "" {
		writeMessage(w, http.StatusBadRequest, "name is required")
		return
	}
	write, err := form.toWrite()
	if err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	message, err := g.client.CreateAccount(r.Context(), write)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, message)
}

func (g *Gateway) handleAdminListUsers(w http.ResponseWriter, r *http.Request) {
	records, err := g.client.ListUsers(r.Context())
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": records})
}

func (g *Gateway) handleAdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req marketplace.UserWrite
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Username) == "" || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "username, email and password are required")
		return
	}

	message, err := g.client.CreateUser(r.Context(), req)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, message)
}
