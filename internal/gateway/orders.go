package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
)

const maxUploadBytes = 8 << 20

func (g *Gateway) handlePurchase(w http.ResponseWriter, r *http.Request) {
	record, err := g.client.PurchaseAccount(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": record})
}

func (g *Gateway) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	var order map[string]any
	if err := decodeBody(r, &order); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(order) == 0 {
		writeMessage(w, http.StatusBadRequest, "order body is required")
		return
	}

	record, err := g.client.SubmitOrder(r.Context(), order)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": record})
}

func (g *Gateway) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "image file is required")
		return
	}
	defer file.Close()

	path, err := g.client.UploadImage(r.Context(), header.Filename, file)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": map[string]any{"path": path}})
}
