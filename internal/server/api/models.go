package api

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/ayusman/gesturenote/internal/gesture"
	"github.com/ayusman/gesturenote/internal/store"
)

// latestID addresses the most recently created artifact.
const latestID = "latest"

// ModelHandler handles HTTP requests for trained model resources.
type ModelHandler struct {
	store *store.Store
}

// NewModelHandler creates a new ModelHandler with the given store.
func NewModelHandler(s *store.Store) *ModelHandler {
	return &ModelHandler{store: s}
}

// ServeHTTP routes /api/models and /api/models/{id}. The id "latest" resolves
// to the newest model.
func (h *ModelHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := itemID(r.URL.Path, "/api/models")

	if id == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.list(w, r)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

type modelResponse struct {
	ID        string   `json:"id"`
	DatasetID string   `json:"dataset_id,omitempty"`
	Accuracy  float64  `json:"accuracy"`
	TrainSize int      `json:"train_size"`
	TestSize  int      `json:"test_size"`
	Trees     int      `json:"trees"`
	Labels    []string `json:"labels,omitempty"`
	CreatedAt string   `json:"created_at"`
}

type listModelsResponse struct {
	Models []modelResponse `json:"models"`
}

func toModelResponse(m *store.Model) modelResponse {
	return modelResponse{
		ID:        m.ID,
		DatasetID: m.DatasetID,
		Accuracy:  m.Accuracy,
		TrainSize: m.TrainSize,
		TestSize:  m.TestSize,
		Trees:     m.Trees,
		CreatedAt: formatTime(m.CreatedAt),
	}
}

// list handles GET /api/models.
func (h *ModelHandler) list(w http.ResponseWriter, r *http.Request) {
	models, err := h.store.Models().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list models")
		return
	}

	response := listModelsResponse{
		Models: make([]modelResponse, 0, len(models)),
	}
	for _, m := range models {
		response.Models = append(response.Models, toModelResponse(m))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/models/{id}. The blob is decoded to report the label set.
func (h *ModelHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	var (
		m   *store.Model
		err error
	)
	if id == latestID {
		m, err = h.store.Models().Latest()
	} else {
		m, err = h.store.Models().GetByID(id)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Model not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get model")
		return
	}

	decoded, err := gesture.DecodeModel(bytes.NewReader(m.Data))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Stored model is corrupt")
		return
	}

	response := toModelResponse(m)
	response.Labels = decoded.Labels
	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/models/{id}.
func (h *ModelHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Models().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Model not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete model")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
