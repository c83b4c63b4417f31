package api

import (
	"errors"
	"net/http"

	"github.com/ayusman/gesturenote/internal/store"
)

// DatasetHandler handles HTTP requests for dataset resources. Blobs are never
// returned, only metadata.
type DatasetHandler struct {
	store *store.Store
}

// NewDatasetHandler creates a new DatasetHandler with the given store.
func NewDatasetHandler(s *store.Store) *DatasetHandler {
	return &DatasetHandler{store: s}
}

// ServeHTTP routes /api/datasets and /api/datasets/{id}.
func (h *DatasetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id := itemID(r.URL.Path, "/api/datasets")

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

type datasetResponse struct {
	ID         string   `json:"id"`
	SampleRoot string   `json:"sample_root"`
	Samples    int      `json:"samples"`
	Skipped    int      `json:"skipped"`
	Classes    []string `json:"classes"`
	CreatedAt  string   `json:"created_at"`
}

type datasetDetailResponse struct {
	datasetResponse
	Models []modelResponse `json:"models"`
}

type listDatasetsResponse struct {
	Datasets []datasetResponse `json:"datasets"`
}

func toDatasetResponse(d *store.Dataset) datasetResponse {
	classes := d.Classes
	if classes == nil {
		classes = []string{}
	}
	return datasetResponse{
		ID:         d.ID,
		SampleRoot: d.SampleRoot,
		Samples:    d.Samples,
		Skipped:    d.Skipped,
		Classes:    classes,
		CreatedAt:  formatTime(d.CreatedAt),
	}
}

// list handles GET /api/datasets.
func (h *DatasetHandler) list(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.store.Datasets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list datasets")
		return
	}

	response := listDatasetsResponse{
		Datasets: make([]datasetResponse, 0, len(datasets)),
	}
	for _, d := range datasets {
		response.Datasets = append(response.Datasets, toDatasetResponse(d))
	}

	writeJSON(w, http.StatusOK, response)
}

// get handles GET /api/datasets/{id}, including the models trained from the
// dataset.
func (h *DatasetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	var (
		d   *store.Dataset
		err error
	)
	if id == latestID {
		d, err = h.store.Datasets().Latest()
	} else {
		d, err = h.store.Datasets().GetByID(id)
	}
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get dataset")
		return
	}

	models, err := h.store.Models().ListByDataset(d.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list dataset models")
		return
	}

	response := datasetDetailResponse{
		datasetResponse: toDatasetResponse(d),
		Models:          make([]modelResponse, 0, len(models)),
	}
	for _, m := range models {
		response.Models = append(response.Models, toModelResponse(m))
	}

	writeJSON(w, http.StatusOK, response)
}

// delete handles DELETE /api/datasets/{id}. Models trained from the dataset
// are removed with it.
func (h *DatasetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Datasets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Dataset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete dataset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
