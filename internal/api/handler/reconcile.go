package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/perola/clusterd/internal/api/response"
	"github.com/perola/clusterd/internal/model"
	"github.com/perola/clusterd/internal/reconcile"
)

type Reconcile struct {
	sweeper *reconcile.Sweeper
}

func NewReconcile(sweeper *reconcile.Sweeper) *Reconcile {
	return &Reconcile{sweeper: sweeper}
}

type reconcileResponse struct {
	Cluster *model.Cluster `json:"cluster"`
	Changed bool           `json:"changed"`
}

// Trigger godoc
//
//	@Summary		Re-aggregate a cluster's status
//	@Description	Recomputes the aggregated status from stored controller reports and persists it if it drifted. Reports whether anything changed.
//	@Tags			Reconcile
//	@Security		UserEmailAuth
//	@Param			id	path		string	true	"Cluster ID"
//	@Success		200	{object}	handler.reconcileResponse
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/clusters/{id}/reconcile [post]
func (h *Reconcile) Trigger(w http.ResponseWriter, r *http.Request) {
	cluster, changed, err := h.sweeper.Trigger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, reconcileResponse{Cluster: cluster, Changed: changed})
}

// Stats godoc
//
//	@Summary		Sweeper statistics
//	@Description	Returns when the background sweeper last ran and how many clusters it repaired.
//	@Tags			Reconcile
//	@Security		UserEmailAuth
//	@Success		200	{object}	reconcile.Stats
//	@Router			/reconcile/stats [get]
func (h *Reconcile) Stats(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, h.sweeper.Stats())
}
