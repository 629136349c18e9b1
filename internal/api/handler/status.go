package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/perola/clusterd/internal/api/request"
	"github.com/perola/clusterd/internal/api/response"
	"github.com/perola/clusterd/internal/core"
	"github.com/perola/clusterd/internal/model"
)

type Status struct {
	svc *core.ClusterService
}

func NewStatus(svc *core.ClusterService) *Status {
	return &Status{svc: svc}
}

type statusResponse struct {
	Status  *model.ClusterStatus     `json:"status"`
	Reports []model.ControllerReport `json:"reports"`
}

// Get godoc
//
//	@Summary		Get aggregated cluster status
//	@Description	Returns the cluster's aggregated status together with every controller report. Reports observing an older generation are marked stale.
//	@Tags			Status
//	@Security		UserEmailAuth
//	@Param			id	path		string	true	"Cluster ID"
//	@Success		200	{object}	handler.statusResponse
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/clusters/{id}/status [get]
func (h *Status) Get(w http.ResponseWriter, r *http.Request) {
	status, reports, err := h.svc.GetStatus(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, statusResponse{Status: status, Reports: reports})
}

// Push godoc
//
//	@Summary		Push a controller report
//	@Description	Upserts one controller's observation of the cluster and re-aggregates the status in the same transaction. Returns the cluster with its fresh status. Controller identity required.
//	@Tags			Status
//	@Security		UserEmailAuth
//	@Param			id		path		string				true	"Cluster ID"
//	@Param			body	body		request.PushReport	true	"Controller report"
//	@Success		200		{object}	model.Cluster
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		403		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Router			/clusters/{id}/status [put]
func (h *Status) Push(w http.ResponseWriter, r *http.Request) {
	var req request.PushReport
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	cluster, err := h.svc.PushReport(r.Context(), id, req.Report(id))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cluster)
}
