package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/perola/clusterd/internal/api/middleware"
	"github.com/perola/clusterd/internal/api/request"
	"github.com/perola/clusterd/internal/api/response"
	"github.com/perola/clusterd/internal/core"
)

type Cluster struct {
	svc *core.ClusterService
}

func NewCluster(svc *core.ClusterService) *Cluster {
	return &Cluster{svc: svc}
}

// Create godoc
//
//	@Summary		Create a cluster
//	@Description	Registers a new cluster at generation 1 with a Pending status. The caller's identity is recorded as the creator.
//	@Tags			Clusters
//	@Security		UserEmailAuth
//	@Param			body	body		request.CreateCluster	true	"Cluster data"
//	@Success		201		{object}	model.Cluster
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		500		{object}	response.ErrorBody
//	@Router			/clusters [post]
func (h *Cluster) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateCluster
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid", err.Error())
		return
	}

	ident := mw.IdentityFrom(r.Context())
	if ident == nil {
		response.WriteError(w, http.StatusUnauthorized, "unauthorized", "missing identity")
		return
	}

	cluster, err := h.svc.Create(r.Context(), req.Name, req.Spec, ident.Email)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusCreated, cluster)
}

// List godoc
//
//	@Summary		List clusters
//	@Description	Returns a paginated list of clusters, newest first. Optional filters narrow by platform type or status phase.
//	@Tags			Clusters
//	@Security		UserEmailAuth
//	@Param			platform	query		string	false	"Platform type filter"
//	@Param			phase		query		string	false	"Status phase filter"
//	@Param			limit		query		int		false	"Page size"	default(50)
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	response.PaginatedResponse{items=[]model.Cluster}
//	@Failure		500			{object}	response.ErrorBody
//	@Router			/clusters [get]
func (h *Cluster) List(w http.ResponseWriter, r *http.Request) {
	params := request.ParseListParams(r)

	clusters, total, err := h.svc.List(r.Context(), core.ListFilter{
		Platform: params.Platform,
		Phase:    params.Phase,
	}, params.Limit, params.Offset)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WritePaginated(w, http.StatusOK, clusters, total, params.Limit, params.Offset)
}

// Get godoc
//
//	@Summary		Get a cluster
//	@Description	Returns a single cluster including its spec, generation, and aggregated status.
//	@Tags			Clusters
//	@Security		UserEmailAuth
//	@Param			id	path		string	true	"Cluster ID"
//	@Success		200	{object}	model.Cluster
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Router			/clusters/{id} [get]
func (h *Cluster) Get(w http.ResponseWriter, r *http.Request) {
	cluster, err := h.svc.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cluster)
}

// Update godoc
//
//	@Summary		Update a cluster spec
//	@Description	Replaces the cluster's desired spec and bumps its generation. With expected_generation set, the update is rejected with 409 if another writer got there first.
//	@Tags			Clusters
//	@Security		UserEmailAuth
//	@Param			id		path		string						true	"Cluster ID"
//	@Param			body	body		request.UpdateClusterSpec	true	"New spec"
//	@Success		200		{object}	model.Cluster
//	@Failure		400		{object}	response.ErrorBody
//	@Failure		404		{object}	response.ErrorBody
//	@Failure		409		{object}	response.ErrorBody
//	@Router			/clusters/{id} [put]
func (h *Cluster) Update(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateClusterSpec
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, "invalid", err.Error())
		return
	}

	cluster, err := h.svc.UpdateSpec(r.Context(), chi.URLParam(r, "id"), req.Spec, req.ExpectedGeneration)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, cluster)
}

// Delete godoc
//
//	@Summary		Delete a cluster
//	@Description	Marks the cluster Terminating and soft-deletes it. Clusters still reconciling are refused unless force=true.
//	@Tags			Clusters
//	@Security		UserEmailAuth
//	@Param			id		path	string	true	"Cluster ID"
//	@Param			force	query	bool	false	"Delete even while reconciling"
//	@Success		202
//	@Failure		400	{object}	response.ErrorBody
//	@Failure		404	{object}	response.ErrorBody
//	@Failure		409	{object}	response.ErrorBody
//	@Router			/clusters/{id} [delete]
func (h *Cluster) Delete(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id"), force); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
