package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/perola/clusterd/internal/core"
	"github.com/perola/clusterd/internal/model"
)

func newClusterHandler(db *handlerMockDB) *Cluster {
	return NewCluster(core.NewClusterService(db, nopPublisher{}))
}

func testCluster() model.Cluster {
	now := time.Now().UTC()
	return model.Cluster{
		ID:         validClusterID,
		Name:       "prod-eu-1",
		Spec:       model.ClusterSpec{Platform: model.PlatformSpec{Type: "kubernetes"}},
		Generation: 2,
		Status: model.ClusterStatus{
			Phase:              model.PhaseReady,
			Message:            "all controllers reconciled",
			ObservedGeneration: 2,
		},
		CreatedBy: "dev@example.com",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func clusterRow(c model.Cluster) *mockRow {
	return &mockRow{scanFunc: func(dest ...any) error {
		*dest[0].(*string) = c.ID
		*dest[1].(*string) = c.Name
		*dest[2].(*model.ClusterSpec) = c.Spec
		*dest[3].(*int64) = c.Generation
		*dest[4].(*model.ClusterStatus) = c.Status
		*dest[5].(*string) = c.CreatedBy
		*dest[6].(*time.Time) = c.CreatedAt
		*dest[7].(*time.Time) = c.UpdatedAt
		return nil
	}}
}

// --- Create ---

func TestClusterCreate_InvalidJSON(t *testing.T) {
	h := newClusterHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPost, "/clusters", "{bad json")
	r = withIdentity(r, "dev@example.com", false)

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decodeError(rec)
	assert.Equal(t, "invalid", body.Kind)
	assert.Contains(t, body.Message, "invalid JSON")
}

func TestClusterCreate_MissingName(t *testing.T) {
	h := newClusterHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/clusters", map[string]any{
		"spec": map[string]any{"platform": map[string]any{"type": "kubernetes"}},
	})
	r = withIdentity(r, "dev@example.com", false)

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(rec).Message, "validation error")
}

func TestClusterCreate_InvalidSlugName(t *testing.T) {
	tests := []struct {
		name string
		slug string
	}{
		{"uppercase", "MyCluster"},
		{"spaces", "my cluster"},
		{"special chars", "cluster@01"},
		{"starts with digit", "1cluster"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newClusterHandler(&handlerMockDB{})
			rec := httptest.NewRecorder()
			r := newRequest(http.MethodPost, "/clusters", map[string]any{
				"name": tt.slug,
				"spec": map[string]any{"platform": map[string]any{"type": "kubernetes"}},
			})
			r = withIdentity(r, "dev@example.com", false)

			h.Create(rec, r)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestClusterCreate_MissingPlatformType(t *testing.T) {
	db := &handlerMockDB{}
	h := newClusterHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/clusters", map[string]any{"name": "prod-eu-1"})
	r = withIdentity(r, "dev@example.com", false)

	h.Create(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid", decodeError(rec).Kind)
	db.AssertNotCalled(t, "Exec", mock.Anything, mock.Anything, mock.Anything)
}

func TestClusterCreate_MissingIdentity(t *testing.T) {
	h := newClusterHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/clusters", map[string]any{
		"name": "prod-eu-1",
		"spec": map[string]any{"platform": map[string]any{"type": "kubernetes"}},
	})

	h.Create(rec, r)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeError(rec).Kind)
}

func TestClusterCreate_Success(t *testing.T) {
	db := &handlerMockDB{}
	db.On("Exec", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(pgconn.NewCommandTag("INSERT 0 1"), nil)

	h := newClusterHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPost, "/clusters", map[string]any{
		"name": "prod-eu-1",
		"spec": map[string]any{"platform": map[string]any{"type": "kubernetes"}},
	})
	r = withIdentity(r, "dev@example.com", false)

	h.Create(rec, r)

	require.Equal(t, http.StatusCreated, rec.Code)
	var c model.Cluster
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, "prod-eu-1", c.Name)
	assert.Equal(t, int64(1), c.Generation)
	assert.Equal(t, model.PhasePending, c.Status.Phase)
	assert.Equal(t, "dev@example.com", c.CreatedBy)
	db.AssertExpectations(t)
}

// --- List ---

func TestClusterList_Success(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error {
			*dest[0].(*int) = 1
			return nil
		}})
	db.On("Query", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(newMockRows(clusterRow(testCluster()).scanFunc), nil)

	h := newClusterHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/clusters?phase=Ready&limit=10", nil)

	h.List(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items  []model.Cluster `json:"items"`
		Total  int             `json:"total"`
		Limit  int             `json:"limit"`
		Offset int             `json:"offset"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 10, body.Limit)
	require.Len(t, body.Items, 1)
	assert.Equal(t, validClusterID, body.Items[0].ID)
	db.AssertExpectations(t)
}

// --- Get ---

func TestClusterGet_InvalidID(t *testing.T) {
	h := newClusterHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/clusters/not-a-uuid", nil)
	r = withChiURLParam(r, "id", "not-a-uuid")

	h.Get(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid", decodeError(rec).Kind)
}

func TestClusterGet_NotFound(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(&mockRow{scanFunc: func(dest ...any) error { return pgx.ErrNoRows }})

	h := newClusterHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/clusters/"+validClusterID, nil)
	r = withChiURLParam(r, "id", validClusterID)

	h.Get(rec, r)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(rec).Kind)
}

func TestClusterGet_Success(t *testing.T) {
	db := &handlerMockDB{}
	db.On("QueryRow", mock.Anything, mock.AnythingOfType("string"), mock.Anything).
		Return(clusterRow(testCluster()))

	h := newClusterHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodGet, "/clusters/"+validClusterID, nil)
	r = withChiURLParam(r, "id", validClusterID)

	h.Get(rec, r)

	require.Equal(t, http.StatusOK, rec.Code)
	var c model.Cluster
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &c))
	assert.Equal(t, validClusterID, c.ID)
	assert.Equal(t, model.PhaseReady, c.Status.Phase)
}

// --- Update ---

func TestClusterUpdate_InvalidJSON(t *testing.T) {
	h := newClusterHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequestRaw(http.MethodPut, "/clusters/"+validClusterID, "{bad json")
	r = withChiURLParam(r, "id", validClusterID)

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(rec).Message, "invalid JSON")
}

func TestClusterUpdate_InvalidID(t *testing.T) {
	db := &handlerMockDB{}
	h := newClusterHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPut, "/clusters/nope", map[string]any{
		"spec": map[string]any{"platform": map[string]any{"type": "kubernetes"}},
	})
	r = withChiURLParam(r, "id", "nope")

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid", decodeError(rec).Kind)
	db.AssertNotCalled(t, "Begin", mock.Anything)
}

func TestClusterUpdate_ZeroExpectedGeneration(t *testing.T) {
	h := newClusterHandler(&handlerMockDB{})
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodPut, "/clusters/"+validClusterID, map[string]any{
		"spec":                map[string]any{"platform": map[string]any{"type": "kubernetes"}},
		"expected_generation": 0,
	})
	r = withChiURLParam(r, "id", validClusterID)

	h.Update(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(rec).Message, "validation error")
}

// --- Delete ---

func TestClusterDelete_InvalidID(t *testing.T) {
	db := &handlerMockDB{}
	h := newClusterHandler(db)
	rec := httptest.NewRecorder()
	r := newRequest(http.MethodDelete, "/clusters/nope", nil)
	r = withChiURLParam(r, "id", "nope")

	h.Delete(rec, r)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	db.AssertNotCalled(t, "Begin", mock.Anything)
}
