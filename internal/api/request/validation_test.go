package request

import (
	"bytes"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_ValidJSON(t *testing.T) {
	body := `{"name":"prod-1","spec":{"platform":{"type":"kubernetes"}}}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload CreateCluster
	err = Decode(r, &payload)
	require.NoError(t, err)
	assert.Equal(t, "prod-1", payload.Name)
	assert.Equal(t, "kubernetes", payload.Spec.Platform.Type)
}

func TestDecode_InvalidJSON(t *testing.T) {
	body := `{not valid json}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload CreateCluster
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestDecode_ValidationFails(t *testing.T) {
	// Missing the required "name" field.
	body := `{"spec":{"platform":{"type":"kubernetes"}}}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload CreateCluster
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestDecode_PushReportNegativeGeneration(t *testing.T) {
	body := `{"controller_name":"infra","observed_generation":-1}`
	r, err := http.NewRequest(http.MethodPost, "/", bytes.NewBufferString(body))
	require.NoError(t, err)

	var payload PushReport
	err = Decode(r, &payload)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation error")
}

func TestPushReport_Report(t *testing.T) {
	payload := PushReport{
		ControllerName:     "infra",
		ObservedGeneration: 3,
	}
	rep := payload.Report("cluster-1")
	assert.Equal(t, "cluster-1", rep.ClusterID)
	assert.Equal(t, "infra", rep.ControllerName)
	assert.Equal(t, int64(3), rep.ObservedGeneration)
}

func TestSlugValidation_Valid(t *testing.T) {
	validSlugs := []string{"my-cluster", "test123", "a", "abc-def-123", "z0"}
	for _, slug := range validSlugs {
		t.Run(slug, func(t *testing.T) {
			assert.True(t, nameRegex.MatchString(slug), "expected slug %q to be valid", slug)
		})
	}
}

func TestSlugValidation_Invalid(t *testing.T) {
	invalidSlugs := []string{
		"My Cluster",            // spaces and uppercase
		"test@123",              // special character
		"",                      // empty
		strings.Repeat("a", 64), // too long (max 63 chars)
		"1starts-digit",         // must start with lowercase letter
		"-leading-dash",         // must start with lowercase letter
	}
	for _, slug := range invalidSlugs {
		t.Run(slug, func(t *testing.T) {
			assert.False(t, nameRegex.MatchString(slug), "expected slug %q to be invalid", slug)
		})
	}
}
