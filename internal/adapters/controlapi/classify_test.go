package controlapi

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetail(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"string detail", `{"detail":"Invalid confirmation code"}`, 403, "Invalid confirmation code"},
		{"validation list", `{"detail":[{"loc":["body","reason"],"msg":"field required"}]}`, 422, "field required"},
		{"empty body", ``, 503, "Service Unavailable"},
		{"unknown status", `nope`, 599, "unexpected status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, detail([]byte(tt.body), tt.status))
		})
	}
}

func TestOverrideStatusError(t *testing.T) {
	assert.NoError(t, overrideStatusError(http.StatusOK, nil))
	assert.NoError(t, overrideStatusError(http.StatusAccepted, nil))
	assert.Error(t, overrideStatusError(http.StatusConflict, nil))
}
