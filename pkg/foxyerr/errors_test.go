package foxyerr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransport(t *testing.T) {
	err := Transport(http.StatusNotFound, `{"message":"No route found for GET /stores/1"}`)
	assert.ErrorIs(t, err, ErrTransport)
	assert.Equal(t, http.StatusNotFound, err.StatusCode())
	assert.Equal(t, `{"message":"No route found for GET /stores/1"}`, err.Error())
	assert.True(t, IsNoRoute(err))
	assert.True(t, IsNoRoute(fmt.Errorf("fetch: %w", err)))
}

func TestIsNoRoute(t *testing.T) {
	assert.False(t, IsNoRoute(nil))
	assert.False(t, IsNoRoute(Transport(http.StatusForbidden, "forbidden")))
	assert.False(t, IsNoRoute(errors.New("No route found")))
	assert.False(t, IsNoRoute(ErrResolution.New("No route found")))
}

func TestKindsAreDistinct(t *testing.T) {
	kinds := []error{ErrConfiguration, ErrResolution, ErrTransport, ErrSigningAmbiguity, ErrInvalidURL}
	for i, a := range kinds {
		for j, b := range kinds {
			if i == j {
				continue
			}
			assert.NotErrorIs(t, a, b)
		}
	}
}
