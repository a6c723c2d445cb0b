package reject

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProblemBuilder(t *testing.T) {
	p := NewProblem().
		WithTitle("Nope").
		WithStatus(http.StatusTeapot).
		WithCode("error.test").
		WithParam("gameId", "7").
		Build()

	assert.Equal(t, "Nope", p.Title)
	assert.Equal(t, http.StatusTeapot, p.Status)
	assert.Equal(t, "7", p.Params["gameId"])
}

func TestChainProblemCarriesCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	p := ChainProblem(cause)

	assert.Equal(t, http.StatusBadGateway, p.Problem.Status)
	assert.Equal(t, cause.Error(), p.Problem.Detail)
	assert.ErrorIs(t, p.Cause, cause)
	assert.Contains(t, p.Error(), "dial tcp")
}
