package gemini

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/educhat/backend/internal/llm"
)

func TestClassifyErrorTimeout(t *testing.T) {
	err := classifyError(context.DeadlineExceeded)
	assert.ErrorIs(t, err, llm.ErrTimeout)
}

func TestClassifyErrorWrappedTimeout(t *testing.T) {
	wrapped := errors.Join(errors.New("rpc failed"), context.DeadlineExceeded)
	assert.ErrorIs(t, classifyError(wrapped), llm.ErrTimeout)
}

func TestClassifyErrorGoogleAPI(t *testing.T) {
	err := classifyError(&googleapi.Error{
		Code:    http.StatusServiceUnavailable,
		Message: "model overloaded",
	})

	var httpErr *llm.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusServiceUnavailable, httpErr.Status)
	assert.Equal(t, "model overloaded", httpErr.Message)
}

func TestClassifyErrorOther(t *testing.T) {
	err := classifyError(errors.New("dns failure"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, llm.ErrTimeout)
	assert.Contains(t, err.Error(), "dns failure")
}
