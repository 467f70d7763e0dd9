package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIErrorMessage(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "BAD_REQUEST: bad id", BadRequest("bad id", "").Error())
	assert.Equal(t, "BAD_REQUEST: bad id (abc)", BadRequest("bad id", "abc").Error())
	assert.Equal(t, http.StatusBadRequest, BadRequest("x", "").HTTPStatus)

	var nilErr *APIError
	assert.Equal(t, "", nilErr.Error())
	assert.NoError(t, nilErr.Unwrap())
}

func TestWrapKeepsCause(t *testing.T) {
	t.Parallel()

	sentinel := errors.New("invalid input")
	err := fmt.Errorf("upload: %w", Wrap(sentinel, "INVALID_FILENAME", "bad name", "", http.StatusBadRequest))

	assert.ErrorIs(t, err, sentinel)

	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "INVALID_FILENAME", apiErr.Code)
}
