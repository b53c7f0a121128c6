package errors_test

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	infraerrors "github.com/jonesrussell/north-cloud/formfill/infrastructure/errors"
)

func TestWrapWithContext(t *testing.T) {
	t.Parallel()

	assert.NoError(t, infraerrors.WrapWithContext(nil, "load reference"))

	base := stderrors.New("boom")
	err := infraerrors.WrapWithContextf(base, "fetch %s", "https://example.com")
	require.Error(t, err)
	assert.Equal(t, "fetch https://example.com: boom", err.Error())
	assert.ErrorIs(t, err, base)
}

func TestFromResponse(t *testing.T) {
	t.Parallel()

	assert.NoError(t, infraerrors.FromResponse(http.StatusOK, []byte("ok")))

	err := infraerrors.FromResponse(http.StatusNotFound, []byte(`{"error":"no such page"}`))
	var httpErr *infraerrors.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "no such page", httpErr.Message)
	assert.Contains(t, err.Error(), "404 Not Found")

	err = infraerrors.FromResponse(http.StatusBadGateway, []byte(" upstream down \n"))
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "upstream down", httpErr.Message)
}
