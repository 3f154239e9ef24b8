package api

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Cleanup(func() {
		RegisterDefault(nil)
	})

	RegisterDefault(nil)
	_, err := Default()
	assert.ErrorIs(t, err, ErrNoDefault)

	builds := 0
	RegisterDefault(func() (*Client, error) {
		builds++
		return NewClient(Options{BaseURL: "http://localhost:8787/api/admin"})
	})

	first, err := Default()
	require.NoError(t, err)
	second, err := Default()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)

	ResetDefault()
	third, err := Default()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, builds)

	injected, err := NewClient(Options{BaseURL: "http://example.com"})
	require.NoError(t, err)
	SetDefault(injected)
	got, err := Default()
	require.NoError(t, err)
	assert.Same(t, injected, got)
}

func TestDefault_FailedBuildNotCached(t *testing.T) {
	t.Cleanup(func() {
		RegisterDefault(nil)
	})

	fail := true
	RegisterDefault(func() (*Client, error) {
		if fail {
			return nil, errors.New("no config")
		}
		return NewClient(Options{BaseURL: "http://localhost"})
	})

	_, err := Default()
	require.Error(t, err)

	fail = false
	c, err := Default()
	require.NoError(t, err)
	assert.NotNil(t, c)
}
