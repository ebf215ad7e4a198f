package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"media-service/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckPrintsCount(t *testing.T) {
	s := store.NewMockMediaStore(nil)
	_, err := store.Seed(context.Background(), s, store.SampleMedia())
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, check(context.Background(), s, &out))
	assert.Contains(t, out.String(), "Found 4 media records")
}

func TestCheckFailsWhenStoreDown(t *testing.T) {
	s := store.NewMockMediaStore(nil)
	s.SetFailure(errors.New("connection refused"))

	var out bytes.Buffer
	assert.Error(t, check(context.Background(), s, &out))
	assert.Empty(t, out.String())
}
