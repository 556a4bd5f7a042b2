package sources_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/agentstation/orgmap/pkg/errors"
	"github.com/agentstation/orgmap/pkg/org"
	"github.com/agentstation/orgmap/pkg/sources"
)

func TestStatic(t *testing.T) {
	records := []org.Record{{LocalID: "1", Name: "Root", Attributes: map[string]any{"code": "R"}}}
	src := sources.NewStatic("sam", records)
	records[0].Attributes["code"] = "mutated"

	got, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sam", src.ID())
	assert.Equal(t, "R", got[0].Attributes["code"])

	got[0].Name = "changed"
	again, _ := src.Records(context.Background())
	assert.Equal(t, "Root", again[0].Name)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Records(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSources(t *testing.T) {
	set, err := sources.New(
		sources.NewStatic("usaspending", nil),
		sources.NewStatic("fedreg", nil),
		sources.NewStatic("sam", nil),
	)
	require.NoError(t, err)

	assert.Equal(t, 3, set.Len())
	assert.Equal(t, []string{"fedreg", "sam", "usaspending"}, set.IDs())

	src, ok := set.Get("sam")
	require.True(t, ok)
	assert.Equal(t, "sam", src.ID())

	kept := set.Filter(func(id string) bool { return id != "sam" })
	require.Len(t, kept, 2)
	assert.Equal(t, "fedreg", kept[0].ID())
}

func TestSourcesRejectDuplicates(t *testing.T) {
	_, err := sources.New(sources.NewStatic("sam", nil), sources.NewStatic("sam", nil))
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConfigError(err))

	_, err = sources.New(sources.NewStatic("", nil))
	assert.True(t, pkgerrors.IsConfigError(err))
}

func TestSourcesRejectAmbiguousIDs(t *testing.T) {
	for _, id := range []string{"b__c", "_c", "usa:spending", "sam#2"} {
		_, err := sources.New(sources.NewStatic(id, nil))
		require.Error(t, err, id)
		assert.True(t, pkgerrors.IsConfigError(err), id)
		assert.True(t, pkgerrors.IsValidationError(err), "cause is kept for %s", id)
	}
}
