package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/catalog-service/internal/app/shared"
)

func TestNewTag(t *testing.T) {
	tag, err := NewTag("t1", Attributes{Title: "Sale", Color: "#ff0000"}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "Sale", tag.Title())
	require.Len(t, tag.DomainEvents(), 1)
	assert.Equal(t, EventTagCreated, tag.DomainEvents()[0].EventType())

	_, err = NewTag("t2", Attributes{Title: ""}, time.Now())
	assert.ErrorIs(t, err, ErrEmptyTitle)

	_, err = NewTag("t3", Attributes{Title: "x", Extras: shared.Extras{"color": "blue"}}, time.Now())
	assert.ErrorIs(t, err, shared.ErrReservedExtraKey)
}

func TestTag_Update(t *testing.T) {
	tag := ReconstructTag("t1", Attributes{Title: "Sale"})
	color := "blue"

	require.NoError(t, tag.Update(Patch{Color: &color}, time.Now()))
	assert.Equal(t, "blue", tag.Color())
	assert.Equal(t, []string{FieldColor}, tag.Changes().DirtyFields())
	assert.Len(t, tag.DomainEvents(), 1)

	empty := ""
	assert.ErrorIs(t, tag.Update(Patch{Title: &empty}, time.Now()), ErrEmptyTitle)
}

func TestTag_Field(t *testing.T) {
	tag := ReconstructTag("t1", Attributes{Title: "Sale"})
	assert.Equal(t, "t1", tag.Field(FieldID))
	assert.Nil(t, tag.Field(FieldColor))
}
