package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanModify(t *testing.T) {
	ownerID := "owner-1"

	assert.True(t, CanModify(Actor{ID: "owner-1", Role: RoleUser}, ownerID))
	assert.True(t, CanModify(Actor{ID: "admin-1", Role: RoleAdmin}, ownerID))
	assert.False(t, CanModify(Actor{ID: "someone-else", Role: RoleUser}, ownerID))
}

func TestIsAdmin(t *testing.T) {
	assert.True(t, Actor{Role: RoleAdmin}.IsAdmin())
	assert.False(t, Actor{Role: RoleUser}.IsAdmin())
}
