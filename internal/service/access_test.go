package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/siakad-backend/internal/model"
)

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name  string
		actor Actor
		roles []model.Role
		ok    bool
	}{
		{"admin allowed", Actor{ID: 1, Role: model.RoleAdmin}, adminOnly, true},
		{"lecturer is staff", Actor{ID: 2, Role: model.RoleLecturer}, staffOnly, true},
		{"student not staff", Actor{ID: 3, Role: model.RoleStudent}, staffOnly, false},
		{"anonymous", Actor{}, anyRole, false},
		{"unknown role", Actor{ID: 4, Role: "tamu"}, anyRole, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := authorize("test.op", tt.actor, tt.roles...)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrForbidden)
			}
		})
	}
}

func TestPageWindow_ClampsHugePage(t *testing.T) {
	page, perPage, limit, offset := pageWindow(1_000_000_000_000_000_000, 100)
	assert.Equal(t, maxPage, page)
	assert.Equal(t, 100, perPage)
	assert.Equal(t, 100, limit)
	assert.GreaterOrEqual(t, offset, 0)

	_, _, _, offset = pageWindow(0, 0)
	assert.Equal(t, 0, offset)
}
