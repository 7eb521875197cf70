package academic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stemsi/siakad-backend/internal/model"
)

func TestCheckTransition_Strict(t *testing.T) {
	assert.NoError(t, CheckTransition(model.StatusPending, model.StatusApproved, Strict))
	assert.NoError(t, CheckTransition(model.StatusPending, model.StatusRejected, Strict))

	assert.ErrorIs(t, CheckTransition(model.StatusPending, model.StatusPending, Strict), ErrInvalidTransition)
	assert.ErrorIs(t, CheckTransition(model.StatusApproved, model.StatusRejected, Strict), ErrInvalidTransition)
	assert.ErrorIs(t, CheckTransition(model.StatusApproved, model.StatusApproved, Strict), ErrInvalidTransition)
	assert.ErrorIs(t, CheckTransition(model.StatusRejected, model.StatusPending, Strict), ErrInvalidTransition)
}

func TestCheckTransition_AllowRevise(t *testing.T) {
	assert.NoError(t, CheckTransition(model.StatusApproved, model.StatusApproved, AllowRevise))
	assert.NoError(t, CheckTransition(model.StatusRejected, model.StatusRejected, AllowRevise))

	assert.ErrorIs(t, CheckTransition(model.StatusApproved, model.StatusRejected, AllowRevise), ErrInvalidTransition)
	assert.ErrorIs(t, CheckTransition(model.StatusRejected, model.StatusApproved, AllowRevise), ErrInvalidTransition)
}
