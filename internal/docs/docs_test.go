package docs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleTeacher.Valid())
	assert.True(t, RoleStudent.Valid())
	assert.True(t, RoleParent.Valid())

	assert.False(t, Role("admin").Valid())
	assert.False(t, Role("").Valid())
	assert.False(t, Role("Student").Valid(), "roles are case-sensitive")
}
