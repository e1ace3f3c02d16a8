package auth

import (
	"testing"

	"bizdir/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheck(t *testing.T) {
	assert.False(t, Check(nil))
	assert.False(t, Check(&types.Session{}))
	assert.True(t, Check(&types.Session{UserID: 1}))
}

func TestRoleChecks(t *testing.T) {
	sess := &types.Session{UserID: 1, Roles: []string{"user", "admin"}}

	assert.True(t, HasRole(sess, "admin"))
	assert.True(t, HasRole(sess, "user"))
	assert.False(t, HasRole(sess, "moderator"))
	assert.False(t, HasRole(nil, "admin"))

	assert.True(t, HasAnyRole(sess, "moderator", "admin"))
	assert.False(t, HasAnyRole(sess, "moderator", "editor"))
	assert.False(t, HasAnyRole(sess))
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery", hash)

	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
	assert.False(t, CheckPassword("not-a-hash", "anything"))
}
