package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	now := time.Now()
	tok, err := Issue("s3cret", "mod-1", []string{RoleModerator}, time.Hour, now)
	require.NoError(t, err)

	claims, err := Parse(tok, "s3cret")
	require.NoError(t, err)
	assert.Equal(t, "mod-1", claims.Subject)
	assert.Equal(t, []string{RoleModerator}, claims.Roles)

	_, err = Parse(tok, "other")
	require.Error(t, err)
}

func TestParseRejectsExpired(t *testing.T) {
	tok, err := Issue("s3cret", "mod-1", nil, time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = Parse(tok, "s3cret")
	require.Error(t, err)
}

func TestIssueRequiresSecretAndSubject(t *testing.T) {
	_, err := Issue("", "mod", nil, 0, time.Now())
	require.Error(t, err)
	_, err = Issue("s", "", nil, 0, time.Now())
	require.Error(t, err)
}

func TestRequireRole(t *testing.T) {
	require.NoError(t, RequireRole([]string{"player", RoleModerator}, RoleModerator))
	err := RequireRole([]string{"player"}, RoleModerator)
	var fe ForbiddenError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, RoleModerator, fe.Role)
}
