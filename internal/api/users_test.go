package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Atri9Ghosh/FlowForge/internal/flowforge"
)

func TestSignupAndProfile(t *testing.T) {
	handler := newTestServer(t)
	token := signToken(t, "auth0|abc")

	// No profile before signup.
	w := do(t, handler, "GET", "/api/users/me", token, nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, handler, "POST", "/api/users", token, map[string]string{
		"email": "abc@example.com",
		"name":  "Abc",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created flowforge.User
	decode(t, w, &created)
	assert.True(t, len(created.ID) > len("user-"), "unexpected user ID %q", created.ID)
	assert.Equal(t, "auth0|abc", created.ExternalID, "identity must come from the token")
	assert.Equal(t, "abc@example.com", created.Email)
	assert.Equal(t, "Abc", created.Name)

	w = do(t, handler, "GET", "/api/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var me flowforge.User
	decode(t, w, &me)
	assert.Equal(t, created.ID, me.ID)
}

func TestSignupIsIdempotent(t *testing.T) {
	handler := newTestServer(t)
	token := signToken(t, "auth0|abc")

	w := do(t, handler, "POST", "/api/users", token, nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var first flowforge.User
	decode(t, w, &first)

	// Repeating signup returns the existing account.
	w = do(t, handler, "POST", "/api/users", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var second flowforge.User
	decode(t, w, &second)
	assert.Equal(t, first.ID, second.ID, "repeat signup must not create a new account")
}
