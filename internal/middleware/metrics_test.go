package middleware

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestRouteLabel(t *testing.T) {
	partyID := uuid.NewString()
	userID := uuid.NewString()

	cases := []struct {
		path string
		want string
	}{
		{"/api/parties/list", "/api/parties/list"},
		{"/api/parties/" + partyID, "/api/parties/:id"},
		{"/api/parties/" + partyID + "/publish", "/api/parties/:id/publish"},
		{"/api/parties/" + partyID + "/requests/" + userID + "/accept", "/api/parties/:id/requests/:id/accept"},
		{"/healthz", "/healthz"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, routeLabel(tc.path))
	}
}
