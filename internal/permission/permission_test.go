package permission

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/upi-triage/internal/common"
)

func TestRolePermissions(t *testing.T) {
	tests := []struct {
		role    Role
		granted []Permission
		denied  []Permission
	}{
		{
			role:    Viewer,
			granted: []Permission{ViewTransactions, ViewAnalytics},
			denied:  []Permission{ExportTransactions, DiagnoseTransactions, ExportReports},
		},
		{
			role:    Analyst,
			granted: []Permission{ViewTransactions, ExportTransactions, DiagnoseTransactions, ViewDetailedAnalytics, ExportReports},
			denied:  []Permission{ManageNotifications, SendAlerts, ManageUsers},
		},
		{
			role:    Operator,
			granted: []Permission{DiagnoseTransactions, ManageNotifications, SendAlerts},
			denied:  []Permission{ManageUsers, SystemSettings, AuditLogs},
		},
		{
			role:    Admin,
			granted: All(),
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			set := tt.role.Permissions()
			for _, p := range tt.granted {
				assert.True(t, set.Has(p), "expected %s to have %s", tt.role, p)
			}
			for _, p := range tt.denied {
				assert.False(t, set.Has(p), "expected %s to lack %s", tt.role, p)
			}
		})
	}
	assert.Equal(t, 11, Admin.Permissions().Len())
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Operator ")
	require.NoError(t, err)
	assert.Equal(t, Operator, role)

	role, err = ParseRole("Administrator")
	require.NoError(t, err)
	assert.Equal(t, Admin, role)

	_, err = ParseRole("superuser")
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrUnknownRole))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		src       IdentitySource
		name      string
		wantRole  Role
		wantHas   []Permission
		wantLacks []Permission
		wantErr   bool
	}{
		{
			name:     "empty role defaults to analyst",
			src:      StaticIdentity(Identity{}),
			wantRole: Analyst,
			wantHas:  []Permission{DiagnoseTransactions},
		},
		{
			name:     "custom permissions extend the role",
			src:      StaticIdentity(Identity{Role: "viewer", CustomPermissions: []string{"export_transactions"}}),
			wantRole: Viewer,
			wantHas:  []Permission{ViewTransactions, ExportTransactions},
			wantLacks: []Permission{
				DiagnoseTransactions,
			},
		},
		{
			name:      "unknown role falls back",
			src:       StaticIdentity(Identity{Role: "root"}),
			wantHas:   []Permission{ViewTransactions},
			wantLacks: []Permission{ViewAnalytics, DiagnoseTransactions},
			wantErr:   true,
		},
		{
			name:      "unknown custom permission falls back",
			src:       StaticIdentity(Identity{Role: "admin", CustomPermissions: []string{"launch_rockets"}}),
			wantHas:   []Permission{ViewTransactions},
			wantLacks: []Permission{ManageUsers},
			wantErr:   true,
		},
		{
			name: "source error falls back",
			src: IdentityFunc(func(context.Context) (Identity, error) {
				return Identity{}, errors.New("identity service down")
			}),
			wantHas: []Permission{ViewTransactions},
			wantErr: true,
		},
		{
			name:    "nil source falls back",
			wantHas: []Permission{ViewTransactions},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			session := Load(context.Background(), tt.src)
			require.True(t, session.Loaded())
			if tt.wantErr {
				assert.Error(t, session.LoadErr)
				assert.Equal(t, 1, session.Permissions().Len())
			} else {
				assert.NoError(t, session.LoadErr)
				assert.Equal(t, tt.wantRole, session.Role)
			}
			for _, p := range tt.wantHas {
				assert.True(t, session.Has(p), "expected %s", p)
			}
			for _, p := range tt.wantLacks {
				assert.False(t, session.Has(p), "unexpected %s", p)
			}
		})
	}
}

func TestSet(t *testing.T) {
	set := NewSet(ViewTransactions, ViewTransactions, ExportReports)
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []Permission{ExportReports, ViewTransactions}, set.List())
	assert.False(t, set.HasAny(nil))
	assert.True(t, set.HasAll(nil))
}
