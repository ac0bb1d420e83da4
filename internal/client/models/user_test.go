package models

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestAPIUser_Profile(t *testing.T) {
	tests := []struct {
		name string
		in   APIUser
		want UserProfile
	}{
		{
			name: "owner is presented as admin",
			in:   APIUser{ID: "1", Role: RoleOwnerAdmin, Name: "Aziz"},
			want: UserProfile{ID: "1", Role: RoleAdmin, DisplayName: "Aziz"},
		},
		{
			name: "full name fallback",
			in:   APIUser{ID: "2", Role: RoleCashier, FullName: "Dilnoza K.", Email: "d@shop.uz"},
			want: UserProfile{ID: "2", Role: RoleCashier, DisplayName: "Dilnoza K.", Email: "d@shop.uz"},
		},
		{
			name: "username fallback",
			in:   APIUser{ID: "3", Role: RoleTechnician, Username: "tech3", Phone: "+998901234567"},
			want: UserProfile{ID: "3", Role: RoleTechnician, DisplayName: "tech3", Phone: "+998901234567"},
		},
		{
			name: "id fallback",
			in:   APIUser{ID: "42", Role: RoleManager},
			want: UserProfile{ID: "42", Role: RoleManager, DisplayName: "42"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.in.Profile()); diff != "" {
				t.Fatalf("Profile() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFlexibleID_AcceptsNumbersAndStrings(t *testing.T) {
	var u APIUser
	require.NoError(t, json.Unmarshal([]byte(`{"id": 17, "role": "ADMIN"}`), &u))
	require.Equal(t, FlexibleID("17"), u.ID)

	u = APIUser{}
	require.NoError(t, json.Unmarshal([]byte(`{"id": "u-17", "role": "ADMIN"}`), &u))
	require.Equal(t, FlexibleID("u-17"), u.ID)

	u = APIUser{}
	require.Error(t, json.Unmarshal([]byte(`{"id": {}}`), &u))
}

func TestAuthResponse_Tokens(t *testing.T) {
	var nested AuthResponse
	require.NoError(t, json.Unmarshal([]byte(`{"auth":{"access_token":"A","refresh_token":"R"},"user":{"id":1,"role":"CASHIER"}}`), &nested))
	require.Equal(t, TokenPair{AccessToken: "A", RefreshToken: "R"}, nested.Tokens())
	require.NotNil(t, nested.User)

	var flat AuthResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"A2"}`), &flat))
	require.Equal(t, TokenPair{AccessToken: "A2"}, flat.Tokens())
	require.Nil(t, flat.User)

	var none AuthResponse
	require.NoError(t, json.Unmarshal([]byte(`{"user":{"id":"x","role":"ADMIN"}}`), &none))
	require.Equal(t, TokenPair{}, none.Tokens())
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{in: "", want: RoleAdmin},
		{in: "cashier", want: RoleCashier},
		{in: " Technician ", want: RoleTechnician},
		{in: "MANAGER", want: RoleManager},
		{in: "OWNER_ADMIN", wantErr: true},
		{in: "janitor", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
