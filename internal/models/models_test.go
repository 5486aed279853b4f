package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRoleFallsBackToMember(t *testing.T) {
	cases := map[string]Role{
		"super_admin":     RoleSuperAdmin,
		"pastor":          RolePastor,
		"dept_head":       RoleDeptHead,
		"finance_officer": RoleFinanceOfficer,
		"member":          RoleMember,
		"":                RoleMember,
		"SUPER_ADMIN":     RoleMember,
		"admin":           RoleMember,
		"root":            RoleMember,
	}
	for raw, want := range cases {
		assert.Equal(t, want, ParseRole(raw), "raw=%q", raw)
	}
}

func TestRoleGates(t *testing.T) {
	assert.True(t, RoleSuperAdmin.CanManageMembers())
	assert.True(t, RolePastor.CanManageFinances())
	assert.True(t, RoleFinanceOfficer.CanManageFinances())
	assert.False(t, RoleFinanceOfficer.CanManageMembers())
	assert.False(t, RoleMember.CanManageMembers())
	assert.False(t, RoleMember.CanManageFinances())
	assert.False(t, RoleDeptHead.CanManageFinances())
}

func TestParseAmount(t *testing.T) {
	got, err := ParseAmount("250.50")
	assert.NoError(t, err)
	assert.Equal(t, 250.5, got)

	got, err = ParseAmount(" 0 ")
	assert.NoError(t, err)
	assert.Equal(t, 0.0, got)

	for _, bad := range []string{"", "abc", "-1", "NaN", "+Inf", "-Inf", "1,000"} {
		_, err := ParseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input=%q", bad)
	}
}

func TestParseCurrency(t *testing.T) {
	c, err := ParseCurrency("LRD")
	assert.NoError(t, err)
	assert.Equal(t, CurrencyLRD, c)

	_, err = ParseCurrency("EUR")
	assert.Error(t, err)
}

func TestAttendeeIdentifier(t *testing.T) {
	id := "m1"
	assert.Equal(t, "m1", AttendanceRecord{MemberID: &id}.Attendee())
	assert.Equal(t, "Guest", AttendanceRecord{IsVisitor: true, VisitorName: "Guest"}.Attendee())
	assert.Equal(t, "", AttendanceRecord{}.Attendee())
}
