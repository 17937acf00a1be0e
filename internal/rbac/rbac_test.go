package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromGroups(t *testing.T) {
	tests := []struct {
		name     string
		groups   []string
		expected Capabilities
	}{
		{
			name:   "admin gets everything",
			groups: []string{GroupAdmin},
			expected: Capabilities{
				CanCreate:      true,
				CanEdit:        true,
				CanDelete:      true,
				CanViewReports: true,
				IsAdmin:        true,
			},
		},
		{
			name:   "billing cannot delete",
			groups: []string{GroupBilling},
			expected: Capabilities{
				CanCreate:      true,
				CanEdit:        true,
				CanDelete:      false,
				CanViewReports: true,
				IsAdmin:        false,
			},
		},
		{
			name:     "viewer gets read only",
			groups:   []string{GroupViewer},
			expected: Capabilities{},
		},
		{
			name:     "no groups grant nothing",
			groups:   nil,
			expected: Capabilities{},
		},
		{
			name:     "unknown groups grant nothing",
			groups:   []string{"superuser", "root"},
			expected: Capabilities{},
		},
		{
			name:   "strongest group wins",
			groups: []string{GroupViewer, GroupAdmin},
			expected: Capabilities{
				CanCreate:      true,
				CanEdit:        true,
				CanDelete:      true,
				CanViewReports: true,
				IsAdmin:        true,
			},
		},
		{
			name:   "billing plus viewer",
			groups: []string{GroupBilling, GroupViewer},
			expected: Capabilities{
				CanCreate:      true,
				CanEdit:        true,
				CanDelete:      false,
				CanViewReports: true,
				IsAdmin:        false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FromGroups(tt.groups))
		})
	}
}
