package types

import (
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/samber/lo"
)

// CustomerStatus represents the billing status of a customer
type CustomerStatus string

const (
	CustomerStatusActive    CustomerStatus = "active"
	CustomerStatusInactive  CustomerStatus = "inactive"
	CustomerStatusSuspended CustomerStatus = "suspended"
)

func (s CustomerStatus) String() string {
	return string(s)
}

func (s CustomerStatus) Validate() error {
	allowed := []CustomerStatus{
		CustomerStatusActive,
		CustomerStatusInactive,
		CustomerStatusSuspended,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid customer status").
			WithHint("Please provide a valid customer status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// CustomerFilter represents the filter for listing customers
type CustomerFilter struct {
	*QueryFilter
	*TimeRangeFilter

	CustomerIDs    []string        `form:"customer_ids"`
	CustomerStatus *CustomerStatus `form:"customer_status"`
	Email          string          `form:"email"`
}

// NewNoLimitCustomerFilter creates a new customer filter with no limit
func NewNoLimitCustomerFilter() *CustomerFilter {
	return &CustomerFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *CustomerFilter) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if err := f.TimeRangeFilter.Validate(); err != nil {
		return err
	}
	if f.CustomerStatus != nil {
		if err := f.CustomerStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetLimit implements BaseFilter interface
func (f *CustomerFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

// GetOffset implements BaseFilter interface
func (f *CustomerFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

// IsUnlimited implements BaseFilter interface
func (f *CustomerFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
