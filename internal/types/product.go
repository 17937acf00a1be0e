package types

import (
	ierr "github.com/netspire/billing/internal/errors"
	"github.com/samber/lo"
)

// ProductCategory classifies a catalog entry
type ProductCategory string

const (
	ProductCategoryServices     ProductCategory = "services"
	ProductCategoryProducts     ProductCategory = "products"
	ProductCategorySubscription ProductCategory = "subscription"
	ProductCategoryOneTime      ProductCategory = "one-time"
)

func (c ProductCategory) String() string {
	return string(c)
}

func (c ProductCategory) Validate() error {
	allowed := []ProductCategory{
		ProductCategoryServices,
		ProductCategoryProducts,
		ProductCategorySubscription,
		ProductCategoryOneTime,
	}
	if !lo.Contains(allowed, c) {
		return ierr.NewError("invalid product category").
			WithHint("Please provide a valid product category").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ProductFilter represents the filter for listing products
type ProductFilter struct {
	*QueryFilter
	*TimeRangeFilter

	ProductIDs []string         `form:"product_ids"`
	Category   *ProductCategory `form:"category"`
	IsActive   *bool            `form:"is_active"`
}

// NewNoLimitProductFilter creates a new product filter with no limit
func NewNoLimitProductFilter() *ProductFilter {
	return &ProductFilter{
		QueryFilter: NewNoLimitQueryFilter(),
	}
}

func (f *ProductFilter) Validate() error {
	if f == nil {
		return nil
	}
	if err := f.QueryFilter.Validate(); err != nil {
		return err
	}
	if err := f.TimeRangeFilter.Validate(); err != nil {
		return err
	}
	if f.Category != nil {
		if err := f.Category.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// GetLimit implements BaseFilter interface
func (f *ProductFilter) GetLimit() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

// GetOffset implements BaseFilter interface
func (f *ProductFilter) GetOffset() int {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

// IsUnlimited implements BaseFilter interface
func (f *ProductFilter) IsUnlimited() bool {
	if f == nil || f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
