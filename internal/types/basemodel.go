package types

import (
	"context"
	"time"
)

// BaseModel is embedded by all persisted domain models
type BaseModel struct {
	TenantID  string    `json:"tenant_id" dynamodbav:"tenant_id"`
	Status    Status    `json:"status" dynamodbav:"status"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
	CreatedBy string    `json:"created_by" dynamodbav:"created_by"`
	UpdatedBy string    `json:"updated_by" dynamodbav:"updated_by"`
}

func GetDefaultBaseModel(ctx context.Context) BaseModel {
	now := time.Now().UTC()
	return BaseModel{
		TenantID:  GetTenantID(ctx),
		Status:    StatusPublished,
		CreatedAt: now,
		UpdatedAt: now,
		CreatedBy: GetUserID(ctx),
		UpdatedBy: GetUserID(ctx),
	}
}

// Touch bumps UpdatedAt/UpdatedBy on a mutation
func (b *BaseModel) Touch(ctx context.Context) {
	b.UpdatedAt = time.Now().UTC()
	b.UpdatedBy = GetUserID(ctx)
}
