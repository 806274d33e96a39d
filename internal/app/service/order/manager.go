package order

import (
	"context"

	"github.com/petalmall/membership/internal/models"
	"github.com/petalmall/membership/pkg/types"
)

type CreateOrderResult struct {
	Order *models.Order `json:"order"`
	// PaymentURL is an opaque stub until a real gateway is integrated.
	PaymentURL string `json:"payment_url"`
}

// Scan order request/response (admin list pages).
type ScanOrdersRequest struct {
	Filters  []*types.CommonFilter `json:"filters"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
}

type ScanOrdersResponse struct {
	Items []*models.Order  `json:"items"`
	Meta  types.Pagination `json:"meta"`
}

// Manager owns the order lifecycle state machine. Status only ever
// moves along these edges, each applied as a conditional update:
//
//	PENDING  -> PAID              (payment collaborator, MarkPaid)
//	PENDING  -> CANCELED          (owning user)
//	PAID     -> REFUND_REQUESTED  (owning user)
//	REFUND_REQUESTED -> REFUNDED  (admin)
//
// Ownership mismatches are reported as not-found so callers cannot
// probe for other users' order IDs.
type Manager interface {
	// Create a PENDING order snapshotting price/currency from the plan.
	Create(ctx context.Context, userID, planID int64, channel types.PaymentChannel) (*CreateOrderResult, error)
	// Cancel a PENDING order owned by the caller.
	CancelForUser(ctx context.Context, orderID, callerUserID int64) (*models.Order, error)
	// Record refund intent on a PAID order owned by the caller.
	RequestRefundForUser(ctx context.Context, orderID, callerUserID int64) (*models.Order, error)
	// Approve a pending refund request. Admin gating happens at the
	// route boundary; the operation trusts its caller.
	ApproveRefundForOrder(ctx context.Context, orderID int64) (*models.Order, error)
	// MarkPaid applies the external payment-confirmation edge.
	MarkPaid(ctx context.Context, orderNo string) (*models.Order, error)
	// ListForUser returns the caller's orders, newest first.
	ListForUser(ctx context.Context, userID int64) ([]*models.Order, error)
	// ScanOrders lists orders across users (admin pages).
	ScanOrders(ctx context.Context, req *ScanOrdersRequest) (*ScanOrdersResponse, error)
}
