package types

type OrderStatus string

const (
	OrderStatusPending         OrderStatus = "PENDING"
	OrderStatusPaid            OrderStatus = "PAID"
	OrderStatusCanceled        OrderStatus = "CANCELED"
	OrderStatusRefundRequested OrderStatus = "REFUND_REQUESTED"
	OrderStatusRefunded        OrderStatus = "REFUNDED"
)

// Terminal reports whether no further transition is permitted from s.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusCanceled || s == OrderStatusRefunded
}

type PaymentChannel string

const (
	PaymentChannelStripe PaymentChannel = "STRIPE"
	PaymentChannelAlipay PaymentChannel = "ALIPAY"
	PaymentChannelWechat PaymentChannel = "WECHAT"
)

func (c PaymentChannel) Valid() bool {
	switch c {
	case PaymentChannelStripe, PaymentChannelAlipay, PaymentChannelWechat:
		return true
	}
	return false
}
