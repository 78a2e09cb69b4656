package lms

import (
	"context"
	"fmt"
)

type CheckoutOrder struct {
	OrderID     int64  `json:"order_id"`
	PaymentURL  string `json:"payment_url"`
	Amount      string `json:"amount,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
	Message     string `json:"message,omitempty"`
}

type PaymentConfirmation struct {
	OrderID           int64  `json:"order_id"`
	Status            string `json:"status"`
	Message           string `json:"message"`
	EnrollmentCreated bool   `json:"enrollment_created"`
}

// CreateOrder starts checkout for a course, reusing a pending order if any.
func (a *API) CreateOrder(ctx context.Context, courseID int64) (*CheckoutOrder, error) {
	var out CheckoutOrder
	if err := a.client.Post(ctx, "payment/create-order/", map[string]int64{"course_id": courseID}, &out); err != nil {
		return nil, fmt.Errorf("[API CreateOrder] %w", err)
	}
	return &out, nil
}

func (a *API) FakeConfirm(ctx context.Context, orderID int64) (*PaymentConfirmation, error) {
	var out PaymentConfirmation
	if err := a.client.Post(ctx, "payment/fake-confirm/", map[string]int64{"order_id": orderID}, &out); err != nil {
		return nil, fmt.Errorf("[API FakeConfirm] %w", err)
	}
	return &out, nil
}

func (a *API) PaymentStatus(ctx context.Context, orderID int64) (*Order, error) {
	p, err := idPath("payment/status/", orderID, "")
	if err != nil {
		return nil, fmt.Errorf("[API PaymentStatus] %w", err)
	}
	var out Order
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API PaymentStatus] %w", err)
	}
	return &out, nil
}

func (a *API) MyCertificates(ctx context.Context) ([]Certificate, error) {
	var page Page[Certificate]
	if err := a.client.Get(ctx, "student/certificates/", nil, &page); err != nil {
		return nil, fmt.Errorf("[API MyCertificates] %w", err)
	}
	return page.Results, nil
}

func (a *API) CertificateDetail(ctx context.Context, id int64) (*Certificate, error) {
	p, err := idPath("student/certificates/", id, "")
	if err != nil {
		return nil, fmt.Errorf("[API CertificateDetail] %w", err)
	}
	var out Certificate
	if err := a.client.Get(ctx, p, nil, &out); err != nil {
		return nil, fmt.Errorf("[API CertificateDetail] %w", err)
	}
	return &out, nil
}
