package handlers

import (
	"github.com/polkiloo/homebooking/internal/domain/model"
	"github.com/polkiloo/homebooking/internal/server/http/dto"
	"github.com/polkiloo/homebooking/internal/usecase"
)

func toCreateOrderInput(req dto.CreateOrderRequest) usecase.CreateOrderInput {
	return usecase.CreateOrderInput{
		ServiceID:       req.Service.ID,
		ServiceName:     req.Service.Name,
		Category:        req.Service.Category,
		Date:            req.Schedule.Date,
		Time:            req.Schedule.Time,
		DurationMinutes: req.Schedule.DurationMinutes,
		Recurring:       req.Schedule.Recurring,
		ContactName:     req.Contact.Name,
		Phone:           req.Contact.Phone,
		Address:         req.Contact.Address,
		Amount:          req.Payment.Amount,
		Currency:        req.Payment.Currency,
		PaymentMethod:   req.Payment.Method,
	}
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:         order.ID.String(),
		CustomerID: order.CustomerID.String(),
		Service: dto.ServicePayload{
			ID:       order.Service.ID,
			Name:     order.Service.Name,
			Category: order.Service.Category,
		},
		Schedule: dto.SchedulePayload{
			Date:            order.Schedule.Date,
			Time:            order.Schedule.Time,
			DurationMinutes: order.Schedule.DurationMinutes,
			Recurring:       order.Schedule.Recurring,
		},
		Contact: dto.ContactPayload{
			Name:    order.Contact.Name,
			Phone:   order.Contact.Phone,
			Address: order.Contact.Address,
		},
		Payment: dto.PaymentResponse{
			Amount:               order.Payment.Amount,
			Currency:             order.Payment.Currency,
			Method:               order.Payment.Method,
			GatewayTransactionID: order.Payment.GatewayTransactionID,
			GatewayResponseCode:  order.Payment.GatewayResponseCode,
			Channel:              string(order.Payment.Channel),
			PaidAt:               order.Payment.PaidAt,
			ReconciliationStatus: string(order.Payment.ReconciliationStatus),
		},
		Status:                string(order.Status),
		StatusHistory:         make([]dto.StatusHistoryEntry, 0, len(order.StatusHistory)),
		CompletionRequestedAt: order.CompletionRequestedAt,
		Version:               order.Version,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}
	if order.PartnerID != nil {
		id := order.PartnerID.String()
		resp.PartnerID = &id
	}
	for _, e := range order.StatusHistory {
		resp.StatusHistory = append(resp.StatusHistory, dto.StatusHistoryEntry{
			Status: string(e.Status),
			At:     e.At,
			Note:   e.Note,
			Actor:  string(e.Actor),
		})
	}
	if order.Cancellation != nil {
		resp.Cancellation = &dto.CancellationResponse{Reason: order.Cancellation.Reason, At: order.Cancellation.At}
	}
	return resp
}

func toOrderResponses(orders []model.Order) []dto.OrderResponse {
	resp := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		resp = append(resp, toOrderResponse(&orders[i]))
	}
	return resp
}

func toReconciliationResponse(orderID string, res model.ReconciliationResult) dto.ReconciliationResponse {
	resp := dto.ReconciliationResponse{Outcome: string(res.Outcome), OrderID: orderID}
	if res.Order != nil {
		resp.OrderID = res.Order.ID.String()
		resp.Status = string(res.Order.Status)
	}
	return resp
}

func toPartnerResponse(p *model.Partner) dto.PartnerResponse {
	return dto.PartnerResponse{
		ID:            p.ID.String(),
		Name:          p.Name,
		Active:        p.Active,
		CompletedJobs: p.CompletedJobs,
		CreatedAt:     p.CreatedAt,
	}
}

func toNotificationResponse(n model.PartnerNotification) dto.NotificationResponse {
	return dto.NotificationResponse{
		OrderID:     n.OrderID.String(),
		ServiceName: n.ServiceName,
		Category:    n.Category,
		Date:        n.Date,
		Time:        n.Time,
		Amount:      n.Amount,
		Currency:    n.Currency,
		CreatedAt:   n.CreatedAt,
	}
}

func toReviewResponse(r model.PaymentReview) dto.PaymentReviewResponse {
	return dto.PaymentReviewResponse{
		ID:             r.ID.String(),
		OrderID:        r.OrderID.String(),
		Channel:        string(r.Channel),
		ReportedAmount: r.ReportedAmount,
		ExpectedAmount: r.ExpectedAmount,
		TransactionID:  r.TransactionID,
		OutcomeCode:    r.OutcomeCode,
		CreatedAt:      r.CreatedAt,
	}
}
