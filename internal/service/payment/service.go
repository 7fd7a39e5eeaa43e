package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/csm-garage/backoffice-go/internal/domain/payment"
	"github.com/csm-garage/backoffice-go/internal/domain/sale"
	"github.com/csm-garage/backoffice-go/internal/pkg/batch"
	"github.com/csm-garage/backoffice-go/internal/pkg/database"
	"github.com/csm-garage/backoffice-go/internal/pkg/jwt"
	"github.com/csm-garage/backoffice-go/internal/pkg/logger"
	"github.com/csm-garage/backoffice-go/internal/pkg/money"
	"go.uber.org/zap"
)

type PaymentServiceImpl struct {
	txManager   database.TxManager
	paymentRepo payment.PaymentRepository
	saleRepo    sale.SaleRepository
	logger      *zap.Logger
	now         func() time.Time
}

func NewPaymentService(
	txManager database.TxManager,
	paymentRepo payment.PaymentRepository,
	saleRepo sale.SaleRepository,
	log *zap.Logger,
) payment.PaymentService {
	return &PaymentServiceImpl{
		txManager:   txManager,
		paymentRepo: paymentRepo,
		saleRepo:    saleRepo,
		logger:      logger.OrNop(log),
		now:         time.Now,
	}
}

// documentKind describes how one type of settled document is linked and marked paid.
// markPaid and ensure treat documents of another company as missing.
type documentKind struct {
	name     string
	link     func(ctx context.Context, paymentID, documentID string) (bool, error)
	markPaid func(ctx context.Context, documentID, companyID string) error
	ensure   func(ctx context.Context, documentID, companyID string) error
	notFound error
}

func (s *PaymentServiceImpl) invoiceKind() documentKind {
	return documentKind{
		name:     "invoice",
		link:     s.paymentRepo.LinkInvoice,
		markPaid: s.saleRepo.MarkInvoicePaid,
		ensure:   s.saleRepo.EnsureInvoice,
		notFound: sale.ErrInvoiceNotFound,
	}
}

func (s *PaymentServiceImpl) saleKind() documentKind {
	return documentKind{
		name:     "sale",
		link:     s.paymentRepo.LinkSale,
		markPaid: s.saleRepo.MarkSalePaid,
		ensure:   s.saleRepo.EnsureSale,
		notFound: sale.ErrSaleNotFound,
	}
}

// ========== CREATE / LINK ==========

func (s *PaymentServiceImpl) CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (payment.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return payment.SettlementResponse{}, err
	}
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return payment.SettlementResponse{}, err
	}

	var payments []payment.Payment
	missing := []string{}

	if len(req.Payments) == 0 {
		created, err := s.paymentRepo.Create(ctx, s.newPayment(companyID, req))
		if err != nil {
			return payment.SettlementResponse{}, err
		}
		s.logger.Info("Payment recorded",
			zap.String("payment_id", created.ID),
			zap.String("method", string(created.Method)),
		)
		payments = append(payments, created)
	} else {
		for _, id := range dedupe(req.Payments) {
			p, err := s.paymentRepo.GetByID(ctx, id, companyID)
			if errors.Is(err, payment.ErrPaymentNotFound) {
				missing = append(missing, id)
				continue
			}
			if err != nil {
				return payment.SettlementResponse{}, err
			}
			payments = append(payments, p)
		}
		if len(payments) == 0 {
			return payment.SettlementResponse{}, fmt.Errorf("%w: none of the %d referenced payments exist", payment.ErrPaymentNotFound, len(missing))
		}
	}

	resp := s.settle(ctx, payments, req.Invoices, req.Sales)
	resp.MissingPayments = missing
	return resp, nil
}

func (s *PaymentServiceImpl) newPayment(companyID string, req payment.CreatePaymentRequest) payment.Payment {
	datePaid := s.now()
	if req.CreateDate != nil {
		if t, ok := payment.ParseCreateDate(*req.CreateDate); ok {
			datePaid = t
		}
	}
	amount := money.Round(*req.ReceivedAmount)
	return payment.Payment{
		CompanyID:     companyID,
		AmountPaid:    &amount,
		DatePaid:      datePaid,
		Method:        payment.Method(req.PaymentMethod),
		TransactionID: req.TransactionReference(),
		Remarks:       strings.TrimSpace(req.Note),
	}
}

func (s *PaymentServiceImpl) LinkDocuments(ctx context.Context, req payment.LinkRequest) (payment.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return payment.SettlementResponse{}, err
	}

	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return payment.SettlementResponse{}, err
	}
	p, err := s.paymentRepo.GetByID(ctx, req.PaymentID, companyID)
	if err != nil {
		return payment.SettlementResponse{}, err
	}

	resp := s.settle(ctx, []payment.Payment{p}, req.Invoices, req.Sales)
	resp.MissingPayments = []string{}
	return resp, nil
}

// settle links every payment to every document and marks the documents paid.
func (s *PaymentServiceImpl) settle(ctx context.Context, payments []payment.Payment, invoiceIDs, saleIDs []string) payment.SettlementResponse {
	invoices := batch.NewResult()
	sales := batch.NewResult()

	for _, p := range payments {
		invoices.Merge(s.linkAll(ctx, p, dedupe(invoiceIDs), s.invoiceKind(), true))
		sales.Merge(s.linkAll(ctx, p, dedupe(saleIDs), s.saleKind(), true))
	}

	overall := batch.NewResult()
	overall.Merge(invoices)
	overall.Merge(sales)

	if len(overall.Failed) > 0 || len(overall.Skipped) > 0 {
		s.logger.Warn("Payment settlement incomplete",
			zap.Int("linked", len(overall.Succeeded)),
			zap.Int("failed", len(overall.Failed)),
			zap.Int("skipped", len(overall.Skipped)),
		)
	}

	return payment.SettlementResponse{
		Payments: toPaymentResponses(payments),
		Invoices: invoices,
		Sales:    sales,
		Status:   overall.Status(),
	}
}

// linkAll runs one transaction per document. Missing documents are skipped.
func (s *PaymentServiceImpl) linkAll(ctx context.Context, p payment.Payment, documentIDs []string, kind documentKind, markPaid bool) *batch.Result {
	result := batch.NewResult()
	for _, id := range documentIDs {
		err := s.linkOne(ctx, p, id, kind, markPaid)
		switch {
		case err == nil:
			result.Succeed(id)
		case errors.Is(err, kind.notFound):
			result.Skip(id)
		default:
			result.Fail(id, err)
		}
	}
	return result
}

func (s *PaymentServiceImpl) linkOne(ctx context.Context, p payment.Payment, documentID string, kind documentKind, markPaid bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unexpected error linking %s %s: %v", kind.name, documentID, r)
		}
	}()

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		// Missing, deleted and foreign documents are rejected before any join row is written.
		check := kind.ensure
		if markPaid {
			check = kind.markPaid
		}
		if err := check(txCtx, documentID, p.CompanyID); err != nil {
			return err
		}
		created, err := kind.link(txCtx, p.ID, documentID)
		if err != nil {
			return err
		}
		if created {
			s.logger.Debug("Payment linked",
				zap.String("payment_id", p.ID),
				zap.String(kind.name+"_id", documentID),
			)
		}
		return nil
	})
}

// ========== QUERIES ==========

func (s *PaymentServiceImpl) GetPayment(ctx context.Context, id string) (payment.PaymentResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	p, err := s.paymentRepo.GetByID(ctx, id, companyID)
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return toPaymentResponse(p), nil
}

func (s *PaymentServiceImpl) ListPayments(ctx context.Context, filter payment.PaymentFilter) (payment.ListPaymentResponse, error) {
	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return payment.ListPaymentResponse{}, err
	}
	filter.CompanyID = companyID
	filter.Normalize()

	list, total, err := s.paymentRepo.List(ctx, filter)
	if err != nil {
		return payment.ListPaymentResponse{}, err
	}
	return payment.ListPaymentResponse{
		Payments:   toPaymentResponses(list),
		Page:       filter.Page,
		Limit:      filter.Limit,
		TotalItems: total,
	}, nil
}

// ========== GATEWAY ==========

// RegisterPendingCheckout stores an mpesa payment with no amount yet and
// attaches the documents. They are marked paid on confirmation.
func (s *PaymentServiceImpl) RegisterPendingCheckout(ctx context.Context, req payment.RegisterCheckoutRequest) (payment.SettlementResponse, error) {
	if err := req.Validate(); err != nil {
		return payment.SettlementResponse{}, err
	}

	companyID, err := jwt.CompanyIDFromContext(ctx)
	if err != nil {
		return payment.SettlementResponse{}, err
	}

	checkoutID := strings.TrimSpace(req.CheckoutRequestID)
	created, err := s.paymentRepo.Create(ctx, payment.Payment{
		CompanyID:         companyID,
		DatePaid:          s.now(),
		Method:            payment.MethodMpesa,
		CheckoutRequestID: &checkoutID,
		Remarks:           strings.TrimSpace(req.Note),
	})
	if err != nil {
		return payment.SettlementResponse{}, err
	}

	invoices := s.linkAll(ctx, created, dedupe(req.Invoices), s.invoiceKind(), false)
	sales := s.linkAll(ctx, created, dedupe(req.Sales), s.saleKind(), false)

	overall := batch.NewResult()
	overall.Merge(invoices)
	overall.Merge(sales)

	s.logger.Info("Pending checkout registered",
		zap.String("payment_id", created.ID),
		zap.String("checkout_request_id", checkoutID),
		zap.Int("documents", len(overall.Succeeded)),
	)

	return payment.SettlementResponse{
		Payments:        toPaymentResponses([]payment.Payment{created}),
		Invoices:        invoices,
		Sales:           sales,
		MissingPayments: []string{},
		Status:          overall.Status(),
	}, nil
}

// HandleGatewayConfirmation settles or discards the payment registered for
// the checkout. Repeated success callbacks leave a confirmed payment unchanged.
func (s *PaymentServiceImpl) HandleGatewayConfirmation(ctx context.Context, c payment.GatewayConfirmation) (payment.PaymentResponse, error) {
	log := s.logger.With(zap.String("checkout_request_id", c.CheckoutRequestID))

	var result payment.Payment
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		p, err := s.paymentRepo.GetByCheckoutRequestIDForUpdate(txCtx, c.CheckoutRequestID)
		if err != nil {
			return err
		}

		if !c.Succeeded {
			at := s.now()
			if err := s.paymentRepo.SoftDelete(txCtx, p.ID, at); err != nil {
				return err
			}
			p.IsDeleted = true
			p.DeletedAt = &at
			result = p
			log.Info("Checkout failed, payment discarded",
				zap.String("payment_id", p.ID),
				zap.String("result_desc", c.ResultDesc),
			)
			return nil
		}

		if p.Confirmed() {
			result = p
			log.Info("Checkout already confirmed", zap.String("payment_id", p.ID))
			return nil
		}

		paidAt := c.PaidAt
		if paidAt.IsZero() {
			paidAt = s.now()
		}
		confirmed, err := s.paymentRepo.ApplyConfirmation(txCtx, p.ID, money.Round(c.Amount), paidAt,
			strings.TrimSpace(c.Reference), "Payment from "+strings.TrimSpace(c.Phone))
		if err != nil {
			return err
		}

		if err := s.settleLinked(txCtx, confirmed); err != nil {
			return err
		}

		result = confirmed
		log.Info("Checkout confirmed",
			zap.String("payment_id", confirmed.ID),
			zap.String("amount", c.Amount.StringFixed(money.Scale)),
		)
		return nil
	})
	if err != nil {
		return payment.PaymentResponse{}, err
	}
	return toPaymentResponse(result), nil
}

// settleLinked marks every document attached to the payment as paid.
// Documents deleted since registration are ignored.
func (s *PaymentServiceImpl) settleLinked(ctx context.Context, p payment.Payment) error {
	invoiceIDs, saleIDs, err := s.paymentRepo.ListLinkedDocuments(ctx, p.ID)
	if err != nil {
		return err
	}
	for _, id := range invoiceIDs {
		if err := s.saleRepo.MarkInvoicePaid(ctx, id, p.CompanyID); err != nil && !errors.Is(err, sale.ErrInvoiceNotFound) {
			return err
		}
	}
	for _, id := range saleIDs {
		if err := s.saleRepo.MarkSalePaid(ctx, id, p.CompanyID); err != nil && !errors.Is(err, sale.ErrSaleNotFound) {
			return err
		}
	}
	return nil
}

func toPaymentResponse(p payment.Payment) payment.PaymentResponse {
	return payment.PaymentResponse{
		ID:                p.ID,
		AmountPaid:        p.AmountPaid,
		DatePaid:          p.DatePaid,
		PaymentMethod:     string(p.Method),
		TransactionID:     p.TransactionID,
		CheckoutRequestID: p.CheckoutRequestID,
		Remarks:           p.Remarks,
		IsDeleted:         p.IsDeleted,
	}
}

func toPaymentResponses(list []payment.Payment) []payment.PaymentResponse {
	result := make([]payment.PaymentResponse, 0, len(list))
	for _, p := range list {
		result = append(result, toPaymentResponse(p))
	}
	return result
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
