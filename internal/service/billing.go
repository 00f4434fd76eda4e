package service

import (
	"context"
	"fmt"
	"time"

	"lounge-pos-billing/internal/accrual"
	"lounge-pos-billing/internal/cart"
	"lounge-pos-billing/internal/discount"
	"lounge-pos-billing/internal/domain"
	"lounge-pos-billing/internal/logger"
	"lounge-pos-billing/internal/money"
	"lounge-pos-billing/internal/repository"
	"lounge-pos-billing/internal/settlement"
)

type billingService struct {
	sessionRepo   repository.SessionRepository
	discountRepo  repository.DiscountRepository
	paymentRepo   repository.PaymentRepository
	rates         RateService
	defaultMethod domain.PaymentMethod
	now           func() time.Time
}

func NewBillingService(
	sessionRepo repository.SessionRepository,
	discountRepo repository.DiscountRepository,
	paymentRepo repository.PaymentRepository,
	rates RateService,
	defaultMethod domain.PaymentMethod,
) BillingService {
	return &billingService{
		sessionRepo:   sessionRepo,
		discountRepo:  discountRepo,
		paymentRepo:   paymentRepo,
		rates:         rates,
		defaultMethod: defaultMethod,
		now:           time.Now,
	}
}

func (s *billingService) QuoteSession(ctx context.Context, sessionID, discountID string) (*SessionQuote, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	dc, err := s.sessionDiscount(ctx, *session, discountID)
	if err != nil {
		return nil, err
	}
	return price(*session, dc, s.now())
}

func (s *billingService) ListActiveCosts(ctx context.Context) ([]accrual.Reading, error) {
	sessions, err := s.sessionRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	readings := make([]accrual.Reading, 0, len(sessions))
	for _, session := range sessions {
		readings = append(readings, accrual.Reading{
			SessionID: session.ID,
			PCID:      session.PCID,
			At:        now,
			Accrual:   accrual.ForSession(session, now),
		})
	}
	return readings, nil
}

// EndSession stops the meter. The discount is resolved and validated
// before the backend is asked to end the session.
func (s *billingService) EndSession(ctx context.Context, sessionID, discountID string) (*SessionQuote, error) {
	logger.EnterMethod("billingService.EndSession", "sessionID", sessionID, "discountID", discountID)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		logger.ExitMethodWithError("billingService.EndSession", err, "sessionID", sessionID)
		return nil, err
	}
	if !session.IsActive() {
		err = fmt.Errorf("%w: cannot end %s session %s", domain.ErrInvalidTransition, session.Status, sessionID)
		logger.ExitMethodWithError("billingService.EndSession", err, "sessionID", sessionID)
		return nil, err
	}

	dc, err := s.sessionDiscount(ctx, *session, discountID)
	if err == nil && dc != nil {
		err = discount.Validate(*dc)
	}
	if err != nil {
		logger.ExitMethodWithError("billingService.EndSession", err, "sessionID", sessionID)
		return nil, err
	}

	ended, err := s.sessionRepo.End(ctx, sessionID, domain.SessionEndRequest{DiscountID: discountID})
	if err != nil {
		logger.ExitMethodWithError("billingService.EndSession", err, "sessionID", sessionID)
		return nil, err
	}

	quote, err := price(*ended, dc, s.now())
	if err != nil {
		logger.ExitMethodWithError("billingService.EndSession", err, "sessionID", sessionID)
		return nil, err
	}
	quote.Session.Discount = quote.Discount

	logger.ExitMethod("billingService.EndSession", "sessionID", sessionID,
		"minutes", quote.Accrual.ElapsedMinutes, "due", quote.AmountDue.String())
	return quote, nil
}

// SettleSession pays a completed session through the route its linked sale
// decides
func (s *billingService) SettleSession(ctx context.Context, sessionID string, tender Tender) (*SettlementResult, error) {
	logger.EnterMethod("billingService.SettleSession", "sessionID", sessionID, "currency", tender.Currency)

	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		logger.ExitMethodWithError("billingService.SettleSession", err, "sessionID", sessionID)
		return nil, err
	}
	check := *session
	if err := check.MarkPaid(); err != nil {
		logger.ExitMethodWithError("billingService.SettleSession", err, "sessionID", sessionID)
		return nil, err
	}

	dc, err := s.sessionDiscount(ctx, *session, "")
	if err != nil {
		logger.ExitMethodWithError("billingService.SettleSession", err, "sessionID", sessionID)
		return nil, err
	}
	quote, err := price(*session, dc, s.now())
	if err != nil {
		logger.ExitMethodWithError("billingService.SettleSession", err, "sessionID", sessionID)
		return nil, err
	}

	result, err := s.settle(ctx, quote.AmountDue, tender, quote.Route)
	if err != nil {
		logger.ExitMethodWithError("billingService.SettleSession", err, "sessionID", sessionID)
		return nil, err
	}

	logger.ExitMethod("billingService.SettleSession", "sessionID", sessionID, "route", quote.Route.String())
	return result, nil
}

func (s *billingService) SettleSale(ctx context.Context, saleID string, amountDue money.Money, tender Tender) (*SettlementResult, error) {
	if err := amountDue.Validate(); err != nil {
		return nil, err
	}
	return s.settle(ctx, amountDue, tender, settlement.SaleRoute(saleID))
}

func (s *billingService) CancelSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := s.sessionRepo.Cancel(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	logger.Info("Session cancelled", "sessionID", sessionID, "pcID", session.PCID)
	return session, nil
}

func (s *billingService) QuoteChange(ctx context.Context, amountDue money.Money, tender Tender) (*settlement.Settlement, error) {
	if err := amountDue.Validate(); err != nil {
		return nil, err
	}
	rate, err := s.rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	return settlement.Compute(settlement.Request{
		AmountDue:      amountDue,
		TenderCurrency: tender.Currency,
		TenderAmount:   tender.Amount,
	}, rate.Rate)
}

func (s *billingService) QuoteDiscount(ctx context.Context, base money.Money, target domain.DiscountTarget, targetID, discountID string) (*DiscountQuote, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	dc, err := s.resolveDiscount(ctx, target, targetID, discountID)
	if err != nil {
		return nil, err
	}
	final, app, err := discount.Apply(base, dc)
	if err != nil {
		return nil, err
	}
	return &DiscountQuote{Base: base, Application: app, Final: final}, nil
}

func (s *billingService) QuoteCart(ctx context.Context, c cart.Cart, discountID string) (*cart.Checkout, error) {
	dc, err := s.resolveDiscount(ctx, domain.DiscountTargetSale, "", discountID)
	if err != nil {
		return nil, err
	}
	return c.Checkout(dc)
}

func (s *billingService) settle(ctx context.Context, amountDue money.Money, tender Tender, route settlement.Route) (*SettlementResult, error) {
	rate, err := s.rates.Current(ctx)
	if err != nil {
		return nil, err
	}
	st, err := settlement.Compute(settlement.Request{
		AmountDue:      amountDue,
		TenderCurrency: tender.Currency,
		TenderAmount:   tender.Amount,
		Route:          route,
	}, rate.Rate)
	if err != nil {
		return nil, err
	}

	method := tender.Method
	if method == "" {
		method = s.defaultMethod
	}
	req := st.PaymentRequest(method)

	var receipt *domain.PaymentReceipt
	switch route.Kind {
	case settlement.RouteSale:
		if route.SessionID != "" {
			receipt, err = s.paymentRepo.SubmitLinkedSessionPayment(ctx, route.SaleID, route.SessionID, req)
		} else {
			receipt, err = s.paymentRepo.SubmitSalePayment(ctx, route.SaleID, req)
		}
	case settlement.RouteSession:
		receipt, err = s.paymentRepo.SubmitSessionPayment(ctx, route.SessionID, req)
	default:
		err = fmt.Errorf("unknown settlement route %q", route.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to submit payment for %s: %w", route, err)
	}

	logger.Info("Payment submitted",
		"route", route.String(),
		"currency", req.PaymentCurrency,
		"amount", req.Amount.String(),
		"change", st.Change.String(),
		"idempotencyKey", req.IdempotencyKey,
	)
	return &SettlementResult{Settlement: st, Receipt: receipt}, nil
}

// sessionDiscount picks the discount for a session: the selected one when
// given, otherwise the one recorded when the session was ended
func (s *billingService) sessionDiscount(ctx context.Context, session domain.Session, discountID string) (*domain.Discount, error) {
	if discountID == "" {
		if session.Discount == nil {
			return nil, nil
		}
		return &domain.Discount{
			ID:     session.Discount.DiscountID,
			Name:   session.Discount.Name,
			Value:  session.Discount.Percentage,
			Target: domain.DiscountTargetGamingSession,
		}, nil
	}
	return s.resolveDiscount(ctx, domain.DiscountTargetGamingSession, session.ID, discountID)
}

func (s *billingService) resolveDiscount(ctx context.Context, target domain.DiscountTarget, targetID, discountID string) (*domain.Discount, error) {
	if discountID == "" {
		return nil, nil
	}
	discounts, err := s.discountRepo.ListActive(ctx, target, targetID)
	if err != nil {
		return nil, err
	}
	return discount.Resolve(discounts, target, targetID, discountID)
}

func price(session domain.Session, dc *domain.Discount, now time.Time) (*SessionQuote, error) {
	if err := accrual.Check(session); err != nil {
		return nil, err
	}
	acc := accrual.ForSession(session, now)
	due, app, err := discount.Apply(acc.Cost, dc)
	if err != nil {
		return nil, err
	}
	return &SessionQuote{
		Session:   session,
		Accrual:   acc,
		Discount:  app,
		AmountDue: due,
		Route:     settlement.RouteFor(session),
	}, nil
}
