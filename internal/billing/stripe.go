// Package billing reads plans and subscriptions from Stripe.
package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/customer"
	"github.com/stripe/stripe-go/v76/price"
	"github.com/stripe/stripe-go/v76/subscription"

	"github.com/buddyai/buddy-server-go/internal/model"
)

// Provider is the payment provider surface the premium procedures need.
type Provider interface {
	ListProducts(ctx context.Context) ([]model.Product, error)
	FindActiveSubscription(ctx context.Context, email string) (*model.Subscription, error)
}

type StripeProvider struct{}

func NewStripeProvider(secretKey string) *StripeProvider {
	stripe.Key = secretKey
	return &StripeProvider{}
}

func (p *StripeProvider) ListProducts(ctx context.Context) ([]model.Product, error) {
	params := &stripe.PriceListParams{
		Active: stripe.Bool(true),
		Type:   stripe.String(string(stripe.PriceTypeRecurring)),
	}
	params.Context = ctx
	params.AddExpand("data.product")

	products := []model.Product{}
	iter := price.List(params)
	for iter.Next() {
		pr := iter.Price()
		if pr.Product == nil || !pr.Product.Active {
			continue
		}
		products = append(products, productFromPrice(pr))
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list stripe prices: %w", err)
	}

	log.Debug().Int("count", len(products)).Msg("loaded products from stripe")
	return products, nil
}

func (p *StripeProvider) FindActiveSubscription(ctx context.Context, email string) (*model.Subscription, error) {
	custParams := &stripe.CustomerListParams{Email: stripe.String(email)}
	custParams.Context = ctx
	custParams.Limit = stripe.Int64(1)

	custIter := customer.List(custParams)
	if !custIter.Next() {
		if err := custIter.Err(); err != nil {
			return nil, fmt.Errorf("list stripe customers: %w", err)
		}
		return nil, nil
	}
	cust := custIter.Customer()

	subParams := &stripe.SubscriptionListParams{
		Customer: stripe.String(cust.ID),
		Status:   stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	subParams.Context = ctx
	subParams.Limit = stripe.Int64(1)
	subParams.AddExpand("data.items.data.price.product")

	subIter := subscription.List(subParams)
	if !subIter.Next() {
		if err := subIter.Err(); err != nil {
			return nil, fmt.Errorf("list stripe subscriptions: %w", err)
		}
		return nil, nil
	}
	return subscriptionFromStripe(subIter.Subscription()), nil
}

func productFromPrice(pr *stripe.Price) model.Product {
	product := model.Product{
		PriceID:  pr.ID,
		Amount:   pr.UnitAmount,
		Currency: string(pr.Currency),
	}
	if pr.Recurring != nil {
		product.Interval = string(pr.Recurring.Interval)
	}
	if pr.Product != nil {
		product.ID = pr.Product.ID
		product.Name = pr.Product.Name
		product.Description = pr.Product.Description
		product.Metadata = pr.Product.Metadata
	}
	return product
}

func subscriptionFromStripe(sub *stripe.Subscription) *model.Subscription {
	out := &model.Subscription{
		ID:                sub.ID,
		Status:            string(sub.Status),
		CurrentPeriodEnd:  time.Unix(sub.CurrentPeriodEnd, 0).UTC(),
		CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
	}
	if sub.Items != nil && len(sub.Items.Data) > 0 {
		item := sub.Items.Data[0]
		if item.Price != nil && item.Price.Product != nil {
			out.ProductID = item.Price.Product.ID
			out.ProductName = item.Price.Product.Name
		}
	}
	return out
}
