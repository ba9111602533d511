package migrate

import (
	"testing"
	"time"

	"github.com/Mit17092001/Stripe-migration-plan/internal/domain"
	"github.com/Mit17092001/Stripe-migration-plan/internal/errors"
	"github.com/Mit17092001/Stripe-migration-plan/internal/mapstore"
)

func int64ptr(v int64) *int64 { return &v }

var now = time.Unix(1_750_000_000, 0)

func unix(d time.Duration) int64 { return now.Add(d).Unix() }

func seededMaps() *mapstore.Map {
	m := mapstore.NewMap()
	m.Set(mapstore.KindProducts, "prod_old", "prod_new")
	m.Set(mapstore.KindPrices, "price_old", "price_new")
	m.Set(mapstore.KindPrices, "price_old_free", "price_new_free")
	m.Set(mapstore.KindCustomers, "cus_old", "cus_new")
	return m
}

func paidSub() domain.Subscription {
	return domain.Subscription{
		ID:       "sub_old",
		Customer: "cus_old",
		Status:   domain.SubscriptionActive,
		Items: domain.SubscriptionItems{Data: []domain.SubscriptionItem{
			{Price: domain.ItemPrice{ID: "price_old", UnitAmount: int64ptr(999)}, Quantity: 1},
		}},
	}
}

func TestTransformProduct_StampsOldID(t *testing.T) {
	params := transformProduct(domain.Product{
		ID:       "prod_old",
		Name:     "Basic",
		Active:   true,
		Metadata: map[string]string{"team": "billing"},
	})

	if params.Metadata["migrated_from"] != "prod_old" {
		t.Errorf("migrated_from = %q", params.Metadata["migrated_from"])
	}
	if params.Metadata["team"] != "billing" {
		t.Error("original metadata should be preserved")
	}
	if params.Active == nil || !*params.Active {
		t.Error("active flag should be carried")
	}
}

func TestTransformPrice_DependencyGating(t *testing.T) {
	price := domain.Price{ID: "price_x", Product: "prod_unknown", Currency: "usd", UnitAmount: int64ptr(100)}

	_, err := transformPrice(price, seededMaps())
	if !errors.Is(err, errors.ErrDependencyNotReady) {
		t.Errorf("error = %v, want dependency-not-ready", err)
	}
}

func TestTransformPrice_FlatAndTiered(t *testing.T) {
	maps := seededMaps()

	flat := domain.Price{ID: "price_x", Product: "prod_old", Currency: "usd", UnitAmount: int64ptr(100)}
	params, err := transformPrice(flat, maps)
	if err != nil {
		t.Fatalf("transformPrice() failed: %v", err)
	}
	if params.Product != "prod_new" {
		t.Errorf("product = %q, want resolved prod_new", params.Product)
	}
	if params.UnitAmount == nil || *params.UnitAmount != 100 {
		t.Error("flat price should carry unit amount")
	}

	tiered := domain.Price{
		ID: "price_y", Product: "prod_old", Currency: "usd",
		BillingScheme: domain.BillingSchemeTiered,
		TiersMode:     "volume",
		Tiers:         []domain.PriceTier{{UpTo: int64ptr(5), UnitAmount: int64ptr(50)}},
	}
	params, err = transformPrice(tiered, maps)
	if err != nil {
		t.Fatalf("transformPrice() failed: %v", err)
	}
	if params.TiersMode != "volume" || len(params.Tiers) != 1 {
		t.Error("tiering mode and tier table should be carried verbatim")
	}
	if params.UnitAmount != nil {
		t.Error("tiered price should not carry a flat unit amount")
	}
}

func TestTransformSubscription_FreePaidBifurcation(t *testing.T) {
	maps := seededMaps()

	free := paidSub()
	free.Items.Data[0].Price = domain.ItemPrice{ID: "price_old_free", UnitAmount: int64ptr(0)}
	params, _, err := transformSubscription(free, maps, now)
	if err != nil {
		t.Fatalf("transformSubscription() failed: %v", err)
	}
	if !params.TrialEndNow {
		t.Error("free subscription should activate immediately")
	}
	if params.PaymentBehavior != "" {
		t.Error("free subscription should not be pending payment")
	}

	paid := paidSub()
	params, _, err = transformSubscription(paid, maps, now)
	if err != nil {
		t.Fatalf("transformSubscription() failed: %v", err)
	}
	if params.TrialEndNow {
		t.Error("paid subscription should not auto-activate")
	}
	if params.PaymentBehavior != "default_incomplete" {
		t.Errorf("payment_behavior = %q, want default_incomplete", params.PaymentBehavior)
	}
	if params.Customer != "cus_new" {
		t.Errorf("customer = %q, want resolved cus_new", params.Customer)
	}
}

func TestTransformSubscription_BillingCycleRule(t *testing.T) {
	tests := []struct {
		name            string
		anchor          int64
		periodEnd       int64
		wantAnchor      *int64
		wantTrialEnd    *int64
		wantAnchorReset bool
	}{
		{
			name:       "future anchor passes through",
			anchor:     unix(10 * 24 * time.Hour),
			periodEnd:  unix(10 * 24 * time.Hour),
			wantAnchor: int64ptr(unix(10 * 24 * time.Hour)),
		},
		{
			name:         "past anchor with future period end becomes trial end",
			anchor:       unix(-3 * 24 * time.Hour),
			periodEnd:    unix(5 * 24 * time.Hour),
			wantTrialEnd: int64ptr(unix(5 * 24 * time.Hour)),
		},
		{
			name:            "both in the past resets the cycle",
			anchor:          unix(-30 * 24 * time.Hour),
			periodEnd:       unix(-1 * 24 * time.Hour),
			wantAnchorReset: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := paidSub()
			sub.BillingCycleAnchor = tt.anchor
			sub.CurrentPeriodEnd = tt.periodEnd

			params, anchorReset, err := transformSubscription(sub, seededMaps(), now)
			if err != nil {
				t.Fatalf("transformSubscription() failed: %v", err)
			}

			if tt.wantAnchor != nil {
				if params.BillingCycleAnchor == nil || *params.BillingCycleAnchor != *tt.wantAnchor {
					t.Errorf("anchor = %v, want %d", params.BillingCycleAnchor, *tt.wantAnchor)
				}
			} else if params.BillingCycleAnchor != nil {
				t.Errorf("anchor = %d, want unset", *params.BillingCycleAnchor)
			}

			if tt.wantTrialEnd != nil {
				if params.TrialEnd == nil || *params.TrialEnd != *tt.wantTrialEnd {
					t.Errorf("trial_end = %v, want %d", params.TrialEnd, *tt.wantTrialEnd)
				}
			}

			if anchorReset != tt.wantAnchorReset {
				t.Errorf("anchorReset = %v, want %v", anchorReset, tt.wantAnchorReset)
			}
		})
	}
}

func TestTransformSubscription_PreservesFutureTrial(t *testing.T) {
	sub := paidSub()
	futureTrial := unix(7 * 24 * time.Hour)
	sub.TrialEnd = &futureTrial
	sub.BillingCycleAnchor = unix(10 * 24 * time.Hour)

	params, _, err := transformSubscription(sub, seededMaps(), now)
	if err != nil {
		t.Fatalf("transformSubscription() failed: %v", err)
	}
	if params.TrialEnd == nil || *params.TrialEnd != futureTrial {
		t.Error("future trial end should be preserved")
	}

	// A trial that already ended is not carried over.
	pastTrial := unix(-24 * time.Hour)
	sub.TrialEnd = &pastTrial
	params, _, err = transformSubscription(sub, seededMaps(), now)
	if err != nil {
		t.Fatalf("transformSubscription() failed: %v", err)
	}
	if params.TrialEnd != nil {
		t.Errorf("trial_end = %d, want unset for expired trial", *params.TrialEnd)
	}
}

func TestTransformSubscription_MissingPriceGates(t *testing.T) {
	sub := paidSub()
	sub.Items.Data = append(sub.Items.Data, domain.SubscriptionItem{
		Price: domain.ItemPrice{ID: "price_unmapped", UnitAmount: int64ptr(500)},
	})

	_, _, err := transformSubscription(sub, seededMaps(), now)
	if !errors.Is(err, errors.ErrDependencyNotReady) {
		t.Errorf("error = %v, want dependency-not-ready", err)
	}
}
