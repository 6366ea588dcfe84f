package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gmail-marketplace/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentPurchases_NoDoubleSale races ten buyers over ten
// available items, two per purchase. Exactly five purchases can
// succeed and no item may be delivered twice.
func TestConcurrentPurchases_NoDoubleSale(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	token := app.setupApprovedSeller(t, 9001, "bulk_seller")
	emails := make([]string, 10)
	for i := range emails {
		emails[i] = fmt.Sprintf("stock%d@gmail.com", i)
	}
	app.submitApprovedBatch(t, token, 9001, emails)

	// Ten funded buyers, each can afford exactly one quantity-2 purchase
	buyers := make([]int64, 10)
	for i := range buyers {
		buyers[i] = int64(9100 + i)
		app.registerUser(t, buyers[i], fmt.Sprintf("racer_%d", i))
		app.creditWallet(t, buyers[i], 3000)
	}

	var wg sync.WaitGroup
	var successCount atomic.Int64
	var soldOutCount atomic.Int64
	var delivered sync.Map // email -> buyer ID

	for _, buyerID := range buyers {
		wg.Add(1)
		go func(buyerID int64) {
			defer wg.Done()

			body := `{"quantity":2}`
			req, err := http.NewRequest(http.MethodPost, app.server.URL+"/api/v1/market/purchase", strings.NewReader(body))
			if err != nil {
				t.Errorf("build request: %v", err)
				return
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("X-Internal-Token", testInternalToken)
			req.Header.Set("X-User-ID", fmt.Sprintf("%d", buyerID))

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Errorf("purchase request: %v", err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				if resp.StatusCode == http.StatusConflict {
					soldOutCount.Add(1)
				}
				return
			}
			successCount.Add(1)

			var result struct {
				Data struct {
					Accounts []struct {
						Email string `json:"email"`
					} `json:"accounts"`
				} `json:"data"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
				t.Errorf("decode purchase response: %v", err)
				return
			}
			for _, a := range result.Data.Accounts {
				if prev, loaded := delivered.LoadOrStore(a.Email, buyerID); loaded {
					t.Errorf("item %s delivered to both %v and %v", a.Email, prev, buyerID)
				}
			}
		}(buyerID)
	}
	wg.Wait()

	t.Logf("successes=%d sold_out=%d", successCount.Load(), soldOutCount.Load())
	assert.Equal(t, int64(5), successCount.Load())
	assert.Equal(t, int64(5), soldOutCount.Load())

	// Every item sold exactly once, each to a real buyer
	deliveredCount := 0
	delivered.Range(func(_, _ interface{}) bool { deliveredCount++; return true })
	assert.Equal(t, 10, deliveredCount)

	app.store.mu.RLock()
	sold := 0
	for _, item := range app.store.items {
		if item.Status == domain.ItemSold {
			require.NotNil(t, item.BuyerID, "sold item %s has no buyer", item.Email)
			sold++
		}
	}
	app.store.mu.RUnlock()
	assert.Equal(t, 10, sold)

	// Winners paid, losers did not, and every cached balance matches
	// the ledger sum
	ctx := context.Background()
	for _, buyerID := range buyers {
		balance, err := app.walletSvc.Balance(ctx, buyerID)
		require.NoError(t, err)
		ledger, err := app.txRepo.SumSettledByUser(ctx, buyerID)
		require.NoError(t, err)
		assert.Equal(t, ledger, balance, "buyer %d balance drifted from ledger", buyerID)
		assert.True(t, balance == 0 || balance == 3000, "buyer %d has impossible balance %d", buyerID, balance)
	}
}

// TestConcurrentReconcile_CreditsOnce fires twenty reconcile calls at
// one successful order. The wallet must be credited exactly once.
func TestConcurrentReconcile_CreditsOnce(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerUser(t, 9200, "impatient")

	resp := app.userRequest(t, http.MethodPost, "/api/v1/wallet/orders", 9200, map[string]int64{
		"amount": 5000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := decodeData(t, resp)["order_id"].(string)

	app.gateway.setStatus(orderID, domain.GatewaySuccess)

	var wg sync.WaitGroup
	ctx := context.Background()
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := app.reconcileSvc.Reconcile(ctx, orderID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	balance, err := app.walletSvc.Balance(ctx, 9200)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), balance)

	ledger, err := app.txRepo.SumSettledByUser(ctx, 9200)
	require.NoError(t, err)
	assert.Equal(t, int64(5000), ledger)

	history, err := app.walletSvc.History(ctx, 9200, 50)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.TransactionStatusSuccess, history[0].Status)
}

// TestConcurrentReconcileAndCancel races settlement against
// cancellation. Whichever wins, the order ends in exactly one terminal
// state and the balance matches the ledger.
func TestConcurrentReconcileAndCancel(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerUser(t, 9300, "fickle")

	resp := app.userRequest(t, http.MethodPost, "/api/v1/wallet/orders", 9300, map[string]int64{
		"amount": 2000,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID, _ := decodeData(t, resp)["order_id"].(string)

	app.gateway.setStatus(orderID, domain.GatewaySuccess)

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := app.reconcileSvc.Reconcile(ctx, orderID)
			assert.NoError(t, err)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Cancel of an already-settled order is a benign no-op
			assert.NoError(t, app.reconcileSvc.Cancel(ctx, orderID))
		}()
	}
	wg.Wait()

	order, err := app.reconcileSvc.Status(ctx, orderID)
	require.NoError(t, err)
	require.Contains(t, []domain.OrderStatus{domain.OrderConfirmed, domain.OrderCancelled}, order.Status)

	balance, err := app.walletSvc.Balance(ctx, 9300)
	require.NoError(t, err)
	ledger, err := app.txRepo.SumSettledByUser(ctx, 9300)
	require.NoError(t, err)
	assert.Equal(t, ledger, balance)

	if order.Status == domain.OrderConfirmed {
		assert.Equal(t, int64(2000), balance)
	} else {
		assert.Equal(t, int64(0), balance)
	}
	t.Logf("order settled %s, balance=%d", order.Status, balance)
}

// TestConcurrentTopUps_BalanceMatchesLedger settles many top-ups in
// parallel and checks the cached balance against the recomputed sum.
func TestConcurrentTopUps_BalanceMatchesLedger(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	app.registerUser(t, 9400, "whale")

	const topUps = 25
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < topUps; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := app.walletSvc.OpenTransaction(ctx, 9400, domain.TransactionTypeWalletAdd, 2000, "load test top-up", nil, nil)
			if err != nil {
				t.Errorf("open transaction: %v", err)
				return
			}
			if err := app.walletSvc.Settle(ctx, tx.ID, domain.TransactionStatusSuccess); err != nil {
				t.Errorf("settle: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, err := app.walletSvc.Balance(ctx, 9400)
	require.NoError(t, err)
	assert.Equal(t, int64(topUps*2000), balance)

	ledger, err := app.txRepo.SumSettledByUser(ctx, 9400)
	require.NoError(t, err)
	assert.Equal(t, ledger, balance)
}
