package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports/mocks"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestWatcher_StopsWhenOrderTurnsTerminal(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reconcile := mocks.NewMockReconcileService(ctrl)
	w := NewWatcher(reconcile, 5*time.Millisecond, zerolog.Nop())

	var polls atomic.Int32
	reconcile.EXPECT().Reconcile(gomock.Any(), "ORDER_1").DoAndReturn(
		func(_ context.Context, _ string) (bool, error) {
			// Terminal on the third poll.
			return polls.Add(1) >= 3, nil
		}).MinTimes(3)

	w.Watch(context.Background(), "ORDER_1")
	require.Eventually(t, func() bool { return !w.Watching("ORDER_1") },
		2*time.Second, 10*time.Millisecond, "poller should exit once the order is terminal")
	w.Shutdown()
	assert.GreaterOrEqual(t, polls.Load(), int32(3))
}

func TestWatcher_DuplicateWatchIsNoOp(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reconcile := mocks.NewMockReconcileService(ctrl)
	reconcile.EXPECT().Reconcile(gomock.Any(), "ORDER_2").Return(false, nil).AnyTimes()

	w := NewWatcher(reconcile, 10*time.Millisecond, zerolog.Nop())
	w.Watch(context.Background(), "ORDER_2")
	w.Watch(context.Background(), "ORDER_2")
	assert.True(t, w.Watching("ORDER_2"))

	w.Stop("ORDER_2")
	require.Eventually(t, func() bool { return !w.Watching("ORDER_2") },
		2*time.Second, 10*time.Millisecond)
	w.Shutdown()
}

func TestWatcher_KeepsPollingThroughErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reconcile := mocks.NewMockReconcileService(ctrl)
	w := NewWatcher(reconcile, 5*time.Millisecond, zerolog.Nop())

	var polls atomic.Int32
	reconcile.EXPECT().Reconcile(gomock.Any(), "ORDER_3").DoAndReturn(
		func(_ context.Context, _ string) (bool, error) {
			n := polls.Add(1)
			if n < 3 {
				return false, assert.AnError
			}
			return true, nil
		}).MinTimes(3)

	w.Watch(context.Background(), "ORDER_3")
	require.Eventually(t, func() bool { return !w.Watching("ORDER_3") },
		2*time.Second, 10*time.Millisecond, "transient errors must not kill the poller")
	w.Shutdown()
}

func TestWatcher_StopsWhenExpiredOrderGatewayUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// Real reconcile service, gateway down for good. The poller must
	// still exit once the payment window has passed.
	txRepo := mocks.NewMockTransactionRepository(ctrl)
	gateway := mocks.NewMockPaymentGateway(ctrl)
	walletSvc := mocks.NewMockWalletService(ctrl)
	svc := NewReconcileService(walletSvc, txRepo, gateway, testMarketConfig(), zerolog.Nop())

	txn := pendingOrderTxn("ORDER_4", time.Now().UTC().Add(-20*time.Minute))
	txRepo.EXPECT().GetByOrderID(gomock.Any(), "ORDER_4").Return(txn, nil).AnyTimes()
	gateway.EXPECT().FetchStatus(gomock.Any(), "ORDER_4").
		Return(domain.GatewayStatus(""), assert.AnError).AnyTimes()
	walletSvc.EXPECT().Settle(gomock.Any(), txn.ID, domain.TransactionStatusCancelled).Return(nil)

	w := NewWatcher(svc, 5*time.Millisecond, zerolog.Nop())
	w.Watch(context.Background(), "ORDER_4")
	require.Eventually(t, func() bool { return !w.Watching("ORDER_4") },
		2*time.Second, 10*time.Millisecond, "an unreachable gateway must not outlive order expiry")
	w.Shutdown()
}

func TestWatcher_ShutdownStopsAllPollers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	reconcile := mocks.NewMockReconcileService(ctrl)
	reconcile.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()

	w := NewWatcher(reconcile, 10*time.Millisecond, zerolog.Nop())
	w.Watch(context.Background(), "ORDER_A")
	w.Watch(context.Background(), "ORDER_B")

	w.Shutdown()
	assert.False(t, w.Watching("ORDER_A"))
	assert.False(t, w.Watching("ORDER_B"))
}
