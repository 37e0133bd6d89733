package record

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/finwatch/fintrack/internal/shared/errors"
	"github.com/finwatch/fintrack/pkg/logger"
)

// Manager owns the canonical transaction and investment lists. Mutations are
// applied optimistically and persisted to the remote store in the background;
// a failed persist reverts the optimistic change and surfaces a mutation
// error through the Notifier.
type Manager struct {
	store   Store
	quotes  QuoteSource
	confirm Confirmer
	notify  Notifier
	log     *logger.Logger

	mu       sync.Mutex
	txs      []Transaction
	invs     []Investment
	onChange func()
	now      func() time.Time
}

// NewManager creates a new state manager
func NewManager(store Store, quotes QuoteSource, confirm Confirmer, notify Notifier, log *logger.Logger) *Manager {
	if log == nil {
		log = logger.Discard()
	}

	return &Manager{
		store:   store,
		quotes:  quotes,
		confirm: confirm,
		notify:  notify,
		log:     log.WithField("component", "state_manager"),
		now:     time.Now,
	}
}

// OnChange registers a hook fired after every canonical-list change. Used by
// the quote scheduler to restart when holdings change.
func (m *Manager) OnChange(fn func()) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Transactions returns a copy of the canonical transaction list
func (m *Manager) Transactions() []Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Transaction, len(m.txs))
	copy(out, m.txs)
	return out
}

// Investments returns a copy of the canonical investment list
func (m *Manager) Investments() []Investment {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Investment, len(m.invs))
	copy(out, m.invs)
	return out
}

// HeldSymbols returns the distinct symbols currently held, in first-seen order
func (m *Manager) HeldSymbols() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{}, len(m.invs))
	symbols := make([]string, 0, len(m.invs))
	for _, inv := range m.invs {
		if _, ok := seen[inv.Symbol]; ok {
			continue
		}
		seen[inv.Symbol] = struct{}{}
		symbols = append(symbols, inv.Symbol)
	}

	return symbols
}

// LoadAll replaces both canonical lists from the remote store. Transactions
// are re-sorted descending by date; investments are taken as-is. On a load
// failure the previously loaded snapshot of that list is retained and a load
// error is returned; recovery is a manual reload.
func (m *Manager) LoadAll(ctx context.Context) error {
	var errs []error

	txs, err := m.store.ListTransactions(ctx)
	if err != nil {
		m.log.WithError(err).Error("transaction load failed")
		errs = append(errs, apperrors.Load("failed to load transactions", err))
	}

	invs, err := m.store.ListInvestments(ctx)
	if err != nil {
		m.log.WithError(err).Error("investment load failed")
		errs = append(errs, apperrors.Load("failed to load investments", err))
	}

	m.mu.Lock()
	if txs != nil {
		sortTransactionsDesc(txs)
		m.txs = txs
	}
	if invs != nil {
		m.invs = invs
	}
	m.mu.Unlock()
	m.fireChange()

	return errors.Join(errs...)
}

// AddTransaction normalizes the draft's sign, inserts it optimistically and
// issues the remote create. The returned handle settles when the remote
// request does; on failure the insert is reverted.
func (m *Manager) AddTransaction(ctx context.Context, draft TransactionDraft) (*Pending, error) {
	if err := draft.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	tx := draft.normalized(uuid.NewString())

	m.mu.Lock()
	m.txs = append(m.txs, tx)
	sortTransactionsDesc(m.txs)
	m.mu.Unlock()
	m.fireChange()

	return m.persist(ctx, "add transaction", func(ctx context.Context) error {
		return m.store.CreateTransaction(ctx, tx)
	}, func() {
		m.removeTransactionLocked(tx.ID)
	}), nil
}

// EditTransaction replaces the identified transaction with the normalized
// draft, keeping its id. On remote failure the previous version is restored.
func (m *Manager) EditTransaction(ctx context.Context, id string, draft TransactionDraft) (*Pending, error) {
	if err := draft.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	updated := draft.normalized(id)

	m.mu.Lock()
	idx := m.indexOfTransaction(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil, ErrTransactionNotFound
	}
	previous := m.txs[idx]
	m.txs[idx] = updated
	sortTransactionsDesc(m.txs)
	m.mu.Unlock()
	m.fireChange()

	return m.persist(ctx, "edit transaction", func(ctx context.Context) error {
		return m.store.UpdateTransaction(ctx, updated)
	}, func() {
		if i := m.indexOfTransaction(id); i >= 0 {
			m.txs[i] = previous
			sortTransactionsDesc(m.txs)
		}
	}), nil
}

// DeleteTransaction removes the identified transaction after a synchronous
// confirmation. Declining returns ErrDeclined with no state change and no
// request issued.
func (m *Manager) DeleteTransaction(ctx context.Context, id string) (*Pending, error) {
	if !m.confirm.Confirm("Are you sure you want to delete this transaction?") {
		return nil, ErrDeclined
	}

	m.mu.Lock()
	idx := m.indexOfTransaction(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil, ErrTransactionNotFound
	}
	removed := m.txs[idx]
	m.txs = append(m.txs[:idx], m.txs[idx+1:]...)
	m.mu.Unlock()
	m.fireChange()

	return m.persist(ctx, "delete transaction", func(ctx context.Context) error {
		return m.store.DeleteTransaction(ctx, id)
	}, func() {
		m.txs = append(m.txs, removed)
		sortTransactionsDesc(m.txs)
	}), nil
}

// AddInvestment inserts the draft optimistically under a locally generated id
// and issues the remote create. A server-issued id from the create response
// replaces the local one; an empty response id keeps the local fallback.
func (m *Manager) AddInvestment(ctx context.Context, draft InvestmentDraft) (*Pending, error) {
	if err := draft.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	inv := Investment{
		ID:            uuid.NewString(),
		Symbol:        draft.Symbol,
		Shares:        draft.Shares,
		PurchasePrice: draft.PurchasePrice,
		PurchaseDate:  draft.PurchaseDate,
	}
	localID := inv.ID

	m.mu.Lock()
	m.invs = append(m.invs, inv)
	m.mu.Unlock()
	m.fireChange()

	pending := newPending()
	go func() {
		serverID, err := m.store.CreateInvestment(context.WithoutCancel(ctx), inv)
		if err != nil {
			m.revert("add investment", err, func() {
				m.removeInvestmentLocked(localID)
			})
			pending.fail(apperrors.Mutation("failed to add investment", err))
			return
		}

		if serverID != "" && serverID != localID {
			m.mu.Lock()
			if i := m.indexOfInvestment(localID); i >= 0 {
				m.invs[i].ID = serverID
			}
			m.mu.Unlock()
			m.fireChange()
		}
		pending.confirm()
	}()

	return pending, nil
}

// EditInvestment replaces the identified investment with the draft, keeping
// its id. On remote failure the previous version is restored.
func (m *Manager) EditInvestment(ctx context.Context, id string, draft InvestmentDraft) (*Pending, error) {
	if err := draft.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	updated := Investment{
		ID:            id,
		Symbol:        draft.Symbol,
		Shares:        draft.Shares,
		PurchasePrice: draft.PurchasePrice,
		PurchaseDate:  draft.PurchaseDate,
	}

	m.mu.Lock()
	idx := m.indexOfInvestment(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil, ErrInvestmentNotFound
	}
	previous := m.invs[idx]
	m.invs[idx] = updated
	m.mu.Unlock()
	m.fireChange()

	return m.persist(ctx, "edit investment", func(ctx context.Context) error {
		return m.store.UpdateInvestment(ctx, updated)
	}, func() {
		if i := m.indexOfInvestment(id); i >= 0 {
			m.invs[i] = previous
		}
	}), nil
}

// DeleteInvestment removes the identified investment after a synchronous
// confirmation
func (m *Manager) DeleteInvestment(ctx context.Context, id string) (*Pending, error) {
	if !m.confirm.Confirm("Are you sure you want to delete this investment?") {
		return nil, ErrDeclined
	}

	return m.deleteInvestment(ctx, id)
}

func (m *Manager) deleteInvestment(ctx context.Context, id string) (*Pending, error) {
	m.mu.Lock()
	idx := m.indexOfInvestment(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil, ErrInvestmentNotFound
	}
	removed := m.invs[idx]
	m.invs = append(m.invs[:idx], m.invs[idx+1:]...)
	m.mu.Unlock()
	m.fireChange()

	return m.persist(ctx, "delete investment", func(ctx context.Context) error {
		return m.store.DeleteInvestment(ctx, id)
	}, func() {
		m.invs = append(m.invs, removed)
	}), nil
}

// SellResult holds the two independent halves of a sale
type SellResult struct {
	// Sale settles with the Salary transaction recording the proceeds
	Sale *Pending
	// Removal settles with the investment deletion
	Removal *Pending
}

// SellInvestment records the sale proceeds as a Salary transaction dated
// today, then deletes the investment. Requires an available quote. The two
// remote requests are independent; a failure in either reverts only its own
// half.
func (m *Manager) SellInvestment(ctx context.Context, id string) (*SellResult, error) {
	if !m.confirm.Confirm("Are you sure you want to sell this investment?") {
		return nil, ErrDeclined
	}

	m.mu.Lock()
	idx := m.indexOfInvestment(id)
	if idx < 0 {
		m.mu.Unlock()
		return nil, ErrInvestmentNotFound
	}
	inv := m.invs[idx]
	m.mu.Unlock()

	price, ok := m.quotes.Current(inv.Symbol)
	if !ok {
		return nil, apperrors.Wrap(ErrQuoteUnavailable, apperrors.ErrCodeQuoteUnavailable, "no quote available for "+inv.Symbol)
	}

	proceeds := price.Mul(inv.Shares)
	sale := Transaction{
		ID:       uuid.NewString(),
		Amount:   proceeds,
		Category: CategorySalary,
		Date:     m.now().Truncate(24 * time.Hour),
	}

	m.mu.Lock()
	m.txs = append(m.txs, sale)
	sortTransactionsDesc(m.txs)
	m.mu.Unlock()
	m.fireChange()

	salePending := m.persist(ctx, "record sale", func(ctx context.Context) error {
		return m.store.CreateTransaction(ctx, sale)
	}, func() {
		m.removeTransactionLocked(sale.ID)
	})

	removal, err := m.deleteInvestment(ctx, id)
	if err != nil {
		return &SellResult{Sale: salePending, Removal: settled()}, err
	}

	return &SellResult{Sale: salePending, Removal: removal}, nil
}

// persist runs the remote request in the background. On failure the revert
// callback is applied under the manager lock, the notifier is informed and
// the handle fails with a mutation error. No cancellation is propagated into
// the in-flight request.
func (m *Manager) persist(ctx context.Context, op string, do func(context.Context) error, revert func()) *Pending {
	pending := newPending()
	go func() {
		if err := do(context.WithoutCancel(ctx)); err != nil {
			m.revert(op, err, revert)
			pending.fail(apperrors.Mutation("failed to "+op, err))
			return
		}
		pending.confirm()
	}()
	return pending
}

func (m *Manager) revert(op string, cause error, revert func()) {
	m.log.WithError(cause).Error("remote mutation failed, reverting", "op", op)

	m.mu.Lock()
	revert()
	m.mu.Unlock()
	m.fireChange()

	if m.notify != nil {
		m.notify.NotifyError(apperrors.Mutation("failed to "+op, cause))
	}
}

// fireChange invokes the change hook outside the manager lock
func (m *Manager) fireChange() {
	m.mu.Lock()
	fn := m.onChange
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// indexOfTransaction requires m.mu held
func (m *Manager) indexOfTransaction(id string) int {
	for i := range m.txs {
		if m.txs[i].ID == id {
			return i
		}
	}
	return -1
}

// indexOfInvestment requires m.mu held
func (m *Manager) indexOfInvestment(id string) int {
	for i := range m.invs {
		if m.invs[i].ID == id {
			return i
		}
	}
	return -1
}

// removeTransactionLocked requires m.mu held
func (m *Manager) removeTransactionLocked(id string) {
	if i := m.indexOfTransaction(id); i >= 0 {
		m.txs = append(m.txs[:i], m.txs[i+1:]...)
	}
}

// removeInvestmentLocked requires m.mu held
func (m *Manager) removeInvestmentLocked(id string) {
	if i := m.indexOfInvestment(id); i >= 0 {
		m.invs = append(m.invs[:i], m.invs[i+1:]...)
	}
}
