package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"medbill/m/domain"
	"medbill/m/internal/events"
	"medbill/m/internal/logger"
)

// Engine owns the invoice workflow: it validates requests, writes headers and
// lines in one transaction, keeps totals derived from lines and decrements stock
// when an invoice is created.
//
// Stock is only touched on creation. Updates replace lines without adjusting
// stock and deletes never restock. Concurrent creates against the same medicine
// are not serialised beyond what the database transaction gives.
type Engine struct {
	tx        Transactor
	medicines MedicineRepository
	customers CustomerRepository
	invoices  InvoiceRepository
	events    events.Publisher
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewEngine(tx Transactor, medicines MedicineRepository, customers CustomerRepository, invoices InvoiceRepository, publisher events.Publisher, log logrus.FieldLogger) *Engine {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Engine{
		tx:        tx,
		medicines: medicines,
		customers: customers,
		invoices:  invoices,
		events:    publisher,
		log:       log,
		now:       time.Now,
	}
}

// ItemDiff describes the effect of ReplaceItems.
type ItemDiff struct {
	Removed []domain.InvoiceItem
	Added   []domain.InvoiceItem
	Total   decimal.Decimal
}

// CreateInvoice persists a new invoice with its lines and decrements the stock of
// every referenced medicine, flooring at zero. Over-selling is accepted.
func (e *Engine) CreateInvoice(ctx context.Context, in domain.InvoiceInput) (domain.InvoiceView, error) {
	if in.Items == nil {
		return domain.InvoiceView{}, domain.Invalid("items", "required")
	}
	if err := domain.Validate(in); err != nil {
		return domain.InvoiceView{}, err
	}

	var id int64
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := e.customers.Get(ctx, in.CustomerID); err != nil {
			return err
		}
		var err error
		id, err = e.invoices.Insert(ctx, in.CustomerID, e.now().Format(domain.DateLayout))
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, item := range in.Items {
			if _, err := e.medicines.AdjustStock(ctx, item.MedicineID, -item.Quantity); err != nil {
				return err
			}
			line, err := e.invoices.InsertItem(ctx, domain.InvoiceItem{
				InvoiceID:  id,
				MedicineID: item.MedicineID,
				Quantity:   item.Quantity,
				Price:      *item.Price,
			})
			if err != nil {
				return err
			}
			total = total.Add(line.Subtotal())
		}
		return e.invoices.SetTotal(ctx, id, total)
	})
	if err != nil {
		return domain.InvoiceView{}, classify("create invoice", err)
	}

	inv, err := e.invoices.Get(ctx, id)
	if err != nil {
		return domain.InvoiceView{}, classify("load created invoice", err)
	}
	e.publish(ctx, events.InvoiceCreated, inv)
	return inv, nil
}

// UpdateInvoice applies the fields present in upd. When Items is set the line set
// is replaced and the total recomputed; stock levels are left as they are.
func (e *Engine) UpdateInvoice(ctx context.Context, id int64, upd domain.InvoiceUpdate) (domain.InvoiceView, error) {
	if err := domain.Validate(upd); err != nil {
		return domain.InvoiceView{}, err
	}

	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := e.invoices.Exists(ctx, id); err != nil {
			return err
		}
		if upd.CustomerID != nil {
			if _, err := e.customers.Get(ctx, *upd.CustomerID); err != nil {
				return err
			}
			if err := e.invoices.SetCustomer(ctx, id, *upd.CustomerID); err != nil {
				return err
			}
		}
		if upd.Items != nil {
			if _, err := e.ReplaceItems(ctx, id, *upd.Items); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.InvoiceView{}, classify("update invoice", err)
	}

	inv, err := e.invoices.Get(ctx, id)
	if err != nil {
		return domain.InvoiceView{}, classify("load updated invoice", err)
	}
	e.publish(ctx, events.InvoiceUpdated, inv)
	return inv, nil
}

// ReplaceItems swaps the whole line set of an invoice for items and writes the
// recomputed total. It joins the caller's transaction when ctx carries one.
func (e *Engine) ReplaceItems(ctx context.Context, invoiceID int64, items []domain.ItemInput) (ItemDiff, error) {
	for i, item := range items {
		if err := domain.Validate(item); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				prefixed := &domain.ValidationError{Fields: map[string]string{}}
				for k, v := range verr.Fields {
					prefixed.Fields[fmt.Sprintf("items[%d].%s", i, k)] = v
				}
				return ItemDiff{}, prefixed
			}
			return ItemDiff{}, err
		}
	}

	diff := ItemDiff{Total: decimal.Zero, Added: make([]domain.InvoiceItem, 0, len(items))}
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		removed, err := e.invoices.DeleteItems(ctx, invoiceID)
		if err != nil {
			return err
		}
		diff.Removed = removed

		for _, item := range items {
			if _, err := e.medicines.Get(ctx, item.MedicineID); err != nil {
				return err
			}
			line, err := e.invoices.InsertItem(ctx, domain.InvoiceItem{
				InvoiceID:  invoiceID,
				MedicineID: item.MedicineID,
				Quantity:   item.Quantity,
				Price:      *item.Price,
			})
			if err != nil {
				return err
			}
			diff.Added = append(diff.Added, line)
			diff.Total = diff.Total.Add(line.Subtotal())
		}
		return e.invoices.SetTotal(ctx, invoiceID, diff.Total)
	})
	if err != nil {
		return ItemDiff{}, classify("replace invoice items", err)
	}
	return diff, nil
}

// DeleteInvoice removes an invoice and its lines. Stock is not restored.
func (e *Engine) DeleteInvoice(ctx context.Context, id int64) error {
	var inv domain.InvoiceView
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		if inv, err = e.invoices.Get(ctx, id); err != nil {
			return err
		}
		return e.invoices.Delete(ctx, id)
	})
	if err != nil {
		return classify("delete invoice", err)
	}
	e.publish(ctx, events.InvoiceDeleted, inv)
	return nil
}

func (e *Engine) GetInvoice(ctx context.Context, id int64) (domain.InvoiceView, error) {
	inv, err := e.invoices.Get(ctx, id)
	if err != nil {
		return domain.InvoiceView{}, classify("get invoice", err)
	}
	return inv, nil
}

// ListInvoices returns invoices newest first; customerID 0 means all customers.
func (e *Engine) ListInvoices(ctx context.Context, customerID int64) ([]domain.InvoiceView, error) {
	invoices, err := e.invoices.List(ctx, customerID, 0)
	if err != nil {
		return nil, classify("list invoices", err)
	}
	return invoices, nil
}

// Snapshot reads an invoice, its lines and its customer in one transaction.
func (e *Engine) Snapshot(ctx context.Context, id int64) (domain.InvoiceSnapshot, error) {
	var snap domain.InvoiceSnapshot
	err := e.tx.RunInTx(ctx, func(ctx context.Context) error {
		inv, err := e.invoices.Get(ctx, id)
		if err != nil {
			return err
		}
		customer, err := e.customers.Get(ctx, inv.CustomerID)
		if err != nil {
			return err
		}
		snap = domain.InvoiceSnapshot{Invoice: inv, Customer: customer}
		return nil
	})
	if err != nil {
		return domain.InvoiceSnapshot{}, classify("snapshot invoice", err)
	}
	return snap, nil
}

func (e *Engine) publish(ctx context.Context, eventType string, inv domain.InvoiceView) {
	env, err := events.NewEnvelope(eventType, strconv.FormatInt(inv.ID, 10), events.InvoicePayload{
		InvoiceID:   inv.ID,
		CustomerID:  inv.CustomerID,
		TotalAmount: inv.TotalAmount,
		ItemCount:   len(inv.Items),
	})
	if err == nil {
		err = e.events.Publish(ctx, env)
	}
	if err != nil {
		logger.LogError(e.log, "billing", "publish", eventType, inv.ID, err)
	}
}

// classify leaves domain errors untouched and marks everything else as a storage
// failure.
func classify(op string, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, domain.ErrIntegrity),
		errors.Is(err, domain.ErrStorage):
		return err
	default:
		return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
	}
}
