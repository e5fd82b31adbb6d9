package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xraph/paylater"
	"github.com/xraph/paylater/account"
	"github.com/xraph/paylater/id"
	"github.com/xraph/paylater/invoice"
	"github.com/xraph/paylater/journal"
	"github.com/xraph/paylater/store/memory"
	"github.com/xraph/paylater/types"
)

func newAccount(phone string) *account.Account {
	return &account.Account{
		Entity:         types.NewEntity(),
		ID:             id.NewAccountID(),
		Phone:          phone,
		CreditLimit:    100_000,
		AvailableLimit: 100_000,
		Status:         account.StatusActive,
	}
}

func TestAccountVersioning(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	a := newAccount("628111")
	if err := s.CreateAccount(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := s.CreateAccount(ctx, a); !errors.Is(err, paylater.ErrAlreadyExists) {
		t.Errorf("duplicate create: %v", err)
	}

	t.Run("UpdateEchoesNewVersion", func(t *testing.T) {
		a.UsedLimit = 10_000
		if err := s.UpdateAccount(ctx, a); err != nil {
			t.Fatal(err)
		}
		if a.Version != 1 {
			t.Errorf("version = %d, want 1", a.Version)
		}
		// Sequential updates on the same struct keep working.
		a.UsedLimit = 20_000
		if err := s.UpdateAccount(ctx, a); err != nil {
			t.Fatal(err)
		}
	})

	t.Run("StaleVersionConflicts", func(t *testing.T) {
		stale, err := s.GetAccount(ctx, "628111")
		if err != nil {
			t.Fatal(err)
		}
		stale.Version--
		if err := s.UpdateAccount(ctx, stale); !errors.Is(err, paylater.ErrVersionConflict) {
			t.Errorf("err = %v, want ErrVersionConflict", err)
		}
	})

	t.Run("ReadsReturnCopies", func(t *testing.T) {
		got, _ := s.GetAccount(ctx, "628111")
		got.CreditLimit = 0
		again, _ := s.GetAccount(ctx, "628111")
		if again.CreditLimit != 100_000 {
			t.Errorf("stored account mutated through a read: %d", again.CreditLimit)
		}
	})
}

func TestEntryDedup(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	entry := func(typ journal.Type, ref string) *journal.Entry {
		return &journal.Entry{
			Entity: types.NewEntity(),
			ID:     id.NewEntryID(),
			Phone:  "628111",
			Type:   typ,
			Amount: 100,
			RefID:  ref,
		}
	}

	if err := s.AppendEntry(ctx, entry(journal.TypePayment, "pay-1")); err != nil {
		t.Fatal(err)
	}

	t.Run("SameTypeAndRefRejected", func(t *testing.T) {
		err := s.AppendEntry(ctx, entry(journal.TypePayment, "pay-1"))
		if !errors.Is(err, paylater.ErrAlreadyExists) {
			t.Errorf("err = %v, want ErrAlreadyExists", err)
		}
	})

	t.Run("SameRefDifferentTypeAllowed", func(t *testing.T) {
		if err := s.AppendEntry(ctx, entry(journal.TypeLimitRelease, "pay-1")); err != nil {
			t.Errorf("append: %v", err)
		}
	})

	t.Run("EmptyRefNeverDeduped", func(t *testing.T) {
		if err := s.AppendEntry(ctx, entry(journal.TypeFrozen, "")); err != nil {
			t.Fatal(err)
		}
		if err := s.AppendEntry(ctx, entry(journal.TypeFrozen, "")); err != nil {
			t.Errorf("second keyless append: %v", err)
		}
	})

	t.Run("ExistsProbe", func(t *testing.T) {
		ok, err := s.EntryExists(ctx, "628111", journal.TypePayment, "pay-1")
		if err != nil || !ok {
			t.Errorf("ok=%v err=%v", ok, err)
		}
		ok, _ = s.EntryExists(ctx, "628111", journal.TypePayment, "pay-2")
		if ok {
			t.Error("probe matched an absent ref")
		}
	})

	t.Run("ListFilters", func(t *testing.T) {
		got, err := s.ListEntries(ctx, journal.ListOpts{Phone: "628111", Type: journal.TypeFrozen})
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Errorf("frozen entries = %d, want 2", len(got))
		}
	})
}

func TestInvoiceQueries(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	due := time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC)

	mk := func(invoiceID, phone string, status invoice.Status, dueDate time.Time) {
		t.Helper()
		err := s.CreateInvoice(ctx, &invoice.Invoice{
			Entity:  types.NewEntity(),
			ID:      invoiceID,
			Phone:   phone,
			Status:  status,
			DueDate: dueDate,
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	mk("inv-1", "628111", invoice.StatusActive, due)
	mk("inv-2", "628111", invoice.StatusPaid, due)
	mk("inv-3", "628222", invoice.StatusOverdue, due.Add(48*time.Hour))

	t.Run("DuplicateIDRejected", func(t *testing.T) {
		err := s.CreateInvoice(ctx, &invoice.Invoice{ID: "inv-1", Phone: "628111"})
		if !errors.Is(err, paylater.ErrInvoiceExists) {
			t.Errorf("err = %v, want ErrInvoiceExists", err)
		}
	})

	t.Run("ActiveByPhoneSkipsTerminal", func(t *testing.T) {
		got, err := s.ActiveInvoicesByPhone(ctx, "628111")
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "inv-1" {
			t.Errorf("got = %+v", got)
		}
	})

	t.Run("DueBetweenIsHalfOpen", func(t *testing.T) {
		got, err := s.InvoicesDueBetween(ctx, due, due.Add(48*time.Hour))
		if err != nil {
			t.Fatal(err)
		}
		// inv-2 is paid; inv-3 is due exactly at the exclusive upper bound.
		if len(got) != 1 || got[0].ID != "inv-1" {
			t.Errorf("got = %+v", got)
		}
	})
}

func TestPaging(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	for _, phone := range []string{"628111", "628222", "628333"} {
		if err := s.CreateAccount(ctx, newAccount(phone)); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListAccounts(ctx, account.ListOpts{Limit: 2, Offset: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].Phone != "628222" {
		t.Errorf("got = %+v", got)
	}

	got, err = s.ListAccounts(ctx, account.ListOpts{Offset: 10})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("past-the-end offset returned %d accounts", len(got))
	}
}
