package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"oifit/internal/checkout"
	"oifit/internal/client"
	"oifit/internal/domain/pricing"
	"oifit/internal/validator"

	flag "github.com/spf13/pflag"
)

// 決済フォームは端末では出せないので案内だけ表示
type terminalForm struct{ out io.Writer }

func (f terminalForm) Show(ctx context.Context, clientSecret string) error {
	fmt.Fprintf(f.out, "complete the payment with client secret:\n  %s\n", clientSecret)
	fmt.Fprintf(f.out, "then run: oifit checkout return %s\n", clientSecret)
	return nil
}

func (a *app) orchestrator() *checkout.Orchestrator {
	return checkout.New(checkout.Deps{
		Addresses: a.api.Addresses(),
		Orders:    a.api.Orders(),
		Payments:  a.api.Payments(),
		Form:      terminalForm{out: a.out},
		Cart:      a.store,
	}, a.log)
}

func (a *app) checkout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	city := fs.String("city", "", "ship to the saved address in this city")
	addressID := fs.Int64("address-id", 0, "saved address id")
	var form validator.AddressForm
	fs.StringVar(&form.Street, "street", "", "new address: street")
	fs.StringVar(&form.Number, "number", "", "new address: number")
	fs.StringVar(&form.Neighborhood, "neighborhood", "", "new address: neighborhood")
	fs.StringVar(&form.State, "state", "MG", "new address: state (UF)")
	fs.StringVar(&form.ZipCode, "zip", "", "new address: zip code")
	if err := fs.Parse(args); err != nil {
		return err
	}

	orch := a.orchestrator()
	defer orch.WatchCart(ctx, a.store)()

	begin := checkout.Begin{
		Items:  a.store.Items(),
		Choice: checkout.AddressChoice{AddressID: *addressID, City: *city},
	}
	if form.Street != "" {
		form.City = *city
		begin.Choice.NewAddress = &form
	}

	s := orch.Dispatch(ctx, begin)
	if s.State == checkout.StateIdle {
		return s.Err
	}
	if errors.Is(s.Err, checkout.ErrNoAddressMatch) {
		return errors.New("checkout: no saved address matches; pass --street --number --neighborhood --zip to add one")
	}

	return a.report(s)
}

func (a *app) checkoutReturn(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("checkout return", flag.ContinueOnError)
	redirect := fs.String("redirect-status", "", "redirect_status from the return URL")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("checkout return: client secret required")
	}

	s := a.orchestrator().Dispatch(ctx, checkout.PaymentReturned{
		ClientSecret:   fs.Arg(0),
		RedirectStatus: *redirect,
	})
	return a.report(s)
}

func (a *app) report(s checkout.Session) error {
	if s.Address != nil {
		fmt.Fprintf(a.out, "ship to: %s, %s - %s, %s/%s\n", s.Address.Street, s.Address.Number, s.Address.Neighborhood, s.Address.City, s.Address.State)
	}
	if s.PreviewCents > 0 {
		fmt.Fprintf(a.out, "estimated total: %s\n", pricing.FormatBRL(s.PreviewCents))
	}

	switch s.State {
	case checkout.StatePaymentFormVisible:
		fmt.Fprintf(a.out, "order #%d: %s to pay\n", s.OrderID, pricing.FormatBRL(s.AmountCents))
		return nil
	case checkout.StateAwaitingAddressInput:
		fmt.Fprintln(a.out, "no shipping address: pass --city --street --number --neighborhood --zip")
		return printFields(a.out, s.Err)
	case checkout.StateSucceeded:
		fmt.Fprintln(a.out, "payment succeeded, thank you!")
		return nil
	case checkout.StateProcessing:
		fmt.Fprintln(a.out, "payment is processing, we will confirm shortly")
		return nil
	case checkout.StateFailed:
		if err := printFields(a.out, s.Err); err != nil {
			return err
		}
		return errors.New("checkout failed")
	}
	if s.Err != nil {
		return s.Err
	}
	fmt.Fprintf(a.out, "checkout state: %s\n", s.State)
	return nil
}

func printFields(out io.Writer, err error) error {
	if err == nil {
		return nil
	}
	var fe validator.Errors
	if errors.As(err, &fe) {
		for _, f := range fe {
			fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Reason)
		}
		return errors.New("invalid address")
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		for _, f := range apiErr.Fields {
			fmt.Fprintf(out, "  %s: %s\n", f.Name, f.Reason)
		}
	}
	fmt.Fprintln(out, err.Error())
	return nil
}
