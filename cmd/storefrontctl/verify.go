package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Skotchmaster/storefront/pkg/storeclient"
)

// newVerifyCmd submits the payment id and signature the hosted checkout
// returned after the shopper paid.
func newVerifyCmd(opts *options) *cobra.Command {
	var in storeclient.VerifyRequest

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Confirm a completed payment for an order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := opts.client().VerifyPayment(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "order %s: payment %s, status %s\n", o.ID, o.PaymentInfo.Status, o.OrderStatus)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&in.OrderID, "order", "", "storefront order id")
	f.StringVar(&in.GatewayOrderID, "gateway-order", "", "gateway order id")
	f.StringVar(&in.GatewayPaymentID, "payment", "", "gateway payment id")
	f.StringVar(&in.Signature, "signature", "", "gateway signature")
	for _, name := range []string{"order", "gateway-order", "payment", "signature"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}
