// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// upgrade_cmd.go - Pro upgrade via the payment provider.
//
// The flow is create, approve in the browser, capture. We never open a
// browser; we print the approval URL and let the user finish there.

package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jeranaias/docchat-tui/internal/api"
)

// defaultUpgradeAmount is the Pro plan price in USD.
const defaultUpgradeAmount = 9.99

// HandleUpgrade dispatches the upgrade subcommands.
func (a *App) HandleUpgrade(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "start", "create":
		return a.upgradeStart(args, parser)
	case "capture":
		return a.upgradeCapture(args, parser)
	case "status", "show":
		return a.upgradeStatus(args, parser)
	default:
		return NewUsageError("unknown upgrade subcommand %q (want start, capture, or status)", parser.Subcommand())
	}
}

func (a *App) upgradeStart(args Args, parser *ArgParser) error {
	amount := defaultUpgradeAmount
	if raw := parser.Flag("amount"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			return NewUsageError("invalid --amount %q", raw)
		}
		amount = parsed
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	order, err := a.Client.CreateOrder(ctx, api.CreateOrderRequest{
		Amount:      amount,
		Currency:    parser.FlagOrDefault("currency", "USD"),
		Description: "docchat Pro upgrade",
	})
	if err != nil {
		return NewCommandError("upgrade", "create order", "could not create the payment order", err)
	}

	if args.JSON {
		NewJSONResponse("upgrade.start", order).Print()
		return nil
	}

	fmt.Println(TitleStyle.Render("Upgrade to Pro"))
	fmt.Println(RenderLabel("Order") + ValueStyle.Render(order.OrderID))

	if url := approvalURL(order); url != "" {
		fmt.Println(RenderLabel("Approve at") + ValueStyle.Render(url))
		fmt.Println()
		fmt.Println(DimStyle.Render("After approving, run: docchat upgrade capture " + order.OrderID))
	} else {
		fmt.Println(WarningStyle.Render("The provider returned no approval link; check the order status."))
	}
	return nil
}

func (a *App) upgradeCapture(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return NewUsageError("usage: docchat upgrade capture ORDER_ID")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	order, err := a.Client.CaptureOrder(ctx, id)
	if err != nil {
		return NewCommandError("upgrade", "capture", "could not capture the order", err)
	}

	if args.JSON {
		NewJSONResponse("upgrade.capture", order).Print()
		return nil
	}
	fmt.Println(SuccessStyle.Render("[OK]") + " Payment captured. Welcome to Pro.")
	return nil
}

func (a *App) upgradeStatus(args Args, parser *ArgParser) error {
	id := parser.Positional(1)
	if id == "" {
		return NewUsageError("usage: docchat upgrade status ORDER_ID")
	}

	ctx, cancel := a.requestContext()
	defer cancel()

	order, err := a.Client.GetOrder(ctx, id)
	if err != nil {
		return NewCommandError("upgrade", "status", "could not load the order", err)
	}

	if args.JSON {
		NewJSONResponse("upgrade.status", order).Print()
		return nil
	}

	fmt.Println(RenderLabel("Order") + ValueStyle.Render(order.OrderID))
	if status := orderStatus(order); status != "" {
		fmt.Println(RenderLabel("Status") + ValueStyle.Render(status))
	}
	if url := approvalURL(order); url != "" {
		fmt.Println(RenderLabel("Approve at") + ValueStyle.Render(url))
	}
	return nil
}

// providerOrder is the slice of the provider's order payload we care
// about. Everything else stays opaque.
type providerOrder struct {
	Status string `json:"status"`
	Links  []struct {
		Href string `json:"href"`
		Rel  string `json:"rel"`
	} `json:"links"`
}

// approvalURL extracts the buyer approval link from the raw provider
// order, or "" when absent.
func approvalURL(order *api.PaymentOrder) string {
	if order == nil || len(order.Order) == 0 {
		return ""
	}
	var p providerOrder
	if err := json.Unmarshal(order.Order, &p); err != nil {
		return ""
	}
	for _, link := range p.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			return link.Href
		}
	}
	return ""
}

// orderStatus extracts the provider status string, or "" when absent.
func orderStatus(order *api.PaymentOrder) string {
	if order == nil || len(order.Order) == 0 {
		return ""
	}
	var p providerOrder
	if err := json.Unmarshal(order.Order, &p); err != nil {
		return ""
	}
	return p.Status
}
