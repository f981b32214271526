package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wyfcoding/futurestrading/internal/order/application"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
)

func newOrderCommand(state *rootState) *cobra.Command {
	var in application.PlaceOrderInput
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place a new order",
		Example: "  futures order --symbol BTCUSDT --side BUY --type LIMIT --quantity 0.01 --price 43000\n" +
			"  futures order --symbol BTCUSDT --side SELL --type MARKET --quantity 0.01",
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := in.ToRequest()
			if err != nil {
				return err
			}
			resp, err := state.service().PlaceOrder(cmd.Context(), req, domain.InterfaceCLI)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Order placed successfully")
			return printOrderResponse(cmd.OutOrStdout(), resp)
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Symbol, "symbol", "", "trading symbol (e.g. BTCUSDT)")
	f.StringVar(&in.Side, "side", "", "order side: BUY or SELL")
	f.StringVar(&in.Type, "type", "", "order type: "+orderTypeNames())
	f.StringVar(&in.Quantity, "quantity", "", "order quantity")
	f.StringVar(&in.Price, "price", "", "limit price (required for LIMIT)")
	f.StringVar(&in.TimeInForce, "timeInForce", "", "time in force: GTC, IOC or FOK")
	f.StringVar(&in.StopPrice, "stopPrice", "", "stop price (for STOP/TAKE_PROFIT orders)")
	f.BoolVar(&in.ReduceOnly, "reduceOnly", false, "only reduce an existing position")
	for _, name := range []string{"symbol", "side", "type", "quantity"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func newStatusCommand(state *rootState) *cobra.Command {
	var symbol, orderID string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query order status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := state.service().GetOrderStatus(cmd.Context(), symbol, orderID, domain.InterfaceCLI)
			if err != nil {
				return err
			}
			return printOrderResponse(cmd.OutOrStdout(), resp)
		},
	}
	addOrderRefFlags(cmd, &symbol, &orderID)
	return cmd
}

func newCancelCommand(state *rootState) *cobra.Command {
	var symbol, orderID string
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel an open order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			resp, err := state.service().CancelOrder(cmd.Context(), symbol, orderID, domain.InterfaceCLI)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Order cancelled successfully")
			return printOrderResponse(cmd.OutOrStdout(), resp)
		},
	}
	addOrderRefFlags(cmd, &symbol, &orderID)
	return cmd
}

func addOrderRefFlags(cmd *cobra.Command, symbol, orderID *string) {
	cmd.Flags().StringVar(symbol, "symbol", "", "trading symbol")
	cmd.Flags().StringVar(orderID, "orderId", "", "exchange order id or client order id")
	_ = cmd.MarkFlagRequired("symbol")
	_ = cmd.MarkFlagRequired("orderId")
}

func newSymbolsCommand(state *rootState) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Show exchange filters for a symbol, or list tradable symbols",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if symbol == "" {
				rules, err := state.service().Symbols(cmd.Context())
				if err != nil {
					return err
				}
				return printSymbolList(cmd.OutOrStdout(), rules)
			}
			rules, err := state.service().SymbolRules(cmd.Context(), symbol)
			if err != nil {
				return err
			}
			return printSymbolRules(cmd.OutOrStdout(), rules)
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "trading symbol")
	return cmd
}

func newPingCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the exchange API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := state.service().Ping(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Pong! Connectivity is OK.")
			return nil
		},
	}
}

func newPriceCommand(state *rootState) *cobra.Command {
	var symbol string
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Show the latest price of a symbol",
		RunE: func(cmd *cobra.Command, _ []string) error {
			price, err := state.service().TickerPrice(cmd.Context(), symbol)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", price.Symbol, price.Price.String())
			return nil
		},
	}
	cmd.Flags().StringVar(&symbol, "symbol", "", "trading symbol")
	_ = cmd.MarkFlagRequired("symbol")
	return cmd
}

func newHistoryCommand(state *rootState) *cobra.Command {
	var q domain.HistoryQuery
	cmd := &cobra.Command{
		Use:   "history",
		Short: "View local order history",
		RunE: func(cmd *cobra.Command, _ []string) error {
			orders, err := state.service().History(cmd.Context(), q)
			if err != nil {
				return err
			}
			return printOrders(cmd.OutOrStdout(), orders)
		},
	}
	cmd.Flags().StringVar(&q.Symbol, "symbol", "", "filter by symbol")
	cmd.Flags().StringVar(&q.OrderID, "orderId", "", "filter by exchange order id")
	cmd.Flags().IntVar(&q.Limit, "limit", 20, "maximum number of orders")
	return cmd
}

func newStatsCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "View order statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := state.service().Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return printStatistics(cmd.OutOrStdout(), stats)
		},
	}
}

func newLogsCommand(state *rootState) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "View activity logs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := state.service().Activities(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printActivities(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries")
	return cmd
}

func newRefreshCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Refresh exchange metadata and rewrite the local snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := state.service().Refresh(cmd.Context()); err != nil {
				return err
			}
			rules, err := state.service().Symbols(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exchange metadata refreshed: %d tradable symbols\n", len(rules))
			return nil
		},
	}
}

func newServeCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return state.runtime.Serve(cmd.Context())
		},
	}
}

func newConsoleCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive trading console",
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newConsole(state.service(), newPromptUI(cmd.InOrStdin(), cmd.OutOrStdout()), cmd.OutOrStdout())
			return c.Run(cmd.Context())
		},
	}
}

func orderTypeNames() string {
	types := domain.OrderTypes()
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.String()
	}
	return strings.Join(names, ", ")
}
