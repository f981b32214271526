package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	exchange "github.com/wyfcoding/futurestrading/internal/connectivity/domain"
	"github.com/wyfcoding/futurestrading/internal/order/application"
	"github.com/wyfcoding/futurestrading/internal/order/domain"
	refdomain "github.com/wyfcoding/futurestrading/internal/referencedata/domain"
)

// orderResponseFields 订单响应中需要展示的字段，按展示顺序排列
var orderResponseFields = []string{
	"orderId", "symbol", "status", "type", "side",
	"price", "stopPrice", "origQty", "executedQty",
	"cumQuote", "timeInForce", "updateTime",
}

const timeLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printOrderResponse(w io.Writer, resp *exchange.OrderResponse) error {
	fields := map[string]any{}
	dec := json.NewDecoder(bytes.NewReader(resp.Payload()))
	dec.UseNumber()
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("decode order response: %w", err)
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	for _, name := range orderResponseFields {
		if v, ok := fields[name]; ok {
			fmt.Fprintf(tw, "%s\t%v\n", name, v)
		}
	}
	return tw.Flush()
}

func printSymbolRules(w io.Writer, rules *refdomain.InstrumentRules) error {
	dto := application.ToSymbolRulesDTO(rules)
	tw := newTable(w)
	fmt.Fprintf(tw, "%s Information\n", dto.Symbol)
	rows := [][2]string{
		{"Status", dto.Status},
		{"Base Asset", dto.BaseAsset},
		{"Quote Asset", dto.QuoteAsset},
		{"Price Precision", fmt.Sprint(dto.PricePrecision)},
		{"Quantity Precision", fmt.Sprint(dto.QuantityPrecision)},
		{"Min Price", dto.MinPrice},
		{"Max Price", dto.MaxPrice},
		{"Tick Size", dto.TickSize},
		{"Min Quantity", dto.MinQty},
		{"Max Quantity", dto.MaxQty},
		{"Step Size", dto.StepSize},
		{"Min Notional", dto.MinNotional},
	}
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r[0], r[1])
	}
	return tw.Flush()
}

func printSymbolList(w io.Writer, rules []*refdomain.InstrumentRules) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "SYMBOL\tBASE\tQUOTE\tTICK SIZE\tSTEP SIZE")
	for _, r := range rules {
		dto := application.ToSymbolRulesDTO(r)
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", dto.Symbol, dto.BaseAsset, dto.QuoteAsset, dto.TickSize, dto.StepSize)
	}
	fmt.Fprintf(tw, "\n%d tradable symbols\n", len(rules))
	return tw.Flush()
}

func printOrders(w io.Writer, orders []*domain.Order) error {
	if len(orders) == 0 {
		_, err := fmt.Fprintln(w, "No orders found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "CREATED\tORDER ID\tSYMBOL\tSIDE\tTYPE\tQTY\tPRICE\tSTATUS\tEXECUTED")
	for _, o := range application.ToOrderDTOs(orders) {
		price := o.Price
		if price == "" {
			price = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			time.UnixMilli(o.CreatedAt).Format(timeLayout),
			o.ExchangeOrderID, o.Symbol, o.Side, o.Type, o.Quantity, price, o.Status, o.ExecutedQty)
	}
	return tw.Flush()
}

func printStatistics(w io.Writer, stats domain.Statistics) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Total Orders\t%d\n", stats.TotalOrders)
	fmt.Fprintf(tw, "Filled\t%d\n", stats.FilledOrders)
	fmt.Fprintf(tw, "Cancelled\t%d\n", stats.CancelledOrders)
	fmt.Fprintf(tw, "Pending\t%d\n", stats.PendingOrders)
	fmt.Fprintf(tw, "Success Rate\t%.1f%%\n", stats.SuccessRate)
	return tw.Flush()
}

func printActivities(w io.Writer, entries []*domain.Activity) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No activity logs found")
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tACTION\tSYMBOL\tORDER ID\tSTATUS\tINTERFACE\tMESSAGE")
	for _, a := range application.ToActivityDTOs(entries) {
		msg := a.Message
		if a.ErrorDetails != "" {
			msg += ": " + a.ErrorDetails
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			time.UnixMilli(a.Timestamp).Format(timeLayout),
			a.Action, a.Symbol, a.OrderID, a.Status, a.Interface, msg)
	}
	return tw.Flush()
}
