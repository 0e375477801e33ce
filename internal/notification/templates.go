package notification

import (
	"bytes"
	"html/template"

	"kulit/internal/events"

	"github.com/shopspring/decimal"
)

var funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"line": func(item events.EventItem) decimal.Decimal {
		return item.Price.Mul(decimal.NewFromInt(int64(item.Quantity)))
	},
	"short": shortID,
}

var confirmationTmpl = template.Must(template.New("confirmation").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Georgia, serif; color: #3b2a1a; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Thank you for your order, {{.CustomerName}}</h1>
	<p>Order <strong>#{{short .OrderID}}</strong> has been received and will be paid on delivery.</p>
	<table style="width: 100%; border-collapse: collapse;">
		<tr><th align="left">Item</th><th>Color</th><th>Qty</th><th align="right">Price</th><th align="right">Total</th></tr>
		{{range .Items}}<tr>
			<td>{{.Name}}</td><td align="center">{{.Color}}</td><td align="center">{{.Quantity}}</td>
			<td align="right">{{money .Price}}</td><td align="right">{{money (line .)}}</td>
		</tr>{{end}}
	</table>
	<p>Subtotal: {{money .Subtotal}}<br>Shipping: {{money .ShippingFee}}<br><strong>Total: {{money .Total}}</strong></p>
</body>
</html>`))

var statusTmpl = template.Must(template.New("status").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Georgia, serif; color: #3b2a1a; max-width: 600px; margin: 0 auto; padding: 20px;">
	<h1 style="font-size: 22px;">Order #{{short .OrderID}} is now {{.Status}}</h1>
	{{if .TrackingNumber}}<p>Carrier: {{.Carrier}}<br>Tracking number: {{.TrackingNumber}}</p>{{end}}
	<p>Order total: {{money .Total}}</p>
</body>
</html>`))

// BuildConfirmationBody renders the order confirmation email.
func BuildConfirmationBody(e events.OrderEvent) (string, error) {
	return render(confirmationTmpl, e)
}

// BuildStatusBody renders the status update email.
func BuildStatusBody(e events.OrderEvent) (string, error) {
	return render(statusTmpl, e)
}

func render(t *template.Template, e events.OrderEvent) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, e); err != nil {
		return "", err
	}
	return buf.String(), nil
}
