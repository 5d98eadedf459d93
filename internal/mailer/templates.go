package mailer

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Skotchmaster/droneshop/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var (
	printer   = message.NewPrinter(language.English)
	templates = template.Must(template.New("").Funcs(template.FuncMap{
		"money":    money,
		"mul":      func(price float64, qty int) float64 { return price * float64(qty) },
		"fallback": fallback,
	}).ParseFS(templateFS, "templates/*.html"))
)

// VerifyExpiryHours is the lifetime of an email verification link.
const VerifyExpiryHours = 24

type Site struct {
	Name        string
	Description string
	FrontendURL string
}

func (s Site) VerifyURL(token string) string {
	return s.FrontendURL + "/verify-email?token=" + token
}

func money(v float64) string {
	if v == float64(int64(v)) {
		return printer.Sprintf("৳%d", int64(v))
	}
	return printer.Sprintf("৳%.2f", v)
}

func fallback(def, v string) string {
	if v == "" {
		return def
	}
	return v
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func VerificationMessage(site Site, to, name, token string) (Message, error) {
	html, err := render("verify.html", map[string]any{
		"Site":        site,
		"Name":        fallback("User", name),
		"VerifyURL":   site.VerifyURL(token),
		"ExpiryHours": VerifyExpiryHours,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Verify your email - %s", site.Name),
		HTML:    html,
	}, nil
}

func OrderConfirmationMessage(site Site, to string, order *models.Order) (Message, error) {
	placed := order.CreatedAt
	if placed.IsZero() {
		placed = time.Now()
	}
	html, err := render("order.html", map[string]any{
		"Site":  site,
		"Order": order,
		"Date":  placed.Format("2 Jan 2006, 15:04"),
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Order Confirmation - %s - %s", order.TrackingNumber, site.Name),
		HTML:    html,
	}, nil
}
