package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimeLayout is the stored form of order timestamps (UTC).
const TimeLayout = "2006-01-02 15:04:05"

// User is a registered customer. Password holds a bcrypt hash.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"-"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
}

// Tenant is a food vendor.
type Tenant struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Location    string `json:"location"`
	ImageRef    string `json:"image_ref"`
}

// Menu is an item sold by a tenant.
type Menu struct {
	ID          int64           `json:"id"`
	TenantID    int64           `json:"tenant_id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Category    string          `json:"category"`
	ImageRef    string          `json:"image_ref"`
}

// CartLine is one row of a user's cart. At most one line exists per
// (UserID, MenuID) and Quantity is always at least 1.
type CartLine struct {
	ID       int64  `json:"id"`
	UserID   int64  `json:"user_id"`
	MenuID   int64  `json:"menu_id"`
	Quantity int    `json:"quantity"`
	Note     string `json:"note"`
}

// PricedCartLine is a cart line joined with its menu's current price.
type PricedCartLine struct {
	CartLine
	MenuName  string          `json:"menu_name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	MenuImage string          `json:"menu_image"`
}

// Subtotal returns quantity × unit price.
func (l PricedCartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is the header of a checked-out cart.
type Order struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	OrderDate     time.Time       `json:"order_date"`
	PickupTime    time.Time       `json:"pickup_time"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	Status        OrderStatus     `json:"status"`
}

// OrderLine is one item of an order. UnitPrice is a frozen copy of the menu
// price at checkout time.
type OrderLine struct {
	ID        int64           `json:"id"`
	OrderID   int64           `json:"order_id"`
	MenuID    int64           `json:"menu_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Subtotal returns quantity × unit price.
func (l OrderLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// OrderLineDetail is an order line joined with its menu's name and image.
type OrderLineDetail struct {
	OrderLine
	MenuName  string `json:"menu_name"`
	MenuImage string `json:"menu_image"`
}

// SumLines totals a priced cart snapshot.
func SumLines(lines []PricedCartLine) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// FormatTime renders t in the stored layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime parses a stored timestamp.
func ParseTime(s string) (time.Time, error) {
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}
