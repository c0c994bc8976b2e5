// Package events defines the domain events exchanged between services and the static
// table that dispatches them to handlers.
package events

import (
	"time"
)

// Type is the event tag. It doubles as the topic name.
type Type string

const (
	OrderCreated      Type = "order.created"
	StockAvailable    Type = "stock.available"
	PaymentAwaiting   Type = "payment.awaiting"
	PaymentDone       Type = "payment.done"
	ShipmentCreated   Type = "shipment.created"
	ShipmentDelivered Type = "shipment.delivered"
	CustomerCreated   Type = "customer.created"
	EmployeeCreated   Type = "employee.created"
)

var knownTypes = map[Type]struct{}{
	OrderCreated:      {},
	StockAvailable:    {},
	PaymentAwaiting:   {},
	PaymentDone:       {},
	ShipmentCreated:   {},
	ShipmentDelivered: {},
	CustomerCreated:   {},
	EmployeeCreated:   {},
}

// Known reports whether t is a declared event type.
func Known(t Type) bool {
	_, ok := knownTypes[t]
	return ok
}

func (t Type) String() string {
	return string(t)
}

// Payload is an immutable fact. Key returns the aggregate identifier used for partitioning.
type Payload interface {
	EventType() Type
	Key() string
}

// ProductLine is a line item of an order.
type ProductLine struct {
	ID       string `json:"id"`
	Quantity int    `json:"quantity"`
}

// PricedProductLine is a reserved line item with its catalog price.
type PricedProductLine struct {
	ID           string `json:"id"`
	Quantity     int    `json:"quantity"`
	PriceInCents int64  `json:"priceInCents"`
}

// OrderCreatedPayload is published by orders when a customer places an order.
type OrderCreatedPayload struct {
	OrderID    string        `json:"orderID"`
	CustomerID string        `json:"customerID"`
	Products   []ProductLine `json:"products"`
	CreatedAt  time.Time     `json:"createdAt"`
}

func (OrderCreatedPayload) EventType() Type { return OrderCreated }
func (p OrderCreatedPayload) Key() string   { return p.OrderID }

// StockAvailablePayload is published by inventory once every line of an order is reserved.
type StockAvailablePayload struct {
	OrderID            string              `json:"orderID"`
	CustomerID         string              `json:"customerID"`
	Products           []PricedProductLine `json:"products"`
	TotalAmountInCents int64               `json:"totalAmountInCents"`
	CreatedAt          time.Time           `json:"createdAt"`
	UpdatedAt          time.Time           `json:"updatedAt"`
}

func (StockAvailablePayload) EventType() Type { return StockAvailable }
func (p StockAvailablePayload) Key() string   { return p.OrderID }

// PaymentAwaitingPayload is published by payments when a billing was created at the gateway.
type PaymentAwaitingPayload struct {
	OrderID       string    `json:"orderID"`
	CustomerID    string    `json:"customerID"`
	BillingID     string    `json:"billingID"`
	PaymentURL    string    `json:"paymentURL"`
	AmountInCents int64     `json:"amountInCents"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (PaymentAwaitingPayload) EventType() Type { return PaymentAwaiting }
func (p PaymentAwaitingPayload) Key() string   { return p.OrderID }

// PaymentDonePayload is published by payments when the gateway confirms a billing.
type PaymentDonePayload struct {
	OrderID       string    `json:"orderID"`
	CustomerID    string    `json:"customerID"`
	BillingID     string    `json:"billingID"`
	PaymentMethod string    `json:"paymentMethod"`
	AmountInCents int64     `json:"amountInCents"`
	PaidAt        time.Time `json:"paidAt"`
}

func (PaymentDonePayload) EventType() Type { return PaymentDone }
func (p PaymentDonePayload) Key() string   { return p.OrderID }

// ShipmentCreatedPayload is published by shipments when a paid order is handed to delivery.
type ShipmentCreatedPayload struct {
	OrderID    string    `json:"orderID"`
	CustomerID string    `json:"customerID"`
	ShipmentID string    `json:"shipmentID"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (ShipmentCreatedPayload) EventType() Type { return ShipmentCreated }
func (p ShipmentCreatedPayload) Key() string   { return p.OrderID }

// ShipmentDeliveredPayload is published by shipments when the package reached the customer.
type ShipmentDeliveredPayload struct {
	OrderID     string    `json:"orderID"`
	CustomerID  string    `json:"customerID"`
	ShipmentID  string    `json:"shipmentID"`
	DeliveredAt time.Time `json:"deliveredAt"`
}

func (ShipmentDeliveredPayload) EventType() Type { return ShipmentDelivered }
func (p ShipmentDeliveredPayload) Key() string   { return p.OrderID }

// CustomerCreatedPayload is published by users when a customer registers.
type CustomerCreatedPayload struct {
	CustomerID string    `json:"customerID"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (CustomerCreatedPayload) EventType() Type { return CustomerCreated }
func (p CustomerCreatedPayload) Key() string   { return p.CustomerID }

// EmployeeCreatedPayload is published by users when an employee registers.
type EmployeeCreatedPayload struct {
	EmployeeID string    `json:"employeeID"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (EmployeeCreatedPayload) EventType() Type { return EmployeeCreated }
func (p EmployeeCreatedPayload) Key() string   { return p.EmployeeID }
