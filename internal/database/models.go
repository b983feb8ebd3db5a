package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID             uuid.UUID
	FullName       string
	Email          string
	HashedPassword string
	Role           string
	IsActive       bool
	CreatedAt      time.Time
}

type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Category    pgtype.Text
	Description pgtype.Text
	Price       pgtype.Numeric
	Cost        pgtype.Numeric
	NetProfit   pgtype.Numeric
	CurrentQty  int32
	MinimumQty  int32
	ImageUrl    pgtype.Text
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type ChargeSetting struct {
	ChargeType string
	Percentage pgtype.Numeric
	Amount     pgtype.Numeric
	IsActive   bool
	UpdatedAt  time.Time
}

type Order struct {
	ID              uuid.UUID
	InvoiceNo       string
	CustomerName    string
	CustomerPhone   string
	TableNo         string
	Subtotal        pgtype.Numeric
	ServiceCharge   pgtype.Numeric
	DeliveryType    string
	DeliveryCharge  pgtype.Numeric
	DeliveryNote    pgtype.Text
	DeliveryStatus  string
	DriverID        pgtype.UUID
	TotalPrice      pgtype.Numeric
	PayCash         pgtype.Numeric
	PayCard         pgtype.Numeric
	PayBankTransfer pgtype.Numeric
	TotalPaid       pgtype.Numeric
	ChangeDue       pgtype.Numeric
	PaymentNotes    pgtype.Text
	CashierID       uuid.UUID
	Status          string
	CreatedAt       time.Time
}

type OrderItem struct {
	ID       uuid.UUID
	OrderID  uuid.UUID
	MenuID   uuid.UUID
	Name     string
	Price    pgtype.Numeric
	ImageUrl pgtype.Text
	Quantity int32
}

type Driver struct {
	ID          uuid.UUID
	Name        string
	Vehicle     string
	NumberPlate string
	CreatedAt   time.Time
}

type Employee struct {
	ID           uuid.UUID
	EmployeeCode string
	Name         string
	Position     string
	Phone        pgtype.Text
	CreatedAt    time.Time
}

type Supplier struct {
	ID          uuid.UUID
	Name        string
	CompanyName string
	Contact     string
	Email       pgtype.Text
	Address     pgtype.Text
	CreatedAt   time.Time
}

type Expense struct {
	ID          uuid.UUID
	SupplierID  pgtype.UUID
	Description string
	Amount      pgtype.Numeric
	Date        pgtype.Date
}

type KitchenBill struct {
	ID          uuid.UUID
	Description string
	Amount      pgtype.Numeric
	Date        pgtype.Date
}

type Salary struct {
	ID           uuid.UUID
	EmployeeName string
	Total        pgtype.Numeric
	Date         pgtype.Date
}
