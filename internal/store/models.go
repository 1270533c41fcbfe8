package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID
	Phone        string
	PasswordHash string
	FirstName    pgtype.Text
	LastName     pgtype.Text
	Role         string
	OrderCount   int32
	CreatedAt    time.Time
}

type MenuItem struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Description pgtype.Text
	Price       pgtype.Numeric
	ListOrder   int32
	IsAvailable bool
	CreatedAt   time.Time
}

type Floor struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	IsActive    bool
	CreatedAt   time.Time
}

type Table struct {
	ID          uuid.UUID
	TableNumber string
	TableName   pgtype.Text
	Capacity    int32
	IsActive    bool
	QRToken     string
	VisualX     int32
	VisualY     int32
	Shape       string
	Width       int32
	Height      int32
	Radius      int32
	FloorID     pgtype.UUID
	CreatedAt   time.Time
}

type Room struct {
	ID            uuid.UUID
	RoomNumber    string
	RoomName      pgtype.Text
	RoomType      string
	FloorID       uuid.UUID
	Capacity      int32
	PricePerNight pgtype.Numeric
	IsActive      bool
	RoomStatus    string
	QRToken       string
	Description   pgtype.Text
	Amenities     pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CartItem is the declared cart schema stored as jsonb on orders.
// Validated at order placement; UnitPrice is a decimal string.
type CartItem struct {
	ItemID      uuid.UUID `json:"item_id"`
	DisplayName string    `json:"display_name"`
	Quantity    int32     `json:"quantity"`
	UnitPrice   string    `json:"unit_price"`
}

type Order struct {
	ID                  uuid.UUID
	CustomerName        pgtype.Text
	Phone               pgtype.Text
	Items               []CartItem
	EntityToken         string
	OrderType           string
	TableNumber         string
	Price               pgtype.Numeric
	Status              string
	Settled             bool
	EstimatedTime       int32
	SpecialInstructions pgtype.Text
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// BillLine is one consolidated ledger entry, keyed in Bill.Items by the
// lowercased item display name.
type BillLine struct {
	Quantity  int32  `json:"quantity"`
	LineTotal string `json:"line_total"`
}

type Bill struct {
	ID           uuid.UUID
	Items        map[string]BillLine
	CustomerName string
	Phone        string
	Total        pgtype.Numeric
	TableNumber  string
	GeneratedAt  time.Time
}

type Department struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Role struct {
	ID           uuid.UUID
	Name         string
	Description  pgtype.Text
	DepartmentID uuid.UUID
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Staff struct {
	ID               uuid.UUID
	EmployeeID       string
	UserID           uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	DepartmentID     uuid.UUID
	RoleID           uuid.UUID
	HireDate         time.Time
	Salary           pgtype.Numeric
	EmploymentStatus string
	IsActive         bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type Attendance struct {
	ID           uuid.UUID
	StaffID      uuid.UUID
	Date         time.Time
	CheckInTime  pgtype.Time
	CheckOutTime pgtype.Time
	Status       string
	Notes        pgtype.Text
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Rating is a guest review left after a visit. Anonymous on the wire; the
// display name is derived from the account at creation time.
type Rating struct {
	ID        uuid.UUID
	Name      string
	Comment   string
	RatedAt   time.Time
	CreatedAt time.Time
}

type Leave struct {
	ID         uuid.UUID
	StaffID    uuid.UUID
	LeaveType  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     string
	ApprovedBy pgtype.UUID
	ApprovedAt pgtype.Timestamptz
	Notes      pgtype.Text
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
