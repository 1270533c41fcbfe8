package enum

// ── Order lifecycle ──

const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusReady     = "ready"
	OrderStatusServed    = "served"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// OpenOrderStatuses are the statuses that count toward "has active order".
// Disjoint from the terminal set {completed, cancelled}.
var OpenOrderStatuses = []string{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusPreparing,
	OrderStatusReady,
	OrderStatusServed,
}

const (
	OrderTypeTable = "table"
	OrderTypeRoom  = "room"
)

// ── Tables ──

const (
	TableShapeRectangle = "rectangle"
	TableShapeCircle    = "circle"
)

// ── Rooms ──

const (
	RoomTypeSingle       = "single"
	RoomTypeDouble       = "double"
	RoomTypeTriple       = "triple"
	RoomTypeSuite        = "suite"
	RoomTypeDeluxe       = "deluxe"
	RoomTypePresidential = "presidential"
)

const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusReserved    = "reserved"
	RoomStatusCleaning    = "cleaning"
)

// ── Users ──

const (
	UserRoleAdmin    = "ADMIN"
	UserRoleManager  = "MANAGER"
	UserRoleStaff    = "STAFF"
	UserRoleCustomer = "CUSTOMER"
)

// ── HR ──

const (
	EmploymentStatusActive     = "active"
	EmploymentStatusInactive   = "inactive"
	EmploymentStatusTerminated = "terminated"
	EmploymentStatusOnLeave    = "on_leave"
)

const (
	AttendanceStatusPresent = "present"
	AttendanceStatusAbsent  = "absent"
	AttendanceStatusLate    = "late"
	AttendanceStatusHalfDay = "half_day"
	AttendanceStatusLeave   = "leave"
)

const (
	LeaveTypeAnnual    = "annual"
	LeaveTypeSick      = "sick"
	LeaveTypePersonal  = "personal"
	LeaveTypeMaternity = "maternity"
	LeaveTypePaternity = "paternity"
	LeaveTypeOther     = "other"
)

const (
	LeaveStatusPending   = "pending"
	LeaveStatusApproved  = "approved"
	LeaveStatusRejected  = "rejected"
	LeaveStatusCancelled = "cancelled"
)
