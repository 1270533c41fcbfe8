package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const roomColumns = `id, room_number, room_name, room_type, floor_id, capacity, price_per_night, is_active, room_status, qr_token, description, amenities, created_at, updated_at`

type ListRoomsParams struct {
	FloorID    pgtype.UUID
	RoomStatus pgtype.Text
	ActiveOnly bool
}

func (q *Queries) ListRooms(ctx context.Context, arg ListRoomsParams) ([]Room, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE ($1::uuid IS NULL OR floor_id = $1)
		  AND ($2::text IS NULL OR room_status = $2)
		  AND (is_active OR NOT $3)
		ORDER BY floor_id, room_number`,
		arg.FloorID, arg.RoomStatus, arg.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []Room
	for rows.Next() {
		r, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

func (q *Queries) GetRoom(ctx context.Context, id uuid.UUID) (Room, error) {
	row := q.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = $1`, id)
	return scanRoom(row)
}

// GetRoomByToken resolves a QR token to its room.
func (q *Queries) GetRoomByToken(ctx context.Context, token string) (Room, error) {
	row := q.db.QueryRow(ctx, `SELECT `+roomColumns+` FROM rooms WHERE qr_token = $1`, token)
	return scanRoom(row)
}

type CreateRoomParams struct {
	RoomNumber    string
	RoomName      pgtype.Text
	RoomType      string
	FloorID       uuid.UUID
	Capacity      int32
	PricePerNight pgtype.Numeric
	RoomStatus    string
	QRToken       string
	Description   pgtype.Text
	Amenities     pgtype.Text
}

// CreateRoom inserts a room with its QR token, minted exactly once here.
func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO rooms (room_number, room_name, room_type, floor_id, capacity, price_per_night, room_status, qr_token, description, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+roomColumns,
		arg.RoomNumber, arg.RoomName, arg.RoomType, arg.FloorID, arg.Capacity,
		arg.PricePerNight, arg.RoomStatus, arg.QRToken, arg.Description, arg.Amenities)
	return scanRoom(row)
}

type UpdateRoomParams struct {
	ID            uuid.UUID
	RoomNumber    string
	RoomName      pgtype.Text
	RoomType      string
	FloorID       uuid.UUID
	Capacity      int32
	PricePerNight pgtype.Numeric
	IsActive      bool
	RoomStatus    string
	Description   pgtype.Text
	Amenities     pgtype.Text
}

func (q *Queries) UpdateRoom(ctx context.Context, arg UpdateRoomParams) (Room, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE rooms
		SET room_number = $2, room_name = $3, room_type = $4, floor_id = $5, capacity = $6,
		    price_per_night = $7, is_active = $8, room_status = $9, description = $10,
		    amenities = $11, updated_at = now()
		WHERE id = $1
		RETURNING `+roomColumns,
		arg.ID, arg.RoomNumber, arg.RoomName, arg.RoomType, arg.FloorID, arg.Capacity,
		arg.PricePerNight, arg.IsActive, arg.RoomStatus, arg.Description, arg.Amenities)
	return scanRoom(row)
}

func (q *Queries) DeleteRoom(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM rooms WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

func scanRoom(row rowScanner) (Room, error) {
	var r Room
	err := row.Scan(&r.ID, &r.RoomNumber, &r.RoomName, &r.RoomType, &r.FloorID,
		&r.Capacity, &r.PricePerNight, &r.IsActive, &r.RoomStatus, &r.QRToken,
		&r.Description, &r.Amenities, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
