package postgres

import (
	"context"

	"fleetops/internal/store"
)

const staffColumns = `id, name, email, role, active, available, created_at`

func (s *Store) GetStaffByID(ctx context.Context, id int64) (*store.Staff, error) {
	query := "SELECT " + staffColumns + " FROM staff WHERE id = $1"

	var member store.Staff
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&member.ID, &member.Name, &member.Email, &member.Role,
		&member.Active, &member.Available, &member.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &member, nil
}

// ListAvailableTechnicians returns active technicians flagged available.
// Ordered by ID so automatic selection tie-breaks deterministically.
func (s *Store) ListAvailableTechnicians(ctx context.Context) ([]store.Staff, error) {
	query := `
		SELECT ` + staffColumns + ` FROM staff
		WHERE role = $1 AND active AND available
		ORDER BY id ASC
	`

	rows, err := s.db.QueryContext(ctx, query, store.RoleTechnician)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var technicians []store.Staff
	for rows.Next() {
		var member store.Staff
		if err := rows.Scan(
			&member.ID, &member.Name, &member.Email, &member.Role,
			&member.Active, &member.Available, &member.CreatedAt,
		); err != nil {
			return nil, err
		}
		technicians = append(technicians, member)
	}

	return technicians, rows.Err()
}

func (s *Store) GetEquipmentByID(ctx context.Context, id int64) (*store.Equipment, error) {
	query := "SELECT id, name, serial_number, location, created_at FROM equipment WHERE id = $1"

	var eq store.Equipment
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&eq.ID, &eq.Name, &eq.SerialNumber, &eq.Location, &eq.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &eq, nil
}
