package repository

import (
	"context"
	"fmt"

	"scrimbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

const scrimColumns = `id, guild_id, host_id, name,
	       registration_channel_id, slotlist_channel_id, role_id, ping_role_id, open_role_id,
	       required_mentions, total_slots, start_from,
	       autoslotlist, multiregister, autodelete_rejects, teamname_compulsion,
	       no_duplicate_name, show_time_elapsed, autodelete_extras,
	       open_message, close_message,
	       open_time, autoclean_time, autoclean, open_days, created_at`

// ScrimRepository implements scrim configuration data access
type ScrimRepository struct {
	q Queryable
}

// NewScrimRepository creates a new scrim repository
func NewScrimRepository(tx Queryable) *ScrimRepository {
	return &ScrimRepository{q: tx}
}

func scanScrim(row pgx.Row) (*entities.Scrim, error) {
	var s entities.Scrim
	var openDays int16
	err := row.Scan(
		&s.ID,
		&s.GuildID,
		&s.HostID,
		&s.Name,
		&s.RegistrationChannelID,
		&s.SlotlistChannelID,
		&s.RoleID,
		&s.PingRoleID,
		&s.OpenRoleID,
		&s.RequiredMentions,
		&s.TotalSlots,
		&s.StartFrom,
		&s.Autoslotlist,
		&s.Multiregister,
		&s.AutodeleteRejects,
		&s.TeamnameCompulsion,
		&s.NoDuplicateName,
		&s.ShowTimeElapsed,
		&s.AutodeleteExtras,
		&s.OpenMessage,
		&s.CloseMessage,
		&s.OpenTime,
		&s.AutocleanTime,
		&s.AutocleanEnabled,
		&openDays,
		&s.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.OpenDays = entities.Weekdays(openDays)
	return &s, nil
}

// Create persists a new scrim and fills in its generated ID and created_at
func (r *ScrimRepository) Create(ctx context.Context, scrim *entities.Scrim) error {
	query := `
		INSERT INTO scrims (guild_id, host_id, name,
		                    registration_channel_id, slotlist_channel_id, role_id, ping_role_id, open_role_id,
		                    required_mentions, total_slots, start_from,
		                    autoslotlist, multiregister, autodelete_rejects, teamname_compulsion,
		                    no_duplicate_name, show_time_elapsed, autodelete_extras,
		                    open_message, close_message,
		                    open_time, autoclean_time, autoclean, open_days)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		scrim.GuildID,
		scrim.HostID,
		scrim.Name,
		scrim.RegistrationChannelID,
		scrim.SlotlistChannelID,
		scrim.RoleID,
		scrim.PingRoleID,
		scrim.OpenRoleID,
		scrim.RequiredMentions,
		scrim.TotalSlots,
		scrim.StartFrom,
		scrim.Autoslotlist,
		scrim.Multiregister,
		scrim.AutodeleteRejects,
		scrim.TeamnameCompulsion,
		scrim.NoDuplicateName,
		scrim.ShowTimeElapsed,
		scrim.AutodeleteExtras,
		scrim.OpenMessage,
		scrim.CloseMessage,
		scrim.OpenTime,
		scrim.AutocleanTime,
		scrim.AutocleanEnabled,
		int16(scrim.OpenDays),
	).Scan(&scrim.ID, &scrim.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create scrim: %w", err)
	}

	return nil
}

// GetByID retrieves a scrim by its ID, nil if not found
func (r *ScrimRepository) GetByID(ctx context.Context, id int64) (*entities.Scrim, error) {
	query := fmt.Sprintf(`SELECT %s FROM scrims WHERE id = $1`, scrimColumns)

	scrim, err := scanScrim(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scrim by ID %d: %w", id, err)
	}

	return scrim, nil
}

// GetByIDForUpdate retrieves a scrim by ID with a row lock for update. The
// lock is the per-scrim critical section serializing edits, deletes and
// timer fires for one scrim.
func (r *ScrimRepository) GetByIDForUpdate(ctx context.Context, id int64) (*entities.Scrim, error) {
	query := fmt.Sprintf(`SELECT %s FROM scrims WHERE id = $1 FOR UPDATE`, scrimColumns)

	scrim, err := scanScrim(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scrim for update by ID %d: %w", id, err)
	}

	return scrim, nil
}

// Update writes every mutable field of the scrim in a single statement
func (r *ScrimRepository) Update(ctx context.Context, scrim *entities.Scrim) error {
	query := `
		UPDATE scrims
		SET name = $2,
		    registration_channel_id = $3,
		    slotlist_channel_id = $4,
		    role_id = $5,
		    ping_role_id = $6,
		    open_role_id = $7,
		    required_mentions = $8,
		    total_slots = $9,
		    start_from = $10,
		    autoslotlist = $11,
		    multiregister = $12,
		    autodelete_rejects = $13,
		    teamname_compulsion = $14,
		    no_duplicate_name = $15,
		    show_time_elapsed = $16,
		    autodelete_extras = $17,
		    open_message = $18,
		    close_message = $19,
		    open_time = $20,
		    autoclean_time = $21,
		    autoclean = $22,
		    open_days = $23
		WHERE id = $1
	`

	result, err := r.q.Exec(ctx, query,
		scrim.ID,
		scrim.Name,
		scrim.RegistrationChannelID,
		scrim.SlotlistChannelID,
		scrim.RoleID,
		scrim.PingRoleID,
		scrim.OpenRoleID,
		scrim.RequiredMentions,
		scrim.TotalSlots,
		scrim.StartFrom,
		scrim.Autoslotlist,
		scrim.Multiregister,
		scrim.AutodeleteRejects,
		scrim.TeamnameCompulsion,
		scrim.NoDuplicateName,
		scrim.ShowTimeElapsed,
		scrim.AutodeleteExtras,
		scrim.OpenMessage,
		scrim.CloseMessage,
		scrim.OpenTime,
		scrim.AutocleanTime,
		scrim.AutocleanEnabled,
		int16(scrim.OpenDays),
	)
	if err != nil {
		return fmt.Errorf("failed to update scrim %d: %w", scrim.ID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("scrim with ID %d not found", scrim.ID)
	}

	return nil
}

// Delete removes a scrim; returns false when no row existed
func (r *ScrimRepository) Delete(ctx context.Context, id int64) (bool, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM scrims WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete scrim %d: %w", id, err)
	}
	return result.RowsAffected() > 0, nil
}

// IsChannelAssigned reports whether any scrim other than excludeScrimID
// already uses the channel as its registration or slotlist channel
func (r *ScrimRepository) IsChannelAssigned(ctx context.Context, channelID, excludeScrimID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM scrims
			WHERE (registration_channel_id = $1 OR slotlist_channel_id = $1)
			  AND id <> $2
		)
	`

	var assigned bool
	if err := r.q.QueryRow(ctx, query, channelID, excludeScrimID).Scan(&assigned); err != nil {
		return false, fmt.Errorf("failed to check channel assignment for %d: %w", channelID, err)
	}

	return assigned, nil
}
