package repository

import (
	"context"
	"fmt"

	"scrimbot/domain/entities"

	"github.com/jackc/pgx/v5"
)

// GuildSettingsRepository implements guild settings data access
type GuildSettingsRepository struct {
	q Queryable
}

// NewGuildSettingsRepository creates a new guild settings repository
func NewGuildSettingsRepository(tx Queryable) *GuildSettingsRepository {
	return &GuildSettingsRepository{q: tx}
}

// GetOrCreateGuildSettings retrieves guild settings or creates default ones
// if not found
func (r *GuildSettingsRepository) GetOrCreateGuildSettings(ctx context.Context, guildID int64) (*entities.GuildSettings, error) {
	query := `
		SELECT guild_id, private_channel_id, scrims_mod_role_id, log_channel_id
		FROM guild_settings
		WHERE guild_id = $1
	`

	var settings entities.GuildSettings
	err := r.q.QueryRow(ctx, query, guildID).Scan(
		&settings.GuildID,
		&settings.PrivateChannelID,
		&settings.ScrimsModRoleID,
		&settings.LogChannelID,
	)

	if err == nil {
		return &settings, nil
	}

	if err != pgx.ErrNoRows {
		return nil, fmt.Errorf("failed to get guild settings for guild %d: %w", guildID, err)
	}

	insertQuery := `
		INSERT INTO guild_settings (guild_id, private_channel_id, scrims_mod_role_id, log_channel_id)
		VALUES ($1, NULL, NULL, NULL)
		RETURNING guild_id, private_channel_id, scrims_mod_role_id, log_channel_id
	`

	err = r.q.QueryRow(ctx, insertQuery, guildID).Scan(
		&settings.GuildID,
		&settings.PrivateChannelID,
		&settings.ScrimsModRoleID,
		&settings.LogChannelID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create guild settings for guild %d: %w", guildID, err)
	}

	return &settings, nil
}

// UpdateGuildSettings updates guild settings
func (r *GuildSettingsRepository) UpdateGuildSettings(ctx context.Context, settings *entities.GuildSettings) error {
	query := `
		UPDATE guild_settings
		SET private_channel_id = $2,
		    scrims_mod_role_id = $3,
		    log_channel_id = $4
		WHERE guild_id = $1
	`

	result, err := r.q.Exec(ctx, query,
		settings.GuildID,
		settings.PrivateChannelID,
		settings.ScrimsModRoleID,
		settings.LogChannelID,
	)
	if err != nil {
		return fmt.Errorf("failed to update guild settings for guild %d: %w", settings.GuildID, err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("guild settings for guild %d not found", settings.GuildID)
	}

	return nil
}
