package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateCampaignsTables creates the campaigns and campaign_updates tables
func CreateCampaignsTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_campaigns_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS campaigns (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					creator_id UUID NOT NULL REFERENCES users(id),
					title VARCHAR(255) NOT NULL,
					slug VARCHAR(255) UNIQUE,
					category VARCHAR(50),
					story TEXT,
					image_url TEXT,
					location VARCHAR(255),
					goal_amount_usd DECIMAL(12,2) NOT NULL,
					current_amount_usd DECIMAL(12,2) NOT NULL DEFAULT 0,
					urgency_level VARCHAR(20) NOT NULL DEFAULT 'medium',
					status VARCHAR(20) NOT NULL DEFAULT 'draft',
					rejected_reason TEXT,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_campaigns_creator_id ON campaigns(creator_id);
				CREATE INDEX idx_campaigns_status ON campaigns(status);
				CREATE INDEX idx_campaigns_slug ON campaigns(slug);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS campaign_updates (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					campaign_id UUID NOT NULL REFERENCES campaigns(id),
					title VARCHAR(255) NOT NULL,
					body TEXT NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_campaign_updates_campaign_id ON campaign_updates(campaign_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS campaign_updates;
				DROP TABLE IF EXISTS campaigns;
			`).Error
		},
	}
}
