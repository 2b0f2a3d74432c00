package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateDonationsTables creates the donations and manual_payments tables
func CreateDonationsTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_donations_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS donations (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					campaign_id UUID NOT NULL REFERENCES campaigns(id),
					donor_id UUID REFERENCES users(id),
					amount_usd DECIMAL(12,2) NOT NULL,
					amount_vef DECIMAL(16,2),
					payment_method VARCHAR(20) NOT NULL,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					anonymous BOOLEAN DEFAULT FALSE,
					donor_email VARCHAR(255),
					donor_name VARCHAR(255),
					reference VARCHAR(100) UNIQUE,
					provider_ref VARCHAR(255),
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_donations_campaign_id ON donations(campaign_id);
				CREATE INDEX idx_donations_donor_id ON donations(donor_id);
				CREATE INDEX idx_donations_status ON donations(status);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS manual_payments (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					donation_id UUID NOT NULL UNIQUE REFERENCES donations(id),
					payment_type VARCHAR(20) NOT NULL,
					transaction_reference VARCHAR(255) NOT NULL,
					proof_note TEXT,
					status VARCHAR(20) NOT NULL DEFAULT 'pending_approval',
					review_note TEXT,
					reviewed_by UUID,
					reviewed_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_manual_payments_status ON manual_payments(status);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS manual_payments;
				DROP TABLE IF EXISTS donations;
			`).Error
		},
	}
}
