package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreateUsersTable creates the users table and the KYC audit trail
func CreateUsersTable() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_users_table",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE EXTENSION IF NOT EXISTS "uuid-ossp";

				CREATE TABLE IF NOT EXISTS users (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					email VARCHAR(255) NOT NULL UNIQUE,
					full_name VARCHAR(255),
					avatar_url TEXT,
					password_hash VARCHAR(255),
					role VARCHAR(20) NOT NULL DEFAULT 'donor',
					kyc_status VARCHAR(20) NOT NULL DEFAULT 'pending',
					kyc_document_url TEXT,
					kyc_document_type VARCHAR(20),
					kyc_rejected_reason TEXT,
					totp_secret VARCHAR(64),
					two_factor_enabled BOOLEAN DEFAULT FALSE,
					last_login_at TIMESTAMP WITH TIME ZONE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_users_email ON users(email);
				CREATE INDEX idx_users_kyc_status ON users(kyc_status);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS kyc_status_histories (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					previous_status VARCHAR(20) NOT NULL,
					new_status VARCHAR(20) NOT NULL,
					changed_by UUID,
					notes TEXT,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_kyc_status_histories_user_id ON kyc_status_histories(user_id);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS kyc_status_histories;
				DROP TABLE IF EXISTS users;
			`).Error
		},
	}
}
